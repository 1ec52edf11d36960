package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/courtside/hoop-services/internal/comm"
	"github.com/courtside/hoop-services/internal/kv"
	"github.com/courtside/hoop-services/internal/playsvc/models"
)

type fakeArchive struct {
	mu        sync.Mutex
	nextID    int
	active    map[string]string // courtID -> gameID
	finalized map[string][2]int // gameID -> final scores
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{
		active:    make(map[string]string),
		finalized: make(map[string][2]int),
	}
}

func (f *fakeArchive) CreateGameRecord(ctx context.Context, courtID, ownerID string, scoreLimit, timeLimit, teamSize int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("game-%04d", f.nextID)
	f.active[courtID] = id
	return id, nil
}

func (f *fakeArchive) FindActiveGameByCourt(ctx context.Context, courtID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active[courtID], nil
}

func (f *fakeArchive) FinalizeGame(ctx context.Context, gameID string, team1Score, team2Score int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finalized[gameID] = [2]int{team1Score, team2Score}
	for courtID, id := range f.active {
		if id == gameID {
			delete(f.active, courtID)
		}
	}
	return nil
}

type fakeCourts struct {
	courts map[string]*models.Court
}

func (f *fakeCourts) FindCourt(ctx context.Context, courtID string) (*models.Court, error) {
	return f.courts[courtID], nil
}

type eventRecorder struct {
	mu     sync.Mutex
	events []comm.GameEvent
}

func (r *eventRecorder) PublishGameEvent(event comm.GameEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, len(r.events))
	for i, e := range r.events {
		types[i] = e.Type
	}
	return types
}

type fixture struct {
	svc     *PlayService
	archive *fakeArchive
	events  *eventRecorder
}

func newFixture() *fixture {
	archive := newFakeArchive()
	courts := &fakeCourts{courts: map[string]*models.Court{
		"court-1": {ID: "court-1", Name: "Riverside"},
		"court-2": {ID: "court-2", Name: "Northgate"},
	}}
	events := &eventRecorder{}
	return &fixture{
		svc:     NewPlayService(kv.NewMemory(), archive, courts, events),
		archive: archive,
		events:  events,
	}
}

// mustCreate creates a game and fails the test on any non-success.
func mustCreate(t *testing.T, f *fixture, ownerID, courtID string, teamSize int) *models.GameRecord {
	t.Helper()
	outcome, err := f.svc.CreateGame(context.Background(), ownerID, courtID, 0, 0, teamSize)
	if err != nil {
		t.Fatalf("CreateGame errored: %v", err)
	}
	if !outcome.OK {
		t.Fatalf("CreateGame rejected: %s", outcome.Reason)
	}
	return outcome.Game
}

// mustInvite sends an invite and fails the test on any non-success.
func mustInvite(t *testing.T, f *fixture, ownerID, recipientID string) {
	t.Helper()
	outcome, err := f.svc.Invite(context.Background(), ownerID, recipientID)
	if err != nil {
		t.Fatalf("Invite errored: %v", err)
	}
	if !outcome.OK {
		t.Fatalf("Invite rejected: %s", outcome.Reason)
	}
}

// mustAccept accepts an invite and fails the test on any non-success.
func mustAccept(t *testing.T, f *fixture, playerID, gameID string) *models.GameRecord {
	t.Helper()
	outcome, err := f.svc.AcceptInvite(context.Background(), playerID, gameID)
	if err != nil {
		t.Fatalf("AcceptInvite errored: %v", err)
	}
	if !outcome.OK {
		t.Fatalf("AcceptInvite rejected: %s", outcome.Reason)
	}
	return outcome.Game
}

func expectReason(t *testing.T, outcome *Outcome, err error, want Reason) {
	t.Helper()
	if err != nil {
		t.Fatalf("operation errored: %v", err)
	}
	if outcome.OK {
		t.Fatalf("expected rejection %s, got success", want)
	}
	if outcome.Reason != want {
		t.Errorf("expected reason %s, got %s", want, outcome.Reason)
	}
}

func TestCreateGame(t *testing.T) {
	ctx := context.Background()

	t.Run("success seeds owner and binds session", func(t *testing.T) {
		f := newFixture()
		game := mustCreate(t, f, "owner", "court-1", 0)

		if len(game.Team1) != 1 || game.Team1[0] != "owner" {
			t.Errorf("team1 = %v, want [owner]", game.Team1)
		}
		if game.ScoreLimit != models.DefaultScoreLimit || game.TeamSize != models.DefaultTeamSize {
			t.Errorf("defaults not applied: %+v", game)
		}

		bound, err := f.svc.Sessions().ActiveGame(ctx, "owner")
		if err != nil {
			t.Fatalf("ActiveGame failed: %v", err)
		}
		if bound != game.ID {
			t.Errorf("owner bound to %q, want %q", bound, game.ID)
		}
	})

	t.Run("owner already in a game", func(t *testing.T) {
		f := newFixture()
		mustCreate(t, f, "owner", "court-1", 0)
		outcome, err := f.svc.CreateGame(ctx, "owner", "court-2", 0, 0, 0)
		expectReason(t, outcome, err, ReasonPlayerAlreadyInGame)
	})

	t.Run("unknown court", func(t *testing.T) {
		f := newFixture()
		outcome, err := f.svc.CreateGame(ctx, "owner", "court-99", 0, 0, 0)
		expectReason(t, outcome, err, ReasonCourtDoesNotExist)
	})

	t.Run("court already hosting a game", func(t *testing.T) {
		f := newFixture()
		mustCreate(t, f, "owner", "court-1", 0)
		outcome, err := f.svc.CreateGame(ctx, "other", "court-1", 0, 0, 0)
		expectReason(t, outcome, err, ReasonCourtInUse)
	})
}

func TestInvite(t *testing.T) {
	ctx := context.Background()

	t.Run("records invite on both sides", func(t *testing.T) {
		f := newFixture()
		game := mustCreate(t, f, "owner", "court-1", 0)
		mustInvite(t, f, "owner", "guest")

		invites, err := f.svc.ListInvites(ctx, "guest")
		if err != nil {
			t.Fatalf("ListInvites failed: %v", err)
		}
		if len(invites) != 1 || invites[0] != game.ID {
			t.Errorf("guest invites = %v, want [%s]", invites, game.ID)
		}

		outcome, _ := f.svc.CurrentGame(ctx, "owner", "")
		if got := outcome.Game.OpenInvites; len(got) != 1 || got[0] != "guest" {
			t.Errorf("openInvites = %v, want [guest]", got)
		}
	})

	t.Run("duplicate invite", func(t *testing.T) {
		f := newFixture()
		mustCreate(t, f, "owner", "court-1", 0)
		mustInvite(t, f, "owner", "guest")
		outcome, err := f.svc.Invite(ctx, "owner", "guest")
		expectReason(t, outcome, err, ReasonAlreadyInvited)
	})

	t.Run("recipient already rostered", func(t *testing.T) {
		f := newFixture()
		game := mustCreate(t, f, "owner", "court-1", 0)
		mustInvite(t, f, "owner", "guest")
		mustAccept(t, f, "guest", game.ID)

		outcome, err := f.svc.Invite(ctx, "owner", "guest")
		expectReason(t, outcome, err, ReasonPlayerAlreadyInGame)
	})

	t.Run("only the owner may invite", func(t *testing.T) {
		f := newFixture()
		game := mustCreate(t, f, "owner", "court-1", 0)
		mustInvite(t, f, "owner", "guest")
		mustAccept(t, f, "guest", game.ID)

		outcome, err := f.svc.Invite(ctx, "guest", "third")
		expectReason(t, outcome, err, ReasonNotOwner)
	})

	t.Run("inviter not in a game", func(t *testing.T) {
		f := newFixture()
		outcome, err := f.svc.Invite(ctx, "nobody", "guest")
		expectReason(t, outcome, err, ReasonNotInGame)
	})

	t.Run("no invites once started", func(t *testing.T) {
		f := newFixture()
		game := mustCreate(t, f, "owner", "court-1", 1)
		mustInvite(t, f, "owner", "guest")
		mustAccept(t, f, "guest", game.ID)

		started, err := f.svc.StartGame(ctx, "owner")
		if err != nil || !started.OK {
			t.Fatalf("StartGame failed: %v %+v", err, started)
		}

		outcome, err := f.svc.Invite(ctx, "owner", "late")
		expectReason(t, outcome, err, ReasonGameAlreadyStarted)
	})
}

func TestAcceptInvite(t *testing.T) {
	ctx := context.Background()

	t.Run("first accept lands on team2", func(t *testing.T) {
		f := newFixture()
		created := mustCreate(t, f, "owner", "court-1", 0)
		mustInvite(t, f, "owner", "guest")

		game := mustAccept(t, f, "guest", created.ID)
		// team1 holds only the owner, so team1 is strictly larger.
		if len(game.Team2) != 1 || game.Team2[0] != "guest" {
			t.Errorf("team2 = %v, want [guest]", game.Team2)
		}
		if len(game.OpenInvites) != 0 {
			t.Errorf("openInvites not cleared: %v", game.OpenInvites)
		}

		invites, _ := f.svc.ListInvites(ctx, "guest")
		if len(invites) != 0 {
			t.Errorf("registry not cleared: %v", invites)
		}
		bound, _ := f.svc.Sessions().ActiveGame(ctx, "guest")
		if bound != created.ID {
			t.Errorf("guest bound to %q, want %q", bound, created.ID)
		}
	})

	t.Run("tie placement goes to team1", func(t *testing.T) {
		f := newFixture()
		created := mustCreate(t, f, "owner", "court-1", 0)
		mustInvite(t, f, "owner", "p1")
		mustInvite(t, f, "owner", "p2")
		mustAccept(t, f, "p1", created.ID)         // 1v0 -> p1 to team2
		game := mustAccept(t, f, "p2", created.ID) // 1v1 tie -> p2 to team1

		if len(game.Team1) != 2 || game.Team1[1] != "p2" {
			t.Errorf("team1 = %v, want [owner p2]", game.Team1)
		}
	})

	t.Run("no invite", func(t *testing.T) {
		f := newFixture()
		created := mustCreate(t, f, "owner", "court-1", 0)
		outcome, err := f.svc.AcceptInvite(ctx, "stranger", created.ID)
		expectReason(t, outcome, err, ReasonInviteDoesNotExist)
	})

	t.Run("registry entry without game-side invite", func(t *testing.T) {
		f := newFixture()
		created := mustCreate(t, f, "owner", "court-1", 0)

		// Seed only the registry half to simulate a half-written invite.
		f.seedRegistryOnly(t, "guest", created.ID)

		outcome, err := f.svc.AcceptInvite(ctx, "guest", created.ID)
		expectReason(t, outcome, err, ReasonInviteDoesNotExist)
	})

	t.Run("already in another game", func(t *testing.T) {
		f := newFixture()
		first := mustCreate(t, f, "owner", "court-1", 0)
		mustCreate(t, f, "other", "court-2", 0)
		mustInvite(t, f, "other", "guest")

		// Bind guest into the first game, then try to accept the second.
		mustInvite(t, f, "owner", "guest")
		mustAccept(t, f, "guest", first.ID)

		second, _ := f.svc.Sessions().ActiveGame(ctx, "other")
		outcome, err := f.svc.AcceptInvite(ctx, "guest", second)
		expectReason(t, outcome, err, ReasonPlayerAlreadyInGame)
	})
}

// seedRegistryOnly writes an invite into the player's registry without the
// matching entry on the game record.
func (f *fixture) seedRegistryOnly(t *testing.T, playerID, gameID string) {
	t.Helper()
	if err := f.svc.invites.Add(context.Background(), playerID, gameID); err != nil {
		t.Fatalf("failed to seed registry: %v", err)
	}
}

func TestRejectInvite(t *testing.T) {
	ctx := context.Background()

	t.Run("clears both sides without touching rosters", func(t *testing.T) {
		f := newFixture()
		created := mustCreate(t, f, "owner", "court-1", 0)
		mustInvite(t, f, "owner", "guest")

		outcome, err := f.svc.RejectInvite(ctx, "guest", created.ID)
		if err != nil || !outcome.OK {
			t.Fatalf("RejectInvite failed: %v %+v", err, outcome)
		}

		invites, _ := f.svc.ListInvites(ctx, "guest")
		if len(invites) != 0 {
			t.Errorf("registry not cleared: %v", invites)
		}
		current, _ := f.svc.CurrentGame(ctx, "owner", "")
		if len(current.Game.OpenInvites) != 0 {
			t.Errorf("game side not cleared: %v", current.Game.OpenInvites)
		}
		if len(current.Game.Team1) != 1 || len(current.Game.Team2) != 0 {
			t.Errorf("rosters changed by reject: %v %v", current.Game.Team1, current.Game.Team2)
		}
	})

	t.Run("second reject reports no invite", func(t *testing.T) {
		f := newFixture()
		created := mustCreate(t, f, "owner", "court-1", 0)
		mustInvite(t, f, "owner", "guest")
		f.svc.RejectInvite(ctx, "guest", created.ID)

		outcome, err := f.svc.RejectInvite(ctx, "guest", created.ID)
		expectReason(t, outcome, err, ReasonInviteDoesNotExist)
	})
}

func TestChangeTeam(t *testing.T) {
	ctx := context.Background()

	t.Run("not in a game", func(t *testing.T) {
		f := newFixture()
		outcome, err := f.svc.ChangeTeam(ctx, "nobody")
		expectReason(t, outcome, err, ReasonNotInGame)
	})

	t.Run("moves player and keeps teams disjoint", func(t *testing.T) {
		f := newFixture()
		created := mustCreate(t, f, "owner", "court-1", 0)
		mustInvite(t, f, "owner", "guest")
		mustAccept(t, f, "guest", created.ID)

		outcome, err := f.svc.ChangeTeam(ctx, "guest")
		if err != nil || !outcome.OK {
			t.Fatalf("ChangeTeam failed: %v %+v", err, outcome)
		}

		game := outcome.Game
		if len(game.Team1) != 2 || len(game.Team2) != 0 {
			t.Errorf("rosters after change: %v %v", game.Team1, game.Team2)
		}
		seen := make(map[string]int)
		for _, p := range game.Players() {
			seen[p]++
		}
		for p, n := range seen {
			if n != 1 {
				t.Errorf("player %s appears %d times", p, n)
			}
		}
	})
}

func TestStartGame(t *testing.T) {
	ctx := context.Background()

	t.Run("unbalanced teams", func(t *testing.T) {
		f := newFixture()
		mustCreate(t, f, "owner", "court-1", 0)
		outcome, err := f.svc.StartGame(ctx, "owner")
		expectReason(t, outcome, err, ReasonTeamsUnbalanced)
	})

	t.Run("team over the size limit", func(t *testing.T) {
		f := newFixture()
		created := mustCreate(t, f, "owner", "court-1", 1)
		for _, p := range []string{"p1", "p2", "p3"} {
			mustInvite(t, f, "owner", p)
			mustAccept(t, f, p, created.ID)
		}

		outcome, err := f.svc.StartGame(ctx, "owner")
		expectReason(t, outcome, err, ReasonTeamTooLarge)
	})

	t.Run("non-owner cannot start", func(t *testing.T) {
		f := newFixture()
		created := mustCreate(t, f, "owner", "court-1", 1)
		mustInvite(t, f, "owner", "guest")
		mustAccept(t, f, "guest", created.ID)

		outcome, err := f.svc.StartGame(ctx, "guest")
		expectReason(t, outcome, err, ReasonNotOwner)
	})

	t.Run("start sweeps open invites", func(t *testing.T) {
		f := newFixture()
		created := mustCreate(t, f, "owner", "court-1", 1)
		mustInvite(t, f, "owner", "guest")
		mustInvite(t, f, "owner", "undecided")
		mustAccept(t, f, "guest", created.ID)

		outcome, err := f.svc.StartGame(ctx, "owner")
		if err != nil || !outcome.OK {
			t.Fatalf("StartGame failed: %v %+v", err, outcome)
		}

		game := outcome.Game
		if !game.Started() {
			t.Error("startTime not set")
		}
		if len(game.OpenInvites) != 0 {
			t.Errorf("openInvites not cleared: %v", game.OpenInvites)
		}

		// Best-effort registry sweep for the invitee who never answered.
		invites, _ := f.svc.ListInvites(ctx, "undecided")
		if len(invites) != 0 {
			t.Errorf("undecided invitee still holds %v", invites)
		}
	})

	t.Run("double start", func(t *testing.T) {
		f := newFixture()
		created := mustCreate(t, f, "owner", "court-1", 1)
		mustInvite(t, f, "owner", "guest")
		mustAccept(t, f, "guest", created.ID)

		if outcome, err := f.svc.StartGame(ctx, "owner"); err != nil || !outcome.OK {
			t.Fatalf("first start failed: %v %+v", err, outcome)
		}
		outcome, err := f.svc.StartGame(ctx, "owner")
		expectReason(t, outcome, err, ReasonGameAlreadyStarted)
	})
}

func TestScoreAndEnd(t *testing.T) {
	ctx := context.Background()

	startGame := func(t *testing.T, f *fixture) *models.GameRecord {
		t.Helper()
		created := mustCreate(t, f, "owner", "court-1", 1)
		mustInvite(t, f, "owner", "guest")
		mustAccept(t, f, "guest", created.ID)
		outcome, err := f.svc.StartGame(ctx, "owner")
		if err != nil || !outcome.OK {
			t.Fatalf("StartGame failed: %v %+v", err, outcome)
		}
		return outcome.Game
	}

	t.Run("score before start", func(t *testing.T) {
		f := newFixture()
		mustCreate(t, f, "owner", "court-1", 0)
		outcome, err := f.svc.ScorePoint(ctx, "owner", models.SideTeam1)
		expectReason(t, outcome, err, ReasonGameNotStarted)
	})

	t.Run("non-owner score leaves the game untouched", func(t *testing.T) {
		f := newFixture()
		startGame(t, f)

		outcome, err := f.svc.ScorePoint(ctx, "guest", models.SideTeam1)
		expectReason(t, outcome, err, ReasonNotOwner)

		current, _ := f.svc.CurrentGame(ctx, "owner", "")
		if current.Game.Team1Score != 0 {
			t.Errorf("score mutated by rejected attempt: %d", current.Game.Team1Score)
		}
	})

	t.Run("invalid side", func(t *testing.T) {
		f := newFixture()
		startGame(t, f)
		outcome, err := f.svc.ScorePoint(ctx, "owner", "team9")
		expectReason(t, outcome, err, ReasonInvalidTeamValue)
	})

	t.Run("score twice then end", func(t *testing.T) {
		f := newFixture()
		game := startGame(t, f)

		for i := 0; i < 2; i++ {
			outcome, err := f.svc.ScorePoint(ctx, "owner", models.SideTeam1)
			if err != nil || !outcome.OK {
				t.Fatalf("ScorePoint failed: %v %+v", err, outcome)
			}
		}

		outcome, err := f.svc.EndGame(ctx, "owner")
		if err != nil || !outcome.OK {
			t.Fatalf("EndGame failed: %v %+v", err, outcome)
		}

		final, ok := f.archive.finalized[game.ID]
		if !ok {
			t.Fatal("game never finalized in durable storage")
		}
		if final != [2]int{2, 0} {
			t.Errorf("final scores %v, want [2 0]", final)
		}

		for _, playerID := range []string{"owner", "guest"} {
			bound, _ := f.svc.Sessions().ActiveGame(ctx, playerID)
			if bound != "" {
				t.Errorf("%s still bound to %q after end", playerID, bound)
			}
		}

		lookup, _ := f.svc.CurrentGame(ctx, "owner", game.ID)
		if lookup.OK || lookup.Reason != ReasonGameDoesNotExist {
			t.Errorf("mirror survived end: %+v", lookup)
		}
	})

	t.Run("end by non-owner", func(t *testing.T) {
		f := newFixture()
		startGame(t, f)
		outcome, err := f.svc.EndGame(ctx, "guest")
		expectReason(t, outcome, err, ReasonNotOwner)
	})

	t.Run("lifecycle events in order", func(t *testing.T) {
		f := newFixture()
		startGame(t, f)
		f.svc.ScorePoint(ctx, "owner", models.SideTeam1)
		f.svc.EndGame(ctx, "owner")

		want := []string{
			comm.GameCreated, comm.GameStarted, comm.GameScored, comm.GameEnded,
		}
		got := f.events.types()
		if len(got) != len(want) {
			t.Fatalf("events = %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("event[%d] = %s, want %s", i, got[i], want[i])
			}
		}
	})
}

func TestConcurrentAccepts(t *testing.T) {
	ctx := context.Background()

	t.Run("racing accepts keep teams disjoint", func(t *testing.T) {
		f := newFixture()
		created := mustCreate(t, f, "owner", "court-1", 3)
		players := []string{"p1", "p2", "p3", "p4"}
		for _, p := range players {
			mustInvite(t, f, "owner", p)
		}

		var wg sync.WaitGroup
		for _, p := range players {
			wg.Add(1)
			go func(playerID string) {
				defer wg.Done()
				outcome, err := f.svc.AcceptInvite(ctx, playerID, created.ID)
				if err != nil {
					t.Errorf("AcceptInvite(%s) errored: %v", playerID, err)
					return
				}
				if !outcome.OK {
					t.Errorf("AcceptInvite(%s) rejected: %s", playerID, outcome.Reason)
				}
			}(p)
		}
		wg.Wait()

		current, _ := f.svc.CurrentGame(ctx, "owner", "")
		game := current.Game

		seen := make(map[string]int)
		for _, p := range game.Players() {
			seen[p]++
		}
		if len(seen) != len(players)+1 {
			t.Errorf("expected %d players, rosters hold %v / %v", len(players)+1, game.Team1, game.Team2)
		}
		for p, n := range seen {
			if n != 1 {
				t.Errorf("player %s rostered %d times", p, n)
			}
		}
		if len(game.OpenInvites) != 0 {
			t.Errorf("openInvites survived accepts: %v", game.OpenInvites)
		}

		for _, p := range players {
			bound, _ := f.svc.Sessions().ActiveGame(ctx, p)
			if bound != created.ID {
				t.Errorf("%s bound to %q, want %q", p, bound, created.ID)
			}
		}
	})

	t.Run("double accept by the same player succeeds once", func(t *testing.T) {
		f := newFixture()
		created := mustCreate(t, f, "owner", "court-1", 3)
		mustInvite(t, f, "owner", "guest")

		var wg sync.WaitGroup
		results := make([]bool, 2)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(slot int) {
				defer wg.Done()
				outcome, err := f.svc.AcceptInvite(ctx, "guest", created.ID)
				if err != nil {
					t.Errorf("AcceptInvite errored: %v", err)
					return
				}
				results[slot] = outcome.OK
			}(i)
		}
		wg.Wait()

		successes := 0
		for _, ok := range results {
			if ok {
				successes++
			}
		}
		if successes != 1 {
			t.Errorf("expected exactly one successful accept, got %d", successes)
		}

		current, _ := f.svc.CurrentGame(ctx, "owner", "")
		seen := 0
		for _, p := range current.Game.Players() {
			if p == "guest" {
				seen++
			}
		}
		if seen != 1 {
			t.Errorf("guest rostered %d times", seen)
		}
	})
}
