package store

// Key layout of the volatile store. Lease keys live in their own namespace
// so a lease never collides with the data it guards.

func PlayerKey(playerID string) string { return "player:" + playerID }

func InviteKey(playerID string) string { return "invite:" + playerID }

func GameKey(gameID string) string { return "game:" + gameID }

func GameLeaseKey(gameID string) string { return "lease:game:" + gameID }

func SessionLeaseKey(playerID string) string { return "lease:player:" + playerID }

func InviteLeaseKey(playerID string) string { return "lease:invite:" + playerID }
