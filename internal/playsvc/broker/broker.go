package broker

import (
	"encoding/json"
	"time"

	"github.com/courtside/hoop-services/internal/comm"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"
)

const (
	gameTopicPrefix = "play.game."
	heartbeatTopic  = "service.heartbeat"
	shutdownTopic   = "service.shutdown"
)

// Broker publishes play-service events to NATS. The external limit scheduler
// subscribes to play.game.* to enforce score and time limits; the control
// plane watches the service.* topics.
type Broker struct {
	Conn *nats.Conn
}

func NewBroker(nc *nats.Conn) *Broker {
	return &Broker{Conn: nc}
}

// PublishGameEvent emits one lifecycle event. Failures are logged and
// swallowed; event delivery never fails a play operation.
func (b *Broker) PublishGameEvent(event comm.GameEvent) {
	bytes, err := json.Marshal(event)
	if err != nil {
		log.Errorf("Failed to marshal game event: %v", err)
		return
	}

	topic := gameTopicPrefix + event.Type
	if err := b.Conn.Publish(topic, bytes); err != nil {
		log.Errorf("Failed to publish to NATS topic %s: %v", topic, err)
	}
}

func (b *Broker) PublishHeartbeat(instanceID string) {
	hb := comm.ServiceHeartbeat{
		ID:        instanceID,
		Timestamp: time.Now().UTC(),
	}

	bytes, err := json.Marshal(hb)
	if err != nil {
		log.Errorf("Failed to marshal heartbeat: %v", err)
		return
	}

	if err := b.Conn.Publish(heartbeatTopic, bytes); err != nil {
		log.Errorf("Failed to publish heartbeat: %v", err)
	}
}

func (b *Broker) PublishShutdown(instanceID string) {
	msg := comm.ServiceShutdown{ID: instanceID}

	bytes, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Failed to marshal shutdown message: %v", err)
		return
	}

	if err := b.Conn.Publish(shutdownTopic, bytes); err != nil {
		log.Errorf("Failed to publish shutdown message: %v", err)
	}
}
