package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"
)

// NATSSink publishes events to a NATS subject per event type
// ("notifications.<type>").
type NATSSink struct {
	conn *nats.Conn
}

func NewNATSSink(url string) (*NATSSink, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	return &NATSSink{conn: conn}, nil
}

func (s *NATSSink) Emit(_ context.Context, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("notification marshal failed", "event", event.Type, "error", err)
		return
	}
	if err := s.conn.Publish("notifications."+event.Type, data); err != nil {
		slog.Error("notification publish failed", "event", event.Type, "entity_id", event.EntityID, "error", err)
	}
}

func (s *NATSSink) Close() {
	s.conn.Close()
}
