// Package analytics exports per-turn events to an external stream for
// offline conversation analytics, off the request's critical path.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/vaak-ai/voxengine/internal/engine"
)

// Writer narrows *kafka.Writer to the two methods KafkaExporter calls, so
// tests can substitute a fake producer.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// TurnEvent is the exported wire shape of one engine.Event, tagged with
// the session it belongs to and an export timestamp.
type TurnEvent struct {
	SessionID string    `json:"session_id"`
	Kind      string    `json:"kind"`
	Intent    string    `json:"intent,omitempty"`
	ToolName  string    `json:"tool_name,omitempty"`
	Success   bool      `json:"success,omitempty"`
	Text      string    `json:"text,omitempty"`
	ExportsAt time.Time `json:"exported_at"`
}

// KafkaExporter publishes turn events keyed by session id, so a consumer
// partitioned on key sees one session's events in order.
type KafkaExporter struct {
	writer Writer
}

// NewKafkaExporter builds an exporter writing to topic on brokers.
func NewKafkaExporter(brokers []string, topic string) *KafkaExporter {
	w := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
	return &KafkaExporter{writer: w}
}

// Close flushes and releases the underlying producer connection.
func (e *KafkaExporter) Close() error {
	return e.writer.Close()
}

// Export publishes ev for sessionID. Errors are the caller's to log;
// Export never blocks a turn's reply since callers invoke it off the
// critical path (see ws.Handler.runTurn).
func (e *KafkaExporter) Export(ctx context.Context, sessionID string, ev engine.Event) error {
	payload, err := json.Marshal(TurnEvent{
		SessionID: sessionID,
		Kind:      string(ev.Kind),
		Intent:    ev.Intent,
		ToolName:  ev.ToolName,
		Success:   ev.Success,
		Text:      ev.Text,
		ExportsAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("analytics: marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(sessionID),
		Value: payload,
	}
	if err := e.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("analytics: write event: %w", err)
	}
	return nil
}

// ParseBrokers splits a comma-separated VOXENGINE_KAFKA_BROKERS value
// into a trimmed broker list.
func ParseBrokers(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
