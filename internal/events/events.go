// Package events publishes settled sign-in calls on the message bus and
// consumes them for the audit log.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nfrund/signin/internal/pubsub"
	"github.com/nfrund/signin/internal/signin"
)

// Topics published for settled calls.
const (
	TopicLoginSucceeded    = "signin.login.succeeded"
	TopicLoginFailed       = "signin.login.failed"
	TopicRecoverySucceeded = "signin.recovery.succeeded"
	TopicRecoveryFailed    = "signin.recovery.failed"
)

// Topics lists every topic the publisher emits.
var Topics = []string{TopicLoginSucceeded, TopicLoginFailed, TopicRecoverySucceeded, TopicRecoveryFailed}

// Outcome values carried in Event.Outcome.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Event is the JSON payload of every sign-in topic.
type Event struct {
	Action    string    `json:"action"`
	Email     string    `json:"email"`
	Outcome   string    `json:"outcome"`
	Error     string    `json:"error,omitempty"`
	ElapsedMS int64     `json:"elapsed_ms"`
	At        time.Time `json:"at"`
}

// TopicFor returns the topic a settled call is published on.
func TopicFor(o signin.Outcome) string {
	switch {
	case o.Action == signin.ActionLogin && o.Err == nil:
		return TopicLoginSucceeded
	case o.Action == signin.ActionLogin:
		return TopicLoginFailed
	case o.Err == nil:
		return TopicRecoverySucceeded
	default:
		return TopicRecoveryFailed
	}
}

// NewEvent builds the payload for a settled call.
func NewEvent(o signin.Outcome, at time.Time) Event {
	e := Event{
		Action:    string(o.Action),
		Email:     o.Email,
		Outcome:   OutcomeSuccess,
		ElapsedMS: o.Elapsed.Milliseconds(),
		At:        at.UTC(),
	}
	if o.Err != nil {
		e.Outcome = OutcomeFailure
		e.Error = o.Err.Error()
	}
	return e
}

// Publisher is a signin.Observer that publishes every settled call.
type Publisher struct {
	bus    pubsub.Publisher
	logger *slog.Logger
	now    func() time.Time
}

// NewPublisher creates a Publisher on bus.
func NewPublisher(bus pubsub.Publisher, logger *slog.Logger) *Publisher {
	return &Publisher{bus: bus, logger: logger, now: time.Now}
}

// Settled implements signin.Observer. Publishing failures are logged, never returned.
func (p *Publisher) Settled(o signin.Outcome) {
	payload, err := json.Marshal(NewEvent(o, p.now()))
	if err != nil {
		p.logger.Error("Failed to encode sign-in event", "error", err)
		return
	}
	topic := TopicFor(o)
	if err := p.bus.Publish(context.Background(), pubsub.NewJSONMessage(topic, payload)); err != nil {
		p.logger.Error("Failed to publish sign-in event", "topic", topic, "error", err)
	}
}

// Audit writes every sign-in event to the logger.
type Audit struct {
	logger *slog.Logger
}

// NewAudit creates an audit consumer.
func NewAudit(logger *slog.Logger) *Audit {
	return &Audit{logger: logger.With("component", "audit")}
}

// Start subscribes to every sign-in topic until ctx is canceled.
func (a *Audit) Start(ctx context.Context, sub pubsub.Subscriber) error {
	for _, topic := range Topics {
		if err := sub.Subscribe(ctx, topic, a.Handle); err != nil {
			return fmt.Errorf("subscribe to %s: %w", topic, err)
		}
	}
	return nil
}

// Handle logs one event. Malformed payloads are logged and acknowledged.
func (a *Audit) Handle(_ context.Context, msg pubsub.Message) error {
	var e Event
	if err := json.Unmarshal(msg.Payload, &e); err != nil {
		a.logger.Warn("Dropping malformed sign-in event", "topic", msg.Topic, "error", err)
		return nil
	}

	level := slog.LevelInfo
	if e.Outcome == OutcomeFailure {
		level = slog.LevelWarn
	}
	a.logger.Log(context.Background(), level, "Sign-in event",
		"topic", msg.Topic,
		"action", e.Action,
		"email", e.Email,
		"outcome", e.Outcome,
		"error", e.Error,
		"elapsed_ms", e.ElapsedMS,
	)
	return nil
}
