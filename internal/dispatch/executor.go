package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/nerrad567/gray-logic-assistant/internal/assistant"
	"github.com/nerrad567/gray-logic-assistant/internal/infrastructure/mqtt"
)

// ErrInvalidInvocation is returned for invocations missing a service name.
var ErrInvalidInvocation = errors.New("dispatch: invocation has no service")

// Publisher is the subset of the MQTT client used by the executor.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// AuditWriter records dispatched commands for the audit trail.
// Implemented by influxdb.Client.
type AuditWriter interface {
	WriteCommandAudit(entityID string, service string)
}

// Logger is the subset of logging.Logger used by the executor.
type Logger interface {
	Debug(msg string, args ...any)
	Error(msg string, args ...any)
}

// Executor publishes service invocations to the bus.
//
// Thread Safety:
//   - Execute is safe for concurrent use; all fields are set at construction.
type Executor struct {
	publisher Publisher
	audit     AuditWriter
	logger    Logger
	topics    mqtt.Topics
	qos       byte
}

// Option configures an Executor.
type Option func(*Executor)

// WithAudit attaches an audit writer. Each dispatched command is recorded.
func WithAudit(w AuditWriter) Option {
	return func(e *Executor) { e.audit = w }
}

// WithLogger attaches a logger for dispatch tracing.
func WithLogger(l Logger) Option {
	return func(e *Executor) { e.logger = l }
}

// NewExecutor creates an Executor publishing at the given QoS.
func NewExecutor(publisher Publisher, qos byte, opts ...Option) *Executor {
	e := &Executor{
		publisher: publisher,
		qos:       qos,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute publishes an invocation to its service topic.
//
// The invocation data is marshalled to JSON as-is; nil-valued parameters
// are preserved as JSON null so bridges can tell "omitted" from "zero".
// Commands are not retained: a bridge that was offline should not replay
// stale commands on reconnect.
func (e *Executor) Execute(ctx context.Context, inv assistant.Invocation) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("dispatch: %w", err)
	}
	if inv.Service == "" {
		return ErrInvalidInvocation
	}

	payload, err := json.Marshal(inv.Data)
	if err != nil {
		return fmt.Errorf("dispatch: marshalling %s payload: %w", inv.Service, err)
	}

	topic := e.topics.ServiceCall(inv.Service)
	if err := e.publisher.Publish(topic, payload, e.qos, false); err != nil {
		if e.logger != nil {
			e.logger.Error("command dispatch failed",
				"service", inv.Service,
				"entity_id", inv.EntityID(),
				"error", err,
			)
		}
		return fmt.Errorf("dispatch: publishing %s: %w", inv.Service, err)
	}

	if e.logger != nil {
		e.logger.Debug("command dispatched",
			"service", inv.Service,
			"entity_id", inv.EntityID(),
		)
	}

	if e.audit != nil {
		e.audit.WriteCommandAudit(inv.EntityID(), inv.Service)
	}

	return nil
}
