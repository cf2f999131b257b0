// Package worker processes audit events published by the API.
package worker

import (
	"encoding/json"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/messagely/internal/domain/entity"
)

var ErrMalformedEvent = errors.New("malformed audit event")

type AuditHandler struct {
	Logger logrus.FieldLogger
}

// Handle decodes one event and writes it as a structured log entry.
func (h *AuditHandler) Handle(body []byte) error {
	var ev entity.AuditEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if ev.ID == "" || ev.Type == "" {
		return fmt.Errorf("%w: missing id or type", ErrMalformedEvent)
	}
	fields := logrus.Fields{
		"event_id":    ev.ID,
		"event_type":  ev.Type,
		"username":    ev.Username,
		"occurred_at": ev.OccurredAt,
	}
	for k, v := range ev.Metadata {
		fields["meta_"+k] = v
	}
	entry := h.Logger.WithFields(fields)
	if ev.Type == entity.AuditDenied || ev.Type == entity.AuditLoginFailed {
		entry.Warn("audit")
	} else {
		entry.Info("audit")
	}
	return nil
}

// Acknowledger is the part of amqp.Delivery the consume loop needs.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// Process handles one delivery. Malformed events are dropped without
// requeue so they cannot loop forever.
func (h *AuditHandler) Process(body []byte, ack Acknowledger) {
	if err := h.Handle(body); err != nil {
		h.Logger.WithError(err).Warn("dropping audit message")
		_ = ack.Nack(false, false)
		return
	}
	_ = ack.Ack(false)
}

// Run consumes deliveries until the channel closes.
func (h *AuditHandler) Run(deliveries <-chan amqp.Delivery) {
	for d := range deliveries {
		h.Process(d.Body, &d)
	}
}
