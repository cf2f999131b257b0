package application

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/messagely/internal/domain/entity"
)

// AuditSink receives audit events. *helpers.AMQPQueue implements it.
type AuditSink interface {
	PublishJSON(ctx context.Context, body any) error
}

const auditTimeout = 2 * time.Second

// audit publishes an event without failing the calling operation.
func (g *Gateway) audit(ctx context.Context, typ, username string, metadata map[string]string) {
	if g.Audit == nil {
		return
	}
	ev := entity.AuditEvent{
		ID:         uuid.NewString(),
		Type:       typ,
		Username:   username,
		OccurredAt: time.Now().UTC(),
		Metadata:   metadata,
	}
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()
	if err := g.Audit.PublishJSON(c, ev); err != nil {
		g.Logger.WithError(err).WithField("type", typ).Warn("audit publish failed")
	}
}
