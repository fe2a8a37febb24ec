package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/lampoon-ads/backend/internal/events"
	"github.com/lampoon-ads/backend/internal/models"
	"github.com/lampoon-ads/backend/internal/notify"
	"github.com/lampoon-ads/backend/internal/rbac"
	"github.com/lampoon-ads/backend/internal/workflow"
	"go.uber.org/zap"
)

// Lifecycle bundles the side effects of a saved entity: the audit row,
// the feed event and the workflow's notifications.
type Lifecycle struct {
	audit      AuditStore
	publisher  events.Publisher
	dispatcher notify.Dispatcher
	log        *zap.Logger
}

func NewLifecycle(audit AuditStore, publisher events.Publisher, dispatcher notify.Dispatcher, log *zap.Logger) *Lifecycle {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Lifecycle{audit: audit, publisher: publisher, dispatcher: dispatcher, log: log}
}

func actorType(actor rbac.Actor) string {
	switch {
	case actor.UserID == uuid.Nil:
		return "system"
	case actor.CanAdmin():
		return "staff"
	}
	return "user"
}

// record writes an audit row. Inside InTx it joins the transaction.
func (l *Lifecycle) record(ctx context.Context, actor rbac.Actor, action, entityType string, entityID *uuid.UUID, meta map[string]any) {
	entry := models.AuditLog{
		ActorType:  actorType(actor),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
	}
	if actor.UserID != uuid.Nil {
		id := actor.UserID
		entry.ActorUserID = &id
	}
	if meta != nil {
		entry.Meta = meta
	}
	if err := l.audit.Log(ctx, entry); err != nil {
		l.log.Warn("failed to write audit log", zap.String("action", action), zap.Error(err))
	}
}

// entity records a "<type>_<verb>" action against one entity.
func (l *Lifecycle) entity(ctx context.Context, actor rbac.Actor, entityType, verb string, id *uuid.UUID, meta map[string]any) {
	l.record(ctx, actor, models.EntityAction(entityType, verb), entityType, id, meta)
}

// history lists audit entries for one entity, newest first.
func (l *Lifecycle) history(ctx context.Context, entityType string, id uuid.UUID) ([]models.AuditLog, error) {
	return l.audit.ForEntity(ctx, entityType, id, 20)
}

func (l *Lifecycle) publish(ctx context.Context, eventType string, payload map[string]any) {
	_ = l.publisher.Publish(ctx, events.StreamContracts, events.Event{Type: eventType, Payload: payload})
}

// dispatch runs after commit. A failed send is logged; the save stands.
func (l *Lifecycle) dispatch(ctx context.Context, ns []workflow.Notification) {
	if len(ns) == 0 {
		return
	}
	if err := l.dispatcher.Dispatch(ctx, ns); err != nil {
		l.log.Error("notification dispatch failed", zap.Int("count", len(ns)), zap.Error(err))
	}
}
