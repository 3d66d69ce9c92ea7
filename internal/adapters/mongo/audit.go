package mongo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tableq/tableq/internal/domain"
	"github.com/tableq/tableq/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// AuditLogger keeps a trail of queue mutations. The queue itself hard-deletes
// removed entries, so this is the only place their history survives.
type AuditLogger struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewAuditLogger(db *mongo.Database, logger observability.Logger) *AuditLogger {
	return &AuditLogger{
		coll:   db.Collection("audit_logs"),
		logger: logger,
	}
}

type AuditLog struct {
	ID        uuid.UUID `bson:"_id"`
	Action    string    `bson:"action"`
	EntryID   int64     `bson:"entry_id"`
	OwnerID   string    `bson:"owner_id,omitempty"`
	Timestamp time.Time `bson:"timestamp"`
	Data      bson.M    `bson:"data"`
}

func (a *AuditLogger) RecordQueueEvent(ctx context.Context, action string, entry domain.QueueEntry) error {
	log := AuditLog{
		ID:        uuid.New(),
		Action:    action,
		EntryID:   entry.ID,
		OwnerID:   entry.OwnerID,
		Timestamp: time.Now(),
		Data: bson.M{
			"restaurant": entry.Restaurant,
			"name":       entry.Name,
			"party_size": entry.PartySize,
			"status":     string(entry.Status),
			"position":   entry.Position,
			"join_time":  entry.JoinTime.Format(time.RFC3339),
		},
	}
	_, err := a.coll.InsertOne(ctx, log)
	if err != nil {
		a.logger.Error("failed to insert audit log", err)
		return err
	}
	return nil
}
