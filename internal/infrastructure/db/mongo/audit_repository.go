package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sandia/users-manager/internal/core/ports"
)

const auditCollection = "audit_log"

// AuditRepository persists account-operation audit entries. Audit writes
// are best effort; callers decide whether a failure is fatal.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

type auditRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	ProfileID string             `bson:"profile_id"`
	Username  string             `bson:"username,omitempty"`
	Action    string             `bson:"action"`
	Timestamp time.Time          `bson:"timestamp"`
}

func (r *AuditRepository) Record(ctx context.Context, entry ports.AuditEntry) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, auditRecord{
		ProfileID: entry.ProfileID,
		Username:  entry.Username,
		Action:    entry.Action,
		Timestamp: entry.Timestamp,
	})
	return err
}
