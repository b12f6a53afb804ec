package history

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"inboxai/internal/constants"
	"inboxai/internal/summarize"
)

// Digest is one persisted pipeline run for an agent.
type Digest struct {
	ID           string                    `json:"id" bson:"_id,omitempty"`
	AgentID      string                    `json:"agent_id" bson:"agent_id"`
	ScheduleID   string                    `json:"schedule_id,omitempty" bson:"schedule_id,omitempty"`
	CriteriaType string                    `json:"criteria_type" bson:"criteria_type"`
	Count        int                       `json:"count" bson:"count"`
	Records      []summarize.SummaryRecord `json:"records" bson:"records"`
	SuccessCount int                       `json:"success_count" bson:"success_count"`
	FailedCount  int                       `json:"failed_count" bson:"failed_count"`
	CreatedAt    time.Time                 `json:"created_at" bson:"created_at"`
}

// NewDigest builds a Digest from pipeline output, tallying per-record
// status.
func NewDigest(agentID, scheduleID, criteriaType string, count int, records []summarize.SummaryRecord) *Digest {
	d := &Digest{
		AgentID:      agentID,
		ScheduleID:   scheduleID,
		CriteriaType: criteriaType,
		Count:        count,
		Records:      records,
	}
	for _, rec := range records {
		if rec.Status == constants.SummaryStatusSuccess {
			d.SuccessCount += rec.EmailCount
		} else {
			d.FailedCount += rec.EmailCount
		}
	}
	return d
}

type Repository interface {
	Create(ctx context.Context, d *Digest) error
	Recent(ctx context.Context, agentID string, limit int) ([]Digest, error)
}

type mongoRepository struct {
	collection *mongo.Collection
}

func NewRepository(db *mongo.Database) Repository {
	return &mongoRepository{
		collection: db.Collection("digests"),
	}
}

func (r *mongoRepository) Create(ctx context.Context, d *Digest) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}
	if d.Records == nil {
		d.Records = []summarize.SummaryRecord{}
	}

	_, err := r.collection.InsertOne(ctx, d)
	if err != nil {
		return fmt.Errorf("failed to create digest: %w", err)
	}

	return nil
}

func (r *mongoRepository) Recent(ctx context.Context, agentID string, limit int) ([]Digest, error) {
	if limit <= 0 {
		limit = constants.DefaultHistoryLimit
	}
	if limit > constants.MaxHistoryLimit {
		limit = constants.MaxHistoryLimit
	}

	filter := bson.M{"agent_id": agentID}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list digests: %w", err)
	}
	defer cursor.Close(ctx)

	var digests []Digest
	if err := cursor.All(ctx, &digests); err != nil {
		return nil, fmt.Errorf("failed to decode digests: %w", err)
	}

	return digests, nil
}
