package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/aiforce/intelliops-console/internal/core/domain"
	"github.com/aiforce/intelliops-console/internal/core/ports"
)

const traceCollection = "chat_traces"

// TraceRepository implements ports.TraceRepository using MongoDB.
type TraceRepository struct {
	db *mongo.Database
}

// NewTraceRepository creates a new TraceRepository.
func NewTraceRepository(db *mongo.Database) ports.TraceRepository {
	return &TraceRepository{db: db}
}

// Insert persists one turn trace to the chat_traces audit collection.
func (r *TraceRepository) Insert(ctx context.Context, t ports.Trace) error {
	doc := bson.M{
		"profile_id":  t.ProfileID,
		"session_id":  t.SessionID,
		"provider":    string(t.Provider),
		"request":     t.Request,
		"response":    t.Response,
		"status":      string(t.Status),
		"duration_ms": t.Duration.Milliseconds(),
		"timestamp":   t.Timestamp.UTC(),
		"recorded_at": time.Now().UTC(),
	}

	_, err := r.db.Collection(traceCollection).InsertOne(ctx, doc)
	return err
}

// ListRecent returns the newest traces for a profile, newest first.
func (r *TraceRepository) ListRecent(ctx context.Context, profileID string, limit int64) ([]ports.Trace, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.db.Collection(traceCollection).Find(ctx, bson.M{"profile_id": profileID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []struct {
		ProfileID  string    `bson:"profile_id"`
		SessionID  string    `bson:"session_id"`
		Provider   string    `bson:"provider"`
		Request    string    `bson:"request"`
		Response   string    `bson:"response"`
		Status     string    `bson:"status"`
		DurationMS int64     `bson:"duration_ms"`
		Timestamp  time.Time `bson:"timestamp"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	traces := make([]ports.Trace, 0, len(docs))
	for _, d := range docs {
		traces = append(traces, ports.Trace{
			ProfileID: d.ProfileID,
			SessionID: d.SessionID,
			Provider:  domain.CloudProvider(d.Provider),
			Request:   d.Request,
			Response:  d.Response,
			Status:    domain.MessageStatus(d.Status),
			Duration:  time.Duration(d.DurationMS) * time.Millisecond,
			Timestamp: d.Timestamp,
		})
	}
	return traces, nil
}
