package persistence

import (
	"context"

	"social-hub/domain/model"
	"social-hub/infrastructure/logger"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ActivityRepository appends audit entries to Mongo. A nil client disables
// the feature without failing callers.
type ActivityRepository struct {
	mongoDb *mongo.Client
}

func NewActivityRepository(client *mongo.Client) *ActivityRepository {
	return &ActivityRepository{mongoDb: client}
}

func (r *ActivityRepository) collection() *mongo.Collection {
	return r.mongoDb.Database("social_hub").Collection("activity")
}

func (r *ActivityRepository) Record(ctx context.Context, entry *model.ActivityEntry) error {
	if r.mongoDb == nil {
		logger.GetLogger().Debug("MongoDB client is nil - skipping activity record")
		return nil
	}
	_, err := r.collection().InsertOne(ctx, entry)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while recording activity")
	}
	return err
}

func (r *ActivityRepository) ListRecent(ctx context.Context, workspaceID string, limit int) ([]model.ActivityEntry, error) {
	if r.mongoDb == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(int64(limit))
	cursor, err := r.collection().Find(ctx, bson.D{{Key: "workspaceId", Value: workspaceID}}, opts)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while fetching activity")
		return nil, err
	}
	defer func() {
		if err := cursor.Close(ctx); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while closing cursor")
		}
	}()
	var entries []model.ActivityEntry
	for cursor.Next(ctx) {
		var e model.ActivityEntry
		if err := cursor.Decode(&e); err != nil {
			logger.GetLogger().WithField("error", err).Error("Error while decoding")
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}
