package db

import (
	"context"
	"errors"
	"time"

	"github.com/fleetops/driver-safety/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// IncidentCollection defines the interface for incident ledger operations.
// There is deliberately no delete: incidents are never removed, only resolved.
type IncidentCollection interface {
	InsertIncident(ctx context.Context, incident models.Incident) (*models.Incident, error)
	FindIncidents(ctx context.Context, filter bson.M) ([]models.Incident, error)
	FindIncidentByID(ctx context.Context, id string) (*models.Incident, error)
	ResolveIncident(ctx context.Context, id string, resolvedBy primitive.ObjectID, resolution models.Resolution) (*models.Incident, error)
	CountIncidents(ctx context.Context, filter bson.M) (int64, error)
	CountByType(ctx context.Context) ([]models.TypeCount, error)
	CountBySeverity(ctx context.Context) ([]models.SeverityCount, error)
	MonthlyTrend(ctx context.Context, since time.Time) ([]models.MonthlyCount, error)
}

// MongoIncidentCollection implements IncidentCollection for MongoDB
type MongoIncidentCollection struct {
	Collection *mongo.Collection
}

// InsertIncident inserts an incident record into the ledger.
func (c *MongoIncidentCollection) InsertIncident(ctx context.Context, incident models.Incident) (*models.Incident, error) {
	if incident.ID.IsZero() {
		incident.ID = primitive.NewObjectID()
	}
	now := time.Now()
	if incident.Timestamp.IsZero() {
		incident.Timestamp = now
	}
	incident.CreatedAt = now
	incident.UpdatedAt = now
	incident.Resolved = false
	incident.ResolvedBy = nil
	incident.ResolvedAt = nil
	incident.Resolution = nil

	if _, err := c.Collection.InsertOne(ctx, incident); err != nil {
		return nil, err
	}
	return &incident, nil
}

// FindIncidents queries incidents matching the filter, newest first.
func (c *MongoIncidentCollection) FindIncidents(ctx context.Context, filter bson.M) ([]models.Incident, error) {
	if filter == nil {
		filter = bson.M{}
	}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cursor, err := c.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	incidents := []models.Incident{}
	if err := cursor.All(ctx, &incidents); err != nil {
		return nil, err
	}
	return incidents, nil
}

// FindIncidentByID finds an incident by its ID.
func (c *MongoIncidentCollection) FindIncidentByID(ctx context.Context, id string) (*models.Incident, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	var incident models.Incident
	err = c.Collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&incident)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &incident, nil
}

// ResolveIncident marks an incident resolved, recording resolver, time and
// resolution in one atomic update. Re-resolving overwrites those fields;
// concurrent calls race with last-writer-wins semantics.
func (c *MongoIncidentCollection) ResolveIncident(ctx context.Context, id string, resolvedBy primitive.ObjectID, resolution models.Resolution) (*models.Incident, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	now := time.Now()
	update := bson.M{"$set": bson.M{
		"resolved":    true,
		"resolved_by": resolvedBy,
		"resolved_at": now,
		"resolution":  resolution,
		"updated_at":  now,
	}}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var incident models.Incident
	err = c.Collection.FindOneAndUpdate(ctx, bson.M{"_id": objectID}, update, opts).Decode(&incident)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &incident, nil
}

// CountIncidents counts incidents matching the filter.
func (c *MongoIncidentCollection) CountIncidents(ctx context.Context, filter bson.M) (int64, error) {
	if filter == nil {
		filter = bson.M{}
	}
	return c.Collection.CountDocuments(ctx, filter)
}

// CountByType groups incident counts by type, most frequent first.
func (c *MongoIncidentCollection) CountByType(ctx context.Context) ([]models.TypeCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$type",
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
	}

	cursor, err := c.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	results := []models.TypeCount{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// CountBySeverity groups incident counts by severity, ascending by label.
func (c *MongoIncidentCollection) CountBySeverity(ctx context.Context) ([]models.SeverityCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id":   "$severity",
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cursor, err := c.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	results := []models.SeverityCount{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// MonthlyTrend groups incident counts by calendar month since the given
// time, ascending chronologically.
func (c *MongoIncidentCollection) MonthlyTrend(ctx context.Context, since time.Time) ([]models.MonthlyCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"timestamp": bson.M{"$gte": since},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id": bson.M{
				"year":  bson.M{"$year": "$timestamp"},
				"month": bson.M{"$month": "$timestamp"},
			},
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "_id.year", Value: 1},
			{Key: "_id.month", Value: 1},
		}}},
		{{Key: "$project", Value: bson.M{
			"_id":   0,
			"year":  "$_id.year",
			"month": "$_id.month",
			"count": 1,
		}}},
	}

	cursor, err := c.Collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	results := []models.MonthlyCount{}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	return results, nil
}
