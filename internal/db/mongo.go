package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound               = errors.New("not found")
	ErrInvalidID              = errors.New("invalid id")
	ErrDuplicateEmail         = errors.New("email already exists")
	ErrDuplicateVehicleNumber = errors.New("vehicle number already exists")
)

// Store owns the MongoDB connection and exposes one collection handle per
// entity. It is created at startup, injected into components, and closed
// at shutdown.
type Store struct {
	client *mongo.Client
	db     *mongo.Database

	Users     UserCollection
	Vehicles  VehicleCollection
	Incidents IncidentCollection
}

// Connect connects to MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo.Connect error: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		return nil, fmt.Errorf("mongo.Ping error: %w", err)
	}

	database := client.Database(dbName)
	return NewStore(client, database), nil
}

// NewStore wires collection handles over an existing client and database.
func NewStore(client *mongo.Client, database *mongo.Database) *Store {
	return &Store{
		client:    client,
		db:        database,
		Users:     &MongoUserCollection{Collection: database.Collection("users")},
		Vehicles:  &MongoVehicleCollection{Collection: database.Collection("vehicles")},
		Incidents: &MongoIncidentCollection{Collection: database.Collection("incidents")},
	}
}

// EnsureIndexes creates the unique indexes the data model relies on:
// user email and vehicle number uniqueness are enforced at the storage layer.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection("users").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create user email index: %w", err)
	}

	_, err = s.db.Collection("vehicles").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "vehicle_number", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create vehicle number index: %w", err)
	}

	_, err = s.db.Collection("incidents").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "driver_id", Value: 1}, {Key: "timestamp", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create incident driver index: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
