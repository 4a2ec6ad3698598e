package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDB wraps the MongoDB client and database
type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// Connect establishes a connection to MongoDB
func Connect(ctx context.Context, uri, dbName string) (*MongoDB, error) {
	clientOptions := options.Client().ApplyURI(uri)

	// Set connection timeout
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(dbName)

	mongoDB := &MongoDB{
		Client:   client,
		Database: db,
	}

	// Create indexes
	if err := mongoDB.CreateIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return mongoDB, nil
}

// CreateIndexes creates all necessary indexes for the application
func (m *MongoDB) CreateIndexes(ctx context.Context) error {
	// Unique index on participants.phone: one registration per phone,
	// enforced at the store so the check is race-free
	participantsCollection := m.Database.Collection("participants")
	phoneIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "phone", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("participant_phone_unique"),
	}
	if _, err := participantsCollection.Indexes().CreateOne(ctx, phoneIndex); err != nil {
		return fmt.Errorf("failed to create participant phone index: %w", err)
	}

	// Unique index on participants.identity for lookups by identity
	identityIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "identity", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("participant_identity_unique"),
	}
	if _, err := participantsCollection.Indexes().CreateOne(ctx, identityIndex); err != nil {
		return fmt.Errorf("failed to create participant identity index: %w", err)
	}

	// Unique index on codes.code: one row per pre-provisioned code string
	codesCollection := m.Database.Collection("codes")
	codeIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("code_string_unique"),
	}
	if _, err := codesCollection.Indexes().CreateOne(ctx, codeIndex); err != nil {
		return fmt.Errorf("failed to create code string index: %w", err)
	}

	// Index on (assigned, owner) backing the per-participant count query
	ownerIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "assigned", Value: 1},
			{Key: "owner", Value: 1},
		},
		Options: options.Index().SetName("code_owner_index"),
	}
	if _, err := codesCollection.Indexes().CreateOne(ctx, ownerIndex); err != nil {
		return fmt.Errorf("failed to create code owner index: %w", err)
	}

	return nil
}

// Disconnect closes the MongoDB connection
func (m *MongoDB) Disconnect(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}
