package repository

import (
	"context"

	"promo-campaign/internal/model"
	apperrors "promo-campaign/pkg/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// mongodbParticipantRepository implements ParticipantRepository using MongoDB
type mongodbParticipantRepository struct {
	collection *mongo.Collection
}

// NewParticipantRepository creates a new MongoDB-based participant repository
func NewParticipantRepository(db *mongo.Database) ParticipantRepository {
	return &mongodbParticipantRepository{
		collection: db.Collection("participants"),
	}
}

// Create inserts a completed registration. The unique index on phone makes
// the duplicate check race-free even across engine instances.
func (r *mongodbParticipantRepository) Create(ctx context.Context, participant *model.Participant) error {
	_, err := r.collection.InsertOne(ctx, participant)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.ErrPhoneAlreadyRegistered
		}
		return err
	}

	return nil
}

// FindByIdentity retrieves a participant by their stable identity
func (r *mongodbParticipantRepository) FindByIdentity(ctx context.Context, identity int64) (*model.Participant, error) {
	var participant model.Participant
	err := r.collection.FindOne(ctx, bson.M{"identity": identity}).Decode(&participant)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.ErrNotRegistered
		}
		return nil, err
	}

	return &participant, nil
}

// PhoneExists reports whether any participant already holds this phone
func (r *mongodbParticipantRepository) PhoneExists(ctx context.Context, phone string) (bool, error) {
	err := r.collection.FindOne(ctx, bson.M{"phone": phone}).Err()
	if err == nil {
		return true, nil
	}
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return false, err
}

// UpdateChances records a recomputed redeemed count and chance tier
func (r *mongodbParticipantRepository) UpdateChances(ctx context.Context, identity int64, redeemedCount, chances int) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"identity": identity},
		bson.M{"$set": bson.M{
			"redeemed_count": redeemedCount,
			"chances":        chances,
		}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrNotRegistered
	}

	return nil
}

// ListIdentities returns every known participant identity
func (r *mongodbParticipantRepository) ListIdentities(ctx context.Context) ([]int64, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var identities []int64
	for cursor.Next(ctx) {
		var participant model.Participant
		if err := cursor.Decode(&participant); err != nil {
			return nil, err
		}
		identities = append(identities, participant.Identity)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return identities, nil
}

// Count returns the number of registered participants
func (r *mongodbParticipantRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}
