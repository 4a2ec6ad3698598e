package repository

import (
	"context"
	"time"

	"promo-campaign/internal/model"
	apperrors "promo-campaign/pkg/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongodbCodeRepository implements CodeRepository using MongoDB
type mongodbCodeRepository struct {
	collection *mongo.Collection
}

// NewCodeRepository creates a new MongoDB-based code repository
func NewCodeRepository(db *mongo.Database) CodeRepository {
	return &mongodbCodeRepository{
		collection: db.Collection("codes"),
	}
}

// FindByCode retrieves a code row by its canonical code string
func (r *mongodbCodeRepository) FindByCode(ctx context.Context, code string) (*model.Code, error) {
	var row model.Code
	err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&row)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.ErrCodeNotFound
		}
		return nil, err
	}

	return &row, nil
}

// Claim atomically assigns a code to an identity. The filter requires
// assigned=false at write time, so of any number of concurrent claimants
// exactly one update matches; the rest see no document and lose the race.
func (r *mongodbCodeRepository) Claim(ctx context.Context, code string, identity int64, at time.Time) error {
	updateResult := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{
			"code":     code,
			"assigned": false, // precondition: still unclaimed
		},
		bson.M{"$set": bson.M{
			"assigned":    true,
			"owner":       identity,
			"assigned_at": at,
		}},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetUpsert(false),
	)

	if updateResult.Err() != nil {
		if updateResult.Err() == mongo.ErrNoDocuments {
			// Callers verify existence first, so a missing match means a
			// concurrent claimant won.
			return apperrors.ErrCodeAlreadyAssigned
		}
		return updateResult.Err()
	}

	return nil
}

// CountAssignedTo counts codes currently assigned to an identity
func (r *mongodbCodeRepository) CountAssignedTo(ctx context.Context, identity int64) (int, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{
		"assigned": true,
		"owner":    identity,
	})
	if err != nil {
		return 0, err
	}

	return int(count), nil
}

// ListAssignedTo retrieves the codes assigned to an identity
func (r *mongodbCodeRepository) ListAssignedTo(ctx context.Context, identity int64) ([]*model.Code, error) {
	cursor, err := r.collection.Find(ctx,
		bson.M{"assigned": true, "owner": identity},
		options.Find().SetSort(bson.D{{Key: "assigned_at", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var codes []*model.Code
	if err := cursor.All(ctx, &codes); err != nil {
		return nil, err
	}

	return codes, nil
}

// Provision inserts new unassigned code rows, skipping duplicates
func (r *mongodbCodeRepository) Provision(ctx context.Context, codes []string, at time.Time) (int, error) {
	inserted := 0
	for _, code := range codes {
		_, err := r.collection.InsertOne(ctx, &model.Code{
			Code:      code,
			Assigned:  false,
			CreatedAt: at,
		})
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				continue
			}
			return inserted, err
		}
		inserted++
	}

	return inserted, nil
}

// Counts returns total and assigned code counts
func (r *mongodbCodeRepository) Counts(ctx context.Context) (int64, int64, error) {
	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, 0, err
	}

	assigned, err := r.collection.CountDocuments(ctx, bson.M{"assigned": true})
	if err != nil {
		return 0, 0, err
	}

	return total, assigned, nil
}
