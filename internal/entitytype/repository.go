package entitytype

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rng/internal/constants"
	pkgerrors "rng/pkg/errors"
	"rng/pkg/metrics"
)

type Repository interface {
	Create(ctx context.Context, def *Definition) error
	List(ctx context.Context) ([]Definition, error)
	Get(ctx context.Context, id string) (*Definition, error)
	Update(ctx context.Context, def *Definition) error
	Delete(ctx context.Context, id string) error
}

type MongoRepository struct {
	collection *mongo.Collection
	service    string
}

func NewMongoRepository(db *mongo.Database, service string) *MongoRepository {
	return &MongoRepository{
		collection: db.Collection(constants.EntityTypesCollection),
		service:    service,
	}
}

func (r *MongoRepository) Create(ctx context.Context, def *Definition) (err error) {
	defer r.observe("create", time.Now(), &err)

	now := time.Now().UTC()
	def.CreatedAt = now
	def.UpdatedAt = now
	def.Source = SourceMongoDB

	if _, err = r.collection.InsertOne(ctx, def); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return pkgerrors.ErrConflict.WithCause(err).
				WithDetail("message", fmt.Sprintf("entity type '%s' already exists", def.ID))
		}
		return fmt.Errorf("failed to create entity type: %w", err)
	}
	return nil
}

func (r *MongoRepository) Get(ctx context.Context, id string) (def *Definition, err error) {
	defer r.observe("get", time.Now(), &err)

	var found Definition
	err = r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&found)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, pkgerrors.ErrNotFound.WithCause(err).WithDetail("id", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entity type: %w", err)
	}
	found.Source = SourceMongoDB
	return &found, nil
}

func (r *MongoRepository) List(ctx context.Context) (defs []Definition, err error) {
	defer r.observe("list", time.Now(), &err)

	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list entity types: %w", err)
	}
	defer cursor.Close(ctx)

	defs = make([]Definition, 0)
	if err = cursor.All(ctx, &defs); err != nil {
		return nil, fmt.Errorf("failed to decode entity types: %w", err)
	}
	for i := range defs {
		defs[i].Source = SourceMongoDB
	}
	return defs, nil
}

func (r *MongoRepository) Update(ctx context.Context, def *Definition) (err error) {
	defer r.observe("update", time.Now(), &err)

	def.UpdatedAt = time.Now().UTC()

	update := bson.M{"$set": bson.M{
		"label":          def.Label,
		"link_templates": def.LinkTemplates,
		"updated_at":     def.UpdatedAt,
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": def.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update entity type: %w", err)
	}
	if result.MatchedCount == 0 {
		return pkgerrors.ErrNotFound.WithDetail("id", def.ID)
	}
	return nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) (err error) {
	defer r.observe("delete", time.Now(), &err)

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete entity type: %w", err)
	}
	if result.DeletedCount == 0 {
		return pkgerrors.ErrNotFound.WithDetail("id", id)
	}
	return nil
}

func (r *MongoRepository) observe(operation string, start time.Time, err *error) {
	metrics.ObserveQuery(r.service, "mongodb", operation, start, *err)
}
