package migrations

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"rng/internal/constants"
)

// EnsureEntityTypeCollection creates the entity_types indexes. Documents are
// keyed by type name in _id, so no extra unique index is needed.
func EnsureEntityTypeCollection(ctx context.Context, db *mongo.Database) error {
	collection := db.Collection(constants.EntityTypesCollection)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "updated_at", Value: -1}},
			Options: options.Index().SetName("idx_entity_types_updated_at"),
		},
		{
			Keys:    bson.D{{Key: "link_templates.canonical", Value: 1}},
			Options: options.Index().SetName("idx_entity_types_canonical").SetSparse(true),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		if !strings.Contains(err.Error(), "already exists") {
			return fmt.Errorf("failed to create indexes: %w", err)
		}
	}

	return nil
}
