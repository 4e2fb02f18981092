// Package mongo provides the MongoDB implementation of the history repository,
// the read-optimized store the history projector writes completed transfers to.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/corebank/transfer-pipeline/internal/domain/history"
)

const (
	// HistoryCollectionName is the name of the history collection in MongoDB
	HistoryCollectionName = "history_entries"
)

// HistoryRepository implements the history.Repository interface for MongoDB
type HistoryRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewHistoryRepository creates a new MongoDB history repository and ensures
// the unique transaction_id index exists. The index is what makes redelivered
// events safe: a second insert for the same transaction fails instead of
// duplicating the entry.
func NewHistoryRepository(ctx context.Context, logger *slog.Logger, db *mongo.Database) (history.Repository, error) {
	collection := db.Collection(HistoryCollectionName)

	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "transaction_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
		return nil, fmt.Errorf("failed to create transaction_id index: %w", err)
	}

	return &HistoryRepository{
		db:     db,
		logger: logger,
	}, nil
}

// Create stores a new history entry.
// Returns ErrDuplicateEntry if an entry with the same transaction ID exists.
func (r *HistoryRepository) Create(ctx context.Context, entry *history.Entry) error {
	collection := r.db.Collection(HistoryCollectionName)

	_, err := collection.InsertOne(ctx, entry)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return history.ErrDuplicateEntry{TransactionID: entry.TransactionID}
		}
		r.logger.Error("Failed to create history entry",
			"transaction_id", entry.TransactionID.String(),
			"error", err)
		return fmt.Errorf("failed to create history entry: %w", err)
	}

	return nil
}

// ExistsByTransactionID reports whether an entry already exists for the
// transaction. Used by the projector to skip redelivered events cheaply.
func (r *HistoryRepository) ExistsByTransactionID(ctx context.Context, transactionID uuid.UUID) (bool, error) {
	collection := r.db.Collection(HistoryCollectionName)

	filter := bson.M{"transaction_id": transactionID}
	count, err := collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		r.logger.Error("Failed to check for existing history entry",
			"transaction_id", transactionID.String(),
			"error", err)
		return false, fmt.Errorf("failed to check for existing history entry: %w", err)
	}

	return count > 0, nil
}

// GetByTransactionID retrieves a history entry by its transaction ID.
// Returns ErrEntryNotFound if no entry exists for the given transaction.
func (r *HistoryRepository) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*history.Entry, error) {
	collection := r.db.Collection(HistoryCollectionName)

	filter := bson.M{"transaction_id": transactionID}
	var entry history.Entry
	err := collection.FindOne(ctx, filter).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, history.ErrEntryNotFound{TransactionID: transactionID}
		}
		r.logger.Error("Failed to get history entry",
			"transaction_id", transactionID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get history entry: %w", err)
	}

	return &entry, nil
}
