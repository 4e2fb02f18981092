package mongo

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/bsontype"

	"github.com/corebank/transfer-pipeline/internal/domain/history"
	"github.com/corebank/transfer-pipeline/internal/domain/shared"
	"github.com/corebank/transfer-pipeline/internal/platform/persistence"
)

type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Create(ctx context.Context, entry *history.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockHistoryRepository) ExistsByTransactionID(ctx context.Context, transactionID uuid.UUID) (bool, error) {
	args := m.Called(ctx, transactionID)
	return args.Bool(0), args.Error(1)
}

func (m *MockHistoryRepository) GetByTransactionID(ctx context.Context, transactionID uuid.UUID) (*history.Entry, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*history.Entry), args.Error(1)
}

func testEntry() *history.Entry {
	return history.FromEvent(&shared.TransactionCompletedEvent{
		TransactionID:     uuid.New(),
		FromUserID:        1,
		ToUserID:          2,
		FromAccountNumber: "ACC-001",
		ToAccountNumber:   "ACC-002",
		Amount:            decimal.RequireFromString("500.25"),
		Message:           "rent",
		Status:            shared.TransferStatusSuccess,
		Type:              shared.TransactionTypeTransfer,
		TransactionTime:   time.Now().UTC().Truncate(time.Millisecond),
	})
}

// Entries must survive the trip through bson with the client registry: the
// default struct codec writes shopspring decimals as empty documents, so the
// amount would silently become zero in the history store.
func TestHistoryEntry_BsonRoundTrip(t *testing.T) {
	entry := testEntry()
	registry := persistence.MongoRegistry()

	buf := new(bytes.Buffer)
	vw, err := bsonrw.NewBSONValueWriter(buf)
	require.NoError(t, err)
	enc, err := bson.NewEncoder(vw)
	require.NoError(t, err)
	require.NoError(t, enc.SetRegistry(registry))
	require.NoError(t, enc.Encode(entry))

	// The amount is stored as a Decimal128 value, not a document
	raw := bson.Raw(buf.Bytes())
	amountValue := raw.Lookup("amount")
	assert.Equal(t, bsontype.Decimal128, amountValue.Type)

	dec, err := bson.NewDecoder(bsonrw.NewBSONDocumentReader(buf.Bytes()))
	require.NoError(t, err)
	require.NoError(t, dec.SetRegistry(registry))

	var decoded history.Entry
	require.NoError(t, dec.Decode(&decoded))

	assert.Equal(t, entry.TransactionID, decoded.TransactionID)
	assert.Equal(t, entry.FromUserID, decoded.FromUserID)
	assert.Equal(t, entry.ToUserID, decoded.ToUserID)
	assert.Equal(t, entry.FromAccountNumber, decoded.FromAccountNumber)
	assert.Equal(t, entry.ToAccountNumber, decoded.ToAccountNumber)
	assert.True(t, decoded.Amount.Equal(entry.Amount), "amount %s should survive the bson round-trip, got %s", entry.Amount, decoded.Amount)
	assert.Equal(t, entry.Type, decoded.Type)
	assert.Equal(t, entry.Status, decoded.Status)
	assert.Equal(t, entry.Message, decoded.Message)
}

func TestHistoryRepository_Create(t *testing.T) {
	entry := testEntry()

	tests := []struct {
		name          string
		setupMocks    func(repo *MockHistoryRepository)
		expectedError error
	}{
		{
			name: "successful creation",
			setupMocks: func(repo *MockHistoryRepository) {
				repo.On("Create", mock.Anything, entry).Return(nil)
			},
			expectedError: nil,
		},
		{
			name: "duplicate entry",
			setupMocks: func(repo *MockHistoryRepository) {
				repo.On("Create", mock.Anything, entry).Return(history.ErrDuplicateEntry{TransactionID: entry.TransactionID})
			},
			expectedError: history.ErrDuplicateEntry{TransactionID: entry.TransactionID},
		},
		{
			name: "database error",
			setupMocks: func(repo *MockHistoryRepository) {
				repo.On("Create", mock.Anything, entry).Return(errors.New("db error"))
			},
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockHistoryRepository{}
			tt.setupMocks(repo)

			err := repo.Create(context.Background(), entry)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError.Error())
			} else {
				assert.NoError(t, err)
			}

			repo.AssertExpectations(t)
		})
	}
}

func TestHistoryRepository_GetByTransactionID(t *testing.T) {
	entry := testEntry()

	tests := []struct {
		name          string
		setupMocks    func(repo *MockHistoryRepository)
		expectedEntry *history.Entry
		expectedError error
	}{
		{
			name: "entry found",
			setupMocks: func(repo *MockHistoryRepository) {
				repo.On("GetByTransactionID", mock.Anything, entry.TransactionID).Return(entry, nil)
			},
			expectedEntry: entry,
			expectedError: nil,
		},
		{
			name: "entry not found",
			setupMocks: func(repo *MockHistoryRepository) {
				repo.On("GetByTransactionID", mock.Anything, entry.TransactionID).
					Return(nil, history.ErrEntryNotFound{TransactionID: entry.TransactionID})
			},
			expectedEntry: nil,
			expectedError: history.ErrEntryNotFound{TransactionID: entry.TransactionID},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockHistoryRepository{}
			tt.setupMocks(repo)

			result, err := repo.GetByTransactionID(context.Background(), entry.TransactionID)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError.Error())
				assert.Nil(t, result)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedEntry, result)
			}

			repo.AssertExpectations(t)
		})
	}
}
