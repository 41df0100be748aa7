package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Runs against a live server when MONGO_TEST_URI is set.
func TestMongoContract(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { client.Disconnect(context.Background()) })

	runContract(t, func(t *testing.T) stores {
		db := client.Database("servicemarket_test_" + uuid.NewString()[:8])
		require.NoError(t, EnsureMongoIndexes(context.Background(), db))
		t.Cleanup(func() { db.Drop(context.Background()) })

		return stores{
			users:        NewMongoUserRepository(db),
			requirements: NewMongoRequirementRepository(db),
			bids:         NewMongoBidRepository(db),
			messages:     NewMongoMessageRepository(db),
			uniqueEmails: true,
		}
	})
}
