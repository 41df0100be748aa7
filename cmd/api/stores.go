package main

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"google.golang.org/api/iterator"

	"servicemarket/internal/adapter/repository"
	domainrepo "servicemarket/internal/domain/repository"
	"servicemarket/internal/infrastructure/firebase"
	"servicemarket/pkg/config"
	"servicemarket/pkg/logger"
)

type stores struct {
	requirements domainrepo.RequirementRepository
	bids         domainrepo.BidRepository
	messages     domainrepo.MessageRepository
	users        domainrepo.UserRepository

	ping  func(ctx context.Context) error
	close func()
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	switch cfg.StoreDriver {
	case config.StoreFirestore:
		client, err := firestore.NewClient(ctx, cfg.FirebaseProject, firebase.ClientOptions(cfg)...)
		if err != nil {
			return nil, fmt.Errorf("failed to create Firestore client: %w", err)
		}
		return &stores{
			requirements: repository.NewFirestoreRequirementRepository(client),
			bids:         repository.NewFirestoreBidRepository(client),
			messages:     repository.NewFirestoreMessageRepository(client),
			users:        repository.NewFirestoreUserRepository(client),
			ping: func(ctx context.Context) error {
				_, err := client.Collection("requirements").Limit(1).Documents(ctx).Next()
				if err == iterator.Done {
					return nil
				}
				return err
			},
			close: func() { client.Close() },
		}, nil

	case config.StoreMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
		}
		db := client.Database(cfg.MongoDatabase)
		if err := repository.EnsureMongoIndexes(ctx, db); err != nil {
			return nil, err
		}
		return &stores{
			requirements: repository.NewMongoRequirementRepository(db),
			bids:         repository.NewMongoBidRepository(db),
			messages:     repository.NewMongoMessageRepository(db),
			users:        repository.NewMongoUserRepository(db),
			ping: func(ctx context.Context) error {
				return client.Ping(ctx, readpref.Primary())
			},
			close: func() {
				if err := client.Disconnect(context.Background()); err != nil {
					logger.Error("Failed to disconnect MongoDB: %v", err)
				}
			},
		}, nil

	default:
		logger.Warn("Using in-memory store, data is lost on restart")
		return &stores{
			requirements: repository.NewMemoryRequirementRepository(),
			bids:         repository.NewMemoryBidRepository(),
			messages:     repository.NewMemoryMessageRepository(),
			users:        repository.NewMemoryUserRepository(),
			close:        func() {},
		}, nil
	}
}
