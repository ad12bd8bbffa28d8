package database

import (
	"context"
	"time"

	"ewaste-marketplace-api-server/config"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Connect opens the MongoDB connection and verifies it with a ping.
func Connect(cfg config.MongoConfig) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info().Msg("Connecting to MongoDB...")
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	log.Info().Str("database", cfg.DBName).Msg("Connected to MongoDB")
	return client.Database(cfg.DBName), nil
}

// EnsureIndexes creates the indexes the query paths depend on. Creation is
// idempotent, existing indexes are left untouched.
func EnsureIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	unique := options.Index().SetUnique(true)

	indexes := map[string][]mongo.IndexModel{
		"users": {
			{Keys: bson.D{{Key: "userID", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
		"products": {
			{Keys: bson.D{{Key: "productID", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "ownerUserID", Value: 1}}},
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "status", Value: 1}}},
		},
		"comments": {
			{Keys: bson.D{{Key: "productID", Value: 1}}},
		},
		"carts": {
			{Keys: bson.D{{Key: "userID", Value: 1}}, Options: unique},
		},
		"orders": {
			{Keys: bson.D{{Key: "orderID", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "buyerUserID", Value: 1}}},
		},
		"recycle_requests": {
			{Keys: bson.D{{Key: "requestID", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "userID", Value: 1}, {Key: "status", Value: 1}}},
		},
		"delivery_agents": {
			{Keys: bson.D{{Key: "agentID", Value: 1}}, Options: unique},
		},
		"notifications": {
			{Keys: bson.D{{Key: "receiverUserID", Value: 1}, {Key: "isRead", Value: 1}}},
		},
	}

	for collection, models := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}

	log.Info().Msg("MongoDB indexes ensured")
	return nil
}
