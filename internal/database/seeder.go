package database

import (
	"context"
	"fmt"
	"time"

	"ewaste-marketplace-api-server/internal/auth"
	"ewaste-marketplace-api-server/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// SeedAdmin creates the bootstrap admin account if it does not exist yet.
func SeedAdmin(db *mongo.Database) error {
	userCollection := db.Collection("users")
	adminEmail := "admin@example.com"

	count, err := userCollection.CountDocuments(context.Background(), bson.M{"email": adminEmail})
	if err != nil {
		return err
	}

	if count > 0 {
		log.Info().Msg("Admin already exists. Seeding skipped.")
		return nil
	}

	log.Info().Msg("Admin not found. Seeding...")
	hashedPassword, err := auth.HashPassword("adminpassword")
	if err != nil {
		return err
	}

	admin := models.User{
		UserID:    fmt.Sprintf("USR-%s", uuid.New().String()[:8]),
		Email:     adminEmail,
		Name:      "Admin",
		Password:  hashedPassword,
		Role:      "admin",
		Status:    "active",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	_, err = userCollection.InsertOne(context.Background(), admin)
	if err != nil {
		return err
	}

	log.Info().Msg("Admin seeded successfully.")
	return nil
}
