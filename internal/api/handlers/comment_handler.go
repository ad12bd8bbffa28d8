package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"ewaste-marketplace-api-server/internal/models"
	"ewaste-marketplace-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CommentHandler struct {
	DB  *mongo.Database
	Hub *socket.Hub
}

type AddCommentPayload struct {
	Text string `json:"text" binding:"required"`
}

// AddComment posts a comment on a product and notifies the owner.
func (h *CommentHandler) AddComment(c *gin.Context) {
	userID := c.GetString("user_id")
	productID := c.Param("id")

	var payload AddCommentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var product models.Product
	err := h.DB.Collection("products").FindOne(context.Background(), bson.M{"productID": productID}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve product"})
		return
	}

	// Snapshot the commenter's name so listing comments needs no join.
	var commenter models.User
	userName := ""
	if err := h.DB.Collection("users").FindOne(context.Background(), bson.M{"userID": userID}).Decode(&commenter); err == nil {
		userName = commenter.Name
	}

	newComment := models.Comment{
		CommentID: fmt.Sprintf("CMT-%s", uuid.New().String()[:8]),
		ProductID: productID,
		UserID:    userID,
		UserName:  userName,
		Text:      payload.Text,
		CreatedAt: time.Now(),
	}

	result, err := h.DB.Collection("comments").InsertOne(context.Background(), newComment)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		newComment.ID = oid
	}

	if product.OwnerUserID != userID {
		go pushNotification(h.DB, h.Hub, models.Notification{
			ReceiverUserID: product.OwnerUserID,
			SenderUserID:   userID,
			Type:           models.NotificationTypeComment,
			ProductID:      productID,
		})
	}

	c.JSON(http.StatusCreated, newComment)
}

// GetComments lists a product's comments, oldest first.
func (h *CommentHandler) GetComments(c *gin.Context) {
	productID := c.Param("id")

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := h.DB.Collection("comments").Find(context.Background(), bson.M{"productID": productID}, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query comments"})
		return
	}
	defer cursor.Close(context.Background())

	var comments []models.Comment
	if err := cursor.All(context.Background(), &comments); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode comments"})
		return
	}
	if comments == nil {
		comments = []models.Comment{}
	}

	c.JSON(http.StatusOK, comments)
}
