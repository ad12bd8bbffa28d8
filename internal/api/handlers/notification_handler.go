package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ewaste-marketplace-api-server/internal/models"
	"ewaste-marketplace-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationHandler struct {
	DB  *mongo.Database
	Hub *socket.Hub
}

// pushNotification inserts a notification record and pushes it to the
// receiver's websocket if connected. Fire-and-forget: failures are logged,
// never surfaced to the triggering operation.
func pushNotification(db *mongo.Database, hub *socket.Hub, n models.Notification) {
	n.NotificationID = fmt.Sprintf("NTF-%s", uuid.New().String()[:8])
	n.IsRead = false
	n.CreatedAt = time.Now()

	if _, err := db.Collection("notifications").InsertOne(context.Background(), n); err != nil {
		log.Error().Err(err).Str("receiverUserID", n.ReceiverUserID).Msg("Failed to insert notification")
		return
	}

	if hub == nil {
		return
	}
	payload, _ := json.Marshal(gin.H{"event": "notification", "notification": n})
	if err := hub.Send(n.ReceiverUserID, payload); err != nil {
		log.Warn().Err(err).Str("receiverUserID", n.ReceiverUserID).Msg("Failed to push notification over websocket")
	}
}

// GetMyNotifications lists the caller's notifications, newest first.
func (h *NotificationHandler) GetMyNotifications(c *gin.Context) {
	userID := c.GetString("user_id")

	filter := bson.M{"receiverUserID": userID}
	if c.Query("unread") == "true" {
		filter["isRead"] = false
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(100)
	cursor, err := h.DB.Collection("notifications").Find(context.Background(), filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query notifications"})
		return
	}
	defer cursor.Close(context.Background())

	var notifications []models.Notification
	if err := cursor.All(context.Background(), &notifications); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode notifications"})
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}

	c.JSON(http.StatusOK, notifications)
}

// MarkNotificationRead flags one of the caller's notifications as read.
func (h *NotificationHandler) MarkNotificationRead(c *gin.Context) {
	userID := c.GetString("user_id")
	notificationID := c.Param("id")

	result, err := h.DB.Collection("notifications").UpdateOne(context.Background(),
		bson.M{"notificationID": notificationID, "receiverUserID": userID},
		bson.M{"$set": bson.M{"isRead": true}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}
