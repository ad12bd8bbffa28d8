package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types.
const (
	NotificationTypeLike              = "like"
	NotificationTypeComment           = "comment"
	NotificationTypeOrderPlaced       = "order_placed"
	NotificationTypePickupScheduled   = "pickup_scheduled"
	NotificationTypePickupRescheduled = "pickup_rescheduled"
	NotificationTypePickupCompleted   = "pickup_completed"
)

type Notification struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	NotificationID string             `bson:"notificationID" json:"notificationID"`
	ReceiverUserID string             `bson:"receiverUserID" json:"receiverUserID"`
	SenderUserID   string             `bson:"senderUserID,omitempty" json:"senderUserID,omitempty"`
	Type           string             `bson:"type" json:"type"`
	ProductID      string             `bson:"productID,omitempty" json:"productID,omitempty"`
	RequestID      string             `bson:"requestID,omitempty" json:"requestID,omitempty"`
	OrderID        string             `bson:"orderID,omitempty" json:"orderID,omitempty"`
	IsRead         bool               `bson:"isRead" json:"isRead"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}
