package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	OrderStatusPlaced    = "placed"
	OrderStatusCancelled = "cancelled"
)

// OrderItem captures the product title and price at purchase time.
type OrderItem struct {
	ProductID string  `bson:"productID" json:"productID"`
	Title     string  `bson:"title" json:"title"`
	Price     float64 `bson:"price" json:"price"`
}

type Order struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrderID     string             `bson:"orderID" json:"orderID"`
	BuyerUserID string             `bson:"buyerUserID" json:"buyerUserID"`
	Items       []OrderItem        `bson:"items" json:"items"`
	TotalAmount float64            `bson:"totalAmount" json:"totalAmount"`
	Status      string             `bson:"status" json:"status"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
