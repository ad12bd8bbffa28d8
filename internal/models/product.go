package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product lifecycle statuses.
const (
	ProductStatusAvailable      = "available"
	ProductStatusPendingRequest = "pending_request"
	ProductStatusRecycled       = "recycled"
	ProductStatusSold           = "sold"
)

type Product struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID        string             `bson:"productID" json:"productID"`
	OwnerUserID      string             `bson:"ownerUserID" json:"ownerUserID"`
	Title            string             `bson:"title" json:"title"`
	Description      string             `bson:"description" json:"description"`
	Category         string             `bson:"category" json:"category"` // e.g. LAPTOP, PHONE, BATTERY, APPLIANCE
	Condition        string             `bson:"condition" json:"condition"`
	Price            float64            `bson:"price" json:"price"`
	Images           []MediaPointer     `bson:"images,omitempty" json:"images"`
	Status           string             `bson:"status" json:"status"`
	RecycledByUserID string             `bson:"recycledByUserID,omitempty" json:"recycledByUserID,omitempty"`
	RecycledDate     *time.Time         `bson:"recycledDate,omitempty" json:"recycledDate,omitempty"`
	Likes            []string           `bson:"likes,omitempty" json:"likes"`
	Bookmarks        []string           `bson:"bookmarks,omitempty" json:"bookmarks"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}
