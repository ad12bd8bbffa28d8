package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Comment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CommentID string             `bson:"commentID" json:"commentID"`
	ProductID string             `bson:"productID" json:"productID"`
	UserID    string             `bson:"userID" json:"userID"`
	UserName  string             `bson:"userName" json:"userName"` // snapshot at write time
	Text      string             `bson:"text" json:"text"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
