package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Request lifecycle statuses. pending_approval, collected and cancelled are
// reserved, no operation currently transitions into them.
const (
	RequestStatusPendingApproval = "pending_approval"
	RequestStatusScheduled       = "scheduled"
	RequestStatusCollected       = "collected"
	RequestStatusCompleted       = "completed"
	RequestStatusCancelled       = "cancelled"
)

const (
	PaymentStatusPending       = "pending"
	PaymentStatusPaid          = "paid"
	PaymentStatusNotApplicable = "not_applicable"
)

// Collection time slots.
const (
	TimeSlotMorning   = "morning"
	TimeSlotAfternoon = "afternoon"
	TimeSlotEvening   = "evening"
)

// AgentSnapshot is a denormalized copy of the assigned agent taken at
// assignment time. It is not kept in sync with later agent edits.
type AgentSnapshot struct {
	AgentID string      `bson:"agentID" json:"agentID"`
	Name    string      `bson:"name" json:"name"`
	Phone   string      `bson:"phone" json:"phone"`
	Vehicle VehicleInfo `bson:"vehicle" json:"vehicle"`
}

type PickupDetails struct {
	AddressType    string `bson:"addressType,omitempty" json:"addressType,omitempty"` // home, office, other
	AlternatePhone string `bson:"alternatePhone,omitempty" json:"alternatePhone,omitempty"`
	Notes          string `bson:"notes,omitempty" json:"notes,omitempty"`
}

type RecycleRequest struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RequestID      string             `bson:"requestID" json:"requestID"`
	UserID         string             `bson:"userID" json:"userID"`
	ProductIDs     []string           `bson:"productIDs" json:"productIDs"` // immutable once set
	CollectionDate time.Time          `bson:"collectionDate" json:"collectionDate"`
	TimeSlot       string             `bson:"timeSlot" json:"timeSlot"`
	PaymentAmount  float64            `bson:"paymentAmount" json:"paymentAmount"`
	PaymentStatus  string             `bson:"paymentStatus" json:"paymentStatus"`
	Status         string             `bson:"status" json:"status"`
	DeliveryAgent  *AgentSnapshot     `bson:"deliveryAgent,omitempty" json:"deliveryAgent,omitempty"`
	Pickup         *PickupDetails     `bson:"pickup,omitempty" json:"pickup,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt" json:"updatedAt"`
}
