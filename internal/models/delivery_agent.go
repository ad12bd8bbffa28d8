package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VehicleInfo struct {
	Type        string `bson:"type" json:"type"` // TRUCK, VAN, MOTORBIKE
	PlateNumber string `bson:"plateNumber" json:"plateNumber"`
	Model       string `bson:"model" json:"model"`
}

// AgentAssignment is one entry in an agent's pickup schedule. Entries are
// plain values, there is at most one per requestID.
type AgentAssignment struct {
	RequestID      string    `bson:"requestID" json:"requestID"`
	CollectionDate time.Time `bson:"collectionDate" json:"collectionDate"`
	TimeSlot       string    `bson:"timeSlot" json:"timeSlot"`
}

type DeliveryAgent struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AgentID          string             `bson:"agentID" json:"agentID"`
	Name             string             `bson:"name" json:"name"`
	Phone            string             `bson:"phone" json:"phone"`
	Email            string             `bson:"email,omitempty" json:"email,omitempty"`
	Vehicle          VehicleInfo        `bson:"vehicle" json:"vehicle"`
	AssignedRequests []AgentAssignment  `bson:"assignedRequests" json:"assignedRequests"`
	// ScheduleVersion guards read-modify-write cycles on AssignedRequests.
	ScheduleVersion int64     `bson:"scheduleVersion" json:"-"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time `bson:"updatedAt" json:"updatedAt"`
}
