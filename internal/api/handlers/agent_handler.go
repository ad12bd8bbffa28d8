package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"ewaste-marketplace-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AgentHandler struct {
	DB *mongo.Database
}

type CreateAgentPayload struct {
	Name    string             `json:"name" binding:"required"`
	Phone   string             `json:"phone" binding:"required"`
	Email   string             `json:"email"`
	Vehicle models.VehicleInfo `json:"vehicle" binding:"required"`
}

// CreateAgent registers a delivery agent (admin only).
func (h *AgentHandler) CreateAgent(c *gin.Context) {
	var payload CreateAgentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	newAgent := models.DeliveryAgent{
		AgentID:          fmt.Sprintf("AGT-%s", uuid.New().String()[:8]),
		Name:             payload.Name,
		Phone:            payload.Phone,
		Email:            payload.Email,
		Vehicle:          payload.Vehicle,
		AssignedRequests: []models.AgentAssignment{},
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	result, err := h.DB.Collection("delivery_agents").InsertOne(context.Background(), newAgent)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create agent"})
		return
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		newAgent.ID = oid
	}

	c.JSON(http.StatusCreated, newAgent)
}

// GetAllAgents lists all agents with their current schedules (admin only).
func (h *AgentHandler) GetAllAgents(c *gin.Context) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := h.DB.Collection("delivery_agents").Find(context.Background(), bson.M{}, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query agents"})
		return
	}
	defer cursor.Close(context.Background())

	var agents []models.DeliveryAgent
	if err := cursor.All(context.Background(), &agents); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode agents"})
		return
	}
	if agents == nil {
		agents = []models.DeliveryAgent{}
	}

	c.JSON(http.StatusOK, agents)
}

// GetAgentByID returns one agent by its business ID (admin only).
func (h *AgentHandler) GetAgentByID(c *gin.Context) {
	agentID := c.Param("id")

	var agent models.DeliveryAgent
	err := h.DB.Collection("delivery_agents").FindOne(context.Background(), bson.M{"agentID": agentID}).Decode(&agent)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Agent not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve agent"})
		return
	}

	c.JSON(http.StatusOK, agent)
}
