package handlers

import (
	"net/http"
	"time"

	"ewaste-marketplace-api-server/internal/models"
	"ewaste-marketplace-api-server/internal/recycling"
	"ewaste-marketplace-api-server/internal/socket"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

type RecycleHandler struct {
	DB      *mongo.Database
	Hub     *socket.Hub
	Service *recycling.Service
}

type CreateRecycleRequestPayload struct {
	ProductIDs     []string              `json:"productIDs" binding:"required,min=1"`
	CollectionDate time.Time             `json:"collectionDate" binding:"required"`
	TimeSlot       string                `json:"timeSlot" binding:"required,oneof=morning afternoon evening"`
	PaymentAmount  float64               `json:"paymentAmount" binding:"min=0"`
	Pickup         *models.PickupDetails `json:"pickup"`
}

// CreateRequest schedules a pickup for the caller's products.
func (h *RecycleHandler) CreateRequest(c *gin.Context) {
	userID := c.GetString("user_id")

	var payload CreateRecycleRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := h.Service.CreateRequest(c.Request.Context(), userID, recycling.CreateRequestInput{
		ProductIDs:     payload.ProductIDs,
		CollectionDate: payload.CollectionDate,
		TimeSlot:       payload.TimeSlot,
		PaymentAmount:  payload.PaymentAmount,
		Pickup:         payload.Pickup,
	})
	if err != nil {
		abortWithWorkflowError(c, err)
		return
	}

	go pushNotification(h.DB, h.Hub, models.Notification{
		ReceiverUserID: userID,
		Type:           models.NotificationTypePickupScheduled,
		RequestID:      request.RequestID,
	})

	c.JSON(http.StatusCreated, request)
}

type ScheduleRequestPayload struct {
	AgentID string `json:"agentID" binding:"required"`
}

// ScheduleRequest re-assigns a request to a chosen agent (admin only).
func (h *RecycleHandler) ScheduleRequest(c *gin.Context) {
	requestID := c.Param("id")

	var payload ScheduleRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := h.Service.ScheduleRequest(c.Request.Context(), requestID, payload.AgentID)
	if err != nil {
		abortWithWorkflowError(c, err)
		return
	}

	go pushNotification(h.DB, h.Hub, models.Notification{
		ReceiverUserID: request.UserID,
		Type:           models.NotificationTypePickupRescheduled,
		RequestID:      request.RequestID,
	})

	c.JSON(http.StatusOK, request)
}

type CompleteRequestPayload struct {
	PaymentStatus string `json:"paymentStatus" binding:"required,oneof=pending paid not_applicable"`
}

// CompleteRequest finishes a pickup: request completed, products recycled,
// agent slot freed.
func (h *RecycleHandler) CompleteRequest(c *gin.Context) {
	callerID := c.GetString("user_id")
	callerRole := c.GetString("user_role")
	requestID := c.Param("id")

	var payload CompleteRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := h.Service.CompleteRequest(c.Request.Context(), callerID, callerRole, requestID, payload.PaymentStatus)
	if err != nil {
		abortWithWorkflowError(c, err)
		return
	}

	go pushNotification(h.DB, h.Hub, models.Notification{
		ReceiverUserID: request.UserID,
		Type:           models.NotificationTypePickupCompleted,
		RequestID:      request.RequestID,
	})

	c.JSON(http.StatusOK, request)
}

// GetRequestByID returns one of the caller's requests with products and
// requester contact resolved.
func (h *RecycleHandler) GetRequestByID(c *gin.Context) {
	callerID := c.GetString("user_id")
	callerRole := c.GetString("user_role")
	requestID := c.Param("id")

	detail, err := h.Service.RequestByID(c.Request.Context(), callerID, callerRole, requestID)
	if err != nil {
		abortWithWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, detail)
}

// GetMyRequests lists the caller's requests.
func (h *RecycleHandler) GetMyRequests(c *gin.Context) {
	userID := c.GetString("user_id")

	details, err := h.Service.RequestsForUser(c.Request.Context(), userID)
	if err != nil {
		abortWithWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, details)
}

// GetRecycledItemCount returns how many product slots the caller has
// recycled across completed requests.
func (h *RecycleHandler) GetRecycledItemCount(c *gin.Context) {
	userID := c.GetString("user_id")

	count, err := h.Service.CompletedItemCount(c.Request.Context(), userID)
	if err != nil {
		abortWithWorkflowError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// abortWithWorkflowError maps the workflow error taxonomy onto HTTP
// statuses. Rejections caused by request state are distinguishable from
// infrastructure failures.
func abortWithWorkflowError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, recycling.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, recycling.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, recycling.ErrProductUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, recycling.ErrAlreadyCompleted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, recycling.ErrAssignmentImpossible):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
