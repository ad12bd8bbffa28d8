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
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OrderHandler struct {
	DB  *mongo.Database
	Hub *socket.Hub
}

type CreateOrderPayload struct {
	ProductIDs []string `json:"productIDs" binding:"required,min=1"`
}

// CreateOrder buys the given products: validates every product before any
// is touched, marks them sold, records the order with price snapshots,
// clears them from the buyer's cart and notifies the sellers.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	buyerUserID := c.GetString("user_id")

	var payload CreateOrderPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	productCollection := h.DB.Collection("products")

	// Validate the whole list first, then commit.
	items := make([]models.OrderItem, 0, len(payload.ProductIDs))
	sellers := make(map[string]bool)
	total := 0.0
	for _, pid := range payload.ProductIDs {
		var product models.Product
		err := productCollection.FindOne(context.Background(), bson.M{"productID": pid}).Decode(&product)
		if err != nil {
			if err == mongo.ErrNoDocuments {
				c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Product not found: %s", pid)})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check product"})
			return
		}
		if product.Status != models.ProductStatusAvailable {
			c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("Product %s is no longer available", pid)})
			return
		}
		if product.OwnerUserID == buyerUserID {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("You cannot buy your own listing: %s", pid)})
			return
		}

		items = append(items, models.OrderItem{
			ProductID: product.ProductID,
			Title:     product.Title,
			Price:     product.Price,
		})
		sellers[product.OwnerUserID] = true
		total += product.Price
	}

	// Atomic guard: only still-available products are flipped to sold. If a
	// concurrent buyer got there first the counts will not match.
	updateResult, err := productCollection.UpdateMany(context.Background(),
		bson.M{"productID": bson.M{"$in": payload.ProductIDs}, "status": models.ProductStatusAvailable},
		bson.M{"$set": bson.M{"status": models.ProductStatusSold, "updatedAt": time.Now()}},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reserve products"})
		return
	}
	if updateResult.ModifiedCount != int64(len(payload.ProductIDs)) {
		c.JSON(http.StatusConflict, gin.H{"error": "One or more products were just sold to another buyer"})
		return
	}

	newOrder := models.Order{
		OrderID:     fmt.Sprintf("ORD-%s", uuid.New().String()[:8]),
		BuyerUserID: buyerUserID,
		Items:       items,
		TotalAmount: total,
		Status:      models.OrderStatusPlaced,
		CreatedAt:   time.Now(),
	}

	result, err := h.DB.Collection("orders").InsertOne(context.Background(), newOrder)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		newOrder.ID = oid
	}

	// Clear the purchased products out of the buyer's cart.
	_, err = h.DB.Collection("carts").UpdateOne(context.Background(),
		bson.M{"userID": buyerUserID},
		bson.M{
			"$pull": bson.M{"items": bson.M{"productID": bson.M{"$in": payload.ProductIDs}}},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		log.Warn().Err(err).Str("orderID", newOrder.OrderID).Msg("Failed to clear purchased items from cart")
	}

	for sellerID := range sellers {
		go pushNotification(h.DB, h.Hub, models.Notification{
			ReceiverUserID: sellerID,
			SenderUserID:   buyerUserID,
			Type:           models.NotificationTypeOrderPlaced,
			OrderID:        newOrder.OrderID,
		})
	}

	c.JSON(http.StatusCreated, newOrder)
}

// GetMyOrders lists the caller's orders, newest first.
func (h *OrderHandler) GetMyOrders(c *gin.Context) {
	buyerUserID := c.GetString("user_id")

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := h.DB.Collection("orders").Find(context.Background(), bson.M{"buyerUserID": buyerUserID}, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query orders"})
		return
	}
	defer cursor.Close(context.Background())

	var orders []models.Order
	if err := cursor.All(context.Background(), &orders); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode orders"})
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}

	c.JSON(http.StatusOK, orders)
}

// GetOrderByID returns one of the caller's orders.
func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	buyerUserID := c.GetString("user_id")
	orderID := c.Param("id")

	var order models.Order
	err := h.DB.Collection("orders").FindOne(context.Background(), bson.M{"orderID": orderID, "buyerUserID": buyerUserID}).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve order"})
		return
	}

	c.JSON(http.StatusOK, order)
}
