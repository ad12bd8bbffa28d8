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
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProductHandler struct {
	DB  *mongo.Database
	Hub *socket.Hub
}

type CreateProductPayload struct {
	Title       string                `json:"title" binding:"required"`
	Description string                `json:"description"`
	Category    string                `json:"category" binding:"required"`
	Condition   string                `json:"condition" binding:"required"`
	Price       float64               `json:"price" binding:"min=0"`
	Images      []models.MediaPointer `json:"images"`
}

// CreateProduct lists a new e-waste item owned by the caller.
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	ownerUserID := c.GetString("user_id")

	var payload CreateProductPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	newProduct := models.Product{
		ProductID:   fmt.Sprintf("PRD-%s", uuid.New().String()[:8]),
		OwnerUserID: ownerUserID,
		Title:       payload.Title,
		Description: payload.Description,
		Category:    payload.Category,
		Condition:   payload.Condition,
		Price:       payload.Price,
		Images:      payload.Images,
		Status:      models.ProductStatusAvailable,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	collection := h.DB.Collection("products")
	result, err := collection.InsertOne(context.Background(), newProduct)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		newProduct.ID = oid
	}

	c.JSON(http.StatusCreated, newProduct)
}

// GetAllProducts lists products, optionally filtered by category and status.
func (h *ProductHandler) GetAllProducts(c *gin.Context) {
	filter := bson.M{}
	if category := c.Query("category"); category != "" {
		filter["category"] = category
	}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	} else {
		filter["status"] = models.ProductStatusAvailable
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := h.DB.Collection("products").Find(context.Background(), filter, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query products"})
		return
	}
	defer cursor.Close(context.Background())

	var products []models.Product
	if err := cursor.All(context.Background(), &products); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode products"})
		return
	}
	if products == nil {
		products = []models.Product{}
	}

	c.JSON(http.StatusOK, products)
}

// GetProductByID returns one product by its business ID.
func (h *ProductHandler) GetProductByID(c *gin.Context) {
	productID := c.Param("id")

	var product models.Product
	err := h.DB.Collection("products").FindOne(context.Background(), bson.M{"productID": productID}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve product"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// GetMyProducts lists the caller's own listings regardless of status.
func (h *ProductHandler) GetMyProducts(c *gin.Context) {
	ownerUserID := c.GetString("user_id")

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := h.DB.Collection("products").Find(context.Background(), bson.M{"ownerUserID": ownerUserID}, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query products"})
		return
	}
	defer cursor.Close(context.Background())

	var products []models.Product
	if err := cursor.All(context.Background(), &products); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode products"})
		return
	}
	if products == nil {
		products = []models.Product{}
	}

	c.JSON(http.StatusOK, products)
}

// ToggleLike adds or removes the caller's like on a product. The owner gets
// a notification when a like is added.
func (h *ProductHandler) ToggleLike(c *gin.Context) {
	userID := c.GetString("user_id")
	productID := c.Param("id")

	collection := h.DB.Collection("products")

	var product models.Product
	err := collection.FindOne(context.Background(), bson.M{"productID": productID}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve product"})
		return
	}

	liked := false
	for _, id := range product.Likes {
		if id == userID {
			liked = true
			break
		}
	}

	var update bson.M
	if liked {
		update = bson.M{"$pull": bson.M{"likes": userID}}
	} else {
		update = bson.M{"$addToSet": bson.M{"likes": userID}}
	}

	if _, err := collection.UpdateOne(context.Background(), bson.M{"productID": productID}, update); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update like"})
		return
	}

	if !liked && product.OwnerUserID != userID {
		go pushNotification(h.DB, h.Hub, models.Notification{
			ReceiverUserID: product.OwnerUserID,
			SenderUserID:   userID,
			Type:           models.NotificationTypeLike,
			ProductID:      productID,
		})
	}

	c.JSON(http.StatusOK, gin.H{"liked": !liked})
}

// ToggleBookmark adds or removes the caller's bookmark on a product.
func (h *ProductHandler) ToggleBookmark(c *gin.Context) {
	userID := c.GetString("user_id")
	productID := c.Param("id")

	collection := h.DB.Collection("products")

	var product models.Product
	err := collection.FindOne(context.Background(), bson.M{"productID": productID}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve product"})
		return
	}

	bookmarked := false
	for _, id := range product.Bookmarks {
		if id == userID {
			bookmarked = true
			break
		}
	}

	var update bson.M
	if bookmarked {
		update = bson.M{"$pull": bson.M{"bookmarks": userID}}
	} else {
		update = bson.M{"$addToSet": bson.M{"bookmarks": userID}}
	}

	if _, err := collection.UpdateOne(context.Background(), bson.M{"productID": productID}, update); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update bookmark"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookmarked": !bookmarked})
}

// GetMyBookmarks lists products the caller has bookmarked.
func (h *ProductHandler) GetMyBookmarks(c *gin.Context) {
	userID := c.GetString("user_id")

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := h.DB.Collection("products").Find(context.Background(), bson.M{"bookmarks": userID}, opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query bookmarks"})
		return
	}
	defer cursor.Close(context.Background())

	var products []models.Product
	if err := cursor.All(context.Background(), &products); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode products"})
		return
	}
	if products == nil {
		products = []models.Product{}
	}

	c.JSON(http.StatusOK, products)
}
