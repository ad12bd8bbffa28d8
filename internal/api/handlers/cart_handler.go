package handlers

import (
	"context"
	"net/http"
	"time"

	"ewaste-marketplace-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CartHandler struct {
	DB *mongo.Database
}

// GetCart returns the caller's cart, creating an empty one on first access.
func (h *CartHandler) GetCart(c *gin.Context) {
	userID := c.GetString("user_id")

	var cart models.Cart
	err := h.DB.Collection("carts").FindOne(context.Background(), bson.M{"userID": userID}).Decode(&cart)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusOK, models.Cart{UserID: userID, Items: []models.CartItem{}})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve cart"})
		return
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}

	c.JSON(http.StatusOK, cart)
}

type AddToCartPayload struct {
	ProductID string `json:"productID" binding:"required"`
}

// AddToCart puts a product into the caller's cart. Only available products
// listed by someone else can be added.
func (h *CartHandler) AddToCart(c *gin.Context) {
	userID := c.GetString("user_id")

	var payload AddToCartPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var product models.Product
	err := h.DB.Collection("products").FindOne(context.Background(), bson.M{"productID": payload.ProductID}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve product"})
		return
	}
	if product.Status != models.ProductStatusAvailable {
		c.JSON(http.StatusConflict, gin.H{"error": "Product is no longer available"})
		return
	}
	if product.OwnerUserID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot add your own listing to the cart"})
		return
	}

	item := models.CartItem{ProductID: payload.ProductID, AddedAt: time.Now()}

	// Upsert keeps one cart document per user; $ne in the filter makes the
	// add idempotent.
	opts := options.Update().SetUpsert(true)
	_, err = h.DB.Collection("carts").UpdateOne(context.Background(),
		bson.M{"userID": userID, "items.productID": bson.M{"$ne": payload.ProductID}},
		bson.M{
			"$push": bson.M{"items": item},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
		opts,
	)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			c.JSON(http.StatusOK, gin.H{"message": "Product already in cart"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product added to cart"})
}

// RemoveFromCart drops one product from the caller's cart.
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	userID := c.GetString("user_id")
	productID := c.Param("productID")

	_, err := h.DB.Collection("carts").UpdateOne(context.Background(),
		bson.M{"userID": userID},
		bson.M{
			"$pull": bson.M{"items": bson.M{"productID": productID}},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product removed from cart"})
}
