package routes

import (
	"ewaste-marketplace-api-server/config"
	"ewaste-marketplace-api-server/internal/api/handlers"
	"ewaste-marketplace-api-server/internal/api/middleware"
	"ewaste-marketplace-api-server/internal/recycling"
	"ewaste-marketplace-api-server/internal/s3"
	"ewaste-marketplace-api-server/internal/socket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupRouter wires the handlers and route groups.
func SetupRouter(
	cfg config.Config,
	db *mongo.Database,
	s3Uploader *s3.Uploader,
	wsHub *socket.Hub,
) *gin.Engine {
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	jwtSecret := []byte(cfg.JWT.Secret)
	recycleService := recycling.NewService(recycling.NewMongoStore(db))

	userHandler := &handlers.UserHandler{DB: db, Cfg: cfg}
	productHandler := &handlers.ProductHandler{DB: db, Hub: wsHub}
	commentHandler := &handlers.CommentHandler{DB: db, Hub: wsHub}
	cartHandler := &handlers.CartHandler{DB: db}
	orderHandler := &handlers.OrderHandler{DB: db, Hub: wsHub}
	agentHandler := &handlers.AgentHandler{DB: db}
	recycleHandler := &handlers.RecycleHandler{DB: db, Hub: wsHub, Service: recycleService}
	notificationHandler := &handlers.NotificationHandler{DB: db, Hub: wsHub}
	uploadHandler := &handlers.UploadHandler{S3Uploader: s3Uploader}
	webSocketHandler := &handlers.WebSocketHandler{Hub: wsHub, JWTSecret: jwtSecret}

	apiV1 := router.Group("/api/v1")
	{
		// WebSocket route (token in query string)
		apiV1.GET("/ws", webSocketHandler.ServeWs)

		// === PUBLIC ROUTES ===
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", userHandler.Register)
			auth.POST("/login", userHandler.Login)
		}

		public := apiV1.Group("/")
		{
			// Browsing does not require an account.
			public.GET("/products", productHandler.GetAllProducts)
			public.GET("/products/:id", productHandler.GetProductByID)
			public.GET("/products/:id/comments", commentHandler.GetComments)
		}

		// === PROTECTED ROUTES ===
		protected := apiV1.Group("/")
		protected.Use(middleware.Authenticate(jwtSecret))
		{
			users := protected.Group("/users")
			{
				users.GET("/me", userHandler.GetMe)
				users.PUT("/me", userHandler.UpdateMe)
			}

			products := protected.Group("/products")
			{
				products.POST("/", productHandler.CreateProduct)
				products.GET("/my/listings", productHandler.GetMyProducts)
				products.GET("/my/bookmarks", productHandler.GetMyBookmarks)
				products.POST("/:id/like", productHandler.ToggleLike)
				products.POST("/:id/bookmark", productHandler.ToggleBookmark)
				products.POST("/:id/comments", commentHandler.AddComment)
			}

			cart := protected.Group("/cart")
			{
				cart.GET("/", cartHandler.GetCart)
				cart.POST("/items", cartHandler.AddToCart)
				cart.DELETE("/items/:productID", cartHandler.RemoveFromCart)
			}

			orders := protected.Group("/orders")
			{
				orders.POST("/", orderHandler.CreateOrder)
				orders.GET("/", orderHandler.GetMyOrders)
				orders.GET("/:id", orderHandler.GetOrderByID)
			}

			recycleRequests := protected.Group("/recycle-requests")
			{
				recycleRequests.POST("/", recycleHandler.CreateRequest)
				recycleRequests.GET("/", recycleHandler.GetMyRequests)
				recycleRequests.GET("/count", recycleHandler.GetRecycledItemCount)
				recycleRequests.GET("/:id", recycleHandler.GetRequestByID)
				recycleRequests.POST("/:id/complete", recycleHandler.CompleteRequest)

				// Manual re-assignment is an admin override.
				adminRecycle := recycleRequests.Group("/")
				adminRecycle.Use(middleware.Authorize("admin"))
				{
					adminRecycle.POST("/:id/schedule", recycleHandler.ScheduleRequest)
				}
			}

			notifications := protected.Group("/notifications")
			{
				notifications.GET("/", notificationHandler.GetMyNotifications)
				notifications.POST("/:id/read", notificationHandler.MarkNotificationRead)
			}

			uploads := protected.Group("/uploads")
			{
				uploads.POST("/images", uploadHandler.UploadImage)
			}

			// Agent registry management requires the admin role.
			admin := protected.Group("/admin")
			admin.Use(middleware.Authorize("admin"))
			{
				agents := admin.Group("/agents")
				{
					agents.POST("/", agentHandler.CreateAgent)
					agents.GET("/", agentHandler.GetAllAgents)
					agents.GET("/:id", agentHandler.GetAgentByID)
				}
			}
		}
	}

	return router
}
