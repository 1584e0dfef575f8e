package router

import (
	"net/http"

	"user-resource-service/internal/adapter/gin/handler"
	"user-resource-service/internal/adapter/gin/middleware"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

const swaggerSpecPath = "./api/swagger/users.swagger.json"

// SetupRouter configures and returns a Gin router with all routes and
// middleware. rateLimiter may be nil when rate limiting is disabled.
func SetupRouter(
	userHandler *handler.UserHandler,
	rateLimiter *middleware.RateLimiter,
	log *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))
	if rateLimiter != nil {
		router.Use(rateLimiter.Middleware())
	}

	// Service banner
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "user-resource-service",
			"message": "user resource API ready",
		})
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "user-resource-service",
		})
	})

	// Swagger UI plus the OpenAPI document it renders
	swaggerUI := httpSwagger.Handler(httpSwagger.URL("/swagger/users.swagger.json"))
	router.GET("/swagger/*any", func(c *gin.Context) {
		if c.Param("any") == "/users.swagger.json" {
			c.File(swaggerSpecPath)
			return
		}
		swaggerUI.ServeHTTP(c.Writer, c.Request)
	})

	users := router.Group("/users")
	{
		users.POST("", userHandler.CreateUser)
		users.GET("", userHandler.ListUsers)
		users.GET("/:id", userHandler.GetUser)
		users.PUT("/:id", userHandler.UpdateUser)
		users.DELETE("/:id", userHandler.DeleteUser)
	}

	return router
}
