package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/omsapp/oms-backend/config"
	"github.com/omsapp/oms-backend/internal/app/controller"
	"github.com/omsapp/oms-backend/internal/app/model"
	"github.com/omsapp/oms-backend/internal/db"
	"github.com/omsapp/oms-backend/internal/middleware"
	"gorm.io/gorm"
)

type Router struct {
	authController     *controller.AuthController
	customerController *controller.CustomerController
	productController  *controller.ProductController
	authMiddleware     *middleware.AuthMiddleware
	rateLimiter        *middleware.RateLimiter
	metrics            *middleware.Metrics
	db                 *gorm.DB
	config             *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	customerController *controller.CustomerController,
	productController *controller.ProductController,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter *middleware.RateLimiter,
	metrics *middleware.Metrics,
	gdb *gorm.DB,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:     authController,
		customerController: customerController,
		productController:  productController,
		authMiddleware:     authMiddleware,
		rateLimiter:        rateLimiter,
		metrics:            metrics,
		db:                 gdb,
		config:             cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(r.config.CORS.AllowedOrigins))
	if r.metrics != nil {
		router.Use(r.metrics.Middleware())
		router.GET("/metrics", gin.WrapH(r.metrics.Handler()))
	}

	router.GET("/health", r.health)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		if r.rateLimiter != nil {
			auth.Use(r.rateLimiter.Middleware())
		}
		{
			auth.POST("/login", r.authController.Login)
			auth.POST("/forgot-password", r.authController.ForgotPassword)
			auth.POST("/reset-password", r.authController.ResetPassword)
			auth.POST("/change-password", r.authMiddleware.Authenticate(), r.authController.ChangePassword)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetMe)
		}

		customers := api.Group("/customers")
		customers.Use(r.catalogReader()...)
		{
			customers.GET("", r.customerController.GetCustomers)
			customers.GET("/:id", r.customerController.GetCustomerByID)
			customers.POST("", r.customerController.CreateCustomer)
			customers.PUT("/:id", r.customerController.UpdateCustomer)
			customers.DELETE("/:id", r.customerController.DeleteCustomer)
		}

		products := api.Group("/product")
		{
			products.GET("", r.productController.GetProducts)
			products.GET("/:id", r.productController.GetProductByID)

			products.POST("", append(r.catalogWriter(), r.productController.CreateProduct)...)
			products.PUT("/:id", append(r.catalogWriter(), r.productController.UpdateProduct)...)
			products.DELETE("/:id", append(r.catalogWriter(), r.productController.DeleteProduct)...)
		}
	}

	return router
}

// catalogReader guards the customer routes when catalog auth is enabled
func (r *Router) catalogReader() []gin.HandlerFunc {
	if !r.config.Catalog.RequireAuth {
		return nil
	}
	return []gin.HandlerFunc{r.authMiddleware.Authenticate()}
}

// catalogWriter guards product mutations when catalog auth is enabled
func (r *Router) catalogWriter() []gin.HandlerFunc {
	if !r.config.Catalog.RequireAuth {
		return nil
	}
	return []gin.HandlerFunc{
		r.authMiddleware.Authenticate(),
		r.authMiddleware.RequireRole(model.RoleAdmin),
	}
}

func (r *Router) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := db.Ping(ctx, r.db); err != nil {
		middleware.GetLoggerFromContext(c).Error("Health check failed", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"message": "database unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "OMS API is running",
	})
}
