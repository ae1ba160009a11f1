package routes

import (
	"storefront-catalog/internal/handlers"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.Engine, products *handlers.ProductHandler, health *handlers.HealthHandler) {
	router.GET("/health", health.GetHealth)

	v1 := router.Group("/v1")
	{
		v1.POST("/products", products.CreateProduct)
		v1.GET("/products", products.ListProducts)
		v1.GET("/products/slug/:slug", products.GetProductBySlug)
		v1.GET("/products/:id", products.GetProduct)
		v1.PATCH("/products/:id", products.UpdateProduct)
		v1.POST("/products/:id/stock", products.AdjustStock)
		v1.POST("/products/:id/views", products.IncrementViews)
	}
}
