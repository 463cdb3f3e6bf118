package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// NewRouter wires the API routes onto a gin engine.
func NewRouter(dashboard *DashboardHandler, geocode *GeoCodeHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	api := r.Group("/api")
	api.GET("/pollutants", dashboard.Pollutants)
	api.GET("/stations", dashboard.Stations)
	api.GET("/trends", dashboard.Trend)
	api.GET("/comparison", dashboard.Comparison)
	api.GET("/hourly", dashboard.Hourly)
	api.GET("/map", dashboard.Map)
	api.GET("/geocode", geocode.GeoCode)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	return r
}
