package handler

import (
	"context"
	"net/http"

	"airquality-dashboard/internal/service"

	"github.com/gin-gonic/gin"
)

// GeoCodeHandler handles station geocoding requests
type GeoCodeHandler struct {
	service GeoCodeService
}

// GeoCodeService interface for dependency injection
type GeoCodeService interface {
	Resolve(context.Context, string) service.Resolution
}

// NewGeoCodeHandler creates a new geocode handler
func NewGeoCodeHandler(svc GeoCodeService) *GeoCodeHandler {
	return &GeoCodeHandler{service: svc}
}

// GeoCode godoc
// @Summary  Resolve a station to coordinates
// @Tags     geocode
// @Produce  json
// @Param    station  query     string  true  "station name"
// @Success  200  {object}  service.Resolution
// @Failure  400  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse
// @Failure  502  {object}  ErrorResponse
// @Router   /api/geocode [get]
func (h *GeoCodeHandler) GeoCode(c *gin.Context) {
	station := c.Query("station")
	if station == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing required query parameter 'station'"})
		return
	}

	res := h.service.Resolve(c.Request.Context(), station)
	switch res.Status {
	case service.StatusNotFound:
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no coordinates found for station"})
	case service.StatusFailed:
		c.JSON(http.StatusBadGateway, ErrorResponse{Error: "geocoding failed"})
	default:
		c.JSON(http.StatusOK, res)
	}
}
