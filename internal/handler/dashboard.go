package handler

import (
	"context"
	"errors"
	"net/http"

	"airquality-dashboard/internal/aqi"
	"airquality-dashboard/internal/dataset"
	"airquality-dashboard/internal/models"
	"airquality-dashboard/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const defaultPollutant = aqi.PM25

// DashboardHandler serves the dashboard views
type DashboardHandler struct {
	service DashboardService
}

// DashboardService interface for dependency injection
type DashboardService interface {
	Stations(context.Context) ([]string, error)
	Pollutants(context.Context) ([]models.PollutantInfo, error)
	Trend(context.Context, string, []aqi.Pollutant) (*models.TrendView, error)
	Comparison(context.Context) (*models.ComparisonView, error)
	Hourly(context.Context, aqi.Pollutant) (*models.HourlyView, error)
	CategoryMap(context.Context, aqi.Pollutant) (*models.MapView, error)
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(svc DashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Stations godoc
// @Summary  List monitoring stations
// @Tags     dashboard
// @Produce  json
// @Success  200  {array}   string
// @Failure  503  {object}  ErrorResponse
// @Router   /api/stations [get]
func (h *DashboardHandler) Stations(c *gin.Context) {
	stations, err := h.service.Stations(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stations)
}

// Pollutants godoc
// @Summary  List pollutants present in the dataset
// @Tags     dashboard
// @Produce  json
// @Success  200  {array}   models.PollutantInfo
// @Failure  503  {object}  ErrorResponse
// @Router   /api/pollutants [get]
func (h *DashboardHandler) Pollutants(c *gin.Context) {
	pollutants, err := h.service.Pollutants(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, pollutants)
}

// Trend godoc
// @Summary  Monthly pollutant trend at a station
// @Tags     dashboard
// @Produce  json
// @Param    station    query     string  true   "station name"
// @Param    pollutant  query     []string  false  "pollutants, repeatable"  collectionFormat(multi)
// @Success  200  {object}  models.TrendView
// @Failure  400  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse
// @Failure  503  {object}  ErrorResponse
// @Router   /api/trends [get]
func (h *DashboardHandler) Trend(c *gin.Context) {
	station := c.Query("station")
	if station == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing required query parameter 'station'"})
		return
	}

	pollutants := []aqi.Pollutant{defaultPollutant}
	if values, ok := c.GetQueryArray("pollutant"); ok {
		pollutants = make([]aqi.Pollutant, 0, len(values))
		for _, v := range values {
			if v == "" {
				continue
			}
			p, err := aqi.ParsePollutant(v)
			if err != nil {
				writeError(c, err)
				return
			}
			pollutants = append(pollutants, p)
		}
	}

	view, err := h.service.Trend(c.Request.Context(), station, pollutants)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Comparison godoc
// @Summary  Average concentrations per station
// @Tags     dashboard
// @Produce  json
// @Success  200  {object}  models.ComparisonView
// @Failure  503  {object}  ErrorResponse
// @Router   /api/comparison [get]
func (h *DashboardHandler) Comparison(c *gin.Context) {
	view, err := h.service.Comparison(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Hourly godoc
// @Summary  Hour-of-day profile of a pollutant
// @Tags     dashboard
// @Produce  json
// @Param    pollutant  query     string  false  "pollutant"  default(PM2.5)
// @Success  200  {object}  models.HourlyView
// @Failure  400  {object}  ErrorResponse
// @Failure  503  {object}  ErrorResponse
// @Router   /api/hourly [get]
func (h *DashboardHandler) Hourly(c *gin.Context) {
	pollutant, ok := pollutantParam(c)
	if !ok {
		return
	}
	view, err := h.service.Hourly(c.Request.Context(), pollutant)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Map godoc
// @Summary  Air quality category map of the last week
// @Tags     dashboard
// @Produce  json
// @Param    pollutant  query     string  false  "pollutant"  default(PM2.5)
// @Success  200  {object}  models.MapView
// @Failure  400  {object}  ErrorResponse
// @Failure  503  {object}  ErrorResponse
// @Router   /api/map [get]
func (h *DashboardHandler) Map(c *gin.Context) {
	pollutant, ok := pollutantParam(c)
	if !ok {
		return
	}
	view, err := h.service.CategoryMap(c.Request.Context(), pollutant)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func pollutantParam(c *gin.Context) (aqi.Pollutant, bool) {
	p, err := aqi.ParsePollutant(c.DefaultQuery("pollutant", string(defaultPollutant)))
	if err != nil {
		writeError(c, err)
		return "", false
	}
	return p, true
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError maps service errors to a status and a message safe to show
// to clients.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, aqi.ErrUnknownPollutant):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "unknown pollutant"})
	case errors.Is(err, service.ErrNoPollutants):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "select at least one pollutant"})
	case errors.Is(err, service.ErrUnknownStation):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "station not found"})
	case errors.Is(err, dataset.ErrUnavailable):
		log.Error().Err(err).Str("path", c.FullPath()).Msg("dataset unavailable")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "dataset unavailable"})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}
