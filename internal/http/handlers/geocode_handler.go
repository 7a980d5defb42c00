// README: Address search for the booking form.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"speedyvan/internal/maps"
	"speedyvan/internal/service"
)

type GeocodeHandler struct {
	planner *service.QuotePlanner
}

func NewGeocodeHandler(planner *service.QuotePlanner) *GeocodeHandler {
	return &GeocodeHandler{planner: planner}
}

type geocodeReq struct {
	Address string `json:"address" binding:"required,min=3"`
	Limit   *int   `json:"limit" binding:"omitempty,gte=1,lte=5"`
}

type geocodeResult struct {
	Address   string  `json:"address"`
	Text      string  `json:"text"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Geocode handles POST /api/geocode.
func (h *GeocodeHandler) Geocode(c *gin.Context) {
	var req geocodeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalid(c, err)
		return
	}
	limit := 1
	if req.Limit != nil {
		limit = *req.Limit
	}

	locs, err := h.planner.SearchAddress(c.Request.Context(), req.Address, limit)
	switch {
	case err == nil:
	case errors.Is(err, maps.ErrAddressNotFound):
		writeError(c, http.StatusNotFound, "Address not found")
		return
	case errors.Is(err, service.ErrNoGeocoder):
		writeError(c, http.StatusServiceUnavailable, err.Error())
		return
	default:
		writeError(c, http.StatusInternalServerError, "Failed to geocode address")
		return
	}

	results := make([]geocodeResult, 0, len(locs))
	for _, l := range locs {
		results = append(results, geocodeResult{
			Address:   l.FormattedAddress,
			Text:      l.Text,
			Latitude:  l.Point.Lat,
			Longitude: l.Point.Lng,
		})
	}
	writeJSON(c, http.StatusOK, gin.H{"success": true, "results": results})
}
