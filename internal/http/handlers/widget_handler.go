// README: Postcode quote widget handlers.
package handlers

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"speedyvan/internal/modules/pricing"
	"speedyvan/internal/service"
)

const (
	minPostcodeLen = 2
	maxPostcodeLen = 20
)

type WidgetHandler struct {
	planner *service.QuotePlanner
	pricing *pricing.Service
}

func NewWidgetHandler(planner *service.QuotePlanner, pricingSvc *pricing.Service) *WidgetHandler {
	return &WidgetHandler{planner: planner, pricing: pricingSvc}
}

type widgetReq struct {
	FromPostcode string `json:"fromPostcode" binding:"required"`
	ToPostcode   string `json:"toPostcode" binding:"required"`
	MoveSize     string `json:"moveSize" binding:"required,oneof=small medium large"`
}

type widgetFailure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type widgetCreated struct {
	Success       bool    `json:"success"`
	QuoteID       string  `json:"quoteId"`
	PriceGBP      float64 `json:"priceGBP"`
	DistanceMiles float64 `json:"distanceMiles"`
	EtaMinutes    int     `json:"etaMinutes"`
}

type widgetQuoteView struct {
	QuoteID           string  `json:"quoteId"`
	FromPostcode      string  `json:"fromPostcode"`
	ToPostcode        string  `json:"toPostcode"`
	MoveSize          string  `json:"moveSize"`
	FromAddress       *string `json:"fromAddress"`
	ToAddress         *string `json:"toAddress"`
	PickupLat         float64 `json:"pickupLat"`
	PickupLng         float64 `json:"pickupLng"`
	DropoffLat        float64 `json:"dropoffLat"`
	DropoffLng        float64 `json:"dropoffLng"`
	PriceGBP          float64 `json:"priceGBP"`
	DistanceMiles     float64 `json:"distanceMiles"`
	EtaMinutes        int     `json:"etaMinutes"`
	VolumeCubicMeters float64 `json:"volumeCubicMeters"`
}

func newWidgetQuoteView(q *pricing.WidgetQuote) widgetQuoteView {
	return widgetQuoteView{
		QuoteID:           q.ID,
		FromPostcode:      q.FromPostcode,
		ToPostcode:        q.ToPostcode,
		MoveSize:          q.MoveSize,
		FromAddress:       q.FromAddress,
		ToAddress:         q.ToAddress,
		PickupLat:         q.Pickup.Lat,
		PickupLng:         q.Pickup.Lng,
		DropoffLat:        q.Dropoff.Lat,
		DropoffLng:        q.Dropoff.Lng,
		PriceGBP:          q.PriceGBP,
		DistanceMiles:     q.DistanceMiles,
		EtaMinutes:        q.EtaMinutes,
		VolumeCubicMeters: q.VolumeCubicMeters,
	}
}

// validPostcode checks the raw input length; trimming happens afterwards.
func validPostcode(p string) bool {
	n := utf8.RuneCountInString(p)
	return n >= minPostcodeLen && n <= maxPostcodeLen
}

func normalizePostcode(p string) string {
	return strings.ToUpper(strings.TrimSpace(p))
}

func writeWidgetInvalid(c *gin.Context, details string) {
	writeJSON(c, http.StatusBadRequest, widgetFailure{Error: "Invalid postcodes or move size", Details: details})
}

// Create handles POST /api/quote/widget.
func (h *WidgetHandler) Create(c *gin.Context) {
	var req widgetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeWidgetInvalid(c, err.Error())
		return
	}
	if !validPostcode(req.FromPostcode) || !validPostcode(req.ToPostcode) {
		writeWidgetInvalid(c, "postcodes must be 2 to 20 characters")
		return
	}

	q, err := h.planner.WidgetQuote(c.Request.Context(), normalizePostcode(req.FromPostcode), normalizePostcode(req.ToPostcode), req.MoveSize)
	switch {
	case err == nil:
	case errors.Is(err, pricing.ErrInvalidMoveSize):
		writeWidgetInvalid(c, err.Error())
		return
	case errors.Is(err, service.ErrPostcodeNotFound):
		writeJSON(c, http.StatusNotFound, widgetFailure{Error: "One or both postcodes could not be found. Please use valid UK postcodes."})
		return
	case errors.Is(err, service.ErrNoGeocoder), errors.Is(err, pricing.ErrNoStore):
		writeJSON(c, http.StatusServiceUnavailable, widgetFailure{Error: err.Error()})
		return
	default:
		writeJSON(c, http.StatusInternalServerError, widgetFailure{Error: "Failed to calculate quote. Please try again."})
		return
	}

	writeJSON(c, http.StatusOK, widgetCreated{
		Success:       true,
		QuoteID:       q.ID,
		PriceGBP:      q.PriceGBP,
		DistanceMiles: q.DistanceMiles,
		EtaMinutes:    q.EtaMinutes,
	})
}

// Get handles GET /api/quote/:id.
func (h *WidgetHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		writeError(c, http.StatusBadRequest, "Quote ID required")
		return
	}
	q, err := h.pricing.GetWidgetQuote(c.Request.Context(), id)
	switch {
	case err == nil:
	case errors.Is(err, pricing.ErrQuoteNotFound):
		writeError(c, http.StatusNotFound, "Quote not found")
		return
	case errors.Is(err, pricing.ErrNoStore):
		writeError(c, http.StatusServiceUnavailable, err.Error())
		return
	default:
		writeError(c, http.StatusInternalServerError, "Failed to load quote")
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"success": true, "quote": newWidgetQuoteView(q)})
}
