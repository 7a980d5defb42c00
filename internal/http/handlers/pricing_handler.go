// README: Pricing handlers for quotes, price locks and the active tariff.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"speedyvan/internal/maps"
	"speedyvan/internal/modules/pricing"
	"speedyvan/internal/service"
	"speedyvan/internal/types"
)

type PricingHandler struct {
	planner *service.QuotePlanner
	pricing *pricing.Service
}

func NewPricingHandler(planner *service.QuotePlanner, pricingSvc *pricing.Service) *PricingHandler {
	return &PricingHandler{planner: planner, pricing: pricingSvc}
}

type pointReq struct {
	Lat *float64 `json:"lat" binding:"required,gte=-90,lte=90"`
	Lng *float64 `json:"lng" binding:"required,gte=-180,lte=180"`
}

func (p *pointReq) point() types.Point {
	return types.Point{Lat: *p.Lat, Lng: *p.Lng}
}

type quoteReq struct {
	PickupLat          *float64 `json:"pickupLat" binding:"required,gte=-90,lte=90"`
	PickupLng          *float64 `json:"pickupLng" binding:"required,gte=-180,lte=180"`
	DropoffLat         *float64 `json:"dropoffLat" binding:"required,gte=-90,lte=90"`
	DropoffLng         *float64 `json:"dropoffLng" binding:"required,gte=-180,lte=180"`
	VolumeCubicMeters  float64  `json:"volumeCubicMeters" binding:"required,gte=0.5,lte=50"`
	ServiceType        string   `json:"serviceType" binding:"required"`
	ItemCount          int      `json:"itemCount" binding:"required,gte=1"`
	PickupFloorNumber  *int     `json:"pickupFloorNumber" binding:"omitempty,gte=0"`
	PickupHasLift      *bool    `json:"pickupHasLift"`
	DropoffFloorNumber *int     `json:"dropoffFloorNumber" binding:"omitempty,gte=0"`
	DropoffHasLift     *bool    `json:"dropoffHasLift"`
}

// quoteResp carries the job duration, not the drive time.
type quoteResp struct {
	Success           bool                  `json:"success"`
	Quote             pricing.QuoteResponse `json:"quote"`
	Distance          float64               `json:"distance"`
	EstimatedDuration int                   `json:"estimatedDuration"`
}

// Quote handles POST /api/pricing/quote.
func (h *PricingHandler) Quote(c *gin.Context) {
	var req quoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalid(c, err)
		return
	}

	trip := h.planner.QuoteTrip(c.Request.Context(), service.TripRequest{
		From: types.Point{Lat: *req.PickupLat, Lng: *req.PickupLng},
		To:   types.Point{Lat: *req.DropoffLat, Lng: *req.DropoffLng},
		Quote: pricing.QuoteRequest{
			VolumeCubicMeters:  req.VolumeCubicMeters,
			ServiceType:        req.ServiceType,
			ItemCount:          req.ItemCount,
			PickupFloorNumber:  derefInt(req.PickupFloorNumber),
			PickupHasLift:      derefBool(req.PickupHasLift),
			DropoffFloorNumber: derefInt(req.DropoffFloorNumber),
			DropoffHasLift:     derefBool(req.DropoffHasLift),
		},
	})

	writeJSON(c, http.StatusOK, quoteResp{
		Success:           true,
		Quote:             trip.Quote,
		Distance:          trip.Distance.DistanceKm,
		EstimatedDuration: trip.Quote.EstimatedDurationMinutes,
	})
}

type lockReq struct {
	QuotePrice *float64 `json:"quotePrice" binding:"required,gt=0"`
	LockDays   *int     `json:"lockDays" binding:"omitempty,gte=1,lte=30"`
}

type lockResp struct {
	Success     bool      `json:"success"`
	LockFee     float64   `json:"lockFee"`
	LockedPrice float64   `json:"lockedPrice"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Lock handles POST /api/pricing/lock.
func (h *PricingHandler) Lock(c *gin.Context) {
	var req lockReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalid(c, err)
		return
	}
	days := pricing.DefaultLockDays
	if req.LockDays != nil {
		days = *req.LockDays
	}

	res := h.pricing.LockPrice(*req.QuotePrice, days)
	writeJSON(c, http.StatusOK, lockResp{
		Success:     true,
		LockFee:     res.LockFee,
		LockedPrice: res.LockedPrice,
		ExpiresAt:   res.ExpiresAt,
	})
}

// Rules handles GET /api/admin/pricing-rules.
func (h *PricingHandler) Rules(c *gin.Context) {
	cfg, err := h.pricing.Rules()
	if err != nil {
		writeError(c, http.StatusInternalServerError, "pricing rules invalid")
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"success": true, "config": cfg})
}

type distanceReq struct {
	From *pointReq `json:"from" binding:"required"`
	To   *pointReq `json:"to" binding:"required"`
}

type distanceResp struct {
	Success bool `json:"success"`
	maps.Estimate
}

// Distance handles POST /api/distance.
func (h *PricingHandler) Distance(c *gin.Context) {
	var req distanceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalid(c, err)
		return
	}
	est, err := h.planner.Distance(c.Request.Context(), req.From.point(), req.To.point())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "Failed to calculate distance")
		return
	}
	writeJSON(c, http.StatusOK, distanceResp{Success: true, Estimate: est})
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func derefBool(v *bool) bool {
	return v != nil && *v
}
