package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"speedyvan/internal/modules/pricing"
)

type carbonReq struct {
	DistanceKm *float64 `json:"distanceKm" binding:"required,gt=0"`
}

type carbonResp struct {
	Success bool `json:"success"`
	pricing.CarbonEstimate
}

// Carbon handles POST /api/carbon/estimate.
func Carbon(c *gin.Context) {
	var req carbonReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalid(c, err)
		return
	}
	writeJSON(c, http.StatusOK, carbonResp{Success: true, CarbonEstimate: pricing.EstimateCarbon(*req.DistanceKm)})
}
