// README: Base handler utilities (JSON helpers, error bodies).
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writeInvalid(c *gin.Context, err error) {
	writeJSON(c, http.StatusBadRequest, errorResponse{Error: "Invalid parameters", Details: err.Error()})
}
