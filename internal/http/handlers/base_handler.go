// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"sharetaxi/internal/config"
	"sharetaxi/internal/report"
)

type errorResponse struct {
	Error string `json:"error"`
}

var errBadRequest = errors.New("bad request")

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writeRunError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, config.ErrInvalid):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, report.ErrNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

// queryInt reads a positive integer query parameter, clamped to max.
func queryInt(c *gin.Context, key string, def, max int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errBadRequest
	}
	if n > max {
		n = max
	}
	return n, nil
}
