// README: JSON response helpers + sentinel-error-to-status mapping,
// grounded on internal/http/handlers/base_handler.go's writeJSON/writeError/
// writeOrderError trio, generalized from order sentinel errors to the
// simulator's own (agentenv.ErrInvalidAction/ErrEpisodeOver,
// *scenario.ValidationError).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"deliverysim/internal/agentenv"
	"deliverysim/internal/scenario"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

// writeSimError maps the simulator's sentinel/typed errors to HTTP status
// codes, following the same switch-on-sentinel-error idiom as the
// teacher's writeOrderError (§7's "HTTP layer maps them to status codes
// with the same switch-on-sentinel-error idiom").
func writeSimError(c *gin.Context, err error) {
	var ve *scenario.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, agentenv.ErrInvalidAction):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, agentenv.ErrEpisodeOver):
		writeError(c, http.StatusConflict, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
