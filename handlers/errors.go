package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tallyhq/tally-api/models"
)

// writeError maps the service error taxonomy onto HTTP status codes. Anything
// outside the taxonomy is an infrastructure failure and stays opaque to the
// client.
func writeError(c *gin.Context, err error) {
	var (
		validation *models.ValidationError
		authz      *models.AuthorizationError
		notFound   *models.NotFoundError
		conflict   *models.ConflictError
	)
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Msg})
	case errors.As(err, &authz):
		c.JSON(http.StatusForbidden, gin.H{"error": authz.Msg})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Msg})
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, gin.H{"error": conflict.Msg})
	default:
		slog.Error("internal error", "path", c.Request.URL.Path, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
