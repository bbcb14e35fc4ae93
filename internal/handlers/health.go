package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/penpal-app/penpal-api/internal/database"
	apierrors "github.com/penpal-app/penpal-api/internal/errors"
)

// Health reports whether the service can reach its database. Always cheap;
// meant for load-balancer probes.
func Health(c *gin.Context) {
	if err := database.Ping(); err != nil {
		apierrors.ServiceUnavailable(c, "Database unreachable")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": "up",
	})
}
