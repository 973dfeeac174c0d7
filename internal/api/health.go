package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/shelfmark/internal/database"
)

// Health returns the liveness handler. It reports degraded (503) when the
// database does not answer a ping.
func Health(db *database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbStatus := "up"
		status := http.StatusOK

		if db == nil || db.PingContext(c.Request.Context()) != nil {
			dbStatus = "down"
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"status":   statusText(status),
			"database": dbStatus,
		})
	}
}

func statusText(status int) string {
	if status == http.StatusOK {
		return "ok"
	}
	return "degraded"
}
