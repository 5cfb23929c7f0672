package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-records/pkg/response"
)

// Recovery turns any panic escaping a handler into a 500 with a generic
// message plus the panic detail.
func Recovery(logger *logrus.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		detail := fmt.Sprint(recovered)
		if logger != nil {
			logger.WithFields(logrus.Fields{
				"request_id": c.GetString("request_id"),
				"path":       c.Request.URL.Path,
				"panic":      detail,
			}).Error("unhandled panic")
		}
		response.Internal(c, detail)
	})
}

// NotFound answers unknown routes with the standard error body.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "Route not found", "")
	}
}
