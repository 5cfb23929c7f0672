package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the shape of every error response.
type ErrorBody struct {
	Error     string            `json:"error"`
	Field     string            `json:"field,omitempty"`
	Details   string            `json:"details,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// MessageBody is returned by endpoints that only confirm success.
type MessageBody struct {
	Message string `json:"message"`
}

// Error aborts the request with a single human-readable message.
func Error(ctx *gin.Context, status int, message, field string) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	ctx.AbortWithStatusJSON(status, ErrorBody{
		Error:     message,
		Field:     field,
		RequestID: ctx.GetString("request_id"),
	})
}

// Invalid aborts with 400 and a per-field breakdown of binding errors.
func Invalid(ctx *gin.Context, message string, fields map[string]string) {
	ctx.AbortWithStatusJSON(http.StatusBadRequest, ErrorBody{
		Error:     message,
		Fields:    fields,
		RequestID: ctx.GetString("request_id"),
	})
}

// Internal is the catch-all server error body.
func Internal(ctx *gin.Context, details string) {
	ctx.AbortWithStatusJSON(http.StatusInternalServerError, ErrorBody{
		Error:     "Something went wrong!",
		Details:   details,
		RequestID: ctx.GetString("request_id"),
	})
}

func Message(ctx *gin.Context, status int, message string) {
	if status == 0 {
		status = http.StatusOK
	}
	ctx.JSON(status, MessageBody{Message: message})
}
