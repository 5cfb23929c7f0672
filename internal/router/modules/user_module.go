package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/user-records/internal/interface/http"
	"github.com/oksasatya/user-records/internal/interface/middleware"
	"github.com/oksasatya/user-records/internal/interface/upload"
)

// UserModule wires the user record routes:
// GET /users, GET /users/:id, GET /search/users,
// POST /users, PUT /users/:id, DELETE /users/:id.
// Writes are rate limited per IP and route; POST and PUT accept one image upload.
type UserModule struct {
	Handler         *handlers.UserHandler
	Uploads         *upload.Handler
	Redis           *redis.Client
	WritesPerMinute int
	Allow           middleware.AllowFunc
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	writeLimiter := middleware.RateLimit(m.Redis, m.WritesPerMinute, time.Minute, middleware.KeyByIPAndRoute(), m.Allow)

	rg.GET("/users", m.Handler.List)
	rg.GET("/users/:id", m.Handler.Get)
	rg.GET("/search/users", m.Handler.Search)

	rg.POST("/users", writeLimiter, m.Uploads.Middleware(), m.Handler.Create)
	rg.PUT("/users/:id", writeLimiter, m.Uploads.Middleware(), m.Handler.Update)
	rg.DELETE("/users/:id", writeLimiter, m.Handler.Delete)
}
