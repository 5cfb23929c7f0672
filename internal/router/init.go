package router

import (
	appuser "github.com/oksasatya/user-records/internal/application"
	"github.com/oksasatya/user-records/internal/container"
	"github.com/oksasatya/user-records/internal/infrastructure/filestore"
	handlers "github.com/oksasatya/user-records/internal/interface/http"
	"github.com/oksasatya/user-records/internal/interface/middleware"
	"github.com/oksasatya/user-records/internal/interface/upload"
	"github.com/oksasatya/user-records/internal/router/modules"
	"github.com/oksasatya/user-records/pkg/events"
)

type UserModuleDeps struct {
	Service *appuser.Service
	Uploads *upload.Handler
	Handler *handlers.UserHandler
}

func buildUserDeps() UserModuleDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	// a nil *RabbitPublisher must not become a non-nil interface
	var pub events.Publisher
	if p := container.GetRabbitPub(); p != nil {
		pub = p
	}

	service := appuser.NewService(
		container.GetUserRepo(),
		logger,
		container.GetES(),
		cfg.ESUsersIndex,
		pub,
	)
	uploads := upload.New(container.GetFiles(), logger)
	handler := handlers.NewUserHandler(service, uploads, logger)

	return UserModuleDeps{
		Service: service,
		Uploads: uploads,
		Handler: handler,
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	userDeps := buildUserDeps()

	var allow middleware.AllowFunc
	if cfg.RateLimitBypassPrivate {
		allow = middleware.AllowPrivateIP()
	}

	r.Add(&modules.UserModule{
		Handler:         userDeps.Handler,
		Uploads:         userDeps.Uploads,
		Redis:           container.GetRedis(),
		WritesPerMinute: cfg.RateLimitWritesPerMin,
		Allow:           allow,
	})
	r.Add(modules.NewHealthModule(handlers.NewHealthHandler(container.GetUserRepo())))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(container.GetRedis()))
	}

	if local, ok := container.GetFiles().(*filestore.Local); ok {
		r.Engine.Static(local.Prefix(), local.Dir())
	}
}
