// internal/wire/wire.go
package wire

import (
	"net/http"

	"workspace-hub/internal/adaptor"
	"workspace-hub/internal/data/repository"
	"workspace-hub/internal/usecase"
	"workspace-hub/pkg/cache"
	"workspace-hub/pkg/mail"
	"workspace-hub/pkg/middleware"
	"workspace-hub/pkg/oauth"
	"workspace-hub/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// App holds the wired dependencies
type App struct {
	Router  *chi.Mux
	Sweeper *usecase.Sweeper
}

// Wiring initializes services, handlers and routes
func Wiring(
	repo *repository.Repository,
	providers oauth.Providers,
	kv cache.KVStore,
	mailer mail.Mailer,
	config *utils.Config,
	logger *zap.Logger,
) *App {
	service := usecase.NewService(repo, providers, kv, mailer, config, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, repo, config, logger)
	sweeper := usecase.NewSweeper(service.OTP, repo.Blacklist, config.Sweep, logger)

	return &App{
		Router:  router,
		Sweeper: sweeper,
	}
}

// setupRouter configures the chi router
func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	// Apply routes
	wireAuth(r, handler.Auth, repo, config, logger)
	wireOAuth(r, handler.OAuth, repo, config, logger)
	wireUser(r, handler.User, repo, config, logger)
	wireWorkspace(r, handler.Workspace, repo, config, logger)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
