package routes

import (
	"net/http"

	"github.com/Nikman800/GambaGame/handlers"
	"github.com/Nikman800/GambaGame/logger"
	"github.com/Nikman800/GambaGame/metrics"
	"github.com/Nikman800/GambaGame/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

func SetupRoutes(
	router chi.Router,
	verifier middleware.TokenVerifier,
	allowedOrigins []string,
	bracketHandler *handlers.BracketHandler,
	webSocketHandler *handlers.WebSocketHandler,
	healthHandler *handlers.HealthHandler,
) {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	router.Use(chiMiddleware.RealIP)
	router.Use(logger.RequestID)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", logger.HeaderRequestID},
		ExposedHeaders:   []string{logger.HeaderRequestID},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(metrics.Middleware)

	router.Get("/healthz", healthHandler.Healthz)
	router.Get("/readyz", healthHandler.Readyz)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/swagger/*", httpSwagger.WrapHandler)

	router.Get("/open-brackets", bracketHandler.ListOpenHandler)

	router.Route("/brackets", func(r chi.Router) {
		r.Get("/{bracketID}", bracketHandler.GetByIDHandler)
		r.Get("/{bracketID}/bets", bracketHandler.GetBetsHandler)
		r.Get("/{bracketID}/final-results", bracketHandler.FinalResultsHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(verifier))

			r.Post("/", bracketHandler.CreateHandler)
			r.Get("/", bracketHandler.ListMineHandler)

			r.Put("/{bracketID}", bracketHandler.UpdateHandler)
			r.Delete("/{bracketID}", bracketHandler.DeleteHandler)
			r.Put("/{bracketID}/open", bracketHandler.OpenHandler)
			r.Put("/{bracketID}/close", bracketHandler.CloseHandler)
			r.Post("/{bracketID}/start", bracketHandler.StartHandler)
			r.Post("/{bracketID}/match/start", bracketHandler.StartMatchHandler)
			r.Post("/{bracketID}/result", bracketHandler.SubmitResultHandler)
			r.Post("/{bracketID}/end", bracketHandler.EndHandler)
			r.Post("/{bracketID}/join", bracketHandler.JoinHandler)
			r.Post("/{bracketID}/bet", bracketHandler.BetHandler)
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuthenticate(verifier))
		r.Get("/ws/brackets/{bracketID}", webSocketHandler.ServeWs)
	})
}
