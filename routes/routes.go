package routes

import (
	"net/http"
	"time"

	_ "github.com/Dosada05/tournament-progression/docs"
	"github.com/Dosada05/tournament-progression/handlers"
	"github.com/Dosada05/tournament-progression/middleware"
	"github.com/Dosada05/tournament-progression/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	JWTSecret      []byte
	AllowedOrigins []string
}

func SetupRoutes(
	router *chi.Mux,
	opts Options,
	bracketHandler *handlers.BracketHandler,
	progressionHandler *handlers.ProgressionHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	// WebSocket вне таймаута запросов
	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)

	authenticate := middleware.Authenticate(opts.JWTSecret)
	managersOnly := middleware.Authorize(models.ResultManagers...)

	router.Route("/api", func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		// Чистые превью, без сохранения
		r.Post("/brackets/preview", bracketHandler.PreviewBracket)
		r.Post("/seeding/preview", bracketHandler.PreviewSeeding)
		r.Post("/pairings/preview", bracketHandler.PreviewPairings)

		r.Route("/tournaments/{tournamentID}", func(r chi.Router) {
			r.Get("/matches", progressionHandler.ListMatches)
			r.Get("/ledger", progressionHandler.Ledger)
			r.Get("/scoring", progressionHandler.GetScoringConfig)

			r.Group(func(r chi.Router) {
				r.Use(authenticate, managersOnly)
				r.Put("/standings", bracketHandler.ReplaceStandings)
				r.Put("/scoring", progressionHandler.UpdateScoringConfig)
				r.Post("/knockout", bracketHandler.GenerateKnockout)
			})
		})

		r.Route("/matches/{matchID}", func(r chi.Router) {
			r.Get("/", progressionHandler.GetMatch)

			r.Group(func(r chi.Router) {
				r.Use(authenticate, managersOnly)
				r.Put("/roster", progressionHandler.ConfirmRoster)
				r.Post("/result", progressionHandler.RecordResult)
				r.Post("/advance", progressionHandler.Advance)
			})
		})
	})
}
