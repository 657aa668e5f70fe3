package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"

	"github.com/Dosada05/league-standings/handlers"
	"github.com/Dosada05/league-standings/middleware"
	"github.com/Dosada05/league-standings/models"
)

type Options struct {
	JWTSecret       []byte
	AllowedOrigins  []string
	WritesPerMinute int
}

func SetupRoutes(
	router chi.Router,
	opts Options,
	matchHandler *handlers.MatchHandler,
	standingsHandler *handlers.StandingsHandler,
	rosterHandler *handlers.RosterHandler,
	referenceHandler *handlers.ReferenceHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(opts.JWTSecret))

		// Browsers cannot set headers on the upgrade request, so the token
		// may also come in the query string.
		r.Get("/ws/tournaments/{tournamentID}/divisions/{divisionID}", webSocketHandler.ServeWs)

		r.Route("/api", func(r chi.Router) {
			r.Use(middleware.RateLimitWrites(opts.WritesPerMinute))

			r.Get("/players/{playerID}", referenceHandler.GetPlayer)

			r.Route("/tournaments/{tournamentID}/divisions/{divisionID}", func(r chi.Router) {
				r.Get("/", referenceHandler.GetDivision)
				r.Get("/standings", standingsHandler.GetStandings)
				r.Get("/home-away", standingsHandler.HomeAway)
				r.Get("/matches", matchHandler.ListMatches)
				r.Post("/matches", matchHandler.CreateMatch)
				r.Get("/roster", rosterHandler.GetRoster)
				r.With(middleware.RequireRole(string(models.RoleAdmin))).Post("/roster/refresh", rosterHandler.RefreshRoster)
			})

			r.Route("/matches/{matchID}", func(r chi.Router) {
				r.Get("/", matchHandler.GetMatch)
				r.Post("/claim", matchHandler.ClaimMatch)
				r.Put("/schedule", matchHandler.UpdateSchedule)
				r.Put("/result", matchHandler.RecordResult)
				r.Delete("/", matchHandler.DeleteMatch)
			})
		})
	})
}
