package handlers

import (
	"context"
	"net/http"

	"github.com/nexcodes/softec-25-sub000/internal/metrics"
	"github.com/nexcodes/softec-25-sub000/internal/middleware"
	"github.com/nexcodes/softec-25-sub000/internal/services"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// Deps is everything the router wires into handlers
type Deps struct {
	Users    *services.UserService
	Crimes   *services.CrimeService
	Votes    *services.VoteService
	Comments *services.CommentService
	Media    *services.MediaService
	Lawyers  *services.LawyerService
	Stats    *services.StatsService
	Push     *services.PushService
	Hub      *services.FeedHub

	// Ping checks the database for /healthz. Nil skips the check.
	Ping func(ctx context.Context) error
}

// NewRouter builds the HTTP API
func NewRouter(d Deps) http.Handler {
	userHandler := NewUserHandler(d.Users)
	crimeHandler := NewCrimeHandler(d.Crimes, d.Hub, d.Push)
	voteHandler := NewVoteHandler(d.Votes, d.Hub)
	commentHandler := NewCommentHandler(d.Comments, d.Hub, d.Push)
	mediaHandler := NewMediaHandler(d.Media)
	lawyerHandler := NewLawyerHandler(d.Lawyers)
	statsHandler := NewStatsHandler(d.Stats)
	wsHandler := NewWebSocketHandler(d.Hub, d.Users, d.Crimes)

	requireAuth := middleware.AuthMiddleware(d.Users)
	optionalAuth := middleware.OptionalAuth(d.Users)

	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(corsMiddleware)

	r.Get("/healthz", healthHandler(d.Ping))
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/register", userHandler.Register)
			r.Post("/login", userHandler.Login)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/me", userHandler.Me)
				r.Patch("/me/push-token", userHandler.UpdatePushToken)
			})
		})

		r.Route("/crimes", func(r chi.Router) {
			// Anonymous reporting and browsing
			r.Group(func(r chi.Router) {
				r.Use(optionalAuth)
				r.Get("/", crimeHandler.ListCrimes)
				r.Post("/", crimeHandler.ReportCrime)
				r.Get("/{crime_id}", crimeHandler.GetCrime)
				r.Get("/{crime_id}/comments", commentHandler.ListComments)
				r.Get("/{crime_id}/media", mediaHandler.ListMedia)
				r.Post("/{crime_id}/media/upload-url", mediaHandler.CreateUploadURL)
				r.Post("/{crime_id}/media", mediaHandler.AttachMedia)
			})

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Patch("/{crime_id}", crimeHandler.UpdateCrime)
				r.Patch("/{crime_id}/moderation", crimeHandler.ModerateCrime)
				r.Post("/{crime_id}/votes", voteHandler.CastVote)
				r.Post("/{crime_id}/comments", commentHandler.AddComment)
			})
		})

		r.With(requireAuth).Patch("/comments/{comment_id}/pin", commentHandler.PinComment)

		r.Route("/lawyers", func(r chi.Router) {
			r.Get("/", lawyerHandler.SearchLawyers)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/profile", lawyerHandler.GetOwnProfile)
				r.Post("/profile", lawyerHandler.SubmitProfile)
				r.Patch("/{lawyer_id}/verify", lawyerHandler.VerifyLawyer)
			})

			r.Get("/{lawyer_id}", lawyerHandler.GetLawyer)
		})

		r.Get("/stats", statsHandler.Summary)
		r.Get("/stats/map", statsHandler.MapPoints)
	})

	// WebSocket route
	r.Get("/ws/crimes/{crime_id}", wsHandler.HandleFeed)

	return r
}

func healthHandler(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			if err := ping(r.Context()); err != nil {
				log.Error().Err(err).Msg("Health check failed")
				respondError(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
