package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/greenleaf-study/greenleaf/internal/api"
	apiMiddleware "github.com/greenleaf-study/greenleaf/internal/api/middleware"
	"github.com/greenleaf-study/greenleaf/internal/api/shared"
	"github.com/greenleaf-study/greenleaf/internal/platform/logger"
)

const corsMaxAgeSeconds = 300

// setupRouter builds the chi router with middleware and every route.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(logger.WithLogger(req.Context(), app.logger)))
		})
	})
	r.Use(apiMiddleware.TraceMiddleware)
	r.Use(apiMiddleware.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.config.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{apiMiddleware.TraceIDHeader},
		AllowCredentials: false,
		MaxAge:           corsMaxAgeSeconds,
	}))
	r.Use(rateLimiter(app.config.Server.RequestsPerMinute))

	authHandler := api.NewAuthHandler(app.userService, app.jwtService, app.config.Auth, app.logger)
	deckHandler := api.NewDeckHandler(app.deckService, app.config.Import, app.logger)
	cardHandler := api.NewCardHandler(app.cardService, app.cardReviewService, app.logger)
	studyHandler := api.NewStudyHandler(app.studyService, app.logger)
	socialHandler := api.NewSocialHandler(app.socialService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Public authentication endpoints carry a stricter limit.
		r.Group(func(r chi.Router) {
			r.Use(rateLimiter(app.config.Server.AuthRequestsPerMinute))
			r.Post("/auth/register", authHandler.Register)
			r.Post("/auth/login", authHandler.Login)
			r.Post("/auth/refresh", authHandler.RefreshToken)
		})

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/auth/2fa/setup", authHandler.SetupTOTP)
			r.Post("/auth/2fa/enable", authHandler.EnableTOTP)
			r.Post("/auth/2fa/disable", authHandler.DisableTOTP)
			r.Get("/me", authHandler.Me)
			r.Put("/me", authHandler.UpdateMe)

			r.Route("/decks", func(r chi.Router) {
				r.Post("/", deckHandler.CreateDeck)
				r.Get("/", deckHandler.ListDecks)
				r.Get("/{id}", deckHandler.GetDeck)
				r.Put("/{id}", deckHandler.UpdateDeck)
				r.Delete("/{id}", deckHandler.DeleteDeck)
				r.Post("/{id}/import", deckHandler.ImportCards)
				r.Post("/{id}/share", deckHandler.ShareDeck)
				r.Post("/{id}/cards", cardHandler.CreateCard)
				r.Get("/{id}/cards", cardHandler.ListCards)
			})

			r.Route("/cards", func(r chi.Router) {
				r.Get("/due", cardHandler.ListDue)
				r.Put("/{id}", cardHandler.UpdateCard)
				r.Delete("/{id}", cardHandler.DeleteCard)
				r.Post("/{id}/review", cardHandler.SubmitReview)
			})

			r.Post("/study/sessions", studyHandler.RecordSession)
			r.Get("/streak", studyHandler.GetStreak)
			r.Put("/streak/garden-override", studyHandler.SetGardenOverride)

			r.Route("/friends", func(r chi.Router) {
				r.Get("/", socialHandler.ListFriends)
				r.Get("/requests", socialHandler.ListIncomingRequests)
				r.Post("/requests", socialHandler.SendFriendRequest)
				r.Post("/requests/{id}/accept", socialHandler.AcceptFriendRequest)
				r.Delete("/{userID}", socialHandler.RemoveFriend)
			})

			r.Post("/messages", socialHandler.SendMessage)
			r.Get("/messages/{userID}", socialHandler.Conversation)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", slog.String("error", err.Error()))
		}
	})

	return r
}

// rateLimiter limits each client IP to perMinute requests and answers
// with the standard JSON error body when the limit is hit.
func rateLimiter(perMinute int) func(http.Handler) http.Handler {
	return httprate.Limit(perMinute, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			shared.RespondWithErrorAndLog(w, r, http.StatusTooManyRequests, "Too many requests", nil)
		}))
}
