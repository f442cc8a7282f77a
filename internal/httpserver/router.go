package httpserver

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"fitsocial/internal/config"
	"fitsocial/internal/domain"
	"fitsocial/internal/security"
	"fitsocial/internal/service"
	"fitsocial/internal/ws"
)

// Deps carries the constructed services and repositories the router wires
// into routes.
type Deps struct {
	Users         domain.UserRepository
	Notifications domain.NotificationRepository
	Messages      *service.MessageService
	Notifier      *service.NotificationService
	Achievements  *service.AchievementService
	Unread        *service.UnreadService
	Tokens        *security.TokenService
	Hub           *ws.Hub
}

// NewRouter constructs the main HTTP router and wires routes and middleware.
func NewRouter(cfg *config.Config, d Deps) http.Handler {
	r := chi.NewRouter()

	// Middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"message":"FitSocial Realtime API","version":"1.0.0"}`))
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// API routes (all authenticated; token issuance is external)
	r.Route("/api", func(r chi.Router) {
		r.Use(AuthMiddleware(d.Tokens, d.Users))

		// Domain event triggers posted by the CRUD layer
		r.Route("/events", func(r chi.Router) {
			r.Post("/like", handleLikeEvent(d.Notifier))
			r.Post("/comment", handleCommentEvent(d.Notifier))
			r.Post("/share", handleShareEvent(d.Notifier))
			r.Post("/follow", handleFollowEvent(d.Notifier, d.Achievements))
			r.Post("/routine-saved", handleRoutineSavedEvent(d.Notifier))
			r.Post("/post-created", handleContentCreatedEvent(d.Achievements))
			r.Post("/routine-created", handleContentCreatedEvent(d.Achievements))
		})

		// Recovery surfaces for traffic missed while disconnected
		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", handleListNotifications(d.Notifications))
			r.Get("/unread-count", handleNotificationUnreadCount(d.Notifications))
			r.Post("/read", handleMarkNotificationsRead(d.Notifications))
		})

		r.Route("/messages", func(r chi.Router) {
			r.Get("/unread-count", handleMessageUnreadCount(d.Unread))
			r.Post("/read", handleMarkMessagesRead(d.Messages))
		})
	})

	// WebSocket endpoint
	r.Get("/ws", ws.MakeHandler(d.Hub, d.Tokens, d.Users, d.Messages, d.Unread, cfg.CORSOrigins))

	return r
}

// writeJSON is a small helper to send JSON responses.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}
