// Package rest exposes the chat services over a JSON request/response API.
package rest

import (
	"chat-desk/auth"
	"chat-desk/services"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const defaultMaxBodyBytes = 1 << 20

type Services struct {
	Auth         services.IAuthService
	Identities   services.IIdentityService
	Projects     services.IProjectService
	Participants services.IParticipantService
	Chats        services.IChatService
	Messages     services.IMessageService
}

type API struct {
	log          *slog.Logger
	svc          Services
	maxBodyBytes int64
}

// NewRouter builds the HTTP surface. The websocket gateway is mounted on
// /ws and authenticates on its own.
func NewRouter(log *slog.Logger, svc Services, gateway http.Handler) http.Handler {
	api := &API{log: log, svc: svc, maxBodyBytes: defaultMaxBodyBytes}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(api.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if gateway != nil {
		r.Handle("/ws", gateway)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", api.register)
		r.Post("/auth/login", api.login)

		r.Group(func(r chi.Router) {
			r.Use(api.identify)

			r.Route("/projects", func(r chi.Router) {
				r.Post("/", api.createProject)
				r.Get("/", api.listProjects)
				r.Route("/{projectID}", func(r chi.Router) {
					r.Get("/", api.getProject)

					r.Post("/participants", api.createParticipant)
					r.Get("/participants", api.listParticipants)
					r.Get("/participants/count", api.countParticipants)
					r.Get("/participants/uid/{uid}", api.getParticipantByUID)
					r.Get("/participants/{participantID}", api.getParticipant)
					r.Delete("/participants/{participantID}", api.deleteParticipant)

					r.Post("/chats", api.getOrCreateChat)
					r.Get("/chats", api.listProjectChats)
				})
			})

			r.Route("/chats", func(r chi.Router) {
				r.Get("/", api.listChats)
				r.Route("/{chatID}", func(r chi.Router) {
					r.Get("/", api.getChat)
					r.Post("/deactivate", api.deactivateChat)
					r.Post("/read", api.markRead)
					r.Get("/messages", api.listMessages)
					r.Post("/messages", api.sendMessage)
					r.Get("/presence", api.presence)
				})
			})
		})
	})
	return r
}

// identify resolves the caller from the bearer token or the participant
// headers and stores it in the request context.
func (a *API) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := a.svc.Identities.Resolve(r.Context(), auth.CredentialsFromRequest(r))
		if err != nil {
			writeError(a.log, w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
	})
}

func (a *API) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		a.log.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
