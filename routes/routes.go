package routes

import (
	"github.com/Bekarys01/unisport-system/handlers"
	"github.com/Bekarys01/unisport-system/middleware"
	"github.com/Bekarys01/unisport-system/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret string,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	eventHandler *handlers.EventHandler,
	formationHandler *handlers.FormationHandler,
	notificationHandler *handlers.NotificationHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate([]byte(jwtSecret))

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Route("/users", func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/me", userHandler.GetMe)
		r.Patch("/me", userHandler.UpdateMe)
		r.Post("/me/avatar", userHandler.UploadAvatar)
	})

	router.Route("/events", func(r chi.Router) {
		r.Get("/", eventHandler.ListEvents)
		r.Get("/{eventID}", eventHandler.GetEvent)
		r.Get("/{eventID}/teams", formationHandler.ListTeams)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/", eventHandler.CreateEvent)
			r.Post("/{eventID}/banner", eventHandler.UploadBanner)

			r.Post("/{eventID}/invites", formationHandler.CreateInvite)
			r.Get("/{eventID}/invites", formationHandler.ListMyInvites)
			r.Post("/{eventID}/invites/{inviteID}/accept", formationHandler.AcceptInvite)
			r.Delete("/{eventID}/invites/{inviteID}", formationHandler.RejectInvite)

			r.Post("/{eventID}/teams", formationHandler.CommitTeam)
			r.Delete("/{eventID}/members/{memberID}", formationHandler.RemoveMember)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin))
				r.Delete("/{eventID}/teams/{teamName}", formationHandler.DeleteTeam)
			})
		})
	})

	router.Route("/notifications", func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/", notificationHandler.ListPending)
	})

	router.Route("/ws", func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/inbox", webSocketHandler.ServeInbox)
		r.Get("/events/{eventID}", webSocketHandler.ServeEvent)
	})

	router.Route("/admin", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(middleware.RequireRole(models.RoleAdmin))
		r.Get("/stats", eventHandler.GetStats)
	})
}
