// Package router wires handlers and middleware into the HTTP mux.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/pixelcrate/pixelcrate-server/internal/api/http/handler"
	"github.com/pixelcrate/pixelcrate-server/internal/api/http/middleware"
	"github.com/pixelcrate/pixelcrate-server/internal/logger"
)

// New builds the application router.
func New(
	authHandler *handler.AuthHandler,
	photoHandler *handler.PhotoHandler,
	authenticate *middleware.Authenticate,
	logger *logger.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.NewLogging(logger).Handler)
	r.Use(chimw.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.SignUp)
			r.Post("/signin", authHandler.SignIn)
			r.Post("/forgot-password", authHandler.ForgotPassword)
			r.Post("/verify-code", authHandler.VerifyResetCode)
			r.Post("/reset-password", authHandler.ResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(authenticate.Handler)
				r.Get("/me", authHandler.Me)
				r.Post("/signout", authHandler.SignOut)
				r.Post("/update-password", authHandler.UpdatePassword)
			})
		})

		r.Route("/photos", func(r chi.Router) {
			r.Use(authenticate.Handler)
			r.Post("/", photoHandler.Upload)
			r.Get("/", photoHandler.List)
			r.Get("/{id}", photoHandler.Get)
			r.Delete("/{id}", photoHandler.Release)
		})
	})

	return r
}
