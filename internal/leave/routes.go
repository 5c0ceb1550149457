package leave

import (
	"net/http"

	"github.com/VeriTime/VT-Backend/internal/auth"
	"github.com/VeriTime/VT-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()
	sessionFetcher := auth.SessionInfo{}

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Post("/", SubmitHandler)
		r.Get("/types", ListTypesHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminMiddleware)
			r.Get("/", ListHandler)
			r.Patch("/{id}", ReviewHandler)
		})
	})

	return r
}
