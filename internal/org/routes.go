package org

import (
	"net/http"

	"github.com/VeriTime/VT-Backend/internal/auth"
	"github.com/VeriTime/VT-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()
	sessionFetcher := auth.SessionInfo{}

	r.Get("/institutions", ListInstitutionsHandler)
	r.Get("/premises", ListPremisesHandler)

	// Mutations are admin-only
	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Use(middleware.AdminMiddleware)
		r.Post("/institutions", CreateInstitutionHandler)
		r.Post("/premises", CreatePremiseHandler)
		r.Patch("/premises/{id}/verify", VerifyPremiseHandler)
	})

	return r
}
