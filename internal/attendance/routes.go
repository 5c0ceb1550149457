package attendance

import (
	"net/http"

	"github.com/VeriTime/VT-Backend/internal/auth"
	"github.com/VeriTime/VT-Backend/internal/middleware"
	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"
)

func SetupRoutes() http.Handler {
	r := chi.NewRouter()
	sessionFetcher := auth.SessionInfo{}

	// Kiosk endpoints are unauthenticated but rate limited: palm and card
	// readers post here directly without a browser session.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitMiddleware(rate.Limit(5), 10))
		r.Post("/checkin", CheckinHandler)
		r.Get("/checkin", TodayHandler)
		r.Post("/absence", AbsenceHandler)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.SessionMiddleware(sessionFetcher))
		r.Get("/realtime", RealtimeHandler)
		r.Get("/analytics", AnalyticsHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminMiddleware)
			r.Get("/records", RecordsHandler)
			r.Post("/manual-log", ManualLogHandler)
		})
	})

	return r
}
