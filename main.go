package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/VeriTime/VT-Backend/internal/attendance"
	"github.com/VeriTime/VT-Backend/internal/auth"
	"github.com/VeriTime/VT-Backend/internal/db"
	"github.com/VeriTime/VT-Backend/internal/leave"
	"github.com/VeriTime/VT-Backend/internal/middleware"
	"github.com/VeriTime/VT-Backend/internal/notify"
	"github.com/VeriTime/VT-Backend/internal/org"
	"github.com/VeriTime/VT-Backend/internal/people"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	response := "Server is up!"
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, response)
}

func main() {
	_ = godotenv.Load(".env.local")
	db.Connect()

	port := os.Getenv("PORT")
	if port == "" {
		port = "5050"
	}

	auth.Init()
	org.Init()
	people.Init()
	notify.Init()
	attendance.Init()
	leave.Init()

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Get("/", RootHandler)

	r.Mount("/auth", auth.SetupRoutes())
	r.Mount("/org", org.SetupRoutes())
	r.Mount("/people", people.SetupRoutes())
	r.Mount("/attendance", attendance.SetupRoutes())
	r.Mount("/notifications", notify.SetupRoutes())
	r.Mount("/leave", leave.SetupRoutes())

	fmt.Println("Server listening on port :" + port + "...")

	http.ListenAndServe("0.0.0.0:"+port, r)
}
