package main

import (
	"log"

	"github.com/VeriTime/VT-Backend/internal/attendance"
	"github.com/VeriTime/VT-Backend/internal/auth"
	"github.com/VeriTime/VT-Backend/internal/db"
	"github.com/VeriTime/VT-Backend/internal/leave"
	"github.com/VeriTime/VT-Backend/internal/notify"
	"github.com/VeriTime/VT-Backend/internal/org"
	"github.com/VeriTime/VT-Backend/internal/people"
	"github.com/VeriTime/VT-Backend/internal/seeds"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env.local")
	db.Connect()

	auth.Init()
	org.Init()
	people.Init()
	notify.Init()
	attendance.Init()
	leave.Init()

	if err := seeds.SeedAll(); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}
}
