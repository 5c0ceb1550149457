package org

import (
	"log"

	"github.com/VeriTime/VT-Backend/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "org"); err != nil {
		log.Fatal("Failed to ensure schema org: ", err)
	}

	if err := db.DB.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		log.Fatal("Failed to enable uuid-ossp extension:", err)
	}

	if err := db.DB.AutoMigrate(&Institution{}, &Premise{}); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}
}
