package people

import (
	"log"

	"github.com/VeriTime/VT-Backend/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "org"); err != nil {
		log.Fatal("Failed to ensure schema org: ", err)
	}

	if err := db.DB.AutoMigrate(&WorkGroup{}, &Person{}); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}
}
