package leave

import (
	"log"

	"github.com/VeriTime/VT-Backend/internal/db"
)

func Init() {
	if err := db.EnsureSchema(db.DB, "leave"); err != nil {
		log.Fatal("Failed to ensure schema leave: ", err)
	}

	if err := db.DB.AutoMigrate(&LeaveType{}, &LeaveRequest{}); err != nil {
		log.Fatal("Failed to auto-migrate tables", err)
	}
}
