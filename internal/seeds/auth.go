package seeds

import (
	"fmt"
	"log"
	"os"

	"github.com/VeriTime/VT-Backend/internal/auth"
	"github.com/VeriTime/VT-Backend/internal/db"
	"github.com/VeriTime/VT-Backend/internal/leave"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var defaultLeaveTypes = []leave.LeaveType{
	{Name: "Annual Leave", Description: "Planned time off", MaxDays: 14},
	{Name: "Sick Leave", Description: "Illness with or without medical certificate", MaxDays: 14},
	{Name: "Emergency Leave", Description: "Unplanned urgent absence", MaxDays: 3},
	{Name: "Unpaid Leave", Description: "Approved absence without pay", MaxDays: 30},
}

func SeedLeaveTypes() error {
	created := 0
	for _, lt := range defaultLeaveTypes {
		var existing leave.LeaveType
		err := db.DB.First(&existing, "name = ?", lt.Name).Error
		if err == nil {
			log.Printf("⚠️ Leave type exists, skipping: %s", lt.Name)
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("DB error on leave type %s: %w", lt.Name, err)
		}

		if err := db.DB.Create(&lt).Error; err != nil {
			return fmt.Errorf("failed to create leave type %s: %w", lt.Name, err)
		}
		created++
	}

	log.Printf("✅ Seeded %d leave types", created)
	return nil
}

// SeedAdminUser creates the bootstrap admin account. Skipped unless
// ADMIN_EMAIL and ADMIN_PASSWORD are both set.
func SeedAdminUser() error {
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Println("⚠️ ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin user")
		return nil
	}

	var existing auth.User
	err := db.DB.First(&existing, "email = ?", email).Error
	if err == nil {
		log.Printf("⚠️ Admin user exists, skipping: %s", email)
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return fmt.Errorf("DB error on admin user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	user := auth.User{
		Email:          email,
		HashedPassword: string(hashed),
		Role:           "admin",
	}
	if err := db.DB.Create(&user).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	log.Printf("✅ Seeded admin user %s", email)
	return nil
}
