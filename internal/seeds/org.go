package seeds

import (
	"fmt"
	"log"
	"os"

	"github.com/VeriTime/VT-Backend/internal/db"
	"github.com/VeriTime/VT-Backend/internal/org"
	"gorm.io/gorm"
)

const defaultInstitutionName = "SMK Taman Melawati"

// SeedInstitution creates the demo institution when none exists yet.
// INSTITUTION_NAME overrides the default.
func SeedInstitution() error {
	name := os.Getenv("INSTITUTION_NAME")
	if name == "" {
		name = defaultInstitutionName
	}

	var existing org.Institution
	err := db.DB.First(&existing, "name = ?", name).Error
	if err == nil {
		log.Printf("⚠️ Institution exists, skipping: %s", name)
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return fmt.Errorf("DB error on institution %s: %w", name, err)
	}

	inst := org.Institution{Name: name, Timezone: "Asia/Kuala_Lumpur"}
	if err := db.DB.Create(&inst).Error; err != nil {
		return fmt.Errorf("failed to create institution %s: %w", name, err)
	}

	log.Printf("✅ Seeded institution %s", name)
	return nil
}

// SeedPremises registers the campus locations of the seeded institution.
// All come up verified so manual mobile check-ins work out of the box.
func SeedPremises() error {
	inst, err := seededInstitution()
	if err != nil {
		return err
	}

	premises := []org.Premise{
		{
			Name:                "Main Campus",
			Address:             "Jalan Bandar 13, Taman Melawati, 53100 Kuala Lumpur",
			Latitude:            3.2123,
			Longitude:           101.7472,
			AttendanceRadius:    300,
			IsActive:            true,
			IsAttendanceEnabled: true,
			LocationStatus:      org.LocationVerified,
		},
		{
			Name:                "Sports Complex",
			Address:             "Jalan Bandar 15, Taman Melawati, 53100 Kuala Lumpur",
			Latitude:            3.2151,
			Longitude:           101.7488,
			AttendanceRadius:    200,
			IsActive:            true,
			IsAttendanceEnabled: true,
			LocationStatus:      org.LocationVerified,
		},
	}

	created := 0
	for _, premise := range premises {
		var existing org.Premise
		err := db.DB.First(&existing, "institution_id = ? AND name = ?", inst.ID, premise.Name).Error
		if err == nil {
			log.Printf("⚠️ Premise exists, skipping: %s", premise.Name)
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("DB error on premise %s: %w", premise.Name, err)
		}

		premise.InstitutionID = inst.ID
		if err := db.DB.Create(&premise).Error; err != nil {
			return fmt.Errorf("failed to create premise %s: %w", premise.Name, err)
		}
		created++
	}

	log.Printf("✅ Seeded %d premises", created)
	return nil
}

func seededInstitution() (*org.Institution, error) {
	name := os.Getenv("INSTITUTION_NAME")
	if name == "" {
		name = defaultInstitutionName
	}
	var inst org.Institution
	if err := db.DB.First(&inst, "name = ?", name).Error; err != nil {
		return nil, fmt.Errorf("institution %s not seeded yet: %w", name, err)
	}
	return &inst, nil
}
