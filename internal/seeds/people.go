package seeds

import (
	"fmt"
	"log"
	"strings"

	"github.com/VeriTime/VT-Backend/internal/db"
	"github.com/VeriTime/VT-Backend/internal/people"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

var workGroupNames = []string{"teaching", "admin staff", "support staff", "management"}

func SeedWorkGroups() error {
	inst, err := seededInstitution()
	if err != nil {
		return err
	}

	titler := cases.Title(language.English)
	created := 0
	for _, raw := range workGroupNames {
		name := titler.String(raw)

		var existing people.WorkGroup
		err := db.DB.First(&existing, "institution_id = ? AND name = ?", inst.ID, name).Error
		if err == nil {
			log.Printf("⚠️ Work group exists, skipping: %s", name)
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("DB error on work group %s: %w", name, err)
		}

		group := people.WorkGroup{InstitutionID: inst.ID, Name: name}
		if err := db.DB.Create(&group).Error; err != nil {
			return fmt.Errorf("failed to create work group %s: %w", name, err)
		}
		created++
	}

	log.Printf("✅ Seeded %d work groups", created)
	return nil
}

type seedPerson struct {
	EmployeeID string
	FullName   string
	Role       string
	Group      string
}

var seedPeople = []seedPerson{
	{"T001", "aminah binti hassan", "teacher", "Teaching"},
	{"T002", "rajesh kumar", "teacher", "Teaching"},
	{"T003", "siti nurhaliza binti ahmad", "teacher", "Teaching"},
	{"A001", "wong mei ling", "clerk", "Admin Staff"},
	{"S001", "muthu a/l krishnan", "janitor", "Support Staff"},
	{"M001", "ahmad faizal bin ismail", "principal", "Management"},
}

func SeedPeople() error {
	inst, err := seededInstitution()
	if err != nil {
		return err
	}

	var groups []people.WorkGroup
	if err := db.DB.Where("institution_id = ?", inst.ID).Find(&groups).Error; err != nil {
		return fmt.Errorf("failed to load work groups: %w", err)
	}
	groupByName := make(map[string]people.WorkGroup, len(groups))
	for _, g := range groups {
		groupByName[g.Name] = g
	}

	titler := cases.Title(language.Malay)
	created := 0
	for _, sp := range seedPeople {
		var existing people.Person
		err := db.DB.First(&existing, "employee_id = ?", sp.EmployeeID).Error
		if err == nil {
			log.Printf("⚠️ Person exists, skipping: %s", sp.EmployeeID)
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("DB error on person %s: %w", sp.EmployeeID, err)
		}

		person := people.Person{
			EmployeeID:    sp.EmployeeID,
			FullName:      titler.String(sp.FullName),
			Email:         strings.ToLower(sp.EmployeeID) + "@veritime.app",
			Role:          sp.Role,
			InstitutionID: &inst.ID,
			IsActive:      true,
		}
		if group, ok := groupByName[sp.Group]; ok {
			person.WorkGroupID = &group.ID
		}
		if err := db.DB.Create(&person).Error; err != nil {
			return fmt.Errorf("failed to create person %s: %w", sp.EmployeeID, err)
		}
		created++
	}

	log.Printf("✅ Seeded %d people", created)
	return nil
}
