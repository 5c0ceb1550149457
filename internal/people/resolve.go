package people

import (
	"context"
	"errors"

	"github.com/VeriTime/VT-Backend/internal/db"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrPersonNotFound = errors.New("person not found")

// Ref identifies a person either by directory id or by employee code.
// Mobile clients usually send the id; kiosks only know the employee code.
type Ref struct {
	PersonID   string
	EmployeeID string
}

func (ref Ref) IsZero() bool { return ref.PersonID == "" && ref.EmployeeID == "" }

// Resolve maps a Ref to exactly one active person. Lookup order matches the
// clients' expectations: explicit employee code first, then directory id.
func Resolve(ctx context.Context, ref Ref) (*Person, error) {
	tx := db.DB.WithContext(ctx)

	if ref.EmployeeID != "" {
		var p Person
		err := tx.First(&p, "employee_id = ? AND is_active = ?", ref.EmployeeID, true).Error
		if err == nil {
			return &p, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if ref.PersonID != "" {
		id, err := uuid.Parse(ref.PersonID)
		if err != nil {
			return nil, ErrPersonNotFound
		}
		var p Person
		err = tx.First(&p, "id = ? AND is_active = ?", id, true).Error
		if err == nil {
			return &p, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	return nil, ErrPersonNotFound
}

// ActiveByInstitution lists the active people of one institution.
func ActiveByInstitution(ctx context.Context, institutionID uuid.UUID) ([]Person, error) {
	var ps []Person
	err := db.DB.WithContext(ctx).
		Where("institution_id = ? AND is_active = ?", institutionID, true).
		Order("employee_id ASC").
		Find(&ps).Error
	return ps, err
}

// AllActive lists every active person across institutions.
func AllActive(ctx context.Context) ([]Person, error) {
	var ps []Person
	err := db.DB.WithContext(ctx).
		Where("is_active = ?", true).
		Order("employee_id ASC").
		Find(&ps).Error
	return ps, err
}
