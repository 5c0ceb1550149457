package people

import (
	"time"

	"github.com/google/uuid"
)

type WorkGroup struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	InstitutionID uuid.UUID `json:"institution_id" gorm:"type:uuid;index"`
	Name          string    `json:"name"`
	CreatedAt     time.Time `json:"created_at"`
}

type Person struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	EmployeeID    string     `json:"employee_id" gorm:"uniqueIndex"`
	FullName      string     `json:"full_name"`
	Email         string     `json:"email"`
	Role          string     `json:"role"` // free-form group label, e.g. "teacher", "admin staff"
	InstitutionID *uuid.UUID `json:"institution_id" gorm:"type:uuid;index"`
	WorkGroupID   *uuid.UUID `json:"work_group_id" gorm:"type:uuid"`
	IsActive      bool       `json:"is_active" gorm:"default:true"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (WorkGroup) TableName() string { return "org.work_groups" }
func (Person) TableName() string    { return "org.people" }
