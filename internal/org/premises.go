package org

import (
	"context"
	"fmt"

	"github.com/VeriTime/VT-Backend/internal/db"
	"github.com/google/uuid"
)

// VerifiedPremises returns the premises of one institution that may take
// part in geofence evaluation: active, attendance-enabled, and verified.
// Callers must not relax this filter.
func VerifiedPremises(ctx context.Context, institutionID uuid.UUID) ([]Premise, error) {
	var premises []Premise
	err := db.DB.WithContext(ctx).
		Where("institution_id = ? AND is_active = ? AND is_attendance_enabled = ? AND location_status = ?",
			institutionID, true, true, LocationVerified).
		Find(&premises).Error
	if err != nil {
		return nil, fmt.Errorf("fetch verified premises: %w", err)
	}
	return premises, nil
}

// FindInstitution loads one institution by id.
func FindInstitution(ctx context.Context, id uuid.UUID) (*Institution, error) {
	var inst Institution
	if err := db.DB.WithContext(ctx).First(&inst, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &inst, nil
}
