package org

import (
	"encoding/json"
	"net/http"

	"github.com/VeriTime/VT-Backend/internal/db"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func ListPremisesHandler(w http.ResponseWriter, r *http.Request) {
	institutionID, err := uuid.Parse(r.URL.Query().Get("institutionId"))
	if err != nil {
		http.Error(w, "institutionId is required", http.StatusBadRequest)
		return
	}

	var premises []Premise
	if err := db.DB.Where("institution_id = ?", institutionID).
		Order("created_at ASC").Find(&premises).Error; err != nil {
		http.Error(w, "Failed to fetch premises: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(premises)
}

func CreatePremiseHandler(w http.ResponseWriter, r *http.Request) {
	var premise Premise
	if err := json.NewDecoder(r.Body).Decode(&premise); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if premise.InstitutionID == uuid.Nil {
		http.Error(w, "institution_id is required", http.StatusBadRequest)
		return
	}
	if premise.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}
	if premise.AttendanceRadius <= 0 {
		premise.AttendanceRadius = 300
	}
	// New premises always start unverified; verification is a separate step
	premise.LocationStatus = LocationPending

	if err := db.DB.Create(&premise).Error; err != nil {
		http.Error(w, "Failed to create premise", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(premise)
}

// VerifyPremiseHandler marks a premise as location-verified so it becomes
// eligible for geofenced check-ins.
func VerifyPremiseHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid premise id", http.StatusBadRequest)
		return
	}

	var premise Premise
	if err := db.DB.First(&premise, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			http.Error(w, "Premise not found", http.StatusNotFound)
			return
		}
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}

	if err := db.DB.Model(&premise).Update("location_status", LocationVerified).Error; err != nil {
		http.Error(w, "Failed to verify premise", http.StatusInternalServerError)
		return
	}

	premise.LocationStatus = LocationVerified
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(premise)
}

func ListInstitutionsHandler(w http.ResponseWriter, r *http.Request) {
	var institutions []Institution
	if err := db.DB.Order("name ASC").Find(&institutions).Error; err != nil {
		http.Error(w, "Failed to fetch institutions: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(institutions)
}

func CreateInstitutionHandler(w http.ResponseWriter, r *http.Request) {
	var inst Institution
	if err := json.NewDecoder(r.Body).Decode(&inst); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if inst.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	if err := db.DB.Create(&inst).Error; err != nil {
		http.Error(w, "Failed to create institution", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(inst)
}
