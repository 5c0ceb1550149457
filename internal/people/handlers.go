package people

import (
	"encoding/json"
	"net/http"

	"github.com/VeriTime/VT-Backend/internal/db"
	"github.com/google/uuid"
)

func ListPeopleHandler(w http.ResponseWriter, r *http.Request) {
	query := db.DB.Model(&Person{})

	if instID := r.URL.Query().Get("institutionId"); instID != "" {
		id, err := uuid.Parse(instID)
		if err != nil {
			http.Error(w, "Invalid institutionId", http.StatusBadRequest)
			return
		}
		query = query.Where("institution_id = ?", id)
	}
	if role := r.URL.Query().Get("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	var persons []Person
	if err := query.Order("employee_id ASC").Find(&persons).Error; err != nil {
		http.Error(w, "Failed to fetch people: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(persons)
}

func CreatePersonHandler(w http.ResponseWriter, r *http.Request) {
	var person Person
	if err := json.NewDecoder(r.Body).Decode(&person); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if person.EmployeeID == "" || person.FullName == "" {
		http.Error(w, "employee_id and full_name are required", http.StatusBadRequest)
		return
	}

	var existing Person
	if err := db.DB.First(&existing, "employee_id = ?", person.EmployeeID).Error; err == nil {
		http.Error(w, "Employee ID already enrolled", http.StatusConflict)
		return
	}

	person.IsActive = true
	if err := db.DB.Create(&person).Error; err != nil {
		http.Error(w, "Failed to enroll person", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(person)
}

func ListWorkGroupsHandler(w http.ResponseWriter, r *http.Request) {
	var groups []WorkGroup
	query := db.DB.Model(&WorkGroup{})

	if instID := r.URL.Query().Get("institutionId"); instID != "" {
		id, err := uuid.Parse(instID)
		if err != nil {
			http.Error(w, "Invalid institutionId", http.StatusBadRequest)
			return
		}
		query = query.Where("institution_id = ?", id)
	}

	if err := query.Order("name ASC").Find(&groups).Error; err != nil {
		http.Error(w, "Failed to fetch work groups: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(groups)
}
