package leave

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/VeriTime/VT-Backend/internal/db"
	"github.com/VeriTime/VT-Backend/internal/notify"
	"github.com/VeriTime/VT-Backend/internal/people"
	"github.com/VeriTime/VT-Backend/internal/utils"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var validate = validator.New()

type submitRequest struct {
	UserID      string `json:"userId"`
	EmployeeID  string `json:"employeeId"`
	LeaveTypeID string `json:"leaveTypeId" validate:"required,uuid"`
	StartDate   string `json:"startDate" validate:"required"`
	EndDate     string `json:"endDate" validate:"required"`
	Reason      string `json:"reason" validate:"required"`
}

// SubmitHandler serves POST /leave: files a pending leave request.
func SubmitHandler(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "Invalid request: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.UserID == "" && req.EmployeeID == "" {
		http.Error(w, "userId or employeeId is required", http.StatusBadRequest)
		return
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		http.Error(w, "Invalid startDate, want YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		http.Error(w, "Invalid endDate, want YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	if end.Before(start) {
		http.Error(w, "endDate must not be before startDate", http.StatusBadRequest)
		return
	}

	person, err := people.Resolve(r.Context(), people.Ref{PersonID: req.UserID, EmployeeID: req.EmployeeID})
	if err != nil {
		http.Error(w, "Person not found", http.StatusNotFound)
		return
	}

	leaveTypeID := uuid.MustParse(req.LeaveTypeID)
	var leaveType LeaveType
	if err := db.DB.WithContext(r.Context()).First(&leaveType, "id = ?", leaveTypeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Unknown leave type", http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to load leave type", http.StatusInternalServerError)
		return
	}
	if days := int(end.Sub(start).Hours()/24) + 1; days > leaveType.MaxDays {
		http.Error(w, "Requested range exceeds the maximum for this leave type", http.StatusBadRequest)
		return
	}

	request := LeaveRequest{
		PersonID:    person.ID,
		EmployeeID:  person.EmployeeID,
		LeaveTypeID: leaveTypeID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Reason:      req.Reason,
		Status:      StatusPending,
	}
	if err := db.DB.WithContext(r.Context()).Create(&request).Error; err != nil {
		http.Error(w, "Failed to create leave request", http.StatusInternalServerError)
		return
	}

	if err := notify.CreateLeaveNotice(r.Context(), person.ID, person.FullName, person.EmployeeID, req.StartDate, req.EndDate); err != nil {
		log.Printf("[leave] failed to create leave notification: %v", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data":    request,
	})
}

type reviewRequest struct {
	Action string `json:"action" validate:"required,oneof=approve reject"`
	Note   string `json:"note"`
}

// ReviewHandler serves PATCH /leave/{id}: an admin approves or rejects a
// pending request. Requests already reviewed cannot be re-reviewed.
func ReviewHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid request id", http.StatusBadRequest)
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, "Invalid request: "+err.Error(), http.StatusBadRequest)
		return
	}

	var request LeaveRequest
	if err := db.DB.WithContext(r.Context()).First(&request, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "Leave request not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to load leave request", http.StatusInternalServerError)
		return
	}
	if request.Status != StatusPending {
		http.Error(w, "Leave request has already been reviewed", http.StatusConflict)
		return
	}

	request.Status = StatusApproved
	if req.Action == "reject" {
		request.Status = StatusRejected
	}
	request.ReviewNote = req.Note
	now := time.Now()
	request.ReviewedAt = &now
	if reviewerID, ok := utils.GetUserIDFromContext(r.Context()); ok {
		if parsed, err := uuid.Parse(reviewerID); err == nil {
			request.ReviewedBy = &parsed
		}
	}

	if err := db.DB.WithContext(r.Context()).Save(&request).Error; err != nil {
		http.Error(w, "Failed to update leave request", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data":    request,
	})
}

// ListHandler serves GET /leave with optional status and employeeId filters.
func ListHandler(w http.ResponseWriter, r *http.Request) {
	query := db.DB.WithContext(r.Context()).Order("created_at DESC")
	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if employeeID := r.URL.Query().Get("employeeId"); employeeID != "" {
		query = query.Where("employee_id = ?", employeeID)
	}

	var requests []LeaveRequest
	if err := query.Find(&requests).Error; err != nil {
		http.Error(w, "Failed to fetch leave requests", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data":    requests,
	})
}

// ListTypesHandler serves GET /leave/types.
func ListTypesHandler(w http.ResponseWriter, r *http.Request) {
	var types []LeaveType
	if err := db.DB.WithContext(r.Context()).Order("name ASC").Find(&types).Error; err != nil {
		http.Error(w, "Failed to fetch leave types", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data":    types,
	})
}
