package notify

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/VeriTime/VT-Backend/internal/db"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ListHandler serves GET /notifications for the admin dashboard.
// ?unread=true filters to unread, ?limit caps the page (default 50).
func ListHandler(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 200 {
			http.Error(w, "limit must be between 1 and 200", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	query := db.DB.WithContext(r.Context()).Order("created_at DESC").Limit(limit)
	if r.URL.Query().Get("unread") == "true" {
		query = query.Where("read = ?", false)
	}
	if nType := r.URL.Query().Get("type"); nType != "" {
		query = query.Where("type = ?", nType)
	}

	var notifications []Notification
	if err := query.Find(&notifications).Error; err != nil {
		http.Error(w, "Failed to fetch notifications", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data":    notifications,
	})
}

// MarkReadHandler serves PATCH /notifications/{id}/read.
func MarkReadHandler(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "Invalid notification id", http.StatusBadRequest)
		return
	}

	result := db.DB.WithContext(r.Context()).
		Model(&Notification{}).
		Where("id = ?", id).
		Update("read", true)
	if result.Error != nil {
		http.Error(w, "Failed to update notification", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "Notification not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
}
