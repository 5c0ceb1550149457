package attendance

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/VeriTime/VT-Backend/internal/people"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

type checkinRequest struct {
	UserID     string    `json:"userId"`
	EmployeeID string    `json:"employeeId"`
	Type       string    `json:"type" validate:"omitempty,oneof=check_in check_out"`
	Method     string    `json:"method"`
	Location   *Location `json:"location"`
}

// CheckinHandler processes POST /attendance/checkin for both event types.
func CheckinHandler(w http.ResponseWriter, r *http.Request) {
	var req checkinRequest
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
	if req.Type == "" {
		req.Type = EventCheckIn
	}
	if req.Method == "" {
		req.Method = MethodManual
	}

	result, err := Svc.HandleEvent(r.Context(), EventRequest{
		Ref:      people.Ref{PersonID: req.UserID, EmployeeID: req.EmployeeID},
		Type:     req.Type,
		Location: req.Location,
		Method:   req.Method,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": result.Message,
		"data":    result,
	})
}

// TodayHandler answers GET /attendance/checkin: has this person checked
// in/out today, and with which record.
func TodayHandler(w http.ResponseWriter, r *http.Request) {
	ref := people.Ref{
		PersonID:   r.URL.Query().Get("userId"),
		EmployeeID: r.URL.Query().Get("employeeId"),
	}
	if ref.IsZero() {
		http.Error(w, "userId or employeeId is required", http.StatusBadRequest)
		return
	}

	status, err := Svc.Today(r.Context(), ref)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data":    status,
	})
}

// AnalyticsHandler serves GET /attendance/analytics. Storage failures
// degrade to the empty window so dashboards never crash on sparse data.
func AnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	endDate := q.Get("endDate")
	if endDate == "" {
		endDate = time.Now().In(Svc.Policy().Location()).Format("2006-01-02")
	}
	startDate := q.Get("startDate")
	if startDate == "" {
		end, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			http.Error(w, "Invalid endDate, want YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		startDate = end.AddDate(0, 0, -30).Format("2006-01-02")
	}
	group := q.Get("group")

	persons, err := activePeople(r)
	if err != nil {
		http.Error(w, "Failed to fetch people: "+err.Error(), http.StatusInternalServerError)
		return
	}

	events, err := Svc.Store().ListRange(r.Context(), startDate, endDate)
	if err != nil {
		// Missing history must not take the dashboard down
		log.Printf("[attendance] analytics range query failed, serving empty window: %v", err)
		events = nil
	}

	window := Aggregate(events, persons, startDate, endDate, group, Svc.Policy())

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":   true,
		"analytics": window,
		"debug": map[string]interface{}{
			"totalUsers":   len(persons),
			"totalRecords": len(events),
			"dateRange":    map[string]string{"startDate": startDate, "endDate": endDate},
			"group":        group,
		},
	})
}

type realtimeRow struct {
	ID           string    `json:"id"`
	PersonID     uuid.UUID `json:"personId"`
	Name         string    `json:"name"`
	EmployeeID   string    `json:"employeeId"`
	Role         string    `json:"role"`
	Status       Status    `json:"status"`
	LastActivity string    `json:"lastActivity"`
	WorkHours    float64   `json:"workHours"`

	activityAt *time.Time
}

type realtimeStats struct {
	TotalUsers         int    `json:"totalUsers"`
	CheckedIn          int    `json:"checkedIn"`
	OnTime             int    `json:"onTime"`
	Late               int    `json:"late"`
	Absent             int    `json:"absent"`
	AverageCheckInTime string `json:"averageCheckInTime"`
	PeakActivity       string `json:"peakActivity"`
}

// RealtimeHandler serves GET /attendance/realtime: one row per person for
// the day, absent rows synthesized, sorted by most recent activity.
func RealtimeHandler(w http.ResponseWriter, r *http.Request) {
	policy := Svc.Policy()
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().In(policy.Location()).Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		http.Error(w, "Invalid date, want YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	persons, err := activePeople(r)
	if err != nil {
		http.Error(w, "Failed to fetch people: "+err.Error(), http.StatusInternalServerError)
		return
	}

	records, err := Svc.Store().ListByDate(r.Context(), date)
	if err != nil {
		records = nil // degrade to all-absent rather than erroring
	}

	byPerson := make(map[uuid.UUID]*Record, len(records))
	for i := range records {
		byPerson[records[i].PersonID] = &records[i]
	}

	rows := make([]realtimeRow, 0, len(persons))
	stats := realtimeStats{
		TotalUsers:         len(persons),
		AverageCheckInTime: "--:--",
		PeakActivity:       "--:--",
	}

	var checkInTimes []time.Time
	hourCounts := make(map[int]int)

	for _, p := range persons {
		rec := byPerson[p.ID]
		status := DeriveStatus(rec, policy)

		row := realtimeRow{
			PersonID:     p.ID,
			Name:         p.FullName,
			EmployeeID:   p.EmployeeID,
			Role:         p.Role,
			Status:       status,
			LastActivity: date,
		}
		if rec != nil {
			row.ID = rec.ID
			if rec.WorkedHours != nil {
				row.WorkHours = *rec.WorkedHours
			}
			if last := lastActivity(rec); last != nil {
				row.activityAt = last
				row.LastActivity = last.In(policy.Location()).Format(time.RFC3339)
			}
			if rec.CheckInTime != nil {
				checkInTimes = append(checkInTimes, *rec.CheckInTime)
				hourCounts[rec.CheckInTime.In(policy.Location()).Hour()]++
			}
		} else {
			row.ID = "absent-" + p.ID.String()
		}
		rows = append(rows, row)

		switch status {
		case StatusCheckedIn:
			stats.CheckedIn++
			stats.OnTime++
		case StatusLate:
			stats.CheckedIn++
			stats.Late++
		case StatusPendingApproval:
			stats.CheckedIn++
		case StatusAbsent, StatusAbsentDocumented:
			stats.Absent++
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		switch {
		case a.activityAt != nil && b.activityAt != nil:
			return a.activityAt.After(*b.activityAt)
		case a.activityAt != nil:
			return true
		case b.activityAt != nil:
			return false
		default:
			return a.EmployeeID < b.EmployeeID
		}
	})
	if len(rows) > 50 {
		rows = rows[:50]
	}

	if len(checkInTimes) > 0 {
		var sum int64
		for _, t := range checkInTimes {
			sum += t.Unix()
		}
		avg := time.Unix(sum/int64(len(checkInTimes)), 0).In(policy.Location())
		stats.AverageCheckInTime = avg.Format("15:04")
	}
	peak, peakCount := 0, 0
	for hour, count := range hourCounts {
		if count > peakCount || (count == peakCount && hour < peak) {
			peak, peakCount = hour, count
		}
	}
	if peakCount > 0 {
		stats.PeakActivity = fmt.Sprintf("%02d:00", peak)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":        true,
		"attendanceData": rows,
		"stats":          stats,
		"lastUpdated":    time.Now().UTC().Format(time.RFC3339),
	})
}

// RecordsHandler serves GET /attendance/records for the admin views.
func RecordsHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	date := q.Get("date")
	startDate := q.Get("startDate")
	endDate := q.Get("endDate")

	var records []Record
	var err error
	switch {
	case date != "":
		if _, perr := time.Parse("2006-01-02", date); perr != nil {
			http.Error(w, "Invalid date format. Use YYYY-MM-DD format.", http.StatusBadRequest)
			return
		}
		records, err = Svc.Store().ListByDate(r.Context(), date)
	case startDate != "" && endDate != "":
		if _, perr := time.Parse("2006-01-02", startDate); perr != nil {
			http.Error(w, "Invalid startDate format. Use YYYY-MM-DD format.", http.StatusBadRequest)
			return
		}
		if _, perr := time.Parse("2006-01-02", endDate); perr != nil {
			http.Error(w, "Invalid endDate format. Use YYYY-MM-DD format.", http.StatusBadRequest)
			return
		}
		records, err = Svc.Store().ListRange(r.Context(), startDate, endDate)
	default:
		today := time.Now().In(Svc.Policy().Location()).Format("2006-01-02")
		records, err = Svc.Store().ListByDate(r.Context(), today)
	}
	if err != nil {
		if IsStructural(err) {
			records = []Record{}
		} else {
			http.Error(w, "Failed to fetch records: "+err.Error(), http.StatusInternalServerError)
			return
		}
	}

	if employeeID := q.Get("employeeId"); employeeID != "" {
		filtered := records[:0]
		for _, rec := range records {
			if rec.EmployeeID == employeeID {
				filtered = append(filtered, rec)
			}
		}
		records = filtered
	}
	if records == nil {
		records = []Record{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data":    records,
	})
}

type absenceRequest struct {
	UserID          string   `json:"userId"`
	EmployeeID      string   `json:"employeeId"`
	Date            string   `json:"date"`
	Reason          string   `json:"reason" validate:"required"`
	AbsenceType     string   `json:"absenceType" validate:"required,oneof=sick emergency personal medical family"`
	ContactNumber   string   `json:"contactNumber"`
	AdditionalNotes string   `json:"additionalNotes"`
	Documentation   []string `json:"documentation"`
}

// AbsenceHandler serves POST /attendance/absence: documents an absence on
// the day's row (creating it when needed).
func AbsenceHandler(w http.ResponseWriter, r *http.Request) {
	var req absenceRequest
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
	if req.Date != "" {
		if _, err := time.Parse("2006-01-02", req.Date); err != nil {
			http.Error(w, "Invalid date, want YYYY-MM-DD", http.StatusBadRequest)
			return
		}
	}

	rec, err := Svc.SubmitAbsence(r.Context(),
		people.Ref{PersonID: req.UserID, EmployeeID: req.EmployeeID},
		req.Date,
		AbsenceDocumentation{
			Type:            req.AbsenceType,
			Reason:          req.Reason,
			ContactNumber:   req.ContactNumber,
			AdditionalNotes: req.AdditionalNotes,
			Files:           req.Documentation,
		})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "Absence documentation submitted successfully",
		"data":    rec,
	})
}

type manualLogRequest struct {
	UserID       string `json:"userId"`
	EmployeeID   string `json:"employeeId"`
	Date         string `json:"date" validate:"required"`
	CheckInTime  string `json:"checkInTime"`  // "HH:MM", institution-local
	CheckOutTime string `json:"checkOutTime"` // "HH:MM", institution-local
	Status       string `json:"status" validate:"omitempty,oneof=present late absent absent_documented pending_approval"`
	Method       string `json:"verificationMethod"`
	Notes        string `json:"notes"`
}

// ManualLogHandler serves POST /attendance/manual-log: an admin upsert of a
// day's record, e.g. to fix a missed kiosk scan.
func ManualLogHandler(w http.ResponseWriter, r *http.Request) {
	var req manualLogRequest
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
	day, err := time.ParseInLocation("2006-01-02", req.Date, Svc.Policy().Location())
	if err != nil {
		http.Error(w, "Invalid date, want YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	person, err := people.Resolve(r.Context(), people.Ref{PersonID: req.UserID, EmployeeID: req.EmployeeID})
	if err != nil {
		writeServiceError(w, ErrPersonNotFound)
		return
	}

	parseClock := func(clock string) (*time.Time, error) {
		if clock == "" {
			return nil, nil
		}
		t, err := time.ParseInLocation("2006-01-02 15:04", req.Date+" "+clock, Svc.Policy().Location())
		if err != nil {
			return nil, err
		}
		return &t, nil
	}
	checkIn, err := parseClock(req.CheckInTime)
	if err != nil {
		http.Error(w, "Invalid checkInTime, want HH:MM", http.StatusBadRequest)
		return
	}
	checkOut, err := parseClock(req.CheckOutTime)
	if err != nil {
		http.Error(w, "Invalid checkOutTime, want HH:MM", http.StatusBadRequest)
		return
	}

	rec, err := Svc.Store().FindForDate(r.Context(), person.ID, day.Format("2006-01-02"))
	if err != nil {
		http.Error(w, "Failed to load record: "+err.Error(), http.StatusInternalServerError)
		return
	}
	fresh := rec == nil
	if fresh {
		rec = &Record{
			ID:            uuid.NewString(),
			PersonID:      person.ID,
			Date:          day.Format("2006-01-02"),
			EmployeeID:    person.EmployeeID,
			InstitutionID: person.InstitutionID,
			WorkGroupID:   person.WorkGroupID,
		}
	}

	rec.CheckInTime = checkIn
	rec.CheckOutTime = checkOut
	if checkIn != nil && checkOut != nil {
		worked := WorkedHours(*checkIn, *checkOut)
		overtime := Overtime(worked, Svc.Policy().StandardHours)
		rec.WorkedHours = &worked
		rec.OvertimeHours = &overtime
	}
	if req.Status != "" {
		rec.Status = Status(req.Status)
	} else {
		rec.Status = DeriveStatus(rec, Svc.Policy())
	}
	if req.Method != "" {
		rec.Method = req.Method
	}
	if req.Notes != "" {
		rec.Notes = req.Notes
	}

	if fresh {
		err = Svc.Store().Insert(r.Context(), rec)
		if IsUniqueViolation(err) {
			http.Error(w, "Record already exists for this date", http.StatusConflict)
			return
		}
	} else {
		err = Svc.Store().Update(r.Context(), rec)
	}
	if err != nil {
		http.Error(w, "Failed to save record: "+err.Error(), http.StatusInternalServerError)
		return
	}
	rec.Persisted = true

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data":    rec,
	})
}

func activePeople(r *http.Request) ([]people.Person, error) {
	if instID := r.URL.Query().Get("institutionId"); instID != "" {
		id, err := uuid.Parse(instID)
		if err != nil {
			return nil, errors.New("invalid institutionId")
		}
		return people.ActiveByInstitution(r.Context(), id)
	}
	return people.AllActive(r.Context())
}

func lastActivity(rec *Record) *time.Time {
	if rec.CheckOutTime != nil {
		return rec.CheckOutTime
	}
	return rec.CheckInTime
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrPersonNotFound),
		errors.Is(err, ErrInvalidLocation),
		errors.Is(err, ErrAlreadyCheckedIn),
		errors.Is(err, ErrAlreadyCheckedOut),
		errors.Is(err, ErrNotCheckedInYet):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
