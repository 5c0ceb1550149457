package attendance

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// useTestService points the package-level service at in-memory fakes for the
// duration of one test.
func useTestService(t *testing.T, store *memStore, notifier *fakeNotifier) {
	t.Helper()
	prev := Svc
	Svc = newTestService(store, fakePremises{premises: campusPremises()}, notifier)
	t.Cleanup(func() { Svc = prev })
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestCheckinHandler_Success(t *testing.T) {
	useTestService(t, newMemStore(), &fakeNotifier{})

	rec := postJSON(t, CheckinHandler, "/attendance/checkin", map[string]interface{}{
		"employeeId": "T001",
		"type":       "check_in",
		"method":     "palm",
		"location":   map[string]float64{"latitude": 3.2133, "longitude": 101.7472},
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Status    Status `json:"status"`
			Persisted bool   `json:"persisted"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !resp.Success || resp.Data.Status != StatusPresent || !resp.Data.Persisted {
		t.Errorf("unexpected response: %s", rec.Body.String())
	}
}

func TestCheckinHandler_DefaultsToCheckInAndManual(t *testing.T) {
	store := newMemStore()
	useTestService(t, store, &fakeNotifier{})

	rec := postJSON(t, CheckinHandler, "/attendance/checkin", map[string]interface{}{
		"employeeId": "T001",
		"location":   map[string]float64{"latitude": 3.2133, "longitude": 101.7472},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	for _, stored := range store.recs {
		if stored.Method != MethodManual {
			t.Errorf("expected default method manual, got %s", stored.Method)
		}
	}
}

func TestCheckinHandler_BadJSON(t *testing.T) {
	useTestService(t, newMemStore(), &fakeNotifier{})

	req := httptest.NewRequest(http.MethodPost, "/attendance/checkin", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	CheckinHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestCheckinHandler_MissingIdentity(t *testing.T) {
	useTestService(t, newMemStore(), &fakeNotifier{})

	rec := postJSON(t, CheckinHandler, "/attendance/checkin", map[string]interface{}{
		"location": map[string]float64{"latitude": 3.2133, "longitude": 101.7472},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestCheckinHandler_UnknownEventType(t *testing.T) {
	useTestService(t, newMemStore(), &fakeNotifier{})

	rec := postJSON(t, CheckinHandler, "/attendance/checkin", map[string]interface{}{
		"employeeId": "T001",
		"type":       "lunch_break",
		"location":   map[string]float64{"latitude": 3.2133, "longitude": 101.7472},
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown type, got %d", rec.Code)
	}
}

func TestCheckinHandler_DuplicateIsClientError(t *testing.T) {
	useTestService(t, newMemStore(), &fakeNotifier{})

	body := map[string]interface{}{
		"employeeId": "T001",
		"method":     "palm",
		"location":   map[string]float64{"latitude": 3.2133, "longitude": 101.7472},
	}
	if rec := postJSON(t, CheckinHandler, "/attendance/checkin", body); rec.Code != http.StatusOK {
		t.Fatalf("first check-in: expected 200, got %d", rec.Code)
	}

	rec := postJSON(t, CheckinHandler, "/attendance/checkin", body)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 on duplicate, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "already checked in") {
		t.Errorf("expected duplicate message, got %s", rec.Body.String())
	}
}

func TestTodayHandler(t *testing.T) {
	useTestService(t, newMemStore(), &fakeNotifier{})

	req := httptest.NewRequest(http.MethodGet, "/attendance/checkin?employeeId=T001", nil)
	rec := httptest.NewRecorder()
	TodayHandler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data TodayStatus `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Data.HasCheckedIn || resp.Data.HasCheckedOut {
		t.Errorf("expected clean slate, got %+v", resp.Data)
	}
	if resp.Data.Date != "2026-03-02" {
		t.Errorf("expected fixture date, got %s", resp.Data.Date)
	}
}

func TestTodayHandler_MissingIdentity(t *testing.T) {
	useTestService(t, newMemStore(), &fakeNotifier{})

	req := httptest.NewRequest(http.MethodGet, "/attendance/checkin", nil)
	rec := httptest.NewRecorder()
	TodayHandler(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestAbsenceHandler(t *testing.T) {
	store := newMemStore()
	useTestService(t, store, &fakeNotifier{})

	rec := postJSON(t, AbsenceHandler, "/attendance/absence", map[string]interface{}{
		"employeeId":  "T001",
		"reason":      "flu",
		"absenceType": "sick",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(store.recs) != 1 {
		t.Fatalf("expected 1 stored record, got %d", len(store.recs))
	}
	for _, stored := range store.recs {
		if stored.Status != StatusAbsentDocumented {
			t.Errorf("expected absent_documented, got %s", stored.Status)
		}
	}
}

func TestAbsenceHandler_RejectsUnknownType(t *testing.T) {
	useTestService(t, newMemStore(), &fakeNotifier{})

	rec := postJSON(t, AbsenceHandler, "/attendance/absence", map[string]interface{}{
		"employeeId":  "T001",
		"reason":      "vibes",
		"absenceType": "vacation",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown absence type, got %d", rec.Code)
	}
}

func TestAbsenceHandler_RequiresReason(t *testing.T) {
	useTestService(t, newMemStore(), &fakeNotifier{})

	rec := postJSON(t, AbsenceHandler, "/attendance/absence", map[string]interface{}{
		"employeeId":  "T001",
		"absenceType": "sick",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without reason, got %d", rec.Code)
	}
}
