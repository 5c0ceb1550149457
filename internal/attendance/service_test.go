package attendance

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/VeriTime/VT-Backend/internal/config"
	"github.com/VeriTime/VT-Backend/internal/org"
	"github.com/VeriTime/VT-Backend/internal/people"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// memStore is an in-memory Store so service tests never touch the database.
type memStore struct {
	recs      map[string]*Record
	findErr   error
	insertErr error
	updateErr error
}

func newMemStore() *memStore {
	return &memStore{recs: make(map[string]*Record)}
}

func storeKey(personID uuid.UUID, date string) string {
	return personID.String() + "|" + date
}

func (m *memStore) FindForDate(ctx context.Context, personID uuid.UUID, date string) (*Record, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	rec, ok := m.recs[storeKey(personID, date)]
	if !ok {
		return nil, nil
	}
	return rec, nil
}

func (m *memStore) Insert(ctx context.Context, rec *Record) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	key := storeKey(rec.PersonID, rec.Date)
	if _, exists := m.recs[key]; exists {
		return &pgconn.PgError{Code: "23505"}
	}
	m.recs[key] = rec
	return nil
}

func (m *memStore) Update(ctx context.Context, rec *Record) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.recs[storeKey(rec.PersonID, rec.Date)] = rec
	return nil
}

func (m *memStore) ListByDate(ctx context.Context, date string) ([]Record, error) {
	var out []Record
	for _, rec := range m.recs {
		if rec.Date == date {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (m *memStore) ListRange(ctx context.Context, start, end string) ([]Record, error) {
	var out []Record
	for _, rec := range m.recs {
		if rec.Date >= start && rec.Date <= end {
			out = append(out, *rec)
		}
	}
	return out, nil
}

type fakeResolver struct {
	person *people.Person
}

func (f fakeResolver) Resolve(ctx context.Context, ref people.Ref) (*people.Person, error) {
	if f.person == nil {
		return nil, people.ErrPersonNotFound
	}
	return f.person, nil
}

type fakePremises struct {
	premises []org.Premise
	err      error
	timezone string
}

func (f fakePremises) VerifiedPremises(ctx context.Context, institutionID uuid.UUID) ([]org.Premise, error) {
	return f.premises, f.err
}

func (f fakePremises) InstitutionTimezone(ctx context.Context, institutionID uuid.UUID) (string, error) {
	return f.timezone, nil
}

type fakeNotifier struct {
	calls      int
	lastReason string
	err        error
}

func (f *fakeNotifier) ApprovalRequired(ctx context.Context, rec *Record, reason string) error {
	f.calls++
	f.lastReason = reason
	return f.err
}

// Shared fixture geometry: campus at (3.2123, 101.7472) with a 300m radius.
var (
	campusLat = 3.2123
	campusLon = 101.7472

	insideCampus  = Location{Latitude: 3.2133, Longitude: 101.7472} // ~111m away
	outsideCampus = Location{Latitude: 3.2573, Longitude: 101.7472} // ~5km away
)

func testInstitutionID() uuid.UUID {
	return uuid.MustParse("11111111-1111-1111-1111-111111111111")
}

func testPerson() *people.Person {
	instID := testInstitutionID()
	return &people.Person{
		ID:            uuid.MustParse("22222222-2222-2222-2222-222222222222"),
		EmployeeID:    "T001",
		FullName:      "Aminah Binti Hassan",
		InstitutionID: &instID,
		IsActive:      true,
	}
}

func campusPremises() []org.Premise {
	return []org.Premise{{
		InstitutionID:       testInstitutionID(),
		Name:                "Main Campus",
		Latitude:            campusLat,
		Longitude:           campusLon,
		AttendanceRadius:    300,
		IsActive:            true,
		IsAttendanceEnabled: true,
		LocationStatus:      org.LocationVerified,
	}}
}

// newTestService wires a service over in-memory fakes with a fixed clock of
// 08:50 institution time.
func newTestService(store *memStore, premises fakePremises, notifier *fakeNotifier) *Service {
	svc := NewService(store, fakeResolver{person: testPerson()}, premises, notifier, config.DefaultPolicy())
	loc, _ := time.LoadLocation("Asia/Kuala_Lumpur")
	svc.now = func() time.Time { return time.Date(2026, 3, 2, 8, 50, 0, 0, loc) }
	return svc
}

func checkInReq(loc Location, method string) EventRequest {
	return EventRequest{
		Ref:      people.Ref{EmployeeID: "T001"},
		Type:     EventCheckIn,
		Location: &loc,
		Method:   method,
	}
}

func TestHandleEvent_TrustedMethodBypassesGeofence(t *testing.T) {
	store := newMemStore()
	notifier := &fakeNotifier{}
	// Far from any premise: a palm scan must still be accepted verbatim.
	svc := newTestService(store, fakePremises{premises: campusPremises()}, notifier)

	result, err := svc.HandleEvent(context.Background(), checkInReq(outsideCampus, MethodPalm))
	if err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	if result.Status != StatusPresent {
		t.Errorf("expected present, got %s", result.Status)
	}
	if result.NeedsApproval {
		t.Error("trusted method must not require approval")
	}
	if !result.Persisted {
		t.Error("expected record to be persisted")
	}
	if notifier.calls != 0 {
		t.Errorf("expected no approval notice, got %d", notifier.calls)
	}
	if len(store.recs) != 1 {
		t.Fatalf("expected 1 stored record, got %d", len(store.recs))
	}
}

func TestHandleEvent_ManualInsideFence(t *testing.T) {
	store := newMemStore()
	notifier := &fakeNotifier{}
	svc := newTestService(store, fakePremises{premises: campusPremises()}, notifier)

	result, err := svc.HandleEvent(context.Background(), checkInReq(insideCampus, MethodManualMobile))
	if err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	if result.Status != StatusPresent {
		t.Errorf("expected present, got %s", result.Status)
	}
	if result.NeedsApproval {
		t.Error("inside-fence check-in must not require approval")
	}
}

func TestHandleEvent_ManualOutsideFence(t *testing.T) {
	store := newMemStore()
	notifier := &fakeNotifier{}
	svc := newTestService(store, fakePremises{premises: campusPremises()}, notifier)

	result, err := svc.HandleEvent(context.Background(), checkInReq(outsideCampus, MethodManualMobile))
	if err != nil {
		t.Fatalf("HandleEvent failed: %v", err)
	}
	if result.Status != StatusPendingApproval {
		t.Errorf("expected pending_approval, got %s", result.Status)
	}
	if !result.NeedsApproval {
		t.Error("expected approval to be required")
	}
	if !result.Persisted {
		t.Error("pending record must still be persisted")
	}
	if notifier.calls != 1 {
		t.Fatalf("expected 1 approval notice, got %d", notifier.calls)
	}
	if !strings.Contains(notifier.lastReason, "Main Campus") {
		t.Errorf("expected reason to name nearest premise, got %q", notifier.lastReason)
	}
	if !strings.Contains(notifier.lastReason, "Distance from") {
		t.Errorf("expected reason to carry the distance, got %q", notifier.lastReason)
	}
}

func TestHandleEvent_FailClosedChain(t *testing.T) {
	cases := []struct {
		name     string
		premises fakePremises
		person   *people.Person
	}{
		{"no institution assigned", fakePremises{premises: campusPremises()}, func() *people.Person {
			p := testPerson()
			p.InstitutionID = nil
			return p
		}()},
		{"premises lookup error", fakePremises{err: errors.New("db down")}, testPerson()},
		{"zero verified premises", fakePremises{}, testPerson()},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newMemStore()
			notifier := &fakeNotifier{}
			svc := newTestService(store, tc.premises, notifier)
			svc.people = fakeResolver{person: tc.person}

			result, err := svc.HandleEvent(context.Background(), checkInReq(insideCampus, MethodManualMobile))
			if err != nil {
				t.Fatalf("HandleEvent failed: %v", err)
			}
			if result.Status != StatusPendingApproval {
				t.Errorf("expected pending_approval, got %s", result.Status)
			}
			if notifier.calls != 1 {
				t.Errorf("expected 1 approval notice, got %d", notifier.calls)
			}
		})
	}
}

func TestHandleEvent_DuplicateCheckIn(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, fakePremises{premises: campusPremises()}, &fakeNotifier{})

	if _, err := svc.HandleEvent(context.Background(), checkInReq(insideCampus, MethodPalm)); err != nil {
		t.Fatalf("first check-in failed: %v", err)
	}
	_, err := svc.HandleEvent(context.Background(), checkInReq(insideCampus, MethodPalm))
	if !errors.Is(err, ErrAlreadyCheckedIn) {
		t.Errorf("expected ErrAlreadyCheckedIn, got %v", err)
	}
	if len(store.recs) != 1 {
		t.Errorf("expected 1 stored record, got %d", len(store.recs))
	}
}

// TestHandleEvent_UniqueViolationRace covers the concurrent duplicate: the
// lookup saw nothing but the insert trips the unique index.
func TestHandleEvent_UniqueViolationRace(t *testing.T) {
	store := newMemStore()
	store.insertErr = &pgconn.PgError{Code: "23505"}
	svc := newTestService(store, fakePremises{premises: campusPremises()}, &fakeNotifier{})

	_, err := svc.HandleEvent(context.Background(), checkInReq(insideCampus, MethodPalm))
	if !errors.Is(err, ErrAlreadyCheckedIn) {
		t.Errorf("expected ErrAlreadyCheckedIn, got %v", err)
	}
}

func TestHandleEvent_CheckOut(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, fakePremises{premises: campusPremises()}, &fakeNotifier{})
	loc, _ := time.LoadLocation("Asia/Kuala_Lumpur")

	svc.now = func() time.Time { return time.Date(2026, 3, 2, 8, 55, 0, 0, loc) }
	if _, err := svc.HandleEvent(context.Background(), checkInReq(insideCampus, MethodPalm)); err != nil {
		t.Fatalf("check-in failed: %v", err)
	}

	svc.now = func() time.Time { return time.Date(2026, 3, 2, 17, 10, 0, 0, loc) }
	result, err := svc.HandleEvent(context.Background(), EventRequest{
		Ref:      people.Ref{EmployeeID: "T001"},
		Type:     EventCheckOut,
		Location: &insideCampus,
		Method:   MethodPalm,
	})
	if err != nil {
		t.Fatalf("check-out failed: %v", err)
	}
	if result.Status != StatusCheckedOut {
		t.Errorf("expected checked_out, got %s", result.Status)
	}
	rec := result.Record
	if rec.WorkedHours == nil || *rec.WorkedHours != 8.25 {
		t.Errorf("expected 8.25 worked hours, got %v", rec.WorkedHours)
	}
	if rec.OvertimeHours == nil || *rec.OvertimeHours != 0.25 {
		t.Errorf("expected 0.25 overtime hours, got %v", rec.OvertimeHours)
	}
}

func TestHandleEvent_CheckOutWithoutCheckIn(t *testing.T) {
	svc := newTestService(newMemStore(), fakePremises{premises: campusPremises()}, &fakeNotifier{})

	_, err := svc.HandleEvent(context.Background(), EventRequest{
		Ref:      people.Ref{EmployeeID: "T001"},
		Type:     EventCheckOut,
		Location: &insideCampus,
		Method:   MethodPalm,
	})
	if !errors.Is(err, ErrNotCheckedInYet) {
		t.Errorf("expected ErrNotCheckedInYet, got %v", err)
	}
}

func TestHandleEvent_DoubleCheckOut(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, fakePremises{premises: campusPremises()}, &fakeNotifier{})

	if _, err := svc.HandleEvent(context.Background(), checkInReq(insideCampus, MethodPalm)); err != nil {
		t.Fatalf("check-in failed: %v", err)
	}
	out := EventRequest{Ref: people.Ref{EmployeeID: "T001"}, Type: EventCheckOut, Location: &insideCampus, Method: MethodPalm}
	if _, err := svc.HandleEvent(context.Background(), out); err != nil {
		t.Fatalf("first check-out failed: %v", err)
	}
	_, err := svc.HandleEvent(context.Background(), out)
	if !errors.Is(err, ErrAlreadyCheckedOut) {
		t.Errorf("expected ErrAlreadyCheckedOut, got %v", err)
	}
}

func TestHandleEvent_DegradedInsert(t *testing.T) {
	store := newMemStore()
	store.findErr = &pgconn.PgError{Code: "42P01"}
	store.insertErr = &pgconn.PgError{Code: "42P01"}
	svc := newTestService(store, fakePremises{premises: campusPremises()}, &fakeNotifier{})

	result, err := svc.HandleEvent(context.Background(), checkInReq(insideCampus, MethodPalm))
	if err != nil {
		t.Fatalf("expected degraded success, got %v", err)
	}
	if result.Persisted {
		t.Error("degraded record must not claim persistence")
	}
	if !strings.HasPrefix(result.Record.ID, UnsavedIDPrefix) {
		t.Errorf("expected synthesized id, got %q", result.Record.ID)
	}
	if result.Status != StatusPresent {
		t.Errorf("expected present, got %s", result.Status)
	}
}

func TestHandleEvent_DegradedWritesDisabled(t *testing.T) {
	store := newMemStore()
	store.findErr = &pgconn.PgError{Code: "42P01"}
	svc := newTestService(store, fakePremises{premises: campusPremises()}, &fakeNotifier{})
	svc.policy.DegradedWrites = false

	_, err := svc.HandleEvent(context.Background(), checkInReq(insideCampus, MethodPalm))
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Errorf("expected ErrStorageUnavailable, got %v", err)
	}
}

// TestHandleEvent_NotifierFailureSwallowed: the attendance write already
// happened, so a notification error must not fail the request.
func TestHandleEvent_NotifierFailureSwallowed(t *testing.T) {
	store := newMemStore()
	notifier := &fakeNotifier{err: errors.New("smtp down")}
	svc := newTestService(store, fakePremises{premises: campusPremises()}, notifier)

	result, err := svc.HandleEvent(context.Background(), checkInReq(outsideCampus, MethodManualMobile))
	if err != nil {
		t.Fatalf("expected success despite notifier failure, got %v", err)
	}
	if !result.Persisted {
		t.Error("expected record to be persisted")
	}
}

func TestHandleEvent_UnknownPerson(t *testing.T) {
	svc := newTestService(newMemStore(), fakePremises{premises: campusPremises()}, &fakeNotifier{})
	svc.people = fakeResolver{}

	_, err := svc.HandleEvent(context.Background(), checkInReq(insideCampus, MethodPalm))
	if !errors.Is(err, ErrPersonNotFound) {
		t.Errorf("expected ErrPersonNotFound, got %v", err)
	}
}

func TestHandleEvent_InvalidLocation(t *testing.T) {
	svc := newTestService(newMemStore(), fakePremises{premises: campusPremises()}, &fakeNotifier{})

	bad := []Location{
		{Latitude: math.NaN(), Longitude: 101.7},
		{Latitude: 3.2, Longitude: math.NaN()},
		{Latitude: 91, Longitude: 101.7},
		{Latitude: 3.2, Longitude: -181},
	}
	for _, loc := range bad {
		if _, err := svc.HandleEvent(context.Background(), checkInReq(loc, MethodPalm)); !errors.Is(err, ErrInvalidLocation) {
			t.Errorf("expected ErrInvalidLocation for %+v, got %v", loc, err)
		}
	}

	if _, err := svc.HandleEvent(context.Background(), EventRequest{
		Ref:    people.Ref{EmployeeID: "T001"},
		Type:   EventCheckIn,
		Method: MethodPalm,
	}); !errors.Is(err, ErrInvalidLocation) {
		t.Errorf("expected ErrInvalidLocation for nil location, got %v", err)
	}
}

func TestToday(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, fakePremises{premises: campusPremises()}, &fakeNotifier{})

	status, err := svc.Today(context.Background(), people.Ref{EmployeeID: "T001"})
	if err != nil {
		t.Fatalf("Today failed: %v", err)
	}
	if status.HasCheckedIn || status.HasCheckedOut {
		t.Error("expected clean slate before any event")
	}
	if status.Date != "2026-03-02" {
		t.Errorf("expected date 2026-03-02, got %s", status.Date)
	}

	if _, err := svc.HandleEvent(context.Background(), checkInReq(insideCampus, MethodPalm)); err != nil {
		t.Fatalf("check-in failed: %v", err)
	}
	status, err = svc.Today(context.Background(), people.Ref{EmployeeID: "T001"})
	if err != nil {
		t.Fatalf("Today failed: %v", err)
	}
	if !status.HasCheckedIn || status.HasCheckedOut {
		t.Errorf("expected checked-in only, got %+v", status)
	}
}

// TestToday_StructuralDegrade: a broken table degrades the status query to
// "no record" instead of an error.
func TestToday_StructuralDegrade(t *testing.T) {
	store := newMemStore()
	store.findErr = &pgconn.PgError{Code: "42703"}
	svc := newTestService(store, fakePremises{premises: campusPremises()}, &fakeNotifier{})

	status, err := svc.Today(context.Background(), people.Ref{EmployeeID: "T001"})
	if err != nil {
		t.Fatalf("expected degraded success, got %v", err)
	}
	if status.HasCheckedIn || status.Record != nil {
		t.Error("expected empty status under structural failure")
	}
}

func TestSubmitAbsence_NewRow(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, fakePremises{premises: campusPremises()}, &fakeNotifier{})

	rec, err := svc.SubmitAbsence(context.Background(), people.Ref{EmployeeID: "T001"}, "", AbsenceDocumentation{
		Type:   "sick",
		Reason: "flu",
	})
	if err != nil {
		t.Fatalf("SubmitAbsence failed: %v", err)
	}
	if rec.Status != StatusAbsentDocumented {
		t.Errorf("expected absent_documented, got %s", rec.Status)
	}
	if rec.Date != "2026-03-02" {
		t.Errorf("expected today's date, got %s", rec.Date)
	}
	if rec.Absence == nil || rec.Absence.SubmittedAt.IsZero() {
		t.Error("expected stamped absence documentation")
	}
	if !strings.Contains(rec.Notes, "flu") {
		t.Errorf("expected reason in notes, got %q", rec.Notes)
	}
}

func TestSubmitAbsence_ExistingRowKeepsNotes(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, fakePremises{premises: campusPremises()}, &fakeNotifier{})

	person := testPerson()
	store.recs[storeKey(person.ID, "2026-03-02")] = &Record{
		ID:       "existing",
		PersonID: person.ID,
		Date:     "2026-03-02",
		Notes:    "prior note",
	}

	rec, err := svc.SubmitAbsence(context.Background(), people.Ref{EmployeeID: "T001"}, "2026-03-02", AbsenceDocumentation{
		Type:   "emergency",
		Reason: "family matter",
	})
	if err != nil {
		t.Fatalf("SubmitAbsence failed: %v", err)
	}
	if rec.ID != "existing" {
		t.Errorf("expected day row to be reused, got id %s", rec.ID)
	}
	if !strings.Contains(rec.Notes, "prior note") || !strings.Contains(rec.Notes, "family matter") {
		t.Errorf("expected appended notes, got %q", rec.Notes)
	}
}
