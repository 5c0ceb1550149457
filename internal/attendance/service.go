package attendance

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/VeriTime/VT-Backend/internal/config"
	"github.com/VeriTime/VT-Backend/internal/org"
	"github.com/VeriTime/VT-Backend/internal/people"
	"github.com/google/uuid"
)

// Event types accepted by HandleEvent.
const (
	EventCheckIn  = "check_in"
	EventCheckOut = "check_out"
)

// PersonResolver resolves a person reference to the directory entry.
type PersonResolver interface {
	Resolve(ctx context.Context, ref people.Ref) (*people.Person, error)
}

// PremiseSource supplies the geofence inputs for one institution.
type PremiseSource interface {
	VerifiedPremises(ctx context.Context, institutionID uuid.UUID) ([]org.Premise, error)
	InstitutionTimezone(ctx context.Context, institutionID uuid.UUID) (string, error)
}

// Notifier raises an approval notice for a pending event. Failures are the
// notifier's problem: the attendance write has already happened and must not
// be rolled back on a notification error.
type Notifier interface {
	ApprovalRequired(ctx context.Context, rec *Record, reason string) error
}

// Service orchestrates one check-in or check-out request end to end:
// identity resolution, the day-row uniqueness rules, the trust decision,
// geofence evaluation, persistence, and the approval side effect.
type Service struct {
	store    Store
	people   PersonResolver
	premises PremiseSource
	notifier Notifier
	policy   config.Policy
	now      func() time.Time
}

func NewService(store Store, resolver PersonResolver, premises PremiseSource, notifier Notifier, policy config.Policy) *Service {
	return &Service{
		store:    store,
		people:   resolver,
		premises: premises,
		notifier: notifier,
		policy:   policy,
		now:      time.Now,
	}
}

type EventRequest struct {
	Ref      people.Ref
	Type     string // check_in or check_out
	Location *Location
	Method   string
}

type EventResult struct {
	Record        *Record `json:"record"`
	Type          string  `json:"type"`
	Status        Status  `json:"status"`
	NeedsApproval bool    `json:"needsApproval"`
	Persisted     bool    `json:"persisted"`
	Message       string  `json:"message"`
}

// TodayStatus is the answer to "has this person checked in/out today".
type TodayStatus struct {
	HasCheckedIn  bool    `json:"hasCheckedIn"`
	HasCheckedOut bool    `json:"hasCheckedOut"`
	Record        *Record `json:"record"`
	Date          string  `json:"date"`
}

// HandleEvent processes one attendance event. Identity and validation
// failures return sentinel errors with no state change; storage failures on
// the insert path degrade per the policy instead of failing the request.
func (s *Service) HandleEvent(ctx context.Context, req EventRequest) (*EventResult, error) {
	if err := validateLocation(req.Location); err != nil {
		return nil, err
	}

	person, err := s.people.Resolve(ctx, req.Ref)
	if err != nil {
		if errors.Is(err, people.ErrPersonNotFound) {
			return nil, ErrPersonNotFound
		}
		return nil, fmt.Errorf("resolve person: %w", err)
	}

	now := s.now().In(s.locationFor(ctx, person))
	today := now.Format("2006-01-02")

	existing, err := s.store.FindForDate(ctx, person.ID, today)
	if err != nil {
		if !IsStructural(err) {
			return nil, fmt.Errorf("load attendance record: %w", err)
		}
		if !s.policy.DegradedWrites || req.Type != EventCheckIn {
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		// Degraded mode: proceed as if no row exists; the insert below will
		// hit the same structural failure and synthesize a result.
		log.Printf("[attendance] record lookup failed structurally, continuing degraded: %v", err)
		existing = nil
	}

	switch req.Type {
	case EventCheckIn:
		return s.checkIn(ctx, person, existing, req.Location, req.Method, now, today)
	case EventCheckOut:
		return s.checkOut(ctx, existing, req.Location, now)
	default:
		return nil, fmt.Errorf("unknown event type %q", req.Type)
	}
}

func (s *Service) checkIn(ctx context.Context, person *people.Person, existing *Record, location *Location, method string, now time.Time, today string) (*EventResult, error) {
	if existing != nil && existing.CheckInTime != nil {
		return nil, ErrAlreadyCheckedIn
	}

	status := StatusPresent
	needsApproval := false
	reason := ""

	if TrustedMethod(method) {
		log.Printf("[attendance] %s check-in approved automatically for %s", method, person.EmployeeID)
	} else {
		status, needsApproval, reason = s.verifyLocation(ctx, person, *location)
	}

	fresh := existing == nil
	rec := existing
	if fresh {
		rec = &Record{
			ID:            uuid.NewString(),
			PersonID:      person.ID,
			Date:          today,
			EmployeeID:    person.EmployeeID,
			InstitutionID: person.InstitutionID,
			WorkGroupID:   person.WorkGroupID,
		}
	}

	loc := *location
	if loc.Address == "" {
		loc.Address = fmt.Sprintf("%.6f, %.6f", loc.Latitude, loc.Longitude)
	}

	rec.CheckInTime = &now
	rec.CheckInLocation = &loc
	rec.Status = status
	rec.Method = method
	if reason != "" {
		if rec.Notes != "" {
			rec.Notes = rec.Notes + " | " + reason
		} else {
			rec.Notes = reason
		}
	}

	if fresh {
		if err := s.store.Insert(ctx, rec); err != nil {
			switch {
			case IsUniqueViolation(err):
				// Concurrent duplicate submission lost the race; the day is
				// already open. No mutation happened.
				return nil, ErrAlreadyCheckedIn
			case IsStructural(err):
				if !s.policy.DegradedWrites {
					return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
				}
				log.Printf("[attendance] insert failed structurally, returning unpersisted record: %v", err)
				rec.ID = UnsavedIDPrefix + uuid.NewString()
				rec.Persisted = false
			default:
				return nil, fmt.Errorf("create attendance record: %w", err)
			}
		} else {
			rec.Persisted = true
		}
	} else {
		if err := s.store.Update(ctx, rec); err != nil {
			return nil, fmt.Errorf("update attendance record: %w", err)
		}
		rec.Persisted = true
	}

	if needsApproval {
		if err := s.notifier.ApprovalRequired(ctx, rec, reason); err != nil {
			log.Printf("[attendance] failed to create approval notice: %v", err)
		}
	}

	message := "check in successful"
	if needsApproval {
		message = "check in recorded (pending admin approval - outside institution premises)"
	}

	return &EventResult{
		Record:        rec,
		Type:          EventCheckIn,
		Status:        status,
		NeedsApproval: needsApproval,
		Persisted:     rec.Persisted,
		Message:       message,
	}, nil
}

// verifyLocation runs the trust decision for untrusted entry methods. Every
// failure to establish trust fails closed to pending_approval; none of these
// conditions is a request error.
func (s *Service) verifyLocation(ctx context.Context, person *people.Person, point Location) (Status, bool, string) {
	if person.InstitutionID == nil {
		log.Printf("[attendance] no institution for person %s, forcing approval", person.EmployeeID)
		return StatusPendingApproval, true,
			"Person's institution not found. Please ensure the person is assigned to an institution."
	}

	premises, err := s.premises.VerifiedPremises(ctx, *person.InstitutionID)
	if err != nil {
		log.Printf("[attendance] premises lookup failed for %s: %v", person.InstitutionID, err)
		return StatusPendingApproval, true,
			"Institution premises could not be verified. Manual approval required."
	}

	if len(premises) == 0 {
		log.Printf("[attendance] no verified premises for institution %s", person.InstitutionID)
		return StatusPendingApproval, true,
			"No verified institution premises found. Please set up an institution location in the web admin."
	}

	result := EvaluateGeofence(point, premises)
	if result.WithinFence {
		log.Printf("[attendance] %s within fence of %s (%.0fm)", person.EmployeeID, result.NearestPremise, result.DistanceMeters)
		return StatusPresent, false, ""
	}

	reason := fmt.Sprintf("Manual check-in from outside institution premises. Distance from %s: %dm",
		result.NearestPremise, int(math.Round(result.DistanceMeters)))
	log.Printf("[attendance] %s outside fence: %s", person.EmployeeID, reason)
	return StatusPendingApproval, true, reason
}

func (s *Service) checkOut(ctx context.Context, existing *Record, location *Location, now time.Time) (*EventResult, error) {
	if existing == nil || existing.CheckInTime == nil {
		return nil, ErrNotCheckedInYet
	}
	if existing.CheckOutTime != nil {
		return nil, ErrAlreadyCheckedOut
	}

	loc := *location
	if loc.Address == "" {
		loc.Address = fmt.Sprintf("%.6f, %.6f", loc.Latitude, loc.Longitude)
	}

	worked := WorkedHours(*existing.CheckInTime, now)
	overtime := Overtime(worked, s.policy.StandardHours)

	existing.CheckOutTime = &now
	existing.CheckOutLocation = &loc
	existing.WorkedHours = &worked
	existing.OvertimeHours = &overtime
	existing.Status = StatusCheckedOut

	if err := s.store.Update(ctx, existing); err != nil {
		if IsStructural(err) {
			return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		return nil, fmt.Errorf("update attendance record: %w", err)
	}
	existing.Persisted = true

	return &EventResult{
		Record:    existing,
		Type:      EventCheckOut,
		Status:    StatusCheckedOut,
		Persisted: true,
		Message:   "check out successful",
	}, nil
}

// Today answers the status query for the current calendar date. A structural
// storage failure degrades to "no record" so status widgets keep rendering.
func (s *Service) Today(ctx context.Context, ref people.Ref) (*TodayStatus, error) {
	person, err := s.people.Resolve(ctx, ref)
	if err != nil {
		if errors.Is(err, people.ErrPersonNotFound) {
			return nil, ErrPersonNotFound
		}
		return nil, fmt.Errorf("resolve person: %w", err)
	}

	now := s.now().In(s.locationFor(ctx, person))
	today := now.Format("2006-01-02")

	rec, err := s.store.FindForDate(ctx, person.ID, today)
	if err != nil {
		if !IsStructural(err) {
			return nil, fmt.Errorf("load attendance record: %w", err)
		}
		log.Printf("[attendance] today lookup failed structurally: %v", err)
		rec = nil
	}

	return &TodayStatus{
		HasCheckedIn:  rec != nil && rec.CheckInTime != nil,
		HasCheckedOut: rec != nil && rec.CheckOutTime != nil,
		Record:        rec,
		Date:          today,
	}, nil
}

// SubmitAbsence documents an absence on the day's row, creating it when
// needed. It reuses the same (person, date) row the check-in path owns.
func (s *Service) SubmitAbsence(ctx context.Context, ref people.Ref, date string, doc AbsenceDocumentation) (*Record, error) {
	person, err := s.people.Resolve(ctx, ref)
	if err != nil {
		if errors.Is(err, people.ErrPersonNotFound) {
			return nil, ErrPersonNotFound
		}
		return nil, fmt.Errorf("resolve person: %w", err)
	}

	if date == "" {
		date = s.now().In(s.locationFor(ctx, person)).Format("2006-01-02")
	}

	existing, err := s.store.FindForDate(ctx, person.ID, date)
	if err != nil {
		return nil, fmt.Errorf("load attendance record: %w", err)
	}

	doc.SubmittedAt = s.now()
	note := "Absence documentation submitted: " + doc.Reason
	if doc.AdditionalNotes != "" {
		note += " | Notes: " + doc.AdditionalNotes
	}

	if existing != nil {
		if existing.Notes != "" {
			existing.Notes = existing.Notes + " | " + note
		} else {
			existing.Notes = note
		}
		existing.Status = StatusAbsentDocumented
		existing.Absence = &doc
		if err := s.store.Update(ctx, existing); err != nil {
			return nil, fmt.Errorf("update attendance record: %w", err)
		}
		existing.Persisted = true
		return existing, nil
	}

	rec := &Record{
		ID:            uuid.NewString(),
		PersonID:      person.ID,
		Date:          date,
		EmployeeID:    person.EmployeeID,
		InstitutionID: person.InstitutionID,
		WorkGroupID:   person.WorkGroupID,
		Status:        StatusAbsentDocumented,
		Method:        "documentation_submission",
		Notes:         note,
		Absence:       &doc,
	}
	if err := s.store.Insert(ctx, rec); err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrAlreadyCheckedIn
		}
		return nil, fmt.Errorf("create attendance record: %w", err)
	}
	rec.Persisted = true
	return rec, nil
}

// Policy exposes the loaded attendance policy to read-path handlers.
func (s *Service) Policy() config.Policy { return s.policy }

// Store exposes the persistence boundary to read-path handlers.
func (s *Service) Store() Store { return s.store }

// locationFor picks the timezone events are bucketed in: the person's
// institution zone when it resolves, otherwise the configured default.
func (s *Service) locationFor(ctx context.Context, person *people.Person) *time.Location {
	if person.InstitutionID != nil {
		tz, err := s.premises.InstitutionTimezone(ctx, *person.InstitutionID)
		if err == nil && tz != "" {
			if loc, err := time.LoadLocation(tz); err == nil {
				return loc
			}
			log.Printf("[attendance] invalid institution timezone %q, using default", tz)
		}
	}
	return s.policy.Location()
}

func validateLocation(loc *Location) error {
	if loc == nil {
		return ErrInvalidLocation
	}
	if math.IsNaN(loc.Latitude) || math.IsNaN(loc.Longitude) {
		return ErrInvalidLocation
	}
	if loc.Latitude < -90 || loc.Latitude > 90 || loc.Longitude < -180 || loc.Longitude > 180 {
		return ErrInvalidLocation
	}
	return nil
}
