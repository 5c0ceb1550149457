package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

// Policy holds the institution-wide attendance rules. A single copy is loaded
// at startup; every status derivation and every analytics pass reads the same
// values so the lateness rule cannot drift between call sites.
type Policy struct {
	// WorkdayStart is the nominal start of day, "HH:MM" 24h format.
	WorkdayStart string `yaml:"workday_start"`

	// GraceMinutes past WorkdayStart before a check-in counts as late.
	GraceMinutes int `yaml:"grace_minutes"`

	// StandardHours per working day, used for overtime calculation.
	StandardHours float64 `yaml:"standard_hours"`

	// Timezone is the institution-local zone used to bucket events into
	// calendar days when an institution has no zone of its own.
	Timezone string `yaml:"timezone"`

	// DegradedWrites permits the check-in path to answer with a synthesized,
	// unpersisted record when the attendance table is unavailable. This is a
	// startup capability flag; request handlers never inspect error strings
	// to decide it.
	DegradedWrites bool `yaml:"degraded_writes"`
}

// DefaultPolicy matches the rules the mobile clients were built against:
// 09:00 start, 15 minute grace, 8 hour standard day.
func DefaultPolicy() Policy {
	return Policy{
		WorkdayStart:   "09:00",
		GraceMinutes:   15,
		StandardHours:  8,
		Timezone:       "Asia/Kuala_Lumpur",
		DegradedWrites: true,
	}
}

// LoadFromEnv builds the policy from defaults, an optional YAML file named by
// ATTENDANCE_POLICY_FILE, and finally individual env var overrides.
//
// Environment variables:
//   - ATTENDANCE_POLICY_FILE: path to a YAML policy file (optional)
//   - WORKDAY_START: "HH:MM" nominal start of day
//   - GRACE_MINUTES: integer minutes of grace past the start
//   - STANDARD_HOURS: float hours in a standard day
//   - INSTITUTION_TIMEZONE: IANA zone name
//   - DEGRADED_WRITES: "true"/"false"
func LoadFromEnv() (Policy, error) {
	p := DefaultPolicy()

	if path := strings.TrimSpace(os.Getenv("ATTENDANCE_POLICY_FILE")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return p, fmt.Errorf("read policy file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &p); err != nil {
			return p, fmt.Errorf("parse policy file: %w", err)
		}
	}

	if v := os.Getenv("WORKDAY_START"); v != "" {
		p.WorkdayStart = v
	}
	if v := os.Getenv("GRACE_MINUTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, fmt.Errorf("invalid GRACE_MINUTES %q: %w", v, err)
		}
		p.GraceMinutes = n
	}
	if v := os.Getenv("STANDARD_HOURS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return p, fmt.Errorf("invalid STANDARD_HOURS %q: %w", v, err)
		}
		p.StandardHours = f
	}
	if v := os.Getenv("INSTITUTION_TIMEZONE"); v != "" {
		p.Timezone = v
	}
	if v := os.Getenv("DEGRADED_WRITES"); v != "" {
		p.DegradedWrites = v == "true" || v == "1"
	}

	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// Validate checks that the policy values are usable.
func (p Policy) Validate() error {
	if _, _, err := p.startHourMinute(); err != nil {
		return err
	}
	if p.GraceMinutes < 0 {
		return fmt.Errorf("grace_minutes must not be negative, got %d", p.GraceMinutes)
	}
	if p.StandardHours <= 0 {
		return fmt.Errorf("standard_hours must be positive, got %v", p.StandardHours)
	}
	if _, err := time.LoadLocation(p.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", p.Timezone, err)
	}
	return nil
}

// Location resolves the configured timezone. Validate guarantees it loads.
func (p Policy) Location() *time.Location {
	loc, err := time.LoadLocation(p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LateCutoff returns the instant on the given day after which an
// un-checked-out check-in counts as late: workday start plus grace.
func (p Policy) LateCutoff(day time.Time) time.Time {
	h, m, _ := p.startHourMinute()
	start := time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, day.Location())
	return start.Add(time.Duration(p.GraceMinutes) * time.Minute)
}

func (p Policy) startHourMinute() (int, int, error) {
	parts := strings.SplitN(p.WorkdayStart, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid workday_start %q, want HH:MM", p.WorkdayStart)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, fmt.Errorf("invalid workday_start hour %q", parts[0])
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("invalid workday_start minute %q", parts[1])
	}
	return h, m, nil
}
