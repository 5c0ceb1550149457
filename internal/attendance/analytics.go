package attendance

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/VeriTime/VT-Backend/internal/config"
	"github.com/VeriTime/VT-Backend/internal/people"
	"github.com/google/uuid"
)

// AggregateWindow is the derived analytics snapshot over a date range. It is
// always recomputed from attendance rows and has no lifecycle of its own.
type AggregateWindow struct {
	DailyTrends      []DailyTrend `json:"dailyTrends"`
	GroupStats       []GroupStat  `json:"groupStats"`
	TimeDistribution []HourBucket `json:"timeDistribution"`
	Scorecards       []Scorecard  `json:"individualPerformance"`
	Summary          Summary      `json:"summary"`
}

type DailyTrend struct {
	Date    string `json:"date"`
	Present int    `json:"present"`
	Absent  int    `json:"absent"`
	Late    int    `json:"late"`
	Total   int    `json:"total"`
	Rate    int    `json:"rate"`
}

type GroupStat struct {
	Group          string  `json:"group"`
	AttendanceRate int     `json:"attendanceRate"`
	AvgWorkedHours float64 `json:"avgWorkedHours"`
	LateArrivals   int     `json:"lateArrivals"`
}

type HourBucket struct {
	Hour      int `json:"hour"`
	CheckIns  int `json:"checkIns"`
	CheckOuts int `json:"checkOuts"`
}

type Scorecard struct {
	PersonID         uuid.UUID `json:"personId"`
	Name             string    `json:"name"`
	EmployeeID       string    `json:"employeeId"`
	Group            string    `json:"group"`
	AttendanceRate   int       `json:"attendanceRate"`
	PunctualityScore int       `json:"punctualityScore"`
	AvgWorkedHours   float64   `json:"avgWorkedHours"`
	TotalDays        int       `json:"totalDays"`
	PresentDays      int       `json:"presentDays"`
	LateDays         int       `json:"lateDays"`
	AbsentDays       int       `json:"absentDays"`
}

type AttentionFlag struct {
	PersonID uuid.UUID `json:"personId"`
	Name     string    `json:"name"`
	Issue    string    `json:"issue"`
	Severity string    `json:"severity"` // high, medium, low
}

type Summary struct {
	TotalWorkingDays      int             `json:"totalWorkingDays"`
	OverallAttendanceRate int             `json:"overallAttendanceRate"`
	AvgWorkedHours        float64         `json:"avgWorkedHours"`
	PunctualityRate       int             `json:"punctualityRate"`
	PeakHour              string          `json:"peakHour"`
	TopPerformer          string          `json:"topPerformer"`
	NeedsAttention        []AttentionFlag `json:"needsAttention"`
}

// UnassignedGroup labels people with no role/group for group statistics.
const UnassignedGroup = "Unassigned"

// EmptyWindow is the well-formed zero aggregate: dashboards receive it
// instead of an error when the underlying table is sparse or missing.
func EmptyWindow() AggregateWindow {
	buckets := make([]HourBucket, 24)
	for h := range buckets {
		buckets[h] = HourBucket{Hour: h}
	}
	return AggregateWindow{
		DailyTrends:      []DailyTrend{},
		GroupStats:       []GroupStat{},
		TimeDistribution: buckets,
		Scorecards:       []Scorecard{},
		Summary: Summary{
			PunctualityRate: 100,
			PeakHour:        "N/A",
			TopPerformer:    "N/A",
			NeedsAttention:  []AttentionFlag{},
		},
	}
}

// Aggregate folds attendance rows into the analytics window for the
// inclusive [start, end] date range. Pure function of its inputs: given the
// same rows and people it produces identical output, ties broken by
// employee id so ordering never depends on map iteration.
func Aggregate(events []Record, persons []people.Person, start, end, groupFilter string, policy config.Policy) AggregateWindow {
	days := dateRange(start, end)
	if len(days) == 0 {
		return EmptyWindow()
	}
	totalDays := len(days)
	loc := policy.Location()

	persons = filterByGroup(persons, groupFilter)
	personSet := make(map[uuid.UUID]*people.Person, len(persons))
	for i := range persons {
		personSet[persons[i].ID] = &persons[i]
	}

	// Keep only events that belong to the filtered people and the window
	inWindow := events[:0:0]
	for _, e := range events {
		if _, ok := personSet[e.PersonID]; ok && e.Date >= start && e.Date <= end {
			inWindow = append(inWindow, e)
		}
	}
	events = inWindow

	window := EmptyWindow()
	window.Summary.TotalWorkingDays = totalDays

	// Daily trends
	byDate := make(map[string][]Record)
	for _, e := range events {
		byDate[e.Date] = append(byDate[e.Date], e)
	}
	for _, day := range days {
		present, late := 0, 0
		for _, e := range byDate[day] {
			if e.CheckInTime != nil {
				present++
				if IsLate(*e.CheckInTime, policy) {
					late++
				}
			}
		}
		window.DailyTrends = append(window.DailyTrends, DailyTrend{
			Date:    day,
			Present: present,
			Absent:  len(persons) - present,
			Late:    late,
			Total:   len(persons),
			Rate:    percent(present, len(persons)),
		})
	}

	// Per-person tallies feed both group stats and scorecards
	type tally struct {
		present, late int
		hoursSum      float64
		hoursCount    int
	}
	tallies := make(map[uuid.UUID]*tally, len(persons))
	for id := range personSet {
		tallies[id] = &tally{}
	}
	for _, e := range events {
		t := tallies[e.PersonID]
		if e.CheckInTime != nil {
			t.present++
			if IsLate(*e.CheckInTime, policy) {
				t.late++
			}
		}
		if e.WorkedHours != nil {
			t.hoursSum += *e.WorkedHours
			t.hoursCount++
		}
	}

	// Group statistics
	groups := make(map[string][]*people.Person)
	for i := range persons {
		groups[groupLabel(&persons[i])] = append(groups[groupLabel(&persons[i])], &persons[i])
	}
	groupNames := make([]string, 0, len(groups))
	for name := range groups {
		groupNames = append(groupNames, name)
	}
	sort.Strings(groupNames)
	for _, name := range groupNames {
		members := groups[name]
		present, late, hoursCount := 0, 0, 0
		hoursSum := 0.0
		for _, m := range members {
			t := tallies[m.ID]
			present += t.present
			late += t.late
			hoursSum += t.hoursSum
			hoursCount += t.hoursCount
		}
		window.GroupStats = append(window.GroupStats, GroupStat{
			Group:          name,
			AttendanceRate: percent(present, len(members)*totalDays),
			AvgWorkedHours: round2(avg(hoursSum, hoursCount)),
			LateArrivals:   late,
		})
	}

	// Hour-of-day distribution
	for _, e := range events {
		if e.CheckInTime != nil {
			window.TimeDistribution[e.CheckInTime.In(loc).Hour()].CheckIns++
		}
		if e.CheckOutTime != nil {
			window.TimeDistribution[e.CheckOutTime.In(loc).Hour()].CheckOuts++
		}
	}

	// Individual scorecards, ranked by attendance rate
	for i := range persons {
		p := &persons[i]
		t := tallies[p.ID]
		window.Scorecards = append(window.Scorecards, Scorecard{
			PersonID:         p.ID,
			Name:             p.FullName,
			EmployeeID:       p.EmployeeID,
			Group:            groupLabel(p),
			AttendanceRate:   percent(t.present, totalDays),
			PunctualityScore: punctuality(t.present, t.late),
			AvgWorkedHours:   round2(avg(t.hoursSum, t.hoursCount)),
			TotalDays:        totalDays,
			PresentDays:      t.present,
			LateDays:         t.late,
			AbsentDays:       totalDays - t.present,
		})
	}
	sort.SliceStable(window.Scorecards, func(i, j int) bool {
		a, b := window.Scorecards[i], window.Scorecards[j]
		if a.AttendanceRate != b.AttendanceRate {
			return a.AttendanceRate > b.AttendanceRate
		}
		return a.EmployeeID < b.EmployeeID
	})

	// Summary
	allPresent, allLate, allHoursCount := 0, 0, 0
	allHoursSum := 0.0
	for _, t := range tallies {
		allPresent += t.present
		allLate += t.late
		allHoursSum += t.hoursSum
		allHoursCount += t.hoursCount
	}
	window.Summary.OverallAttendanceRate = percent(allPresent, len(persons)*totalDays)
	window.Summary.AvgWorkedHours = round2(avg(allHoursSum, allHoursCount))
	window.Summary.PunctualityRate = punctuality(allPresent, allLate)
	window.Summary.PeakHour = peakHour(window.TimeDistribution)
	if len(window.Scorecards) > 0 {
		window.Summary.TopPerformer = window.Scorecards[0].Name
	}

	for _, card := range window.Scorecards {
		if len(window.Summary.NeedsAttention) == 10 {
			break
		}
		if card.AttendanceRate >= 80 && card.PunctualityScore >= 70 {
			continue
		}
		issue := "Below average performance"
		if card.AttendanceRate < 60 {
			issue = "Poor attendance"
		} else if card.PunctualityScore < 50 {
			issue = "Frequent tardiness"
		}
		severity := "low"
		if card.AttendanceRate < 50 {
			severity = "high"
		} else if card.AttendanceRate < 70 {
			severity = "medium"
		}
		window.Summary.NeedsAttention = append(window.Summary.NeedsAttention, AttentionFlag{
			PersonID: card.PersonID,
			Name:     card.Name,
			Issue:    issue,
			Severity: severity,
		})
	}

	return window
}

func groupLabel(p *people.Person) string {
	if p.Role == "" {
		return UnassignedGroup
	}
	return p.Role
}

func filterByGroup(persons []people.Person, filter string) []people.Person {
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" || filter == "all" {
		return persons
	}
	out := make([]people.Person, 0, len(persons))
	for _, p := range persons {
		if strings.Contains(strings.ToLower(p.Role), filter) {
			out = append(out, p)
		}
	}
	return out
}

func dateRange(start, end string) []string {
	const layout = "2006-01-02"
	from, err := time.Parse(layout, start)
	if err != nil {
		return nil
	}
	to, err := time.Parse(layout, end)
	if err != nil || to.Before(from) {
		return nil
	}
	var days []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(layout))
	}
	return days
}

func percent(part, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

// punctuality is (present - late) / present as a percentage; a person with
// no present days has nothing to be late for and scores 100.
func punctuality(present, late int) int {
	if present == 0 {
		return 100
	}
	return int(math.Round(float64(present-late) / float64(present) * 100))
}

func avg(sum float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func peakHour(buckets []HourBucket) string {
	peak := HourBucket{Hour: 9}
	for _, b := range buckets {
		if b.CheckIns > peak.CheckIns {
			peak = b
		}
	}
	if peak.CheckIns == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%d:00", peak.Hour)
}
