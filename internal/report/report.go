// Package report aggregates late records into the summaries shown on the
// dashboard: headline counts, per-group totals, a weekly trend, monthly
// leaders and per-person history.
package report

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/crimson-sun/latewatch/internal/model"
)

const (
	trendDays    = 7
	monthlyTop   = 10
	personRecent = 10
	dayLayout    = "2006-01-02"
	monthLayout  = "2006-01"
)

// Count is a label with its number of records.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DayCount is the number of records on one calendar day (YYYY-MM-DD).
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Summary is the headline view over a record set.
type Summary struct {
	Total              int        `json:"total"`
	Today              int        `json:"today"`
	AverageMinutesLate int        `json:"averageMinutesLate"`
	ByGroup            []Count    `json:"byGroup"`
	Trend              []DayCount `json:"trend"`
	Months             []string   `json:"months"`
}

// Summarize computes the headline view. Calendar days are taken in loc.
func Summarize(records []model.LateRecord, now time.Time, loc *time.Location) Summary {
	if loc == nil {
		loc = time.Local
	}
	today := now.In(loc).Format(dayLayout)

	s := Summary{
		Total:              len(records),
		AverageMinutesLate: averageMinutes(records),
	}

	groups := map[string]int{}
	days := map[string]int{}
	months := map[string]struct{}{}
	for _, r := range records {
		t := r.Timestamp.In(loc)
		day := t.Format(dayLayout)
		if day == today {
			s.Today++
		}
		days[day]++
		groups[r.GroupName]++
		months[t.Format(monthLayout)] = struct{}{}
	}

	s.ByGroup = sortCounts(groups)

	// Step back by calendar date so DST changes never skip or repeat a day.
	y, m, d := now.In(loc).Date()
	for i := trendDays - 1; i >= 0; i-- {
		day := time.Date(y, m, d-i, 12, 0, 0, 0, loc).Format(dayLayout)
		s.Trend = append(s.Trend, DayCount{Date: day, Count: days[day]})
	}

	for k := range months {
		s.Months = append(s.Months, k)
	}
	slices.SortFunc(s.Months, func(a, b string) int { return strings.Compare(b, a) })
	return s
}

// PersonCount is one entry in a monthly leader board.
type PersonCount struct {
	Name     string `json:"name"`
	PersonID string `json:"personId"`
	Group    string `json:"group"`
	Count    int    `json:"count"`
}

// Month is the leader board for one YYYY-MM month.
type Month struct {
	Month    string        `json:"month"`
	Total    int           `json:"total"`
	Top      []PersonCount `json:"top"`
	TopGroup *Count        `json:"topGroup,omitempty"`
}

// Monthly builds the leader board for month (YYYY-MM, calendar month in
// loc). A person's group and ID come from their first record in input
// order.
func Monthly(records []model.LateRecord, month string, loc *time.Location) Month {
	if loc == nil {
		loc = time.Local
	}
	out := Month{Month: month}

	people := map[string]*PersonCount{}
	groups := map[string]int{}
	for _, r := range records {
		if r.Timestamp.In(loc).Format(monthLayout) != month {
			continue
		}
		out.Total++
		groups[r.GroupName]++
		p, ok := people[r.PersonName]
		if !ok {
			p = &PersonCount{Name: r.PersonName, PersonID: r.PersonID, Group: r.GroupName}
			people[r.PersonName] = p
		}
		p.Count++
	}

	for _, p := range people {
		out.Top = append(out.Top, *p)
	}
	slices.SortFunc(out.Top, func(a, b PersonCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	if len(out.Top) > monthlyTop {
		out.Top = out.Top[:monthlyTop]
	}

	if byGroup := sortCounts(groups); len(byGroup) > 0 {
		out.TopGroup = &byGroup[0]
	}
	return out
}

// Status bands a person by how often they have been late.
type Status string

const (
	StatusNormal   Status = "NORMAL"
	StatusAtRisk   Status = "BERISIKO"
	StatusCritical Status = "KRITIKAL"
)

// StatusFor returns the band for a total count.
func StatusFor(total int) Status {
	switch {
	case total > 5:
		return StatusCritical
	case total > 2:
		return StatusAtRisk
	default:
		return StatusNormal
	}
}

// PersonReport is one person's history.
type PersonReport struct {
	Name               string             `json:"name"`
	Total              int                `json:"total"`
	AverageMinutesLate int                `json:"averageMinutesLate"`
	Last               *model.LateRecord  `json:"last,omitempty"`
	Recent             []model.LateRecord `json:"recent"`
	Status             Status             `json:"status"`
}

// Person collects the records for name (case-insensitive). Recent holds up
// to 10 of the newest records, ordered oldest to newest.
func Person(records []model.LateRecord, name string) PersonReport {
	name = strings.TrimSpace(name)
	var mine []model.LateRecord
	for _, r := range records {
		if strings.EqualFold(r.PersonName, name) {
			mine = append(mine, r)
		}
	}

	rep := PersonReport{
		Name:               strings.ToUpper(name),
		Total:              len(mine),
		AverageMinutesLate: averageMinutes(mine),
		Status:             StatusFor(len(mine)),
	}
	if len(mine) == 0 {
		return rep
	}
	rep.Name = mine[0].PersonName

	slices.SortStableFunc(mine, func(a, b model.LateRecord) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	last := mine[0]
	rep.Last = &last

	recent := mine[:min(personRecent, len(mine))]
	rep.Recent = make([]model.LateRecord, len(recent))
	for i, r := range recent {
		rep.Recent[len(recent)-1-i] = r
	}
	return rep
}

func averageMinutes(records []model.LateRecord) int {
	if len(records) == 0 {
		return 0
	}
	sum := 0
	for _, r := range records {
		sum += r.MinutesLate
	}
	return int(math.Round(float64(sum) / float64(len(records))))
}

// sortCounts orders by count descending, then name ascending.
func sortCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for name, n := range m {
		out = append(out, Count{Name: name, Count: n})
	}
	slices.SortFunc(out, func(a, b Count) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}
