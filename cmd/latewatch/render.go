package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/crimson-sun/latewatch/internal/report"
)

const (
	topGroups = 5
	barWidth  = 24
)

var (
	accent  = lipgloss.Color("#E879F9")
	muted   = lipgloss.Color("#94A3B8")
	danger  = lipgloss.Color("#EF4444")
	warning = lipgloss.Color("#F59E0B")
	good    = lipgloss.Color("#34D399")

	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(accent).MarginBottom(1)
	labelStyle = lipgloss.NewStyle().Foreground(muted)
	valueStyle = lipgloss.NewStyle().Bold(true)
	barStyle   = lipgloss.NewStyle().Foreground(accent)
	cardStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 2).
			MarginRight(1)

	statusColors = map[report.Status]lipgloss.Color{
		report.StatusNormal:   good,
		report.StatusAtRisk:   warning,
		report.StatusCritical: danger,
	}
)

func card(label, value string) string {
	return cardStyle.Render(labelStyle.Render(label) + "\n" + valueStyle.Render(value))
}

// bar draws n proportionally to peak within barWidth cells.
func bar(n, peak int) string {
	if peak <= 0 || n <= 0 {
		return ""
	}
	return barStyle.Render(strings.Repeat("█", max(1, n*barWidth/peak)))
}

func renderSummary(s report.Summary) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Late arrivals"))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		card("Total", fmt.Sprint(s.Total)),
		card("Today", fmt.Sprint(s.Today)),
		card("Average", fmt.Sprintf("%d min", s.AverageMinutesLate)),
		card("Groups", fmt.Sprint(len(s.ByGroup))),
	))
	b.WriteString("\n\n")

	if len(s.ByGroup) > 0 {
		b.WriteString(labelStyle.Render("Top groups"))
		b.WriteString("\n")
		groups := s.ByGroup[:min(topGroups, len(s.ByGroup))]
		width := 0
		for _, g := range groups {
			width = max(width, lipgloss.Width(g.Name))
		}
		for _, g := range groups {
			fmt.Fprintf(&b, "  %-*s %4d %s\n", width, g.Name, g.Count, bar(g.Count, groups[0].Count))
		}
		b.WriteString("\n")
	}

	b.WriteString(labelStyle.Render("Last 7 days"))
	b.WriteString("\n")
	peak := 0
	for _, d := range s.Trend {
		peak = max(peak, d.Count)
	}
	for _, d := range s.Trend {
		fmt.Fprintf(&b, "  %s %4d %s\n", d.Date, d.Count, bar(d.Count, peak))
	}
	return b.String()
}

func renderMonth(m report.Month) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Month " + m.Month))
	b.WriteString("\n")
	if m.Total == 0 {
		b.WriteString(labelStyle.Render("  no records"))
		b.WriteString("\n")
		return b.String()
	}

	top := "-"
	if m.TopGroup != nil {
		top = fmt.Sprintf("%s (%d)", m.TopGroup.Name, m.TopGroup.Count)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		card("Total", fmt.Sprint(m.Total)),
		card("Top group", top),
	))
	b.WriteString("\n\n")

	for i, p := range m.Top {
		fmt.Fprintf(&b, "  %2d. %-28s %-12s %3d\n", i+1, p.Name, p.Group, p.Count)
	}
	return b.String()
}

func renderPerson(p report.PersonReport, loc *time.Location) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(p.Name))
	b.WriteString("\n")

	status := lipgloss.NewStyle().Bold(true).Foreground(statusColors[p.Status]).Render(string(p.Status))
	last := "-"
	if p.Last != nil {
		last = p.Last.Timestamp.In(loc).Format("2006-01-02 15:04")
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		card("Total", fmt.Sprint(p.Total)),
		card("Average", fmt.Sprintf("+%dm", p.AverageMinutesLate)),
		card("Last", last),
		card("Status", status),
	))
	b.WriteString("\n\n")

	peak := 0
	for _, r := range p.Recent {
		peak = max(peak, r.MinutesLate)
	}
	for _, r := range p.Recent {
		fmt.Fprintf(&b, "  %s %4dm %s %s\n",
			r.Timestamp.In(loc).Format("02/01"), r.MinutesLate, bar(r.MinutesLate, peak), labelStyle.Render(r.Reason))
	}
	return b.String()
}
