package reporter

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/eyeremote/eyeremote/internal/database"
	"github.com/eyeremote/eyeremote/internal/events"
	"github.com/eyeremote/eyeremote/internal/models"
	"github.com/eyeremote/eyeremote/pkg/utils"

	"github.com/pkg/errors"
)

// Reporter handles report generation
type Reporter struct {
	repo *database.Repository
	now  func() time.Time
}

// New creates a new reporter
func New(repo *database.Repository) *Reporter {
	return &Reporter{
		repo: repo,
		now:  time.Now,
	}
}

// GenerateReport generates a report for the specified period
func (r *Reporter) GenerateReport(periodType string) (*models.Report, error) {
	period, err := r.getPeriod(periodType)
	if err != nil {
		return nil, err
	}

	evs, err := r.repo.GetEventsBetween(period.Start, period.End)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load events")
	}

	// SQL does the per-kind counting
	kinds, err := r.repo.CountKindsSince(period.Start)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count events")
	}

	report := &models.Report{
		Period:      *period,
		Kinds:       kinds,
		GeneratedAt: r.now(),
	}

	for _, ev := range evs {
		switch events.Kind(ev.Kind) {
		case events.SessionStart:
			report.Sessions++
		case events.DecisionPause:
			report.Pauses++
		case events.DecisionResume:
			report.Resumes++
		case events.DispatchExhausted:
			report.DispatchFailures++
		case events.ResolveNotFound:
			report.TargetNotFound++
		}
	}

	end := period.End
	if now := r.now(); now.Before(end) {
		end = now
	}
	report.AwaySeconds, report.LongestAway = awayTime(evs, end)

	return report, nil
}

// awayTime pairs each pause with the next resume of the same session. A pause
// left open is closed by the session stopping, or by end.
func awayTime(evs []*models.Event, end time.Time) (total, longest int64) {
	open := map[string]time.Time{}

	closeAt := func(session string, at time.Time) {
		start, ok := open[session]
		if !ok {
			return
		}
		delete(open, session)
		secs := int64(at.Sub(start).Seconds())
		if secs < 0 {
			return
		}
		total += secs
		if secs > longest {
			longest = secs
		}
	}

	for _, ev := range evs {
		switch events.Kind(ev.Kind) {
		case events.DecisionPause:
			if _, ok := open[ev.SessionID]; !ok {
				open[ev.SessionID] = ev.Timestamp
			}
		case events.DecisionResume, events.SessionStop:
			closeAt(ev.SessionID, ev.Timestamp)
		}
	}
	for session := range open {
		closeAt(session, end)
	}
	return total, longest
}

// getPeriod calculates the time range for the report
func (r *Reporter) getPeriod(periodType string) (*models.ReportPeriod, error) {
	now := r.now()
	var start, end time.Time

	switch periodType {
	case "day", "today":
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 0, 1)

	case "week":
		// Start of week (Monday)
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7 // Sunday = 7
		}
		start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(weekday - 1))
		end = start.AddDate(0, 0, 7)

	case "month":
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 1, 0)

	default:
		return nil, fmt.Errorf("invalid period type: %s (valid: day, week, month)", periodType)
	}

	return &models.ReportPeriod{
		Start: start,
		End:   end,
		Type:  periodType,
	}, nil
}

// FormatReportText formats the report as human-readable text
func (r *Reporter) FormatReportText(report *models.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Attention Report - %s\n", report.Period.Type)
	fmt.Fprintf(&b, "Period: %s to %s\n\n",
		report.Period.Start.Format("2006-01-02 15:04"),
		report.Period.End.Format("2006-01-02 15:04"))

	if len(report.Kinds) == 0 {
		b.WriteString("No activity recorded for this period.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%-24s %10d\n", "Sessions", report.Sessions)
	fmt.Fprintf(&b, "%-24s %10d\n", "Pauses", report.Pauses)
	fmt.Fprintf(&b, "%-24s %10d\n", "Resumes", report.Resumes)
	fmt.Fprintf(&b, "%-24s %10s\n", "Time away", utils.FormatDuration(report.AwaySeconds))
	fmt.Fprintf(&b, "%-24s %10s\n", "Longest away", utils.FormatDuration(report.LongestAway))
	fmt.Fprintf(&b, "%-24s %10d\n", "Failed sends", report.DispatchFailures)
	fmt.Fprintf(&b, "%-24s %10d\n", "Target not found", report.TargetNotFound)

	b.WriteString("\n")
	fmt.Fprintf(&b, "%-30s %10s\n", "Event", "Count")
	b.WriteString(strings.Repeat("-", 41) + "\n")
	for _, k := range report.Kinds {
		fmt.Fprintf(&b, "%-30s %10d\n", truncate(k.Kind, 30), k.Count)
	}

	return b.String()
}

// FormatReportJSON formats the report as JSON
func (r *Reporter) FormatReportJSON(report *models.Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal JSON")
	}
	return string(data), nil
}

// FormatEvents renders events one per line, oldest first.
func FormatEvents(evs []*models.Event) string {
	var b strings.Builder
	for i := len(evs) - 1; i >= 0; i-- {
		ev := evs[i]
		line := events.Format(events.Event{
			Kind:      events.Kind(ev.Kind),
			Component: ev.Component,
			Message:   ev.Message,
			Target:    ev.Target,
			Method:    ev.Method,
			Elapsed:   time.Duration(ev.ElapsedMs) * time.Millisecond,
		})
		fmt.Fprintf(&b, "%s  %s\n", ev.Timestamp.Format("2006-01-02 15:04:05"), line)
	}
	return b.String()
}

// truncate truncates a string to the specified length
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
