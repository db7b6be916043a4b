package reporter

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/eyeremote/eyeremote/internal/database"
	"github.com/eyeremote/eyeremote/internal/events"
	"github.com/eyeremote/eyeremote/internal/models"
)

func newRepo(t *testing.T) *database.Repository {
	t.Helper()
	db, err := database.Connect(":memory:")
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	return database.NewRepository(db)
}

func add(t *testing.T, repo *database.Repository, session string, at time.Time, kind events.Kind) {
	t.Helper()
	if err := repo.CreateEvent(&models.Event{SessionID: session, Timestamp: at, Kind: string(kind), Component: "test"}); err != nil {
		t.Fatalf("CreateEvent() error = %v", err)
	}
}

func TestGenerateReport_PairsPauses(t *testing.T) {
	repo := newRepo(t)
	day := time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC) // a Wednesday
	at := func(h, m int) time.Time { return day.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute) }

	add(t, repo, "a", at(9, 0), events.SessionStart)
	add(t, repo, "a", at(9, 10), events.DecisionPause)
	add(t, repo, "a", at(9, 15), events.DecisionResume) // 5m away
	add(t, repo, "a", at(9, 20), events.DecisionPause)
	add(t, repo, "a", at(9, 22), events.DispatchExhausted)
	add(t, repo, "a", at(9, 40), events.SessionStop) // 20m away, closed by stop
	add(t, repo, "b", at(10, 0), events.SessionStart)
	add(t, repo, "b", at(10, 5), events.ResolveNotFound)
	add(t, repo, "b", at(10, 30), events.DecisionPause) // open until now
	add(t, repo, "x", day.AddDate(0, 0, -1), events.DecisionPause)

	r := New(repo)
	r.now = func() time.Time { return at(10, 31) }

	report, err := r.GenerateReport("day")
	if err != nil {
		t.Fatalf("GenerateReport() error = %v", err)
	}

	if report.Sessions != 2 || report.Pauses != 3 || report.Resumes != 1 {
		t.Errorf("sessions/pauses/resumes = %d/%d/%d, want 2/3/1", report.Sessions, report.Pauses, report.Resumes)
	}
	if report.DispatchFailures != 1 || report.TargetNotFound != 1 {
		t.Errorf("failures/not found = %d/%d, want 1/1", report.DispatchFailures, report.TargetNotFound)
	}
	if want := int64((5 + 20 + 1) * 60); report.AwaySeconds != want {
		t.Errorf("AwaySeconds = %d, want %d", report.AwaySeconds, want)
	}
	if report.LongestAway != 20*60 {
		t.Errorf("LongestAway = %d, want %d", report.LongestAway, 20*60)
	}

	text := r.FormatReportText(report)
	for _, want := range []string{"Attention Report - day", "Pauses", "26m00s", "decision_pause"} {
		if !strings.Contains(text, want) {
			t.Errorf("text report missing %q:\n%s", want, text)
		}
	}

	js, err := r.FormatReportJSON(report)
	if err != nil {
		t.Fatalf("FormatReportJSON() error = %v", err)
	}
	var decoded models.Report
	if err := json.Unmarshal([]byte(js), &decoded); err != nil || decoded.Pauses != 3 {
		t.Errorf("JSON report = %v, %+v", err, decoded)
	}
}

func TestGetPeriod(t *testing.T) {
	r := New(nil)
	r.now = func() time.Time { return time.Date(2024, 6, 16, 15, 0, 0, 0, time.UTC) } // Sunday

	tests := []struct {
		period    string
		wantStart time.Time
		wantEnd   time.Time
	}{
		{"day", time.Date(2024, 6, 16, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 17, 0, 0, 0, 0, time.UTC)},
		{"week", time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC), time.Date(2024, 6, 17, 0, 0, 0, 0, time.UTC)},
		{"month", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			p, err := r.getPeriod(tt.period)
			if err != nil {
				t.Fatalf("getPeriod() error = %v", err)
			}
			if !p.Start.Equal(tt.wantStart) || !p.End.Equal(tt.wantEnd) {
				t.Errorf("period = %v..%v, want %v..%v", p.Start, p.End, tt.wantStart, tt.wantEnd)
			}
		})
	}

	if _, err := r.getPeriod("year"); err == nil {
		t.Error("expected error for unknown period")
	}
}

func TestFormatReportText_Empty(t *testing.T) {
	r := New(nil)
	text := r.FormatReportText(&models.Report{Period: models.ReportPeriod{Type: "week"}})
	if !strings.Contains(text, "No activity recorded") {
		t.Errorf("unexpected text %q", text)
	}
}

func TestFormatEvents(t *testing.T) {
	ts := time.Date(2024, 6, 12, 9, 0, 0, 0, time.UTC)
	out := FormatEvents([]*models.Event{
		{Timestamp: ts.Add(time.Second), Kind: string(events.DispatchSent), Component: "dispatch", Method: "robotgo"},
		{Timestamp: ts, Kind: string(events.DecisionPause), Component: "attention", ElapsedMs: 3100},
	})
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %q", lines)
	}
	if !strings.Contains(lines[0], "decision_pause") || !strings.Contains(lines[1], "method=robotgo") {
		t.Errorf("unexpected order or content:\n%s", out)
	}
}
