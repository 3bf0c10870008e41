package ical

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/tariel-x/eventease/internal/models"
)

func strPtr(s string) *string { return &s }

func TestEscape(t *testing.T) {
	got := Escape("a\\b;c,d\ne")
	want := `a\\b\;c\,d\ne`
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRenderTwoEvents(t *testing.T) {
	now := time.Date(2024, 12, 31, 8, 0, 0, 0, time.UTC)
	events := []models.Event{
		{ID: 1, Title: "Kickoff", Date: "2025-01-01", StartTime: "09:00:00"},
		{ID: 2, Title: "Review, part 2", Location: "Room; B", Date: "2025-01-02", StartTime: "10:00:00", EndTime: strPtr("11:00:00")},
	}

	out, err := Render(events, time.UTC, now)
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if !strings.HasPrefix(out, "BEGIN:VCALENDAR\r\nVERSION:2.0\r\n") {
		t.Fatalf("unexpected header: %q", out[:40])
	}
	if !strings.HasSuffix(out, "END:VCALENDAR\r\n") {
		t.Fatalf("expected feed to end with END:VCALENDAR CRLF")
	}
	if strings.Contains(strings.ReplaceAll(out, "\r\n", ""), "\n") {
		t.Fatalf("found bare LF in feed")
	}
	if n := strings.Count(out, "BEGIN:VEVENT\r\n"); n != 2 {
		t.Fatalf("expected 2 events, got %d", n)
	}

	for _, line := range []string{
		"UID:eventease-1@eventease",
		"DTSTAMP:20241231T080000Z",
		"DTSTART:20250101T090000Z",
		"DTEND:20250101T100000Z",
		"UID:eventease-2@eventease",
		"DTSTART:20250102T100000Z",
		"DTEND:20250102T110000Z",
		`SUMMARY:Review\, part 2`,
		`LOCATION:Room\; B`,
	} {
		if !strings.Contains(out, line+"\r\n") {
			t.Fatalf("expected line %q in feed:\n%s", line, out)
		}
	}
	if strings.Contains(out, "DESCRIPTION:") {
		t.Fatalf("empty description must be omitted")
	}
}

func TestRenderConvertsTimezone(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Madrid")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	events := []models.Event{{ID: 7, Title: "Dinner", Date: "2025-07-01", StartTime: "21:30:00"}}

	out, err := Render(events, loc, time.Unix(1_700_000_000, 0))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "DTSTART:20250701T193000Z\r\n") {
		t.Fatalf("expected summer-time conversion, got:\n%s", out)
	}
	if !strings.Contains(out, "DTEND:20250701T203000Z\r\n") {
		t.Fatalf("expected default one hour end, got:\n%s", out)
	}
}

func TestFoldLongLines(t *testing.T) {
	title := strings.Repeat("ñ", 100)
	events := []models.Event{{ID: 3, Title: title, Date: "2025-03-03", StartTime: "08:00:00"}}

	out, err := Render(events, nil, time.Unix(0, 0))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, line := range strings.Split(strings.TrimSuffix(out, "\r\n"), "\r\n") {
		if len(line) > 75 {
			t.Fatalf("line longer than 75 octets: %d", len(line))
		}
		if !utf8.ValidString(line) {
			t.Fatalf("fold split a UTF-8 sequence: %q", line)
		}
	}

	unfolded := strings.ReplaceAll(out, "\r\n ", "")
	if !strings.Contains(unfolded, "SUMMARY:"+title+"\r\n") {
		t.Fatalf("unfolded summary does not round-trip")
	}
}
