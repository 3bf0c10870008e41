// Package ical renders events as an iCalendar (RFC 5545) feed.
package ical

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
	"unicode/utf8"

	"github.com/tariel-x/eventease/internal/models"
)

const (
	stampLayout = "20060102T150405Z"
	crlf        = "\r\n"
	maxLine     = 75
)

var escaper = strings.NewReplacer(
	`\`, `\\`,
	`;`, `\;`,
	`,`, `\,`,
	"\r\n", `\n`,
	"\n", `\n`,
)

// Escape escapes a TEXT property value.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Render writes one VEVENT per event. Event dates and times are read as
// wall-clock values in loc and emitted as UTC instants; now becomes DTSTAMP.
func Render(events []models.Event, loc *time.Location, now time.Time) (string, error) {
	if loc == nil {
		loc = time.UTC
	}
	stamp := now.UTC().Format(stampLayout)

	var b strings.Builder
	w := func(line string) { writeFolded(&b, line) }

	w("BEGIN:VCALENDAR")
	w("VERSION:2.0")
	w("PRODID:-//EventEase//EN")
	w("CALSCALE:GREGORIAN")
	w("METHOD:PUBLISH")

	for i := range events {
		ev := &events[i]
		start, err := ev.Start(loc)
		if err != nil {
			return "", fmt.Errorf("event %d: %w", ev.ID, err)
		}
		end, err := ev.End(loc)
		if err != nil {
			return "", fmt.Errorf("event %d: %w", ev.ID, err)
		}

		w("BEGIN:VEVENT")
		w(fmt.Sprintf("UID:eventease-%d@eventease", ev.ID))
		w("DTSTAMP:" + stamp)
		if !ev.CreatedAt.IsZero() {
			w("CREATED:" + ev.CreatedAt.UTC().Format(stampLayout))
		}
		w("DTSTART:" + start.UTC().Format(stampLayout))
		w("DTEND:" + end.UTC().Format(stampLayout))
		w("SUMMARY:" + Escape(ev.Title))
		if ev.Description != "" {
			w("DESCRIPTION:" + Escape(ev.Description))
		}
		if ev.Location != "" {
			w("LOCATION:" + Escape(ev.Location))
		}
		w("END:VEVENT")
	}

	w("END:VCALENDAR")
	return b.String(), nil
}

// writeFolded splits lines longer than 75 octets, continuing with a single
// space, without breaking a UTF-8 sequence.
func writeFolded(b *strings.Builder, line string) {
	limit := maxLine
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		b.WriteString(line[:cut])
		b.WriteString(crlf)
		b.WriteByte(' ')
		line = line[cut:]
		limit = maxLine - 1
	}
	b.WriteString(line)
	b.WriteString(crlf)
}
