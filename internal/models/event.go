package models

import (
	"errors"
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04:05"
)

var (
	ErrBadDate  = errors.New("date must be YYYY-MM-DD")
	ErrBadClock = errors.New("time must be HH:MM or HH:MM:SS")
)

// Event dates and times are wall-clock values; they become instants only
// once a location is supplied.
type Event struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OwnerID     uint      `gorm:"not null;index" json:"owner_id"`
	Title       string    `gorm:"type:varchar(200);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Location    string    `gorm:"type:varchar(255)" json:"location"`
	InviteURL   string    `gorm:"column:event_url;type:varchar(128);uniqueIndex;not null" json:"event_url"`
	Date        string    `gorm:"column:date;type:varchar(10);not null;index" json:"date"`
	StartTime   string    `gorm:"column:start_time;type:varchar(8);not null" json:"time"`
	EndTime     *string   `gorm:"column:end_time;type:varchar(8)" json:"endtime,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type EventInvitation struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	EventID   uint             `gorm:"not null;uniqueIndex:uq_invitation_event_user" json:"event_id"`
	UserID    uint             `gorm:"not null;uniqueIndex:uq_invitation_event_user;index" json:"user_id"`
	Status    InvitationStatus `gorm:"type:varchar(16);not null;default:pending" json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// EventTeamInvite records that a whole team was invited. It is independent
// of the per-member invitations the fan-out creates.
type EventTeamInvite struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	EventID   uint             `gorm:"not null;uniqueIndex:uq_event_team" json:"event_id"`
	TeamID    uint             `gorm:"not null;uniqueIndex:uq_event_team;index" json:"team_id"`
	Status    TeamInviteStatus `gorm:"type:varchar(16);not null;default:pending" json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (EventTeamInvite) TableName() string {
	return "event_teams"
}

// NormalizeDate validates a YYYY-MM-DD date.
func NormalizeDate(s string) (string, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", ErrBadDate
	}
	return d.Format(DateLayout), nil
}

// NormalizeClock accepts HH:MM or HH:MM:SS and returns HH:MM:SS.
func NormalizeClock(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{ClockLayout, "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(ClockLayout), nil
		}
	}
	return "", ErrBadClock
}

// Start is the event's start instant in loc.
func (e *Event) Start(loc *time.Location) (time.Time, error) {
	return wallClock(e.Date, e.StartTime, loc)
}

// End is the event's end instant in loc. Without an end time the event lasts
// one hour; an end time at or before the start time falls on the next day.
func (e *Event) End(loc *time.Location) (time.Time, error) {
	start, err := e.Start(loc)
	if err != nil {
		return time.Time{}, err
	}
	if e.EndTime == nil || *e.EndTime == "" {
		return start.Add(time.Hour), nil
	}
	end, err := wallClock(e.Date, *e.EndTime, loc)
	if err != nil {
		return time.Time{}, err
	}
	if !end.After(start) {
		d, _ := time.Parse(DateLayout, e.Date)
		end, err = wallClock(d.AddDate(0, 0, 1).Format(DateLayout), *e.EndTime, loc)
		if err != nil {
			return time.Time{}, err
		}
	}
	return end, nil
}

func wallClock(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, ErrBadDate
	}
	c, err := NormalizeClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	t, _ := time.Parse(ClockLayout, c)
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
}
