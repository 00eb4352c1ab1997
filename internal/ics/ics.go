// Package ics renders a calendar's events as an iCalendar download.
package ics

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-ical"
	"github.com/gosimple/slug"
	"github.com/tripstitch/tripstitch-api/internal/models"
	"github.com/tripstitch/tripstitch-api/internal/planner"
)

const (
	productID   = "-//tripstitch//calendar export//EN"
	uidDomain   = "tripstitch"
	propCalName = "X-WR-CALNAME"
	timeLayout  = "15:04"
)

// Encode writes cal and its events to w. Multi-day events become all-day
// spans; single-day events are timed in UTC.
func Encode(w io.Writer, cal *models.Calendar, events []models.Event, now time.Time) error {
	out := ical.NewCalendar()
	out.Props.SetText(ical.PropVersion, "2.0")
	out.Props.SetText(ical.PropProductID, productID)
	out.Props.SetText(propCalName, cal.Name)

	for i := range events {
		ve, err := toVEvent(&events[i], now)
		if err != nil {
			return err
		}
		out.Children = append(out.Children, ve)
	}

	if err := ical.NewEncoder(w).Encode(out); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	return nil
}

func toVEvent(e *models.Event, now time.Time) (*ical.Component, error) {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, fmt.Sprintf("%s@%s", e.ID, uidDomain))
	ve.Props.SetText(ical.PropSummary, e.Title)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())

	start, end := planner.Span(*e)
	if e.IsMultiDay {
		// DTEND of an all-day span is exclusive.
		ve.Props.SetDate(ical.PropDateTimeStart, start.Time())
		ve.Props.SetDate(ical.PropDateTimeEnd, end.AddDays(1).Time())
	} else {
		clock, err := time.Parse(timeLayout, e.Time)
		if err != nil {
			return nil, fmt.Errorf("event %s: invalid time %q: %w", e.ID, e.Time, err)
		}
		at := start.Time().Add(time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute)
		ve.Props.SetDateTime(ical.PropDateTimeStart, at)
		ve.Props.SetDateTime(ical.PropDateTimeEnd, at.Add(time.Duration(e.Duration)*time.Minute))
	}

	if e.Description != nil && *e.Description != "" {
		ve.Props.SetText(ical.PropDescription, *e.Description)
	}
	if !e.UpdatedAt.IsZero() {
		ve.Props.SetDateTime(ical.PropLastModified, e.UpdatedAt.UTC())
	}
	return ve, nil
}

// Filename is the download name for a calendar export.
func Filename(cal *models.Calendar) string {
	name := slug.Make(cal.Name)
	if name == "" {
		name = "calendar"
	}
	return name + ".ics"
}
