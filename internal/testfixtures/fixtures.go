// Package testfixtures groups the shared helpers used by the test suites:
// a controllable clock, a temporary SQLite store and canned feed data.
package testfixtures

import (
	"strings"
	"time"

	"github.com/example/hyperapi/internal/timetable"
)

// ReferenceTime is the fixed instant tests use as "now": a Monday inside
// ISO week 2021-W05.
func ReferenceTime() time.Time {
	return time.Date(2021, time.February, 1, 7, 0, 0, 0, time.UTC)
}

// SampleLesson returns a fully populated lesson starting on the reference
// day. Mutate the returned value freely; each call builds a fresh one.
func SampleLesson() timetable.Lesson {
	return timetable.Lesson{
		CourseID:   "M1234",
		CourseName: "Algorithms",
		Teacher:    "M. Dupont",
		Type:       "TD",
		Room:       "B201",
		StartDate:  "2021-02-01",
		EndDate:    "2021-02-01",
		StartHour:  "10h00",
		EndHour:    "12h00",
		StartSort:  "10:00:00",
		EndSort:    "12:00:00",
	}
}

// SampleFeed is a minimal ICS document shaped like the production feed: two
// lessons and one empty filler event. Lines are CRLF-delimited as the
// calendar format requires.
var SampleFeed = strings.Join([]string{
	"BEGIN:VCALENDAR",
	"VERSION:2.0",
	"PRODID:-//hyperapi//test//EN",
	"BEGIN:VEVENT",
	"UID:lesson-1@test",
	"DTSTART:20210201T080000Z",
	"DTEND:20210201T100000Z",
	"SUMMARY:M1234 Algorithms - M. Dupont - TD",
	"LOCATION:B201",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:lesson-2@test",
	"DTSTART:20210202T120000Z",
	"DTEND:20210202T140000Z",
	"SUMMARY:M5678 Databases - Mme Martin, M. Durand - TP",
	"LOCATION:C101,C102",
	"END:VEVENT",
	"BEGIN:VEVENT",
	"UID:filler@test",
	"DTSTART:20210203T080000Z",
	"DTEND:20210203T090000Z",
	"SUMMARY: - Divers",
	"END:VEVENT",
	"END:VCALENDAR",
	"",
}, "\r\n")
