package feed

import (
	"regexp"
	"strings"
	"time"

	"github.com/example/hyperapi/internal/timetable"
)

// Summary header token markers. The feed encodes a lesson as free text of
// the form "M1234 Course name - M. Teacher - TD", but the token count and
// order vary, so each field is recovered by scanning for its marker.
var (
	courseMarker  = regexp.MustCompile(`^M[0-9]+`)
	teacherMarker = regexp.MustCompile(`^(M\.|Mme|_enseignant inconnu_)`)
	typeMarker    = regexp.MustCompile(`^(TP|TD|CM)`)
	examMarker    = regexp.MustCompile(`^(Examen|Partiel|DS)`)
)

// dstCutover implements the feed's fixed daylight-saving rule: events ending
// strictly after this instant are displayed at UTC+2, earlier ones at UTC+1.
// This mirrors the upstream source exactly and is a documented limitation:
// it does not follow the real Europe/Paris transitions for later winters.
var dstCutover = time.Date(2020, time.March, 29, 0, 0, 0, 0, time.UTC)

// Extract parses one raw calendar event into a structured lesson. It is
// best-effort: unmatched fields stay empty and are defaulted afterwards,
// never reported as errors.
func Extract(ev RawEvent) timetable.Lesson {
	var l timetable.Lesson

	header := strings.Split(ev.Summary, " - ")

	// Course id and name. The first token carrying a course-code marker is
	// split on its first space; without a marker the leading token is the
	// course name wholesale.
	matched := false
	for _, tok := range header {
		if !courseMarker.MatchString(tok) {
			continue
		}
		parts := strings.SplitN(tok, " ", 2)
		l.CourseID = parts[0]
		if len(parts) == 2 {
			l.CourseName = parts[1]
		}
		matched = true
		break
	}
	if !matched && len(header) > 0 {
		l.CourseName = header[0]
	}

	for _, tok := range header {
		if teacherMarker.MatchString(tok) {
			l.Teacher = strings.TrimSpace(tok)
			break
		}
	}

	// Session type: a practical/tutorial/lecture marker wins outright. An
	// exam token also pulls the second-to-last header token into the course
	// name, because exam events encode their context there.
	matched = false
	for _, tok := range header {
		if typeMarker.MatchString(tok) {
			l.Type = tok
			matched = true
			break
		}
	}
	if !matched {
		for _, tok := range header {
			if !examMarker.MatchString(tok) {
				continue
			}
			l.Type = tok
			if len(header) >= 2 {
				l.CourseName += " : " + header[len(header)-2]
			}
			break
		}
	}

	l.Room = ev.Location

	l.StartDate = ev.Start.Format("2006-01-02")
	l.EndDate = ev.End.Format("2006-01-02")
	if !ev.AllDay {
		offset := time.Hour
		if ev.End.After(dstCutover) {
			offset = 2 * time.Hour
		}
		start := ev.Start.Add(offset)
		end := ev.End.Add(offset)
		l.StartHour = start.Format("15h04")
		l.StartSort = start.Format("15:04:05")
		l.EndHour = end.Format("15h04")
		l.EndSort = end.Format("15:04:05")
	}

	// Emptiness is judged on the raw extraction result, before the type
	// placeholder is applied.
	l.Empty = l.CourseName == "" && l.Teacher == "" &&
		(l.Type == "" || l.Type == timetable.TypeMisc)

	if l.Type == "" {
		l.Type = timetable.TypeUnspecified
	}

	return l
}
