package timetable

import "time"

const (
	// TypeMisc is the generic filler type some feed events carry; a lesson
	// whose only content is this marker counts as empty.
	TypeMisc = "Divers"

	// TypeUnspecified is stored when the event summary matched no session
	// type marker.
	TypeUnspecified = "None"
)

// Lesson is one scheduled occurrence extracted from a group's feed. Dates
// and hours are kept as pre-formatted strings because both the cache and the
// API contract are defined in terms of these exact renderings.
type Lesson struct {
	CourseID   string
	CourseName string
	// Teacher holds the teacher field verbatim; it may contain several
	// comma-separated names that are split only at cache-insert time.
	Teacher string
	Type    string
	// Room holds zero or more comma-separated room numbers.
	Room string

	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD
	StartHour string // HHhMM display form, empty for all-day events
	EndHour   string
	StartSort string // HH:MM:SS sortable form, empty for all-day events
	EndSort   string

	// Empty records whether the event carried no usable content. It is
	// derived from the raw extracted fields before any placeholder is
	// applied, and empty lessons are never persisted.
	Empty bool
}

// JSON is the wire representation served by the query API. The field names
// are part of the historical contract and must not change.
type JSON struct {
	StartDate  string `json:"dateDebut"`
	StartHour  string `json:"heureDebut"`
	EndHour    string `json:"heureFin"`
	CourseID   string `json:"idMatiere"`
	CourseName string `json:"nomMatiere"`
	Teacher    string `json:"nomProf"`
	Type       string `json:"typeCours"`
	Room       string `json:"numeroSalle"`
	// Homework is reserved for a feature that never shipped; it is always
	// emitted and always empty.
	Homework string `json:"listeDevoirs"`
}

// ToJSON converts the lesson to its API representation.
func (l Lesson) ToJSON() JSON {
	return JSON{
		StartDate:  l.StartDate,
		StartHour:  l.StartHour,
		EndHour:    l.EndHour,
		CourseID:   l.CourseID,
		CourseName: l.CourseName,
		Teacher:    l.Teacher,
		Type:       l.Type,
		Room:       l.Room,
		Homework:   "",
	}
}

// StartTimestamp renders the sortable cache key for the lesson start. For
// all-day events this is the bare date, which still sorts and windows
// correctly against date-only bounds.
func (l Lesson) StartTimestamp() string {
	return joinStamp(l.StartDate, l.StartSort)
}

// EndTimestamp renders the sortable cache key for the lesson end.
func (l Lesson) EndTimestamp() string {
	return joinStamp(l.EndDate, l.EndSort)
}

func joinStamp(date, clock string) string {
	if clock == "" {
		return date
	}
	return date + " " + clock
}

// SplitStamp is the inverse of StartTimestamp/EndTimestamp: it separates a
// stored timestamp into its date and its display/sortable hour forms.
func SplitStamp(stamp string) (date, hour, sortable string) {
	const layout = "2006-01-02 15:04:05"
	if len(stamp) <= len("2006-01-02") {
		return stamp, "", ""
	}
	t, err := time.Parse(layout, stamp)
	if err != nil {
		return stamp, "", ""
	}
	return t.Format("2006-01-02"), t.Format("15h04"), t.Format("15:04:05")
}
