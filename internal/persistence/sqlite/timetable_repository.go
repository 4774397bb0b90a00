package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/hyperapi/internal/persistence"
	"github.com/example/hyperapi/internal/timetable"
)

// ReplaceAll rebuilds the whole cache inside one transaction: every table is
// truncated, then each non-empty lesson is inserted with its entities and
// link rows. A lesson that fails is logged and skipped so one bad event
// cannot poison the cycle, and readers never observe the half-built state.
func (s *Store) ReplaceAll(ctx context.Context, batches []persistence.GroupLessons) error {
	return s.WithTransaction(ctx, func(tx *sql.Tx) error {
		if err := clearAll(ctx, tx); err != nil {
			return err
		}

		for _, batch := range batches {
			classID, err := upsertEntity(ctx, tx,
				`INSERT OR IGNORE INTO classes(name) VALUES(?)`,
				`SELECT id FROM classes WHERE name = ?`,
				batch.Group)
			if err != nil {
				s.logger.ErrorContext(ctx, "failed to cache group",
					"group", batch.Group, "error", mapError(err))
				continue
			}

			for _, lesson := range batch.Lessons {
				if lesson.Empty {
					continue
				}
				if err := insertLesson(ctx, tx, classID, lesson); err != nil {
					s.logger.ErrorContext(ctx, "failed to cache lesson",
						"group", batch.Group,
						"course", lesson.CourseName,
						"start", lesson.StartTimestamp(),
						"error", mapError(err))
				}
			}
		}
		return nil
	})
}

// Link tables share one truncate order with their referenced entities so
// foreign keys never dangle mid-delete.
var clearOrder = []string{
	"session_courses", "session_teachers", "session_rooms", "session_classes",
	"sessions", "courses", "teachers", "rooms", "classes",
}

func clearAll(ctx context.Context, tx *sql.Tx) error {
	for _, table := range clearOrder {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// insertLesson upserts the lesson's entities, inserts its session row and
// threads the fresh session id into every link row.
func insertLesson(ctx context.Context, tx *sql.Tx, classID int64, lesson timetable.Lesson) error {
	courseID, err := upsertEntity(ctx, tx,
		`INSERT OR IGNORE INTO courses(course_id, course_name) VALUES(?, ?)`,
		`SELECT id FROM courses WHERE course_id = ? AND course_name = ?`,
		lesson.CourseID, lesson.CourseName)
	if err != nil {
		return fmt.Errorf("upsert course: %w", err)
	}

	teacherIDs := make([]int64, 0, 1)
	for _, name := range splitNonEmpty(lesson.Teacher, ", ") {
		id, err := upsertEntity(ctx, tx,
			`INSERT OR IGNORE INTO teachers(name) VALUES(?)`,
			`SELECT id FROM teachers WHERE name = ?`,
			name)
		if err != nil {
			return fmt.Errorf("upsert teacher: %w", err)
		}
		teacherIDs = append(teacherIDs, id)
	}

	roomIDs := make([]int64, 0, 1)
	for _, number := range splitNonEmpty(lesson.Room, ",") {
		id, err := upsertEntity(ctx, tx,
			`INSERT OR IGNORE INTO rooms(number) VALUES(?)`,
			`SELECT id FROM rooms WHERE number = ?`,
			number)
		if err != nil {
			return fmt.Errorf("upsert room: %w", err)
		}
		roomIDs = append(roomIDs, id)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO sessions(start_time, end_time, session_type) VALUES(?, ?, ?)`,
		lesson.StartTimestamp(), lesson.EndTimestamp(), lesson.Type)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	sessionID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("session id: %w", err)
	}

	if err := link(ctx, tx, "session_classes", "class_id", sessionID, classID); err != nil {
		return err
	}
	if err := link(ctx, tx, "session_courses", "course_id", sessionID, courseID); err != nil {
		return err
	}
	for _, id := range teacherIDs {
		if err := link(ctx, tx, "session_teachers", "teacher_id", sessionID, id); err != nil {
			return err
		}
	}
	for _, id := range roomIDs {
		if err := link(ctx, tx, "session_rooms", "room_id", sessionID, id); err != nil {
			return err
		}
	}
	return nil
}

// upsertEntity performs an insert-if-absent and resolves the surrogate id of
// the row holding the natural key.
func upsertEntity(ctx context.Context, tx *sql.Tx, insert, query string, args ...any) (int64, error) {
	if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
		return 0, err
	}
	var id int64
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func link(ctx context.Context, tx *sql.Tx, table, column string, sessionID, entityID int64) error {
	stmt := fmt.Sprintf(`INSERT OR IGNORE INTO %s(session_id, %s) VALUES(?, ?)`, table, column)
	if _, err := tx.ExecContext(ctx, stmt, sessionID, entityID); err != nil {
		return fmt.Errorf("link %s: %w", table, err)
	}
	return nil
}

func splitNonEmpty(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Window returns the group's cached lessons starting inside the half-open
// window, ordered by start. Teachers and rooms are read from their link
// tables in insertion order and re-concatenated the way the feed carried
// them.
func (s *Store) Window(ctx context.Context, group string, win timetable.Window) ([]timetable.Lesson, error) {
	const query = `
		SELECT s.id, s.start_time, s.end_time, s.session_type, c.course_id, c.course_name
		FROM sessions s
		JOIN session_classes sc ON sc.session_id = s.id
		JOIN classes cl ON cl.id = sc.class_id
		LEFT JOIN session_courses sco ON sco.session_id = s.id
		LEFT JOIN courses c ON c.id = sco.course_id
		WHERE cl.name = ? AND s.start_time >= ? AND s.start_time < ?
		ORDER BY s.start_time, s.id`

	rows, err := s.db.QueryContext(ctx, query, group, win.FromKey(), win.ToKey())
	if err != nil {
		return nil, fmt.Errorf("query window: %w", err)
	}
	defer rows.Close()

	type sessionRow struct {
		id     int64
		lesson timetable.Lesson
	}

	sessions := make([]sessionRow, 0)
	for rows.Next() {
		var (
			row        sessionRow
			start, end string
			courseID   sql.NullString
			courseName sql.NullString
		)
		if err := rows.Scan(&row.id, &start, &end, &row.lesson.Type, &courseID, &courseName); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		row.lesson.CourseID = courseID.String
		row.lesson.CourseName = courseName.String
		row.lesson.StartDate, row.lesson.StartHour, row.lesson.StartSort = timetable.SplitStamp(start)
		row.lesson.EndDate, row.lesson.EndHour, row.lesson.EndSort = timetable.SplitStamp(end)
		sessions = append(sessions, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}

	lessons := make([]timetable.Lesson, 0, len(sessions))
	for _, row := range sessions {
		teachers, err := s.linkedValues(ctx,
			`SELECT t.name FROM session_teachers st
			 JOIN teachers t ON t.id = st.teacher_id
			 WHERE st.session_id = ? ORDER BY st.rowid`, row.id)
		if err != nil {
			return nil, err
		}
		rooms, err := s.linkedValues(ctx,
			`SELECT r.number FROM session_rooms sr
			 JOIN rooms r ON r.id = sr.room_id
			 WHERE sr.session_id = ? ORDER BY sr.rowid`, row.id)
		if err != nil {
			return nil, err
		}

		lesson := row.lesson
		lesson.Teacher = strings.Join(teachers, ", ")
		lesson.Room = strings.Join(rooms, ",")
		lessons = append(lessons, lesson)
	}

	return lessons, nil
}

func (s *Store) linkedValues(ctx context.Context, query string, sessionID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query links: %w", err)
	}
	defer rows.Close()

	values := make([]string, 0, 1)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
