package sqlite

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nugh75/calendario-sub000/internal/calendar"
	"github.com/nugh75/calendario-sub000/internal/textnorm"
)

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS lessons (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		date         TEXT NOT NULL,
		time_range   TEXT NOT NULL DEFAULT '',
		department   TEXT DEFAULT '',
		class_group  TEXT DEFAULT '',
		pef60        TEXT DEFAULT '',
		pef30        TEXT DEFAULT '',
		pef36        TEXT DEFAULT '',
		pef30_art13  TEXT DEFAULT '',
		course_code  TEXT DEFAULT '',
		course_title TEXT DEFAULT '',
		teacher      TEXT DEFAULT '',
		room         TEXT DEFAULT '',
		remote_link  TEXT DEFAULT '',
		credit_value REAL NOT NULL DEFAULT 0,
		note         TEXT DEFAULT '',
		created_at   DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_lessons_date ON lessons(date);
	CREATE INDEX IF NOT EXISTS idx_lessons_teacher ON lessons(teacher);
	CREATE INDEX IF NOT EXISTS idx_lessons_class_group ON lessons(class_group);
	`
	_, err = db.Exec(schema)
	if err != nil {
		return nil, err
	}

	// Migration: add remote_link column if missing (pre-remote-teaching DBs).
	var colCount int
	_ = db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('lessons') WHERE name = 'remote_link'`).Scan(&colCount)
	if colCount == 0 {
		_, _ = db.Exec(`ALTER TABLE lessons ADD COLUMN remote_link TEXT DEFAULT ''`)
	}

	return db, nil
}

const lessonColumns = `id, date, time_range, department, class_group,
	pef60, pef30, pef36, pef30_art13,
	course_code, course_title, teacher, room, remote_link, credit_value, note`

func InsertLesson(db *sql.DB, r calendar.LessonRecord) (int64, error) {
	res, err := db.Exec(
		`INSERT INTO lessons (date, time_range, department, class_group, pef60, pef30, pef36, pef30_art13,
		 course_code, course_title, teacher, room, remote_link, credit_value, note)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		insertArgs(r)...,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func InsertLessons(db *sql.DB, records []calendar.LessonRecord) (int, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO lessons (date, time_range, department, class_group, pef60, pef30, pef36, pef30_art13,
		 course_code, course_title, teacher, room, remote_link, credit_value, note)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	inserted := 0
	for _, r := range records {
		if _, err := stmt.Exec(insertArgs(r)...); err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, tx.Commit()
}

func insertArgs(r calendar.LessonRecord) []any {
	return []any{
		r.Date, r.TimeRange, r.Department, r.ClassGroup,
		string(r.Flag(calendar.PathwayPeF60)), string(r.Flag(calendar.PathwayPeF30)),
		string(r.Flag(calendar.PathwayPeF36)), string(r.Flag(calendar.PathwayPeF30Art13)),
		r.CourseCode, r.CourseTitle, r.Teacher, r.Room, r.RemoteLink, r.CreditValue, r.Note,
	}
}

func GetAllLessons(db *sql.DB) ([]calendar.LessonRecord, error) {
	rows, err := db.Query(
		`SELECT ` + lessonColumns + ` FROM lessons ORDER BY date, time_range, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLessons(rows)
}

func GetLessonsByDateRange(db *sql.DB, from, to string) ([]calendar.LessonRecord, error) {
	rows, err := db.Query(
		`SELECT `+lessonColumns+` FROM lessons WHERE date >= ? AND date < ? ORDER BY date, time_range, id`,
		from, to,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLessons(rows)
}

func GetLessonByID(db *sql.DB, id int64) (calendar.LessonRecord, error) {
	row := db.QueryRow(`SELECT `+lessonColumns+` FROM lessons WHERE id = ?`, id)
	return scanLesson(row.Scan)
}

func DeleteLessonByID(db *sql.DB, id int64) error {
	_, err := db.Exec(`DELETE FROM lessons WHERE id = ?`, id)
	return err
}

func CountLessons(db *sql.DB) (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM lessons`).Scan(&n)
	return n, err
}

func scanLessons(rows *sql.Rows) ([]calendar.LessonRecord, error) {
	var out []calendar.LessonRecord
	for rows.Next() {
		r, err := scanLesson(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanLesson(scan func(dest ...any) error) (calendar.LessonRecord, error) {
	var r calendar.LessonRecord
	var pef60, pef30, pef36, pef30Art13 string
	err := scan(
		&r.ID, &r.Date, &r.TimeRange, &r.Department, &r.ClassGroup,
		&pef60, &pef30, &pef36, &pef30Art13,
		&r.CourseCode, &r.CourseTitle, &r.Teacher, &r.Room, &r.RemoteLink, &r.CreditValue, &r.Note,
	)
	if err != nil {
		return r, err
	}
	r.PathwayFlags = map[calendar.Pathway]calendar.Attendance{
		calendar.PathwayPeF60:      calendar.Attendance(pef60),
		calendar.PathwayPeF30:      calendar.Attendance(pef30),
		calendar.PathwayPeF36:      calendar.Attendance(pef36),
		calendar.PathwayPeF30Art13: calendar.Attendance(pef30Art13),
	}
	return r, nil
}

// ApplyMerge persists a merge result in one transaction: the survivor row is
// rewritten with the unified field values and the superseded rows are
// deleted. Either the whole merge lands or nothing changes.
func ApplyMerge(db *sql.DB, unified calendar.LessonRecord, survivorID int64, supersededIDs []int64) error {
	if survivorID == 0 {
		return fmt.Errorf("apply merge: survivor has no ID")
	}
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`UPDATE lessons SET date = ?, time_range = ?, department = ?, class_group = ?,
		 pef60 = ?, pef30 = ?, pef36 = ?, pef30_art13 = ?,
		 course_code = ?, course_title = ?, teacher = ?, room = ?, remote_link = ?, credit_value = ?, note = ?
		 WHERE id = ?`,
		append(insertArgs(unified), survivorID)...,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("apply merge: survivor %d not found", survivorID)
	}

	for _, id := range supersededIDs {
		if id == survivorID {
			return fmt.Errorf("apply merge: record %d is both survivor and superseded", id)
		}
		if _, err := tx.Exec(`DELETE FROM lessons WHERE id = ?`, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// CleanWhitespace rewrites teacher and time_range values that differ from
// their normalized form only by spacing. This is the remediation for the
// whitespace-only sub-case the exact duplicate strategy flags.
func CleanWhitespace(db *sql.DB) (int, error) {
	records, err := GetAllLessons(db)
	if err != nil {
		return 0, err
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`UPDATE lessons SET teacher = ?, time_range = ? WHERE id = ?`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	cleaned := 0
	for _, r := range records {
		teacher := textnorm.Normalize(r.Teacher)
		timeRange := textnorm.Normalize(r.TimeRange)
		if teacher == r.Teacher && timeRange == r.TimeRange {
			continue
		}
		if _, err := stmt.Exec(teacher, timeRange, r.ID); err != nil {
			return cleaned, err
		}
		cleaned++
	}
	return cleaned, tx.Commit()
}
