package app

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/nugh75/calendario-sub000/internal/calendar"
	"github.com/nugh75/calendario-sub000/internal/storage/sqlite"
)

// importColumns is the expected CSV layout, one lesson per row:
//
//	date,time_range,department,class_group,pef60,pef30,pef36,pef30_art13,
//	course_code,course_title,teacher,room,remote_link,credit_value,note
//
// A header row with "date" in the first column is skipped.
const importColumns = 15

// ImportCSV reads lessons from a CSV file and inserts them into the store.
// Rows with the wrong column count, an empty date, or an invalid attendance
// flag are logged and skipped rather than aborting the whole import.
func ImportCSV(db *sql.DB, path string) (inserted, skipped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var lessons []calendar.LessonRecord
	line := 0
	for {
		row, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return 0, 0, fmt.Errorf("read %s: %w", path, readErr)
		}
		line++

		if line == 1 && strings.EqualFold(strings.TrimSpace(row[0]), "date") {
			continue
		}
		lesson, rowErr := parseImportRow(row)
		if rowErr != nil {
			log.Printf("Skipping %s line %d: %v", path, line, rowErr)
			skipped++
			continue
		}
		lessons = append(lessons, lesson)
	}

	inserted, err = sqlite.InsertLessons(db, lessons)
	if err != nil {
		return 0, skipped, err
	}
	return inserted, skipped, nil
}

func parseImportRow(row []string) (calendar.LessonRecord, error) {
	var rec calendar.LessonRecord
	if len(row) != importColumns {
		return rec, fmt.Errorf("expected %d columns, got %d", importColumns, len(row))
	}
	for i := range row {
		row[i] = strings.TrimSpace(row[i])
	}
	if row[0] == "" {
		return rec, fmt.Errorf("empty date")
	}

	flags := make(map[calendar.Pathway]calendar.Attendance, 4)
	pathways := []calendar.Pathway{
		calendar.PathwayPeF60,
		calendar.PathwayPeF30,
		calendar.PathwayPeF36,
		calendar.PathwayPeF30Art13,
	}
	for i, p := range pathways {
		att := calendar.Attendance(row[4+i])
		if !calendar.ValidAttendance(att) {
			return rec, fmt.Errorf("invalid %s attendance %q", p, row[4+i])
		}
		flags[p] = att
	}

	credit := 0.0
	if row[13] != "" {
		parsed, err := strconv.ParseFloat(row[13], 64)
		if err != nil {
			return rec, fmt.Errorf("invalid credit_value %q", row[13])
		}
		credit = parsed
	}

	return calendar.LessonRecord{
		Date:         row[0],
		TimeRange:    row[1],
		Department:   row[2],
		ClassGroup:   row[3],
		PathwayFlags: flags,
		CourseCode:   row[8],
		CourseTitle:  row[9],
		Teacher:      row[10],
		Room:         row[11],
		RemoteLink:   row[12],
		CreditValue:  credit,
		Note:         row[14],
	}, nil
}
