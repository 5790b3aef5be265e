// Package export writes timesheets in the office's CSV and XLSX layouts.
package export

import (
	"fmt"
	"strings"
	"time"

	"loipen-tracker/internal/domain"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts "csv" or "xlsx" in any case.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV, "":
		return FormatCSV, nil
	case FormatXLSX, "excel":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ContentType is the MIME type served for the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// SheetName is the worksheet holding the XLSX timesheet.
const SheetName = "Arbeitszeit"

// Header is the column header of every export.
var Header = []string{"Datum", "Mitarbeiter", "Projekt", "Start", "Stopp", "Stunden"}

// Row is one exported time entry. Stop and Hours are empty for running entries.
type Row struct {
	Date     string
	Employee string
	Project  string
	Start    string
	Stop     string
	Hours    *float64
}

// Strings returns the row as CSV cells.
func (r Row) Strings() []string {
	hours := ""
	if r.Hours != nil {
		hours = domain.FormatHours(*r.Hours)
	}
	return []string{r.Date, r.Employee, r.Project, r.Start, r.Stop, hours}
}

// BuildRows converts entries into export rows in the given order. Times are
// rendered in loc; users missing from names show as "Unbekannt".
func BuildRows(entries []domain.TimeEntry, names domain.EmployeeDirectory, loc *time.Location) []Row {
	if loc == nil {
		loc = time.Local
	}
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		row := Row{
			Date:     e.Date.In(loc).Format("02.01.2006"),
			Employee: names.Name(e.UserID),
			Project:  e.ActivityType.Label(),
			Start:    e.StartTime.In(loc).Format(domain.ShortClock),
			Hours:    e.TotalHours,
		}
		if e.StopTime != nil {
			row.Stop = e.StopTime.In(loc).Format(domain.ShortClock)
		}
		rows = append(rows, row)
	}
	return rows
}

// FileName builds "<prefix>_<from>_<to>.<ext>" with ISO dates.
func FileName(prefix string, from, to time.Time, format Format) string {
	if prefix == "" {
		prefix = SheetName
	}
	return fmt.Sprintf("%s_%s_%s.%s", prefix, from.Format(domain.DateLayout), to.Format(domain.DateLayout), format)
}
