package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"loipen-tracker/internal/domain"
)

var zurich, _ = time.LoadLocation("Europe/Zurich")

func sampleEntries() []domain.TimeEntry {
	done := domain.NewCompletedEntry("anna", domain.ActivityTrailGrooming,
		time.Date(2025, 1, 10, 8, 0, 0, 0, zurich), time.Date(2025, 1, 10, 10, 30, 0, 0, zurich))
	running := domain.NewTimeEntry("ghost", domain.ActivitySetUp, time.Date(2025, 1, 9, 7, 5, 0, 0, zurich))
	return []domain.TimeEntry{done, running}
}

func sampleNames() domain.EmployeeDirectory {
	return domain.NewEmployeeDirectory([]domain.Employee{{UserID: "anna", FirstName: "Anna", LastName: "Zürcher"}})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"csv", FormatCSV, false},
		{"", FormatCSV, false},
		{"XLSX", FormatXLSX, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildRows(t *testing.T) {
	rows := BuildRows(sampleEntries(), sampleNames(), zurich)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{"10.01.2025", "Anna Zürcher", "Loipenpräparation", "08:00", "10:30", "2.50"}, rows[0].Strings())
	assert.Equal(t, []string{"09.01.2025", "Unbekannt", "Aufbau", "07:05", "", ""}, rows[1].Strings())
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, BuildRows(sampleEntries(), sampleNames(), zurich)))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "\ufeff"), "missing BOM")

	lines := strings.Split(strings.TrimSuffix(strings.TrimPrefix(out, "\ufeff"), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Datum;Mitarbeiter;Projekt;Start;Stopp;Stunden", lines[0])
	assert.Equal(t, "10.01.2025;Anna Zürcher;Loipenpräparation;08:00;10:30;2.50", lines[1])
	assert.Equal(t, "09.01.2025;Unbekannt;Aufbau;07:05;;", lines[2])
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "\ufeffDatum;Mitarbeiter;Projekt;Start;Stopp;Stunden\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, BuildRows(sampleEntries(), sampleNames(), zurich)))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	header, err := f.GetCellValue(SheetName, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Datum", header)

	employee, err := f.GetCellValue(SheetName, "B2")
	require.NoError(t, err)
	assert.Equal(t, "Anna Zürcher", employee)

	hours, err := f.GetCellValue(SheetName, "F2", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, "2.5", hours)

	running, err := f.GetCellValue(SheetName, "F3")
	require.NoError(t, err)
	assert.Empty(t, running)
}

func TestFileName(t *testing.T) {
	from := time.Date(2025, 1, 6, 0, 0, 0, 0, zurich)
	to := time.Date(2025, 1, 12, 0, 0, 0, 0, zurich)

	assert.Equal(t, "Arbeitszeit_2025-01-06_2025-01-12.csv", FileName("", from, to, FormatCSV))
	assert.Equal(t, "Saison_2025-01-06_2025-01-12.xlsx", FileName("Saison", from, to, FormatXLSX))
}
