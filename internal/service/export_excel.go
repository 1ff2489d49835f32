package service

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rekk2/event-registration/internal/domain"
	"github.com/rekk2/event-registration/internal/repository"
	"github.com/rekk2/event-registration/internal/telemetry"

	"github.com/xuri/excelize/v2"
)

const (
	ActiveExportFilename = "event_data.xlsx"
	ExportTimeLayout     = "2006-01-02 15:04:05"
	XLSXContentType      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	eventDataSheet    = "Event Data"
	summarySheet      = "Summary"
	archiveDataSheet  = "Archived Event Data"
	summaryTotalLabel = "Total"
)

var (
	entryHeader  = []string{"Name", "Door", "Timestamp"}
	entryWidths  = []float64{25, 10, 25}
	summaryHdr   = []string{"Door", "Count"}
	summaryWidth = []float64{25, 10}

	unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._ -]+`)
)

// ExportService spreadsheet downloads of the active set and of archives.
type ExportService interface {
	ExportActive(ctx context.Context) ([]byte, error)
	// ExportArchive returns the workbook and its download filename.
	ExportArchive(ctx context.Context, archiveID string) ([]byte, string, error)
}

type exportService struct {
	names    repository.NamesRepository
	archives repository.ArchivesRepository
	loc      *time.Location
}

// NewExportService loc nil means time.Local.
func NewExportService(names repository.NamesRepository, archives repository.ArchivesRepository, loc *time.Location) ExportService {
	if loc == nil {
		loc = time.Local
	}
	return &exportService{names: names, archives: archives, loc: loc}
}

// ExportActive sheet "Event Data" holds entries oldest first; sheet "Summary" holds
// per-door counts sorted by door and a Total row.
func (s *exportService) ExportActive(ctx context.Context) ([]byte, error) {
	entries, err := s.names.ListNames(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})

	agg := domain.NewAggregate(entries)
	doors := make([]string, 0, len(agg.DoorCounts))
	for door := range agg.DoorCounts {
		doors = append(doors, door)
	}
	sort.Strings(doors)

	summaryRows := make([][]any, 0, len(doors)+1)
	for _, door := range doors {
		summaryRows = append(summaryRows, []any{door, agg.DoorCounts[door]})
	}
	summaryRows = append(summaryRows, []any{summaryTotalLabel, agg.TotalCount})

	data, err := buildWorkbook(
		sheetDef{name: eventDataSheet, header: entryHeader, widths: entryWidths, rows: s.entryRows(entries)},
		sheetDef{name: summarySheet, header: summaryHdr, widths: summaryWidth, rows: summaryRows},
	)
	if err != nil {
		return nil, err
	}
	telemetry.ExportsTotal.WithLabelValues("active").Inc()
	return data, nil
}

func (s *exportService) ExportArchive(ctx context.Context, archiveID string) ([]byte, string, error) {
	if strings.TrimSpace(archiveID) == "" {
		return nil, "", domain.NewValidationError("id", "id is required")
	}
	archive, err := s.archives.GetArchive(ctx, archiveID)
	if err != nil {
		return nil, "", err
	}

	data, err := buildWorkbook(
		sheetDef{name: archiveDataSheet, header: entryHeader, widths: entryWidths, rows: s.entryRows(archive.Data)},
	)
	if err != nil {
		return nil, "", err
	}
	telemetry.ExportsTotal.WithLabelValues("archive").Inc()
	return data, ArchiveExportFilename(archive.EventName), nil
}

func (s *exportService) entryRows(entries []domain.NameEntry) [][]any {
	rows := make([][]any, len(entries))
	for i, e := range entries {
		rows[i] = []any{e.Name, e.Door, e.Timestamp.In(s.loc).Format(ExportTimeLayout)}
	}
	return rows
}

// ArchiveExportFilename archive_<eventName>.xlsx with characters unsafe in a
// Content-Disposition header replaced by underscores.
func ArchiveExportFilename(eventName string) string {
	name := strings.TrimSpace(unsafeFilenameChars.ReplaceAllString(eventName, "_"))
	if name == "" {
		name = "event"
	}
	return "archive_" + name + ".xlsx"
}

type sheetDef struct {
	name   string
	header []string
	widths []float64
	rows   [][]any
}

// buildWorkbook writes each sheet with a bold header row and a frozen first row.
// The first sheet is active.
func buildWorkbook(sheets ...sheetDef) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, sheet := range sheets {
		// The first sheet takes over the default "Sheet1".
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.name); err != nil {
				return nil, fmt.Errorf("failed to name sheet %s: %w", sheet.name, err)
			}
		} else if _, err := f.NewSheet(sheet.name); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", sheet.name, err)
		}
		if err := writeSheet(f, sheet, headerStyle); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet sheetDef, headerStyle int) error {
	for col, header := range sheet.header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet.name, cell, header); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet.name, cell, cell, headerStyle); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
	}

	for i, width := range sheet.widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(sheet.name, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for r, row := range sheet.rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		values := row
		if err := f.SetSheetRow(sheet.name, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", r+2, sheet.name, err)
		}
	}

	if err := f.SetPanes(sheet.name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze panes: %w", err)
	}
	return nil
}
