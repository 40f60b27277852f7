package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/akeren/telecheck/internal/models"
	"github.com/akeren/telecheck/pkg/constants"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	SheetName   = "TeleCheck Results"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var header = []any{"Phone Number", "Status", "Message"}

// Row is one exported line.
type Row struct {
	PhoneNumber string
	Status      string
	Message     string
}

// FilterRows keeps results with a phone number whose status is selected.
// An empty selection means every exportable status.
func FilterRows(results []models.CheckResult, statuses []models.CheckStatus) []Row {
	if len(statuses) == 0 {
		statuses = models.ExportableStatuses
	}

	selected := make(map[models.CheckStatus]struct{}, len(statuses))
	for _, s := range statuses {
		selected[s] = struct{}{}
	}

	titleCaser := cases.Title(language.English)
	rows := make([]Row, 0, len(results))

	for _, result := range results {
		if result.PhoneNumber == "" {
			continue
		}
		if _, ok := selected[result.Status]; !ok {
			continue
		}

		rows = append(rows, Row{
			PhoneNumber: result.PhoneNumber,
			Status:      titleCaser.String(strings.ReplaceAll(string(result.Status), "_", " ")),
			Message:     result.Message,
		})
	}

	return rows
}

func FileName(at time.Time) string {
	return fmt.Sprintf("telecheck_results_%s.xlsx", at.Format(constants.ISODateFormat))
}

// BuildWorkbook renders rows into a single-sheet xlsx document.
func BuildWorkbook(rows []Row) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}

		values := []any{row.PhoneNumber, row.Status, row.Message}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", 20); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(SheetName, "B", "B", 12); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(SheetName, "C", "C", 70); err != nil {
		return nil, err
	}

	return f.WriteToBuffer()
}
