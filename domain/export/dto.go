package export

import "github.com/akeren/telecheck/internal/models"

type ExportRequest struct {
	Statuses []string `json:"statuses" binding:"omitempty,dive,oneof=found not_found error"`
}

// ExportFile is a rendered workbook ready to be written or downloaded.
type ExportFile struct {
	FileName    string
	ContentType string
	Rows        int
	Content     []byte
}

// ParseStatuses maps request filters onto check statuses. Duplicates collapse.
func ParseStatuses(raw []string) ([]models.CheckStatus, error) {
	statuses := make([]models.CheckStatus, 0, len(raw))
	seen := make(map[models.CheckStatus]bool, len(raw))

	for _, value := range raw {
		status := models.CheckStatus(value)
		if !status.IsFinal() {
			return nil, NewUnknownStatusError(value)
		}
		if seen[status] {
			continue
		}
		seen[status] = true
		statuses = append(statuses, status)
	}

	return statuses, nil
}
