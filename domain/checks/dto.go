package checks

import (
	"github.com/akeren/telecheck/internal/models"
	"github.com/akeren/telecheck/pkg/notify"
)

type BulkCheckRequest struct {
	PhoneNumbers string `json:"phoneNumbers"`
}

type BulkCheckResponse struct {
	Results      []models.CheckResult `json:"results"`
	Summary      Summary              `json:"summary"`
	Notification notify.Notification  `json:"notification"`
}

type ResultsResponse struct {
	Results []models.CheckResult `json:"results"`
	Summary Summary              `json:"summary"`
}

func ToResultsResponse(results []models.CheckResult) ResultsResponse {
	if results == nil {
		results = []models.CheckResult{}
	}
	return ResultsResponse{Results: results, Summary: Summarize(results)}
}
