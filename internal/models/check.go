package models

// CheckStatus is the outcome attached to a single CheckResult.
type CheckStatus string

const (
	CheckStatusFound      CheckStatus = "found"
	CheckStatusNotFound   CheckStatus = "not_found"
	CheckStatusError      CheckStatus = "error"
	CheckStatusProcessing CheckStatus = "processing"
	CheckStatusInfo       CheckStatus = "info"
)

// ExportableStatuses are the final outcomes a row can be exported with.
var ExportableStatuses = []CheckStatus{CheckStatusFound, CheckStatusNotFound, CheckStatusError}

func (s CheckStatus) IsFinal() bool {
	switch s {
	case CheckStatusFound, CheckStatusNotFound, CheckStatusError:
		return true
	default:
		return false
	}
}

// CheckResult is one line of a bulk run. Progress placeholders have no PhoneNumber.
type CheckResult struct {
	Status      CheckStatus `json:"status"`
	Message     string      `json:"message"`
	PhoneNumber string      `json:"phoneNumber,omitempty"`
}

func (r CheckResult) IsPlaceholder() bool {
	return r.PhoneNumber == ""
}
