package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/akeren/telecheck/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleResults() []models.CheckResult {
	return []models.CheckResult{
		{Status: models.CheckStatusNotFound, Message: "No account found for +447911123456.", PhoneNumber: "+447911123456"},
		{Status: models.CheckStatusError, Message: "Invalid phone number format.", PhoneNumber: "invalid"},
		{Status: models.CheckStatusFound, Message: "Account found for +123456789.", PhoneNumber: "+123456789"},
		{Status: models.CheckStatusInfo, Message: "Checking 3 phone number(s)..."},
	}
}

func TestFilterRows_AllWhenNoneSelected(t *testing.T) {
	rows := FilterRows(sampleResults(), nil)

	require.Len(t, rows, 3)
	assert.Equal(t, Row{PhoneNumber: "+447911123456", Status: "Not Found", Message: "No account found for +447911123456."}, rows[0])
	assert.Equal(t, "Error", rows[1].Status)
	assert.Equal(t, "Found", rows[2].Status)
}

func TestFilterRows_SelectedStatuses(t *testing.T) {
	rows := FilterRows(sampleResults(), []models.CheckStatus{models.CheckStatusFound, models.CheckStatusError})

	require.Len(t, rows, 2)
	assert.Equal(t, "invalid", rows[0].PhoneNumber)
	assert.Equal(t, "+123456789", rows[1].PhoneNumber)
}

func TestFilterRows_SkipsRowsWithoutPhoneNumber(t *testing.T) {
	results := []models.CheckResult{{Status: models.CheckStatusError, Message: "Lookup failed"}}

	assert.Empty(t, FilterRows(results, nil))
}

func TestFileName(t *testing.T) {
	at := time.Date(2024, time.March, 5, 23, 59, 0, 0, time.UTC)

	assert.Equal(t, "telecheck_results_2024-03-05.xlsx", FileName(at))
}

func TestBuildWorkbook(t *testing.T) {
	buf, err := BuildWorkbook(FilterRows(sampleResults(), nil))
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Phone Number", "Status", "Message"}, rows[0])
	assert.Equal(t, []string{"+447911123456", "Not Found", "No account found for +447911123456."}, rows[1])
	assert.Equal(t, []string{"+123456789", "Found", "Account found for +123456789."}, rows[3])
}

func TestParseStatuses(t *testing.T) {
	statuses, err := ParseStatuses([]string{"found", "error", "found"})
	require.NoError(t, err)
	assert.Equal(t, []models.CheckStatus{models.CheckStatusFound, models.CheckStatusError}, statuses)

	_, err = ParseStatuses([]string{"processing"})
	assert.ErrorIs(t, err, ErrUnknownStatus)
}
