package export

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/akeren/telecheck/internal/log"
	"github.com/akeren/telecheck/internal/models"
	apperrors "github.com/akeren/telecheck/pkg/errors"
	"github.com/akeren/telecheck/pkg/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type stubGate struct {
	err error
}

func (g stubGate) RequireApproved(context.Context, string) (string, error) {
	return "user@example.com", g.err
}

type stubSource struct {
	results []models.CheckResult
	err     error
}

func (s stubSource) LoadResults(context.Context, string) ([]models.CheckResult, error) {
	return s.results, s.err
}

var fixedNow = func() time.Time { return time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC) }

func newTestService(gate Gate, source ResultsSource, recorder *notify.Recorder) ExportService {
	return NewExportService(log.NewDiscardLogger(), gate, source, recorder, WithClock(fixedNow))
}

func TestExport_AllStatuses(t *testing.T) {
	svc := newTestService(stubGate{}, stubSource{results: sampleResults()}, notify.NewRecorder())

	file, err := svc.Export(context.Background(), "s1", &ExportRequest{})
	require.NoError(t, err)

	assert.Equal(t, "telecheck_results_2024-06-01.xlsx", file.FileName)
	assert.Equal(t, ContentType, file.ContentType)
	assert.Equal(t, 3, file.Rows)

	wb, err := excelize.OpenReader(bytes.NewReader(file.Content))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestExport_FilteredToNothing(t *testing.T) {
	recorder := notify.NewRecorder()
	results := []models.CheckResult{{Status: models.CheckStatusFound, Message: "ok", PhoneNumber: "+123456789"}}
	svc := newTestService(stubGate{}, stubSource{results: results}, recorder)

	file, err := svc.Export(context.Background(), "s1", &ExportRequest{Statuses: []string{"error"}})

	assert.Nil(t, file)
	assert.ErrorIs(t, err, ErrNothingToExport)
	assert.Equal(t, "No Results to Export", apperrors.GetTitle(err))

	last, ok := recorder.Last()
	require.True(t, ok)
	assert.Equal(t, notify.VariantDestructive, last.Variant)
	assert.Equal(t, "s1", last.SessionID)
}

func TestExport_NoStoredRun(t *testing.T) {
	svc := newTestService(stubGate{}, stubSource{}, notify.NewRecorder())

	_, err := svc.Export(context.Background(), "s1", &ExportRequest{})

	assert.ErrorIs(t, err, ErrNothingToExport)
}

func TestExport_UnreadableRunExportsNothing(t *testing.T) {
	svc := newTestService(stubGate{}, stubSource{err: errors.New("malformed")}, notify.NewRecorder())

	_, err := svc.Export(context.Background(), "s1", &ExportRequest{})

	assert.ErrorIs(t, err, ErrNothingToExport)
}

func TestExport_StoreFailureSurfaces(t *testing.T) {
	svc := newTestService(stubGate{}, stubSource{err: apperrors.NewDatabaseError("store down", nil)}, notify.NewRecorder())

	_, err := svc.Export(context.Background(), "s1", &ExportRequest{})

	assert.Equal(t, apperrors.ErrorTypeDatabaseError, apperrors.GetErrorType(err))
}

func TestExport_RequiresApprovedSession(t *testing.T) {
	svc := newTestService(stubGate{err: apperrors.NewForbiddenError("Your access has not been approved yet.", nil)}, stubSource{results: sampleResults()}, notify.NewRecorder())

	_, err := svc.Export(context.Background(), "s1", &ExportRequest{})

	assert.Equal(t, apperrors.StatusForbidden, apperrors.HTTPStatusCode(err))
}

func TestExport_UnknownStatus(t *testing.T) {
	svc := newTestService(stubGate{}, stubSource{results: sampleResults()}, notify.NewRecorder())

	_, err := svc.Export(context.Background(), "s1", &ExportRequest{Statuses: []string{"info"}})

	assert.ErrorIs(t, err, ErrUnknownStatus)
	assert.Equal(t, apperrors.StatusBadRequest, apperrors.HTTPStatusCode(err))
}
