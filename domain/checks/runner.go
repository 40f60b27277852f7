package checks

import (
	"context"
	"fmt"
	"time"

	"github.com/akeren/telecheck/internal/models"
)

// Progress is a snapshot of a bulk run: a processing placeholder followed by
// the completed results, most recent first.
type Progress struct {
	Checked int                  `json:"checked"`
	Total   int                  `json:"total"`
	Results []models.CheckResult `json:"results"`
}

type ProgressFunc func(Progress)

// Runner checks numbers one at a time, in input order, waiting Delay before
// each one. A run is never abandoned: when ctx is done the remaining delays
// are skipped but every number still gets a result.
type Runner struct {
	lookup Lookup
	delay  time.Duration
	sleep  func(ctx context.Context, d time.Duration)
	pace   context.Context

	onResult func(models.CheckResult)
}

func NewRunner(lookup Lookup, delay time.Duration) *Runner {
	return &Runner{lookup: lookup, delay: delay, sleep: sleepContext}
}

// OnResult registers a hook called with every final result as it is produced.
func (r *Runner) OnResult(fn func(models.CheckResult)) *Runner {
	r.onResult = fn
	return r
}

// PaceWith cuts the delays short once pace is done, without touching the
// context used for lookups. A streaming run passes the request context here.
func (r *Runner) PaceWith(pace context.Context) *Runner {
	r.pace = pace
	return r
}

func StartingPlaceholder(total int) models.CheckResult {
	return models.CheckResult{
		Status:  models.CheckStatusProcessing,
		Message: fmt.Sprintf("Checking %d phone number(s)...", total),
	}
}

func progressPlaceholder(checked, total int) models.CheckResult {
	return models.CheckResult{
		Status:  models.CheckStatusProcessing,
		Message: fmt.Sprintf("Checked %d/%d numbers...", checked, total),
	}
}

// Run returns the results in reverse completion order without any placeholder.
func (r *Runner) Run(ctx context.Context, numbers []string, onProgress ProgressFunc) []models.CheckResult {
	total := len(numbers)
	completed := make([]models.CheckResult, 0, total)

	paceCtx := ctx
	if r.pace != nil {
		paceCtx = r.pace
	}

	for _, number := range numbers {
		if r.delay > 0 && paceCtx.Err() == nil {
			r.sleep(paceCtx, r.delay)
		}

		var result models.CheckResult
		if IsValidPhoneNumber(number) {
			result = r.lookup.Check(ctx, number)
		} else {
			result = models.CheckResult{
				Status:      models.CheckStatusError,
				Message:     MessageInvalidPhone,
				PhoneNumber: number,
			}
		}

		completed = append(completed, result)
		if r.onResult != nil {
			r.onResult(result)
		}

		if onProgress != nil {
			snapshot := make([]models.CheckResult, 0, len(completed)+1)
			snapshot = append(snapshot, progressPlaceholder(len(completed), total))
			snapshot = append(snapshot, reversed(completed)...)
			onProgress(Progress{Checked: len(completed), Total: total, Results: snapshot})
		}
	}

	return reversed(completed)
}

func reversed(results []models.CheckResult) []models.CheckResult {
	out := make([]models.CheckResult, len(results))
	for i, result := range results {
		out[len(results)-1-i] = result
	}
	return out
}

func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Summary tallies the final statuses of a run.
type Summary struct {
	Total    int `json:"total"`
	Found    int `json:"found"`
	NotFound int `json:"notFound"`
	Errors   int `json:"errors"`
}

func Summarize(results []models.CheckResult) Summary {
	var s Summary
	for _, result := range results {
		if result.IsPlaceholder() {
			continue
		}

		s.Total++
		switch result.Status {
		case models.CheckStatusFound:
			s.Found++
		case models.CheckStatusNotFound:
			s.NotFound++
		case models.CheckStatusError:
			s.Errors++
		}
	}
	return s
}

func (s Summary) Description() string {
	return fmt.Sprintf("%d numbers processed. Found: %d, Not Found: %d, Errors: %d.", s.Total, s.Found, s.NotFound, s.Errors)
}
