package checks

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/akeren/telecheck/internal/models"
)

const (
	MessageFound        = "A Telegram account exists for this number."
	MessageNotFound     = "No Telegram account found for this number."
	MessageLookupFailed = "An error occurred while checking this phone number. Please try again."
	MessageInvalidPhone = "Invalid phone number format."
)

// Lookup answers whether an account exists for an already validated number.
type Lookup interface {
	Check(ctx context.Context, phoneNumber string) models.CheckResult
}

// RandomSimulator is the production Lookup. No provider is contacted: outcomes
// are drawn 60% found, 30% not found, 10% error.
type RandomSimulator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewRandomSimulator() *RandomSimulator {
	seed := uint64(time.Now().UnixNano())
	return NewSeededSimulator(seed)
}

// NewSeededSimulator gives a reproducible sequence of outcomes.
func NewSeededSimulator(seed uint64) *RandomSimulator {
	return &RandomSimulator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *RandomSimulator) Check(_ context.Context, phoneNumber string) models.CheckResult {
	s.mu.Lock()
	roll := s.rng.Float64()
	s.mu.Unlock()

	return OutcomeFor(roll, phoneNumber)
}

// OutcomeFor maps a roll in [0,1) to a result.
func OutcomeFor(roll float64, phoneNumber string) models.CheckResult {
	switch {
	case roll < 0.6:
		return Result(models.CheckStatusFound, phoneNumber)
	case roll < 0.9:
		return Result(models.CheckStatusNotFound, phoneNumber)
	default:
		return Result(models.CheckStatusError, phoneNumber)
	}
}

// Result builds a final result with the standard message for status.
func Result(status models.CheckStatus, phoneNumber string) models.CheckResult {
	var message string
	switch status {
	case models.CheckStatusFound:
		message = MessageFound
	case models.CheckStatusNotFound:
		message = MessageNotFound
	default:
		status = models.CheckStatusError
		message = MessageLookupFailed
	}

	return models.CheckResult{Status: status, Message: message, PhoneNumber: phoneNumber}
}

// ScriptedLookup returns a fixed status per number and Default for the rest.
// It is used wherever outcomes must be deterministic.
type ScriptedLookup struct {
	Outcomes map[string]models.CheckStatus
	Default  models.CheckStatus

	mu    sync.Mutex
	calls []string
}

func (s *ScriptedLookup) Check(_ context.Context, phoneNumber string) models.CheckResult {
	s.mu.Lock()
	s.calls = append(s.calls, phoneNumber)
	s.mu.Unlock()

	status, ok := s.Outcomes[phoneNumber]
	if !ok {
		status = s.Default
	}
	if status == "" {
		status = models.CheckStatusFound
	}

	return Result(status, phoneNumber)
}

// Calls lists the numbers passed to Check, in order.
func (s *ScriptedLookup) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.calls))
	copy(out, s.calls)
	return out
}
