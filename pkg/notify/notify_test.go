package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type failingNotifier struct {
	calls int
}

func (f *failingNotifier) Notify(ctx context.Context, n Notification) error {
	f.calls++
	return errors.New("boom")
}

func TestMulti_DeliversToAllAndReturnsFirstError(t *testing.T) {
	failing := &failingNotifier{}
	recorder := NewRecorder()

	err := Multi{failing, nil, recorder}.Notify(context.Background(), Info("Access Granted", "welcome"))

	assert.EqualError(t, err, "boom")
	assert.Equal(t, 1, failing.calls)
	assert.Len(t, recorder.All(), 1)
}

func TestRecorder_Last(t *testing.T) {
	recorder := NewRecorder()

	_, ok := recorder.Last()
	assert.False(t, ok)

	_ = recorder.Notify(context.Background(), Info("first", ""))
	_ = recorder.Notify(context.Background(), Destructive("second", "bad"))

	last, ok := recorder.Last()
	assert.True(t, ok)
	assert.Equal(t, "second", last.Title)
	assert.Equal(t, VariantDestructive, last.Variant)
}

type pingingNotifier struct {
	failingNotifier
	err error
}

func (p *pingingNotifier) Ping(ctx context.Context) error {
	return p.err
}

func TestMulti_PingReachesPingers(t *testing.T) {
	healthy := Multi{NewRecorder(), &pingingNotifier{}}
	assert.NoError(t, healthy.Ping(context.Background()))

	down := Multi{NewRecorder(), &pingingNotifier{err: errors.New("disconnected")}}
	assert.EqualError(t, down.Ping(context.Background()), "disconnected")
}
