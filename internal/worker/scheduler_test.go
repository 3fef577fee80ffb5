package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockExporter struct {
	mock.Mock
}

func (m *mockExporter) SaveReports(ctx context.Context, start, end string) ([]string, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type fakePurger struct {
	n     int64
	err   error
	calls int
}

func (f *fakePurger) PurgeExpired(context.Context) (int64, error) {
	f.calls++
	return f.n, f.err
}

func newTestScheduler(reports ReportExporter, purger CartPurger) (*Scheduler, *[]time.Duration) {
	s := NewScheduler(reports, purger, RetryPolicy{MaxRetries: 3, InitialDelay: time.Second}, time.UTC, nil)
	s.now = func() time.Time { return time.Date(2025, 3, 1, 0, 5, 0, 0, time.UTC) }
	var slept []time.Duration
	s.sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	return s, &slept
}

func TestExportPreviousDay(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		reports := new(mockExporter)
		reports.On("SaveReports", ctx, "2025-02-28", "2025-02-28").Return([]string{"a.pdf", "a.xlsx"}, nil).Once()
		s, slept := newTestScheduler(reports, nil)

		paths, err := s.ExportPreviousDay(ctx)
		require.NoError(t, err)
		assert.Len(t, paths, 2)
		assert.Empty(t, *slept)
		reports.AssertExpectations(t)
	})

	t.Run("RetriesThenSucceeds", func(t *testing.T) {
		reports := new(mockExporter)
		reports.On("SaveReports", ctx, "2025-02-28", "2025-02-28").Return(nil, errors.New("down")).Twice()
		reports.On("SaveReports", ctx, "2025-02-28", "2025-02-28").Return([]string{"a.pdf"}, nil).Once()
		s, slept := newTestScheduler(reports, nil)

		_, err := s.ExportPreviousDay(ctx)
		require.NoError(t, err)
		assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *slept)
	})

	t.Run("GivesUp", func(t *testing.T) {
		reports := new(mockExporter)
		reports.On("SaveReports", ctx, mock.Anything, mock.Anything).Return(nil, errors.New("down"))
		s, slept := newTestScheduler(reports, nil)

		_, err := s.ExportPreviousDay(ctx)
		assert.EqualError(t, err, "down")
		reports.AssertNumberOfCalls(t, "SaveReports", 3)
		assert.Len(t, *slept, 2)
	})

	t.Run("StopsOnCancel", func(t *testing.T) {
		reports := new(mockExporter)
		reports.On("SaveReports", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("down"))
		s, _ := newTestScheduler(reports, nil)
		s.sleep = sleepCtx

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := s.ExportPreviousDay(cctx)
		assert.ErrorIs(t, err, context.Canceled)
		reports.AssertNumberOfCalls(t, "SaveReports", 1)
	})
}

func TestPurgeCarts(t *testing.T) {
	purger := &fakePurger{n: 2}
	s, _ := newTestScheduler(nil, purger)
	s.PurgeCarts(context.Background())
	assert.Equal(t, 1, purger.calls)

	purger.err = errors.New("locked")
	s.PurgeCarts(context.Background())
	assert.Equal(t, 2, purger.calls)
}

func TestStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, _ := newTestScheduler(new(mockExporter), &fakePurger{})
	assert.Error(t, s.Start(ctx, "not a cron spec"))

	s, _ = newTestScheduler(new(mockExporter), &fakePurger{})
	require.NoError(t, s.Start(ctx, "0 1 * * *"))
	assert.Len(t, s.cron.Entries(), 2)

	idle, _ := newTestScheduler(nil, nil)
	require.NoError(t, idle.Start(ctx, "0 1 * * *"))
	assert.Empty(t, idle.cron.Entries())
}

func TestRetryPolicy_NextDelay(t *testing.T) {
	p := RetryPolicy{InitialDelay: time.Second, MaxDelay: 3 * time.Second, BackoffFactor: 2}
	assert.Equal(t, time.Second, p.NextDelay(0))
	assert.Equal(t, 2*time.Second, p.NextDelay(2))
	assert.Equal(t, 3*time.Second, p.NextDelay(5))
	assert.Equal(t, time.Second, RetryPolicy{}.NextDelay(1))
}
