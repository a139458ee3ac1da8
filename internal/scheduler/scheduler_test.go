package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/llmbench/internal/catalog"
	"github.com/user/llmbench/internal/config"
)

func TestParseJobs(t *testing.T) {
	jobs, err := ParseJobs([]config.ScheduleConfig{
		{Name: "nightly", Cron: "0 2 * * *", Query: "What is AI?", Providers: []string{"OpenAI", "gemini"}, ModelTypes: []string{"fine_tuned"}, Enabled: true},
		{Name: "off", Cron: "bogus", Query: "x", Enabled: false},
		{Cron: "@hourly", Query: "Hello", Enabled: true},
	})
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, "nightly", jobs[0].Name)
	assert.Equal(t, []catalog.Provider{catalog.OpenAI, catalog.Gemini}, jobs[0].Providers)
	assert.Equal(t, []catalog.ModelType{catalog.FineTuned}, jobs[0].ModelTypes)
	assert.Equal(t, "schedule-3", jobs[1].Name)
	assert.Nil(t, jobs[1].Providers)
}

func TestParseJobsErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.ScheduleConfig
		want string
	}{
		{"bad cron", config.ScheduleConfig{Name: "a", Cron: "every day", Query: "q", Enabled: true}, "invalid cron"},
		{"no query", config.ScheduleConfig{Name: "b", Cron: "@daily", Enabled: true}, "query is required"},
		{"bad provider", config.ScheduleConfig{Name: "c", Cron: "@daily", Query: "q", Providers: []string{"cohere"}, Enabled: true}, "unsupported provider"},
		{"bad type", config.ScheduleConfig{Name: "d", Cron: "@daily", Query: "q", ModelTypes: []string{"chat"}, Enabled: true}, "invalid model type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseJobs([]config.ScheduleConfig{tt.cfg})
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestSchedulerFiresJob(t *testing.T) {
	var fires atomic.Int32
	var got atomic.Value
	handler := func(ctx context.Context, job Job) {
		got.Store(job.Query)
		fires.Add(1)
	}

	sched := New([]Job{{Name: "every-second", Schedule: "* * * * * *", Query: "ping"}}, handler, nil)
	require.NoError(t, sched.Start(context.Background()))
	defer sched.Stop()

	require.Eventually(t, func() bool { return fires.Load() > 0 }, 2500*time.Millisecond, 100*time.Millisecond)
	assert.Equal(t, "ping", got.Load())
}

func TestSchedulerEntries(t *testing.T) {
	sched := New([]Job{{Name: "daily", Schedule: "@daily", Query: "q"}}, func(context.Context, Job) {}, nil)
	require.NoError(t, sched.Start(context.Background()))
	defer sched.Stop()

	entries := sched.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "daily", entries[0].Job.Name)
	assert.True(t, entries[0].Next.After(time.Now()))
}

func TestStopCancelsHandlerContext(t *testing.T) {
	started := make(chan struct{})
	var canceled atomic.Bool
	handler := func(ctx context.Context, job Job) {
		select {
		case started <- struct{}{}:
		default:
		}
		<-ctx.Done()
		canceled.Store(true)
	}

	sched := New([]Job{{Name: "slow", Schedule: "* * * * * *", Query: "q"}}, handler, nil)
	require.NoError(t, sched.Start(context.Background()))

	select {
	case <-started:
	case <-time.After(2500 * time.Millisecond):
		t.Fatal("job did not start")
	}
	sched.Stop()
	assert.True(t, canceled.Load())
}

func TestNextRun(t *testing.T) {
	from := time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC)
	next, err := NextRun("0 12 * * *", from)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC), next)

	_, err = NextRun("nope", from)
	assert.Error(t, err)
}
