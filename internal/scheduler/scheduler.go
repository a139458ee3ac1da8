// Package scheduler runs configured comparisons on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/user/llmbench/internal/catalog"
	"github.com/user/llmbench/internal/config"
	"github.com/user/llmbench/pkg/logger"
)

// Job is a validated scheduled comparison.
type Job struct {
	Name       string
	Schedule   string
	Query      string
	Providers  []catalog.Provider
	ModelTypes []catalog.ModelType
}

// Handler is called each time a job fires.
type Handler func(ctx context.Context, job Job)

// Entry describes a registered job and when it runs next.
type Entry struct {
	Job  Job
	Next time.Time
}

// Scheduler fires jobs through a handler.
type Scheduler struct {
	jobs    []Job
	handler Handler
	log     *logger.Logger
	cron    *cron.Cron
	ids     []cron.EntryID

	ctx    context.Context
	cancel context.CancelFunc
}

// cronParser accepts both standard 5-field cron expressions and 6-field
// expressions with an optional seconds field.
var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// ParseJobs validates the enabled schedules in cfgs. Disabled entries are
// skipped; an invalid entry is an error naming it.
func ParseJobs(cfgs []config.ScheduleConfig) ([]Job, error) {
	var jobs []Job
	for i, c := range cfgs {
		if !c.Enabled {
			continue
		}
		name := c.Name
		if name == "" {
			name = fmt.Sprintf("schedule-%d", i+1)
		}
		if c.Query == "" {
			return nil, fmt.Errorf("schedule %s: query is required", name)
		}
		if _, err := cronParser.Parse(c.Cron); err != nil {
			return nil, fmt.Errorf("schedule %s: invalid cron %q: %w", name, c.Cron, err)
		}
		job := Job{Name: name, Schedule: c.Cron, Query: c.Query}
		for _, p := range c.Providers {
			prov, err := catalog.ParseProvider(p)
			if err != nil {
				return nil, fmt.Errorf("schedule %s: %w", name, err)
			}
			job.Providers = append(job.Providers, prov)
		}
		for _, t := range c.ModelTypes {
			mt, err := catalog.ParseModelType(t)
			if err != nil {
				return nil, fmt.Errorf("schedule %s: %w", name, err)
			}
			job.ModelTypes = append(job.ModelTypes, mt)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

// New creates a scheduler for jobs.
func New(jobs []Job, handler Handler, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Scheduler{
		jobs:    jobs,
		handler: handler,
		log:     log.WithComponent("scheduler"),
		cron:    cron.New(cron.WithParser(cronParser)),
	}
}

// Start registers every job and starts the cron ticker. Handlers receive
// a context that is canceled by Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx, s.cancel = context.WithCancel(ctx)

	for _, job := range s.jobs {
		job := job
		id, err := s.cron.AddFunc(job.Schedule, func() {
			s.log.Infow("scheduled comparison firing", "name", job.Name)
			s.handler(s.ctx, job)
		})
		if err != nil {
			s.cancel()
			return fmt.Errorf("schedule %s: %w", job.Name, err)
		}
		s.ids = append(s.ids, id)
		s.log.Infow("scheduled comparison", "name", job.Name, "schedule", job.Schedule)
	}

	s.cron.Start()
	return nil
}

// Entries lists the registered jobs with their next run time.
func (s *Scheduler) Entries() []Entry {
	out := make([]Entry, 0, len(s.ids))
	for i, id := range s.ids {
		out = append(out, Entry{Job: s.jobs[i], Next: s.cron.Entry(id).Next})
	}
	return out
}

// Stop stops the ticker and waits for running jobs to return.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	<-s.cron.Stop().Done()
}

// NextRun returns when schedule next fires after from.
func NextRun(schedule string, from time.Time) (time.Time, error) {
	sched, err := cronParser.Parse(schedule)
	if err != nil {
		return time.Time{}, err
	}
	return sched.Next(from), nil
}
