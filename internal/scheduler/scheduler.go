package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// taskRetries is the number of additional attempts a failing task gets
// before the run is marked failed.
const taskRetries = 1

// taskTimeout bounds one task attempt; extraction visits every city with
// courtesy delays, so this is generous.
const taskTimeout = 10 * time.Minute

// Task is one stage of the pipeline.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// Scheduler runs the extract → transform → load pipeline on a fixed
// interval. Each task gets its own bounded retry; a task that still fails
// aborts the run without re-running earlier stages.
type Scheduler struct {
	scheduler *gocron.Scheduler
	tasks     []Task
	interval  time.Duration
}

// New creates a Scheduler that runs the given tasks in order.
func New(interval time.Duration, tasks ...Task) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		tasks:     tasks,
		interval:  interval,
	}
}

// Start schedules the periodic pipeline job and starts the underlying
// scheduler.
func (s *Scheduler) Start() error {
	if len(s.tasks) == 0 {
		log.Println("scheduler: no tasks configured; nothing to schedule")
		return nil
	}

	if _, err := s.scheduler.Every(s.interval).Do(s.RunPipeline); err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunPipeline executes all tasks in order, stopping at the first task that
// fails after its retry.
func (s *Scheduler) RunPipeline() {
	log.Println("scheduler: running etl pipeline")

	for _, task := range s.tasks {
		if err := s.runTask(task); err != nil {
			log.Printf("scheduler: task %s failed, aborting run: %v", task.Name, err)
			return
		}
	}

	log.Println("scheduler: completed etl pipeline")
}

func (s *Scheduler) runTask(task Task) error {
	var err error
	for attempt := 0; attempt <= taskRetries; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), taskTimeout)
		err = task.Run(ctx)
		cancel()

		if err == nil {
			return nil
		}
		log.Printf("scheduler: task %s attempt %d failed: %v", task.Name, attempt+1, err)
	}
	return err
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
