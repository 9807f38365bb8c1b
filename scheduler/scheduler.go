/* scheduler.go
 * Contains the timed jobs: the periodic resync that backs up the change streams, archiving each new snapshot, and the
 * weekly matchups post to discord
 */

package scheduler

import (
	"context"
	"fmt"
	"log"
	"nfl-stats-lab/api/api"
	"nfl-stats-lab/api/shared"
	"time"

	"github.com/go-co-op/gocron/v2"
)

const resyncTimeout = time.Minute

type Refresher interface {
	Refresh(ctx context.Context) error
}

// Recorder stores a snapshot's derived data. Implemented by *archive.Archive
type Recorder interface {
	RecordSnapshot(ctx context.Context, week int, version uint64, matchups []shared.Matchup, teams []shared.EnrichedTeam) (bool, error)
}

type Config struct {
	API       *api.API
	Refresher Refresher
	// Recorder and SendMessage are optional; their jobs are skipped when nil
	Recorder       Recorder
	SendMessage    func(string) error
	Timezone       string
	ResyncInterval time.Duration
}

type Scheduler struct {
	s           gocron.Scheduler
	api         *api.API
	refresher   Refresher
	recorder    Recorder
	sendMessage func(string) error
	interval    time.Duration
}

func NewScheduler(cfg Config) (*Scheduler, error) {
	if cfg.API == nil {
		return nil, fmt.Errorf("api is required")
	}
	if cfg.Refresher == nil {
		return nil, fmt.Errorf("refresher is required")
	}
	if cfg.ResyncInterval <= 0 {
		return nil, fmt.Errorf("resync interval must be positive, got %s", cfg.ResyncInterval)
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load location %q: %w", cfg.Timezone, err)
	}

	s, err := gocron.NewScheduler(
		gocron.WithLocation(location),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Scheduler{
		s:           s,
		api:         cfg.API,
		refresher:   cfg.Refresher,
		recorder:    cfg.Recorder,
		sendMessage: cfg.SendMessage,
		interval:    cfg.ResyncInterval,
	}, nil
}

func (s *Scheduler) Start() error {
	var err error

	// Resync - every interval. Only one run at a time, a slow mongo shouldn't stack refreshes
	_, err = s.s.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(s.resync),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create resync job: %w", err)
	}

	// Matchups - Thursday 18:30, before the first game of the week
	if s.sendMessage != nil {
		_, err = s.s.NewJob(
			gocron.WeeklyJob(1, gocron.NewWeekdays(time.Thursday), gocron.NewAtTimes(gocron.NewAtTime(18, 30, 0))),
			gocron.NewTask(s.sendMatchups),
		)
		if err != nil {
			return fmt.Errorf("failed to create matchups job: %w", err)
		}
	}

	s.s.Start()
	return nil
}

func (s *Scheduler) Stop() error {
	return s.s.Shutdown()
}

// JobCount is the number of registered jobs
func (s *Scheduler) JobCount() int {
	return len(s.s.Jobs())
}

func (s *Scheduler) resync() {
	ctx, cancel := context.WithTimeout(context.Background(), resyncTimeout)
	defer cancel()

	if err := s.refresher.Refresh(ctx); err != nil {
		log.Println("Scheduled resync failed:", err)
		return
	}
	s.record(ctx)
}

// record archives the current snapshot. Versions already in the archive are skipped by the recorder
func (s *Scheduler) record(ctx context.Context) {
	if s.recorder == nil {
		return
	}
	summary := s.api.GetWeekSummary()
	if summary.Version == 0 {
		return
	}
	recorded, err := s.recorder.RecordSnapshot(ctx, summary.Week, summary.Version, summary.Matchups, summary.Teams)
	if err != nil {
		log.Println("Failed to archive snapshot:", err)
		return
	}
	if recorded {
		log.Printf("Archived snapshot version %d (week %d, %d matchups)\n", summary.Version, summary.Week, len(summary.Matchups))
	}
}

func (s *Scheduler) sendMatchups() {
	if !s.api.Loaded() {
		log.Println("Skipping matchups post, no teams loaded")
		return
	}
	if err := s.sendMessage(s.api.FormatMatchups()); err != nil {
		log.Println("Failed to send matchups:", err)
	}
}
