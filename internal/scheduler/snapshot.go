package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/thanhng/coinfolio-backend/internal/models"
)

// Summarizer is the read side the snapshot job depends on.
type Summarizer interface {
	SummarizeAll(ctx context.Context) (*models.PortfolioSummary, error)
}

// Notifier posts human-readable status messages somewhere.
type Notifier interface {
	Send(msg string)
	Enabled() bool
}

type SnapshotSchedulerConfig struct {
	Interval   time.Duration // e.g. 24*time.Hour
	RunOnStart bool
	OnSnapshot func(snap *models.PortfolioSnapshot)
}

// SnapshotScheduler periodically reads the portfolio totals and
// persists them as a timestamped row for history charts.
type SnapshotScheduler struct {
	agg    Summarizer
	snaps  models.SnapshotStore
	notify Notifier
	cfg    SnapshotSchedulerConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
}

func NewSnapshotScheduler(agg Summarizer, snaps models.SnapshotStore, notify Notifier, cfg SnapshotSchedulerConfig) *SnapshotScheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	return &SnapshotScheduler{agg: agg, snaps: snaps, notify: notify, cfg: cfg}
}

func (s *SnapshotScheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		fmt.Println("[SNAPSHOT] Already running")
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	if s.cfg.RunOnStart {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()
			if _, err := s.takeSnapshot(ctx); err != nil {
				fmt.Printf("[SNAPSHOT] Initial snapshot failed: %v\n", err)
			}
		}()
	}

	go func() {
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stopCh:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
				if _, err := s.takeSnapshot(ctx); err != nil {
					fmt.Printf("[SNAPSHOT] Snapshot failed: %v\n", err)
				}
				cancel()
			}
		}
	}()

	fmt.Printf("[SNAPSHOT] Started (every %s)\n", s.cfg.Interval)
}

func (s *SnapshotScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	close(s.stopCh)
	s.running = false
	fmt.Println("[SNAPSHOT] Stopped")
}

func (s *SnapshotScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RunNow takes a snapshot outside the normal schedule.
func (s *SnapshotScheduler) RunNow(ctx context.Context) (*models.PortfolioSnapshot, error) {
	fmt.Println("[SNAPSHOT] Manual snapshot triggered")
	return s.takeSnapshot(ctx)
}

func (s *SnapshotScheduler) takeSnapshot(ctx context.Context) (*models.PortfolioSnapshot, error) {
	summary, err := s.agg.SummarizeAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("summarize portfolio: %w", err)
	}

	snap := &models.PortfolioSnapshot{
		ID:               uuid.New(),
		TotalValueUsd:    summary.TotalValueUsd,
		TotalValueVnd:    summary.TotalValueVnd,
		TotalInvestedUsd: summary.TotalInvestedUsd,
		UnrealizedPLUsd:  summary.UnrealizedPLUsd,
		RealizedPLUsd:    summary.RealizedPLUsd,
		UsdVndRate:       summary.UsdVndRate,
		CreatedAt:        time.Now().UTC(),
	}

	if err := s.snaps.Insert(ctx, snap); err != nil {
		return nil, fmt.Errorf("insert snapshot: %w", err)
	}

	fmt.Printf("[SNAPSHOT] Stored: value $%s | invested $%s | unrealized P/L $%s\n",
		snap.TotalValueUsd.StringFixed(2), snap.TotalInvestedUsd.StringFixed(2),
		snap.UnrealizedPLUsd.StringFixed(2))

	if s.notify != nil && s.notify.Enabled() {
		s.notify.Send(fmt.Sprintf("Portfolio snapshot: $%s (unrealized P/L $%s)",
			snap.TotalValueUsd.StringFixed(2), snap.UnrealizedPLUsd.StringFixed(2)))
	}
	if s.cfg.OnSnapshot != nil {
		s.cfg.OnSnapshot(snap)
	}
	return snap, nil
}
