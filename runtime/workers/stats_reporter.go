package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// StatsSource exposes the live connection counters.
type StatsSource interface {
	Stats() (connections, identities, rooms int)
}

// QueueDepth reports how many events wait for the fanout.
type QueueDepth func() int

// StatsReporter periodically logs connection counters along with the
// process' own cpu and memory usage.
type StatsReporter struct {
	log      *slog.Logger
	source   StatsSource
	depth    QueueDepth
	interval time.Duration
}

func NewStatsReporter(log *slog.Logger, source StatsSource, depth QueueDepth, interval time.Duration) *StatsReporter {
	return &StatsReporter{log: log, source: source, depth: depth, interval: interval}
}

func (w *StatsReporter) Run(ctx context.Context) error {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		w.log.Debug("Process metrics unavailable", "error", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping stats reporter")
			return nil
		case <-ticker.C:
			w.report(proc)
		}
	}
}

func (w *StatsReporter) report(proc *process.Process) {
	connections, identities, rooms := w.source.Stats()
	args := []any{
		"connections", connections,
		"identities", identities,
		"rooms", rooms,
	}
	if w.depth != nil {
		args = append(args, "queued_events", w.depth())
	}
	if proc != nil {
		if cpu, err := proc.CPUPercent(); err == nil {
			args = append(args, "cpu_percent", cpu)
		}
		if ram, err := proc.MemoryPercent(); err == nil {
			args = append(args, "ram_percent", ram)
		}
		if threads, err := proc.NumThreads(); err == nil {
			args = append(args, "threads", threads)
		}
	}
	w.log.Info("Runtime stats", args...)
}
