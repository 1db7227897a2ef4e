package workers

import (
	"context"
	"live-poll/contract"
	"live-poll/observability"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

var _ contract.Worker = (*HeartbeatWorker)(nil)

// HeartbeatWorker samples the server process (CPU, RSS) and the live connection count.
type HeartbeatWorker struct {
	log      *slog.Logger
	registry contract.IRegistry
	metrics  *observability.Metrics
	interval time.Duration
}

func NewHeartbeatWorker(log *slog.Logger, registry contract.IRegistry,
	metrics *observability.Metrics, interval time.Duration) *HeartbeatWorker {
	return &HeartbeatWorker{log: log, registry: registry, metrics: metrics, interval: interval}
}

func (w *HeartbeatWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			rss, cpu, err := selfStats(p)
			if err != nil {
				w.log.Error("Failed to collect self stats", "error", err)
				continue
			}
			w.metrics.SetProcessStats(cpu, rss)
			w.log.Debug("Heartbeat",
				"cpu_percent", cpu,
				"rss_bytes", rss,
				"connections", w.registry.Len(),
			)
		}
	}
}

func selfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}
