package server

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// HealthReporter periodically logs process diagnostics. It runs on its own
// goroutine, off the event loop, since gopsutil's sampling briefly blocks —
// something the single-threaded query path must never do. It does not read
// the cache: the cache is owned exclusively by the event loop goroutine, and
// this reporter must never touch it without going through that goroutine.
type HealthReporter struct {
	Logger   *slog.Logger
	Interval time.Duration
}

// Run logs a diagnostics line every Interval until ctx is cancelled.
func (r *HealthReporter) Run(ctx context.Context) {
	interval := r.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.report(ctx)
		}
	}
}

func (r *HealthReporter) report(ctx context.Context) {
	if r.Logger == nil {
		return
	}

	fields := []any{
		"num_cpu", runtime.NumCPU(),
		"goroutines", runtime.NumGoroutine(),
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		fields = append(fields, "mem_used_percent", vm.UsedPercent)
	}
	if pct, err := cpu.PercentWithContext(ctx, 200*time.Millisecond, false); err == nil && len(pct) > 0 {
		fields = append(fields, "cpu_used_percent", pct[0])
	}

	r.Logger.Info("health", fields...)
}
