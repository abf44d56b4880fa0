package server

import (
	"context"
	"os"

	"github.com/mantonx/titleseeker/internal/config"
	"github.com/mantonx/titleseeker/internal/logger"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

const mb = 1024 * 1024

// systemStats reports host memory, load, the server process footprint
// and free space where uploads and sheet dumps are written. Metrics the
// platform cannot provide are left out.
func systemStats(ctx context.Context) map[string]interface{} {
	stats := make(map[string]interface{})

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		stats["memory_used_percent"] = vm.UsedPercent
		stats["memory_used_mb"] = float64(vm.Used) / mb
	} else {
		logger.Debug("Memory stats unavailable", "error", err)
	}

	if avg, err := load.AvgWithContext(ctx); err == nil {
		stats["load1"] = avg.Load1
	}

	if p, err := process.NewProcessWithContext(ctx, int32(os.Getpid())); err == nil {
		if info, err := p.MemoryInfoWithContext(ctx); err == nil {
			stats["process_rss_mb"] = float64(info.RSS) / mb
		}
	}

	cfg := config.Get()
	for name, dir := range map[string]string{"uploads": cfg.Uploads.Dir, "data": cfg.App.DataDir} {
		if usage, err := disk.UsageWithContext(ctx, dir); err == nil {
			stats[name+"_disk_free_mb"] = float64(usage.Free) / mb
			stats[name+"_disk_used_percent"] = usage.UsedPercent
		}
	}
	return stats
}
