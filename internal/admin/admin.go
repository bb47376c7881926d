// Package admin exposes the operational health surface.
package admin

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/marwensouissi/Gym-Tracker-Backend/internal/aiservice"
	"github.com/marwensouissi/Gym-Tracker-Backend/internal/database"
	"github.com/marwensouissi/Gym-Tracker-Backend/internal/ratelimit"
)

var (
	db        database.Service
	aiSvc     *aiservice.Service
	limiter   *ratelimit.Limiter
	startTime = time.Now()
)

// InitAdmin wires the package to the services it reports on.
func InitAdmin(service database.Service, svc *aiservice.Service, l *ratelimit.Limiter) {
	db = service
	aiSvc = svc
	limiter = l
}

// GetServerHealthHandler collects system, database and AI pipeline metrics.
func GetServerHealthHandler(c echo.Context) error {
	v, _ := mem.VirtualMemory()
	cpuPercent, _ := cpu.Percent(0, false)
	d, _ := disk.Usage("/")
	hostInfo, _ := host.Info()

	cpuLoad := "n/a"
	if len(cpuPercent) > 0 {
		cpuLoad = fmt.Sprintf("%.1f%%", cpuPercent[0])
	}
	ramUsage := "n/a"
	if v != nil {
		ramUsage = fmt.Sprintf("%.1f%%", v.UsedPercent)
	}
	diskUsage := "n/a"
	if d != nil {
		diskUsage = fmt.Sprintf("%.1f%%", d.UsedPercent)
	}

	payload := map[string]interface{}{
		"uptime": time.Since(startTime).Round(time.Second).String(),
		"system": map[string]interface{}{
			"cpu_load":   cpuLoad,
			"ram_usage":  ramUsage,
			"disk_usage": diskUsage,
			"goroutines": runtime.NumGoroutine(),
		},
		"database": db.Health(),
	}
	if hostInfo != nil {
		payload["host"] = map[string]interface{}{
			"hostname": hostInfo.Hostname,
			"os":       hostInfo.OS,
			"uptime_s": hostInfo.Uptime,
		}
	}
	if aiSvc != nil {
		payload["ai"] = map[string]interface{}{
			"usage":              aiSvc.Usage(),
			"cached_suggestions": aiSvc.CachedSuggestions(),
		}
	}
	if limiter != nil {
		payload["rate_limiter"] = map[string]interface{}{
			"tracked_callers": limiter.TrackedCallers(),
		}
	}

	return c.JSON(http.StatusOK, payload)
}
