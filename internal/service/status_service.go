package service

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/haierkeys/fast-roadmap-service/internal/dto"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"
)

// StatusService reports process, host and storage status
// StatusService 报告进程、主机与存储状态
type StatusService interface {
	Status(ctx context.Context) (*dto.ServerStatusDTO, error)
}

type statusService struct {
	nodes     NodeService
	startTime time.Time
	logger    *zap.Logger
	// sample CPU 采样时长，为 0 时返回自上次调用以来的使用率
	sample time.Duration
}

// NewStatusService 创建 StatusService 实例
func NewStatusService(nodes NodeService, startTime time.Time, logger *zap.Logger) StatusService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &statusService{
		nodes:     nodes,
		startTime: startTime,
		logger:    logger,
		sample:    200 * time.Millisecond,
	}
}

// Status collects gopsutil figures, a figure that cannot be read is left zero
// Status 采集系统指标，读取失败的指标保持零值
func (s *statusService) Status(ctx context.Context) (*dto.ServerStatusDTO, error) {
	count, err := s.nodes.Count(ctx)
	if err != nil {
		return nil, err
	}

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	data := &dto.ServerStatusDTO{
		StartTime: s.startTime,
		Uptime:    time.Since(s.startTime).Seconds(),
		Nodes:     count,
		Runtime: dto.RuntimeStatus{
			NumGoroutine: runtime.NumGoroutine(),
			MemAlloc:     m.Alloc,
			MemSys:       m.Sys,
			HeapInuse:    m.HeapInuse,
			NumGC:        m.NumGC,
		},
	}

	// CPU
	if infos, err := cpu.InfoWithContext(ctx); err == nil && len(infos) > 0 {
		data.CPU.ModelName = infos[0].ModelName
	}
	data.CPU.LogicalCores, _ = cpu.CountsWithContext(ctx, true)
	if pct, err := cpu.PercentWithContext(ctx, s.sample, false); err == nil {
		data.CPU.Percent = pct
	}
	if avg, err := load.AvgWithContext(ctx); err == nil {
		data.CPU.Load1, data.CPU.Load5, data.CPU.Load15 = avg.Load1, avg.Load5, avg.Load15
	}

	// Memory
	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		data.Memory = dto.MemoryStatus{Total: vm.Total, Available: vm.Available, UsedPercent: vm.UsedPercent}
	}

	// Host
	if h, err := host.InfoWithContext(ctx); err == nil {
		data.Host = dto.HostStatus{
			Hostname:      h.Hostname,
			OS:            h.OS,
			Platform:      h.Platform,
			KernelVersion: h.KernelVersion,
			Uptime:        h.Uptime,
		}
	}

	// Process
	p, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		s.logger.Debug("process status unavailable", zap.Error(err))
		return data, nil
	}
	data.Process.PID = p.Pid
	data.Process.Name, _ = p.NameWithContext(ctx)
	data.Process.CPUPercent, _ = p.CPUPercentWithContext(ctx)
	data.Process.MemoryPercent, _ = p.MemoryPercentWithContext(ctx)
	if mi, err := p.MemoryInfoWithContext(ctx); err == nil {
		data.Process.RSS = mi.RSS
	}
	return data, nil
}
