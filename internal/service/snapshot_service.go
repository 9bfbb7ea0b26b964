package service

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/haierkeys/fast-roadmap-service/internal/domain"
	"github.com/haierkeys/fast-roadmap-service/internal/dto"
	"github.com/haierkeys/fast-roadmap-service/pkg/code"
	"github.com/haierkeys/fast-roadmap-service/pkg/fileurl"
	"github.com/haierkeys/fast-roadmap-service/pkg/util"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	SnapshotTriggerManual = "manual"
	SnapshotTriggerCron   = "cron"
	SnapshotTriggerAPI    = "api"
)

// SnapshotService writes roadmap.json copies to disk and keeps a bounded history
// SnapshotService 将路线图快照写入磁盘并保留有限的历史记录
type SnapshotService interface {
	// Snapshot 立即写入一份快照，并发触发会被合并为一次
	Snapshot(ctx context.Context, trigger string) (*dto.SnapshotDTO, error)

	// List 按时间倒序列出快照记录
	List(ctx context.Context) ([]*dto.SnapshotDTO, error)

	// Config 返回当前快照配置
	Config() SnapshotConfig

	// SetConfig 热更新快照配置
	SetConfig(cfg SnapshotConfig)
}

type snapshotService struct {
	nodes  NodeService
	repo   domain.RoadmapSnapshotRepository
	logger *zap.Logger
	sf     *singleflight.Group

	mu  sync.RWMutex
	cfg SnapshotConfig
	now func() time.Time
}

// NewSnapshotService 创建 SnapshotService 实例
func NewSnapshotService(nodes NodeService, repo domain.RoadmapSnapshotRepository, cfg SnapshotConfig, logger *zap.Logger) SnapshotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &snapshotService{
		nodes:  nodes,
		repo:   repo,
		logger: logger,
		sf:     &singleflight.Group{},
		cfg:    cfg,
		now:    time.Now,
	}
}

func (s *snapshotService) Config() SnapshotConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

func (s *snapshotService) SetConfig(cfg SnapshotConfig) {
	s.mu.Lock()
	s.cfg = cfg
	s.mu.Unlock()
	s.logger.Info("snapshot config updated",
		zap.Bool("enabled", cfg.Enabled),
		zap.String("cron", cfg.Cron),
		zap.String("savePath", cfg.SavePath),
		zap.Int("keep", cfg.Keep))
}

func (s *snapshotService) Snapshot(ctx context.Context, trigger string) (*dto.SnapshotDTO, error) {
	cfg := s.Config()
	if !cfg.Enabled {
		return nil, code.ErrorSnapshotDisabled
	}
	if trigger == "" {
		trigger = SnapshotTriggerManual
	}

	v, err, shared := s.sf.Do("roadmap_snapshot", func() (any, error) {
		return s.write(ctx, cfg, trigger)
	})
	observe("snapshot", err)
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("snapshot request merged", zap.String("trigger", trigger))
	}
	return v.(*dto.SnapshotDTO), nil
}

func (s *snapshotService) write(ctx context.Context, cfg SnapshotConfig, trigger string) (*dto.SnapshotDTO, error) {
	data, err := ExportBytes(ctx, s.nodes)
	if err != nil {
		return nil, err
	}
	count, err := s.nodes.Count(ctx)
	if err != nil {
		return nil, err
	}

	fileName, path := snapshotFileName(cfg.SavePath, util.SnapshotStamp(s.now()))
	if err := fileurl.WriteFileAtomic(path, data, 0644); err != nil {
		return nil, code.ErrorSnapshotFailed.WithDetails(err.Error())
	}

	rec, err := s.repo.Create(ctx, &domain.RoadmapSnapshot{
		FileName:  fileName,
		Path:      path,
		NodeCount: int(count),
		Size:      int64(len(data)),
		Trigger:   trigger,
	})
	if err != nil {
		return nil, code.ErrorSnapshotFailed.WithDetails(err.Error())
	}
	s.logger.Info("snapshot written",
		zap.String("path", path),
		zap.Int64("nodes", count),
		zap.String("trigger", trigger))

	s.prune(ctx, cfg.Keep)
	return snapshotToDTO(rec), nil
}

// snapshotFileName returns a name under dir that no existing file uses.
// Writes are merged by singleflight, so the check cannot race another write.
// snapshotFileName 返回目录下未被占用的文件名，同一毫秒内的快照追加序号
func snapshotFileName(dir, stamp string) (string, string) {
	fileName := "roadmap-" + stamp + ".json"
	path := filepath.Join(dir, fileName)
	for i := 1; fileurl.IsExist(path); i++ {
		fileName = "roadmap-" + stamp + "-" + strconv.Itoa(i) + ".json"
		path = filepath.Join(dir, fileName)
	}
	return fileName, path
}

// prune removes the oldest snapshots beyond keep, failures are logged and skipped.
// A file still referenced by a kept record is never removed.
// prune 删除超出保留数量的旧快照，失败只记录日志；仍被保留记录引用的文件不删除
func (s *snapshotService) prune(ctx context.Context, keep int) {
	if keep <= 0 {
		return
	}
	list, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Warn("snapshot prune list failed", zap.Error(err))
		return
	}
	if len(list) <= keep {
		return
	}
	kept := make(map[string]struct{}, keep)
	for _, k := range list[:keep] {
		kept[k.Path] = struct{}{}
	}
	for _, old := range list[keep:] {
		if _, ok := kept[old.Path]; ok {
			if err := s.repo.Delete(ctx, old.ID); err != nil {
				s.logger.Warn("snapshot record delete failed", zap.Int64("id", old.ID), zap.Error(err))
			}
			continue
		}
		if err := os.Remove(old.Path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("snapshot file remove failed", zap.String("path", old.Path), zap.Error(err))
			continue
		}
		if err := s.repo.Delete(ctx, old.ID); err != nil {
			s.logger.Warn("snapshot record delete failed", zap.Int64("id", old.ID), zap.Error(err))
		}
	}
}

func (s *snapshotService) List(ctx context.Context) ([]*dto.SnapshotDTO, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, code.ErrorDBQuery.WithDetails(err.Error())
	}
	res := make([]*dto.SnapshotDTO, 0, len(list))
	for _, r := range list {
		res = append(res, snapshotToDTO(r))
	}
	return res, nil
}

func snapshotToDTO(r *domain.RoadmapSnapshot) *dto.SnapshotDTO {
	return &dto.SnapshotDTO{
		ID:        r.ID,
		FileName:  r.FileName,
		Path:      r.Path,
		NodeCount: r.NodeCount,
		Size:      r.Size,
		Trigger:   r.Trigger,
		CreatedAt: r.CreatedAt,
	}
}
