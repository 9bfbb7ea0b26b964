package dao

import (
	"context"

	"github.com/haierkeys/fast-roadmap-service/internal/domain"
	"github.com/haierkeys/fast-roadmap-service/internal/model"

	"gorm.io/gorm"
)

const snapshotWriteKey = "roadmap_snapshot"

type roadmapSnapshotRepository struct {
	*Dao
}

func NewRoadmapSnapshotRepository(d *Dao) domain.RoadmapSnapshotRepository {
	return &roadmapSnapshotRepository{Dao: d}
}

func (r *roadmapSnapshotRepository) Create(ctx context.Context, s *domain.RoadmapSnapshot) (*domain.RoadmapSnapshot, error) {
	if err := r.Dao.Migrate("RoadmapSnapshot"); err != nil {
		return nil, err
	}
	var result *domain.RoadmapSnapshot
	err := r.Dao.ExecuteWrite(ctx, snapshotWriteKey, func(db *gorm.DB) error {
		m := &model.RoadmapSnapshot{
			FileName:  s.FileName,
			Path:      s.Path,
			NodeCount: s.NodeCount,
			Size:      s.Size,
			Trigger:   s.Trigger,
		}
		if err := db.Create(m).Error; err != nil {
			return err
		}
		result = r.modelToDomain(m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *roadmapSnapshotRepository) List(ctx context.Context) ([]*domain.RoadmapSnapshot, error) {
	if err := r.Dao.Migrate("RoadmapSnapshot"); err != nil {
		return nil, err
	}
	var ms []*model.RoadmapSnapshot
	if err := r.Dao.DB(ctx).Order("id DESC").Find(&ms).Error; err != nil {
		return nil, err
	}
	res := make([]*domain.RoadmapSnapshot, 0, len(ms))
	for _, m := range ms {
		res = append(res, r.modelToDomain(m))
	}
	return res, nil
}

func (r *roadmapSnapshotRepository) Delete(ctx context.Context, id int64) error {
	if err := r.Dao.Migrate("RoadmapSnapshot"); err != nil {
		return err
	}
	return r.Dao.ExecuteWrite(ctx, snapshotWriteKey, func(db *gorm.DB) error {
		return db.Delete(&model.RoadmapSnapshot{}, id).Error
	})
}

func (r *roadmapSnapshotRepository) modelToDomain(m *model.RoadmapSnapshot) *domain.RoadmapSnapshot {
	return &domain.RoadmapSnapshot{
		ID:        m.ID,
		FileName:  m.FileName,
		Path:      m.Path,
		NodeCount: m.NodeCount,
		Size:      m.Size,
		Trigger:   m.Trigger,
		CreatedAt: m.CreatedAt,
	}
}
