package dao

import (
	"context"
	"errors"

	"github.com/haierkeys/fast-roadmap-service/internal/domain"
	"github.com/haierkeys/fast-roadmap-service/internal/model"

	"gorm.io/gorm"
)

// roadmapWriteKey 路线图只有一棵树，所有写操作共用一个队列
const roadmapWriteKey = "roadmap"

type roadmapNodeRepository struct {
	*Dao
	// tx 非 nil 时仓储绑定在事务上，写操作不再进入写队列
	tx *gorm.DB
}

func NewRoadmapNodeRepository(d *Dao) domain.RoadmapNodeRepository {
	return &roadmapNodeRepository{Dao: d}
}

func (r *roadmapNodeRepository) db(ctx context.Context) (*gorm.DB, error) {
	if err := r.Dao.Migrate("RoadmapNode"); err != nil {
		return nil, err
	}
	if r.tx != nil {
		return r.tx, nil
	}
	return r.Dao.DB(ctx), nil
}

func (r *roadmapNodeRepository) write(ctx context.Context, fn func(db *gorm.DB) error) error {
	if err := r.Dao.Migrate("RoadmapNode"); err != nil {
		return err
	}
	if r.tx != nil {
		return fn(r.tx)
	}
	return r.Dao.ExecuteWrite(ctx, roadmapWriteKey, fn)
}

func (r *roadmapNodeRepository) GetByNodeID(ctx context.Context, nodeID string) (*domain.RoadmapNode, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}
	var m model.RoadmapNode
	if err := db.Where("node_id = ?", nodeID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNodeNotFound
		}
		return nil, err
	}
	return r.modelToDomain(&m), nil
}

func (r *roadmapNodeRepository) List(ctx context.Context) ([]*domain.RoadmapNode, error) {
	db, err := r.db(ctx)
	if err != nil {
		return nil, err
	}
	var ms []*model.RoadmapNode
	if err := db.Order("id ASC").Find(&ms).Error; err != nil {
		return nil, err
	}
	res := make([]*domain.RoadmapNode, 0, len(ms))
	for _, m := range ms {
		res = append(res, r.modelToDomain(m))
	}
	return res, nil
}

func (r *roadmapNodeRepository) Count(ctx context.Context) (int64, error) {
	db, err := r.db(ctx)
	if err != nil {
		return 0, err
	}
	var n int64
	err = db.Model(&model.RoadmapNode{}).Count(&n).Error
	return n, err
}

func (r *roadmapNodeRepository) Create(ctx context.Context, node *domain.RoadmapNode) (*domain.RoadmapNode, error) {
	var result *domain.RoadmapNode
	err := r.write(ctx, func(db *gorm.DB) error {
		m := r.domainToModel(node)
		m.ID = 0
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

// Update 使用 Save 全量写入，Updates 会跳过 false 与零值
func (r *roadmapNodeRepository) Update(ctx context.Context, node *domain.RoadmapNode) (*domain.RoadmapNode, error) {
	var result *domain.RoadmapNode
	err := r.write(ctx, func(db *gorm.DB) error {
		var existing model.RoadmapNode
		if err := db.Where("node_id = ?", node.NodeID).First(&existing).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNodeNotFound
			}
			return err
		}
		m := r.domainToModel(node)
		m.ID = existing.ID
		m.CreatedAt = existing.CreatedAt
		if err := db.Save(m).Error; err != nil {
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

func (r *roadmapNodeRepository) DeleteByNodeIDs(ctx context.Context, nodeIDs []string) error {
	if len(nodeIDs) == 0 {
		return nil
	}
	return r.write(ctx, func(db *gorm.DB) error {
		return db.Where("node_id IN ?", nodeIDs).Delete(&model.RoadmapNode{}).Error
	})
}

// ReplaceAll 在一个事务中清空并重建全部节点，任一插入失败时保留原有数据
func (r *roadmapNodeRepository) ReplaceAll(ctx context.Context, nodes []*domain.RoadmapNode) error {
	ms := make([]*model.RoadmapNode, 0, len(nodes))
	for _, n := range nodes {
		m := r.domainToModel(n)
		m.ID = 0
		ms = append(ms, m)
	}
	return r.write(ctx, func(db *gorm.DB) error {
		return db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.RoadmapNode{}).Error; err != nil {
				return err
			}
			if len(ms) == 0 {
				return nil
			}
			return tx.CreateInBatches(ms, 100).Error
		})
	})
}

func (r *roadmapNodeRepository) Transaction(ctx context.Context, fn func(tx domain.RoadmapNodeRepository) error) error {
	if r.tx != nil {
		return fn(r)
	}
	return r.write(ctx, func(db *gorm.DB) error {
		return db.Transaction(func(tx *gorm.DB) error {
			return fn(&roadmapNodeRepository{Dao: r.Dao, tx: tx})
		})
	})
}

func (r *roadmapNodeRepository) modelToDomain(m *model.RoadmapNode) *domain.RoadmapNode {
	if m == nil {
		return nil
	}
	return &domain.RoadmapNode{
		ID:          m.ID,
		NodeID:      m.NodeID,
		Title:       m.Title,
		Description: m.Description,
		Color:       m.Color,
		Links:       nonNil(m.Links),
		Position:    domain.RoadmapPosition{X: m.X, Y: m.Y},
		Expanded:    m.Expanded,
		Children:    nonNil(m.Children),
		Parent:      m.Parent,
		Level:       m.Level,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func (r *roadmapNodeRepository) domainToModel(d *domain.RoadmapNode) *model.RoadmapNode {
	if d == nil {
		return nil
	}
	return &model.RoadmapNode{
		ID:          d.ID,
		NodeID:      d.NodeID,
		Title:       d.Title,
		Description: d.Description,
		Color:       d.Color,
		Links:       nonNil(d.Links),
		X:           d.Position.X,
		Y:           d.Position.Y,
		Expanded:    d.Expanded,
		Children:    nonNil(d.Children),
		Parent:      d.Parent,
		Level:       d.Level,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
