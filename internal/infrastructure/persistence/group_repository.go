package persistence

import (
	"context"

	"github.com/yatube/backend/internal/domain/posts"
	"github.com/yatube/backend/internal/domain/shared"
	"github.com/yatube/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormGroupRepository implements posts.GroupRepository using GORM
type GormGroupRepository struct {
	db *gorm.DB
}

// NewGormGroupRepository creates a new GormGroupRepository
func NewGormGroupRepository(db *gorm.DB) *GormGroupRepository {
	return &GormGroupRepository{db: db}
}

// Create inserts the group and copies the generated ID back
func (r *GormGroupRepository) Create(ctx context.Context, group *posts.Group) error {
	model := models.GroupModelFromDomain(group)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err)
	}
	group.ID = model.ID
	return nil
}

// FindByID finds a group by ID
func (r *GormGroupRepository) FindByID(ctx context.Context, id int64) (*posts.Group, error) {
	var model models.GroupModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindBySlug finds a group by slug
func (r *GormGroupRepository) FindBySlug(ctx context.Context, slug string) (*posts.Group, error) {
	var model models.GroupModel
	if err := r.db.WithContext(ctx).First(&model, "slug = ?", slug).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindAll returns every group ordered by title
func (r *GormGroupRepository) FindAll(ctx context.Context) ([]posts.Group, error) {
	var rows []models.GroupModel
	if err := r.db.WithContext(ctx).Order("title ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	groups := make([]posts.Group, len(rows))
	for i := range rows {
		groups[i] = *rows[i].ToDomain()
	}
	return groups, nil
}

// ExistsBySlug checks if a slug is taken
func (r *GormGroupRepository) ExistsBySlug(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.GroupModel{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

// Count counts all groups
func (r *GormGroupRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.GroupModel{}).Count(&count).Error
	return count, err
}

// Delete removes the group and its posts in one transaction
func (r *GormGroupRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&models.PostModel{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.GroupModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

var _ posts.GroupRepository = (*GormGroupRepository)(nil)
