package persistence

import (
	"context"

	"github.com/yatube/backend/internal/domain/posts"
	"github.com/yatube/backend/internal/domain/shared"
	"github.com/yatube/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// postOrder is the canonical listing order: newest first, insertion order on ties
const postOrder = "pub_date DESC, id ASC"

// GormPostRepository implements posts.PostRepository using GORM
type GormPostRepository struct {
	db *gorm.DB
}

// NewGormPostRepository creates a new GormPostRepository
func NewGormPostRepository(db *gorm.DB) *GormPostRepository {
	return &GormPostRepository{db: db}
}

// Create inserts the post and copies the generated ID back
func (r *GormPostRepository) Create(ctx context.Context, post *posts.Post) error {
	model := models.PostModelFromDomain(post)
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(model).Error; err != nil {
		return translateError(err)
	}
	post.ID = model.ID
	return nil
}

// Update writes only the text and group columns
func (r *GormPostRepository) Update(ctx context.Context, post *posts.Post) error {
	result := r.db.WithContext(ctx).
		Model(&models.PostModel{}).
		Where("id = ?", post.ID).
		Select("text", "group_id").
		Updates(map[string]any{
			"text":     post.Text,
			"group_id": post.GroupID,
		})
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a post with author and group loaded
func (r *GormPostRepository) FindByID(ctx context.Context, id int64) (*posts.Post, error) {
	var model models.PostModel
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		First(&model, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// List returns one window of the ordered listing
func (r *GormPostRepository) List(ctx context.Context, filter posts.PostFilter, offset, limit int) ([]posts.Post, error) {
	var rows []models.PostModel
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.PostModel{}), filter).
		Preload("Author").
		Preload("Group").
		Order(postOrder).
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make([]posts.Post, len(rows))
	for i := range rows {
		result[i] = *rows[i].ToDomain()
	}
	return result, nil
}

// Count counts posts matching the filter
func (r *GormPostRepository) Count(ctx context.Context, filter posts.PostFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.PostModel{}), filter).
		Count(&count).Error
	return count, err
}

func (r *GormPostRepository) applyFilter(query *gorm.DB, filter posts.PostFilter) *gorm.DB {
	if filter.GroupID != nil {
		query = query.Where("group_id = ?", *filter.GroupID)
	}
	if filter.AuthorID != nil {
		query = query.Where("author_id = ?", *filter.AuthorID)
	}
	return query
}

var _ posts.PostRepository = (*GormPostRepository)(nil)
