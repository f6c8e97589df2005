package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/yatube/backend/internal/domain/posts"
)

// GroupModel is the persistence model for the Group domain entity.
type GroupModel struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	Title       string    `gorm:"type:varchar(200);not null"`
	Slug        string    `gorm:"type:varchar(255);not null;uniqueIndex"`
	Description string    `gorm:"type:text;not null;default:''"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (GroupModel) TableName() string {
	return "groups"
}

// ToDomain converts the persistence model to a domain Group entity.
func (m *GroupModel) ToDomain() *posts.Group {
	return &posts.Group{
		ID:          m.ID,
		Title:       m.Title,
		Slug:        m.Slug,
		Description: m.Description,
		CreatedAt:   m.CreatedAt,
	}
}

// GroupModelFromDomain creates a new persistence model from a domain Group entity.
func GroupModelFromDomain(g *posts.Group) *GroupModel {
	return &GroupModel{
		ID:          g.ID,
		Title:       g.Title,
		Slug:        g.Slug,
		Description: g.Description,
		CreatedAt:   g.CreatedAt,
	}
}

// PostModel is the persistence model for the Post domain entity.
// The composite index serves the canonical newest-first ordering.
type PostModel struct {
	ID       int64       `gorm:"primaryKey;autoIncrement;index:idx_posts_pub_date_id,sort:asc,priority:2"`
	Text     string      `gorm:"type:text;not null"`
	PubDate  time.Time   `gorm:"column:pub_date;not null;index:idx_posts_pub_date_id,sort:desc,priority:1"`
	AuthorID uuid.UUID   `gorm:"type:uuid;not null;index"`
	GroupID  *int64      `gorm:"index"`
	Author   *UserModel  `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	Group    *GroupModel `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (PostModel) TableName() string {
	return "posts"
}

// ToDomain converts the persistence model to a domain Post entity,
// including the author and group when they were preloaded.
func (m *PostModel) ToDomain() *posts.Post {
	post := &posts.Post{
		ID:       m.ID,
		Text:     m.Text,
		PubDate:  m.PubDate,
		AuthorID: m.AuthorID,
		GroupID:  m.GroupID,
		Author:   posts.Author{ID: m.AuthorID},
	}
	if m.Author != nil {
		post.Author.Username = m.Author.Username
		post.Author.FirstName = m.Author.FirstName
		post.Author.LastName = m.Author.LastName
	}
	if m.Group != nil {
		post.Group = m.Group.ToDomain()
	}
	return post
}

// PostModelFromDomain creates a new persistence model from a domain Post entity.
// Associations are left empty; only foreign keys are written.
func PostModelFromDomain(p *posts.Post) *PostModel {
	return &PostModel{
		ID:       p.ID,
		Text:     p.Text,
		PubDate:  p.PubDate,
		AuthorID: p.AuthorID,
		GroupID:  p.GroupID,
	}
}
