package posts

import (
	"context"

	"github.com/google/uuid"
)

// PostFilter narrows a listing to one group or one author.
// The zero value selects every post.
type PostFilter struct {
	GroupID  *int64
	AuthorID *uuid.UUID
}

// ForGroup selects the posts filed under a group
func ForGroup(groupID int64) PostFilter {
	return PostFilter{GroupID: &groupID}
}

// ForAuthor selects the posts written by a user
func ForAuthor(authorID uuid.UUID) PostFilter {
	return PostFilter{AuthorID: &authorID}
}

// PostRepository defines the interface for post persistence.
// Listings are ordered newest first, in insertion order on equal pub_date.
type PostRepository interface {
	// Create inserts a new post and assigns its ID
	Create(ctx context.Context, post *Post) error

	// Update writes the post's text and group, nothing else
	Update(ctx context.Context, post *Post) error

	// FindByID finds a post with its author and group loaded
	FindByID(ctx context.Context, id int64) (*Post, error)

	// List returns one window of the ordered listing, with authors and groups loaded
	List(ctx context.Context, filter PostFilter, offset, limit int) ([]Post, error)

	// Count counts posts matching the filter
	Count(ctx context.Context, filter PostFilter) (int64, error)
}

// GroupRepository defines the interface for group persistence
type GroupRepository interface {
	// Create inserts a new group and assigns its ID
	Create(ctx context.Context, group *Group) error

	// FindByID finds a group by ID
	FindByID(ctx context.Context, id int64) (*Group, error)

	// FindBySlug finds a group by slug
	FindBySlug(ctx context.Context, slug string) (*Group, error)

	// FindAll returns every group ordered by title
	FindAll(ctx context.Context) ([]Group, error)

	// ExistsBySlug checks if a slug is taken
	ExistsBySlug(ctx context.Context, slug string) (bool, error)

	// Count counts all groups
	Count(ctx context.Context) (int64, error)

	// Delete removes a group and every post filed under it
	Delete(ctx context.Context, id int64) error
}
