package posts

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/yatube/backend/internal/domain/posts"
	"github.com/yatube/backend/internal/domain/shared"
)

// PostInput is the raw post form as submitted
type PostInput struct {
	Text  string `json:"text" form:"text"`
	Group string `json:"group" form:"group"`
}

// CleanedPost is a validated post form
type CleanedPost struct {
	Text    string
	GroupID *int64
	Group   *posts.Group
}

// CreateGroupRequest represents a request to create a group
type CreateGroupRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Slug        string `json:"slug" binding:"omitempty,max=255"`
	Description string `json:"description"`
}

// AuthorResponse represents a post author in API responses
type AuthorResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	FullName string    `json:"full_name"`
}

// GroupResponse represents a group in API responses
type GroupResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// PostResponse represents a post in API responses
type PostResponse struct {
	ID      int64          `json:"id"`
	Text    string         `json:"text"`
	Summary string         `json:"summary"`
	PubDate time.Time      `json:"pub_date"`
	Author  AuthorResponse `json:"author"`
	Group   *GroupResponse `json:"group,omitempty"`
}

// GroupFeedResult is one page of a group's posts
type GroupFeedResult struct {
	Group GroupResponse             `json:"group"`
	Page  shared.Page[PostResponse] `json:"page_obj"`
}

// ProfileFeedResult is one page of an author's posts
type ProfileFeedResult struct {
	Author     AuthorResponse            `json:"author"`
	PostsCount int64                     `json:"posts_count"`
	Page       shared.Page[PostResponse] `json:"page_obj"`
}

// PostDetailResult is a single post with its author's post count
type PostDetailResult struct {
	Post             PostResponse `json:"post"`
	AuthorPostsCount int64        `json:"author_posts_count"`
}

// ToAuthorResponse converts a post author to a response
func ToAuthorResponse(a posts.Author) AuthorResponse {
	return AuthorResponse{
		ID:       a.ID,
		Username: a.Username,
		FullName: a.FullName(),
	}
}

// ToGroupResponse converts a domain group to a response
func ToGroupResponse(g *posts.Group) GroupResponse {
	return GroupResponse{
		ID:          g.ID,
		Title:       g.Title,
		Slug:        g.Slug,
		Description: g.Description,
		CreatedAt:   g.CreatedAt,
	}
}

// ToGroupResponses converts a slice of groups
func ToGroupResponses(groups []posts.Group) []GroupResponse {
	responses := make([]GroupResponse, len(groups))
	for i := range groups {
		responses[i] = ToGroupResponse(&groups[i])
	}
	return responses
}

// ToPostResponse converts a domain post to a response
func ToPostResponse(p *posts.Post) PostResponse {
	resp := PostResponse{
		ID:      p.ID,
		Text:    p.Text,
		Summary: p.Summary(),
		PubDate: p.PubDate,
		Author:  ToAuthorResponse(p.Author),
	}
	if p.Group != nil {
		group := ToGroupResponse(p.Group)
		resp.Group = &group
	}
	return resp
}

// InputFromPost returns the form values that reproduce a stored post
func InputFromPost(p PostResponse) PostInput {
	input := PostInput{Text: p.Text}
	if p.Group != nil {
		input.Group = strconv.FormatInt(p.Group.ID, 10)
	}
	return input
}
