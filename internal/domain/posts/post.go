package posts

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/yatube/backend/internal/domain/shared"
)

// MaxTextLength bounds the size of a post body in runes
const MaxTextLength = 10000

// summaryLength is how many characters of the text a post's display string keeps
const summaryLength = 15

// ErrNotAuthor is returned when someone other than the author tries to change a post
var ErrNotAuthor = shared.NewDomainError("NOT_AUTHOR", "Only the author can edit this post")

// Author is the read-side view of a post's author
type Author struct {
	ID        uuid.UUID
	Username  string
	FirstName string
	LastName  string
}

// FullName returns "first last", falling back to the username
func (a Author) FullName() string {
	full := strings.TrimSpace(a.FirstName + " " + a.LastName)
	if full == "" {
		return a.Username
	}
	return full
}

// Post is a single text entry written by one author.
// Author and PubDate are fixed at creation; only Text and GroupID change afterwards.
type Post struct {
	ID       int64
	Text     string
	PubDate  time.Time
	AuthorID uuid.UUID
	GroupID  *int64

	// Populated by repositories when listing, never written back
	Author Author
	Group  *Group
}

// NewPost creates a post authored by authorID and published at pubDate
func NewPost(authorID uuid.UUID, text string, groupID *int64, pubDate time.Time) (*Post, error) {
	if authorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_AUTHOR", "Post author is required")
	}
	text, err := normalizeText(text)
	if err != nil {
		return nil, err
	}

	return &Post{
		Text:     text,
		PubDate:  pubDate.UTC(),
		AuthorID: authorID,
		GroupID:  groupID,
	}, nil
}

// Edit replaces the mutable content of the post
func (p *Post) Edit(text string, groupID *int64) error {
	text, err := normalizeText(text)
	if err != nil {
		return err
	}

	p.Text = text
	p.GroupID = groupID
	if groupID == nil || (p.Group != nil && p.Group.ID != *groupID) {
		p.Group = nil
	}
	return nil
}

// IsAuthoredBy reports whether userID wrote the post
func (p *Post) IsAuthoredBy(userID uuid.UUID) bool {
	return p.AuthorID == userID
}

// Summary returns the first 15 characters of the text
func (p *Post) Summary() string {
	if utf8.RuneCountInString(p.Text) <= summaryLength {
		return p.Text
	}
	return string([]rune(p.Text)[:summaryLength])
}

// String returns the post summary
func (p *Post) String() string {
	return p.Summary()
}

func normalizeText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", shared.NewDomainError("INVALID_TEXT", "Post text cannot be empty")
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		return "", shared.NewDomainError("INVALID_TEXT", "Post text is too long")
	}
	return text, nil
}
