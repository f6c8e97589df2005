package posts

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/yatube/backend/internal/domain/shared"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	maxGroupTitleLength = 200
	maxGroupSlugLength  = 255
)

var (
	slugPattern      = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	slugStripPattern = regexp.MustCompile(`[^\w\s-]`)
	slugDashPattern  = regexp.MustCompile(`[-\s]+`)
)

// Group is a topical community posts can be filed under
type Group struct {
	ID          int64
	Title       string
	Slug        string
	Description string
	CreatedAt   time.Time
}

// NewGroup creates a group. An empty slug is derived from the title.
func NewGroup(title, slug, description string) (*Group, error) {
	title = strings.TrimSpace(title)
	if err := validateGroupTitle(title); err != nil {
		return nil, err
	}

	slug = strings.TrimSpace(slug)
	if slug == "" {
		slug = Slugify(title)
	}
	if err := ValidateSlug(slug); err != nil {
		return nil, err
	}

	return &Group{
		Title:       title,
		Slug:        slug,
		Description: strings.TrimSpace(description),
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// String returns the group title
func (g *Group) String() string {
	return g.Title
}

// ValidateSlug checks that slug is a non-empty URL-safe identifier
func ValidateSlug(slug string) error {
	if slug == "" {
		return shared.NewDomainError("INVALID_SLUG", "Slug cannot be empty")
	}
	if len(slug) > maxGroupSlugLength {
		return shared.NewDomainError("INVALID_SLUG", "Slug cannot exceed 255 characters")
	}
	if !slugPattern.MatchString(slug) {
		return shared.NewDomainError("INVALID_SLUG", "Slug can only contain latin letters, numbers, underscores and hyphens")
	}
	return nil
}

// Slugify converts s to a lower-case ASCII slug.
// Accents are folded and characters without an ASCII form are dropped.
func Slugify(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
	folded, _, err := transform.String(t, s)
	if err != nil {
		return ""
	}

	folded = slugStripPattern.ReplaceAllString(strings.ToLower(folded), "")
	folded = slugDashPattern.ReplaceAllString(strings.TrimSpace(folded), "-")
	folded = strings.Trim(folded, "-_")
	if len(folded) > maxGroupSlugLength {
		folded = strings.TrimRight(folded[:maxGroupSlugLength], "-_")
	}
	return folded
}

func validateGroupTitle(title string) error {
	if title == "" {
		return shared.NewDomainError("INVALID_TITLE", "Group title cannot be empty")
	}
	if utf8.RuneCountInString(title) > maxGroupTitleLength {
		return shared.NewDomainError("INVALID_TITLE", "Group title cannot exceed 200 characters")
	}
	return nil
}
