package posts

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPost(t *testing.T) {
	authorID := uuid.New()
	pubDate := time.Date(2024, 3, 1, 12, 0, 0, 0, time.FixedZone("MSK", 3*60*60))

	t.Run("creates post with trimmed text", func(t *testing.T) {
		groupID := int64(7)
		post, err := NewPost(authorID, "  Тестовый текст \n", &groupID, pubDate)

		require.NoError(t, err)
		assert.Equal(t, "Тестовый текст", post.Text)
		assert.Equal(t, authorID, post.AuthorID)
		assert.Equal(t, &groupID, post.GroupID)
		assert.Equal(t, time.UTC, post.PubDate.Location())
		assert.True(t, post.PubDate.Equal(pubDate))
	})

	t.Run("fails with blank text", func(t *testing.T) {
		_, err := NewPost(authorID, " \t\n", nil, pubDate)

		assert.Error(t, err)
	})

	t.Run("fails without author", func(t *testing.T) {
		_, err := NewPost(uuid.Nil, "text", nil, pubDate)

		assert.Error(t, err)
	})

	t.Run("fails with oversized text", func(t *testing.T) {
		_, err := NewPost(authorID, strings.Repeat("x", MaxTextLength+1), nil, pubDate)

		assert.Error(t, err)
	})
}

func TestPost_Edit(t *testing.T) {
	authorID := uuid.New()
	groupID := int64(1)
	post, err := NewPost(authorID, "original", &groupID, time.Now())
	require.NoError(t, err)
	post.Group = &Group{ID: groupID, Title: "g"}
	pubDate := post.PubDate

	t.Run("changes only text and group", func(t *testing.T) {
		require.NoError(t, post.Edit("edited", nil))

		assert.Equal(t, "edited", post.Text)
		assert.Nil(t, post.GroupID)
		assert.Nil(t, post.Group)
		assert.Equal(t, authorID, post.AuthorID)
		assert.Equal(t, pubDate, post.PubDate)
	})

	t.Run("blank text leaves post untouched", func(t *testing.T) {
		other := int64(2)
		err := post.Edit("   ", &other)

		assert.Error(t, err)
		assert.Equal(t, "edited", post.Text)
		assert.Nil(t, post.GroupID)
	})
}

func TestPost_Summary(t *testing.T) {
	post := &Post{Text: "Тестовый текст длиннее пятнадцати"}
	assert.Equal(t, "Тестовый текст ", post.Summary())

	short := &Post{Text: "short"}
	assert.Equal(t, "short", short.String())
}

func TestPost_IsAuthoredBy(t *testing.T) {
	authorID := uuid.New()
	post := &Post{AuthorID: authorID}

	assert.True(t, post.IsAuthoredBy(authorID))
	assert.False(t, post.IsAuthoredBy(uuid.New()))
}

func TestAuthor_FullName(t *testing.T) {
	assert.Equal(t, "Test", Author{Username: "Test"}.FullName())
	assert.Equal(t, "Leo Tolstoy", Author{Username: "leo", FirstName: "Leo", LastName: "Tolstoy"}.FullName())
}

func TestPostFilters(t *testing.T) {
	group := ForGroup(3)
	require.NotNil(t, group.GroupID)
	assert.Equal(t, int64(3), *group.GroupID)
	assert.Nil(t, group.AuthorID)

	id := uuid.New()
	author := ForAuthor(id)
	require.NotNil(t, author.AuthorID)
	assert.Equal(t, id, *author.AuthorID)
	assert.Nil(t, author.GroupID)
}
