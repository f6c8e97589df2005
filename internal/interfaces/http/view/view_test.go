package view

import (
	"bytes"
	"html/template"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appposts "github.com/yatube/backend/internal/application/posts"
	"github.com/yatube/backend/internal/domain/shared"
)

func render(t *testing.T, name string, data map[string]any) string {
	t.Helper()
	tmpl, err := Templates()
	require.NoError(t, err)

	base := map[string]any{
		"title":        "",
		"current_user": "",
		"request_path": "/",
		"request_id":   "",
	}
	for k, v := range data {
		base[k] = v
	}

	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, name, base))
	return buf.String()
}

func samplePost() appposts.PostResponse {
	return appposts.PostResponse{
		ID:      7,
		Text:    "Тестовый текст\nвторая строка <b>",
		Summary: "Тестовый текст",
		PubDate: time.Date(2024, time.January, 5, 10, 30, 0, 0, time.UTC),
		Author:  appposts.AuthorResponse{ID: uuid.New(), Username: "Test", FullName: "Test"},
		Group: &appposts.GroupResponse{
			ID:    1,
			Title: "Тестовая группа",
			Slug:  "test-slug",
		},
	}
}

func samplePage(items ...appposts.PostResponse) shared.Page[appposts.PostResponse] {
	return shared.NewPage(items, 1, shared.NewPaginator(int64(len(items)), 10))
}

func TestTemplates_AllPagesDefined(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	for _, name := range []string{
		PageIndex, PageGroupList, PageProfile, PagePostDetail, PageCreatePost,
		PageAbout, PageTech, PageLogin, PageNotFound, PageServerErr, PageError,
	} {
		assert.NotNil(t, tmpl.Lookup(name), name)
	}
}

func TestIndexPage(t *testing.T) {
	out := render(t, PageIndex, map[string]any{"page_obj": samplePage(samplePost())})

	assert.Contains(t, out, "Тестовый текст<br>вторая строка &lt;b&gt;")
	assert.Contains(t, out, `href="/posts/7/"`)
	assert.Contains(t, out, `href="/group/test-slug/"`)
	assert.Contains(t, out, `href="/profile/Test/"`)
	assert.Contains(t, out, "05 января 2024")
	assert.Contains(t, out, `href="/auth/login/"`)
	assert.NotContains(t, out, "?page=")
}

func TestIndexPage_Empty(t *testing.T) {
	out := render(t, PageIndex, map[string]any{"page_obj": samplePage()})

	assert.Contains(t, out, "Записей пока нет.")
}

func TestPaginator(t *testing.T) {
	items := make([]appposts.PostResponse, 10)
	for i := range items {
		items[i] = samplePost()
	}
	page := shared.NewPage(items, 2, shared.NewPaginator(35, 10))

	out := render(t, PageIndex, map[string]any{"page_obj": page})

	assert.Contains(t, out, `href="?page=1"`)
	assert.Contains(t, out, `<span aria-current="page">2</span>`)
	assert.Contains(t, out, `href="?page=3"`)
	assert.Contains(t, out, `href="?page=last"`)
}

func TestGroupPage(t *testing.T) {
	post := samplePost()
	out := render(t, PageGroupList, map[string]any{
		"group":    *post.Group,
		"page_obj": samplePage(post),
	})

	assert.Contains(t, out, "<h1>Тестовая группа</h1>")
	assert.NotContains(t, out, "все записи группы")
}

func TestProfilePage(t *testing.T) {
	post := samplePost()
	out := render(t, PageProfile, map[string]any{
		"author":      post.Author,
		"posts_count": int64(1),
		"page_obj":    samplePage(post),
	})

	assert.Contains(t, out, "Все посты пользователя Test")
	assert.Contains(t, out, "Всего постов: 1")
}

func TestPostDetailPage(t *testing.T) {
	post := samplePost()

	t.Run("author sees edit link", func(t *testing.T) {
		out := render(t, PagePostDetail, map[string]any{
			"post":               post,
			"author_posts_count": int64(3),
			"current_user":       "Test",
		})

		assert.Contains(t, out, `href="/posts/7/edit/"`)
		assert.Contains(t, out, "<span>3</span>")
		assert.Contains(t, out, `action="/auth/logout/"`)
	})

	t.Run("others do not", func(t *testing.T) {
		out := render(t, PagePostDetail, map[string]any{
			"post":               post,
			"author_posts_count": int64(3),
			"current_user":       "Other",
		})

		assert.NotContains(t, out, "/edit/")
	})
}

func TestCreatePostPage(t *testing.T) {
	groups := []appposts.GroupResponse{{ID: 1, Title: "Тестовая группа", Slug: "test-slug"}}

	t.Run("create with errors", func(t *testing.T) {
		errs := shared.FieldErrors{}
		errs.Add(appposts.FieldText, appposts.MsgRequired)
		form := appposts.NewPostForm(appposts.PostInput{Group: "1"}, errs, groups)

		out := render(t, PageCreatePost, map[string]any{"form": form, "is_edit": false})

		assert.Contains(t, out, "Новый пост")
		assert.Contains(t, out, `action="/create/"`)
		assert.Contains(t, out, appposts.MsgRequired)
		assert.Contains(t, out, `<option value="1" selected>Тестовая группа</option>`)
		assert.Contains(t, out, "Введите текст поста")
	})

	t.Run("form-wide errors", func(t *testing.T) {
		errs := shared.FieldErrors{}
		errs.Add("", "The submitted form could not be read.")
		form := appposts.NewPostForm(appposts.PostInput{}, errs, groups)

		out := render(t, PageCreatePost, map[string]any{"form": form, "is_edit": false})

		assert.Contains(t, out, `<p class="error">The submitted form could not be read.</p>`)
	})

	t.Run("edit keeps values", func(t *testing.T) {
		post := samplePost()
		form := appposts.NewPostForm(appposts.InputFromPost(post), nil, groups)

		out := render(t, PageCreatePost, map[string]any{"form": form, "is_edit": true, "post": post})

		assert.Contains(t, out, "Редактировать пост")
		assert.Contains(t, out, `action="/posts/7/edit/"`)
		assert.Contains(t, out, "Тестовый текст")
	})
}

func TestLoginPage(t *testing.T) {
	errs := shared.FieldErrors{}
	errs.Add("", "Please enter a correct username and password.")

	out := render(t, PageLogin, map[string]any{
		"errors":   errs,
		"username": "Test",
		"next":     "/create/",
	})

	assert.Contains(t, out, "Please enter a correct username and password.")
	assert.Contains(t, out, `value="/create/"`)
	assert.Contains(t, out, `value="Test"`)
}

func TestErrorPages(t *testing.T) {
	out := render(t, PageNotFound, map[string]any{"request_path": "/nowhere/"})
	assert.Contains(t, out, "/nowhere/")

	out = render(t, PageServerErr, map[string]any{"request_id": "req-9"})
	assert.Contains(t, out, "req-9")
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "31 декабря 2023", formatDate(time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "", formatDate(time.Time{}))
	assert.Equal(t, "01 мая 2024 09:05", formatDateTime(time.Date(2024, time.May, 1, 9, 5, 0, 0, time.UTC)))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "короткий", truncate("короткий", 10))
	assert.Equal(t, "Тестов…", truncate("Тестовый текст", 7))
	assert.Equal(t, "", truncate("abc", 0))
}

func TestLinebreaksbr(t *testing.T) {
	assert.Equal(t, template.HTML("a<br>b<br>&lt;i&gt;"), linebreaksbr("a\r\nb\n<i>"))
}

func TestDict(t *testing.T) {
	m, err := dict("a", 1, "b", "two")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"a": 1, "b": "two"}, m)

	_, err = dict("a")
	assert.Error(t, err)

	_, err = dict(1, 2)
	assert.True(t, strings.Contains(err.Error(), "not a string"))
}
