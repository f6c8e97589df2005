package posts

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yatube/backend/internal/domain/posts"
	"github.com/yatube/backend/internal/domain/shared"
)

func requireFieldErrors(t *testing.T, err error) shared.FieldErrors {
	t.Helper()
	var ve *shared.ValidationError
	require.True(t, errors.As(err, &ve), "expected validation error, got %v", err)
	return ve.Fields
}

func TestPostFormValidator_Validate(t *testing.T) {
	ctx := context.Background()
	group := &posts.Group{ID: 5, Title: "Тестовая группа", Slug: "test-slug"}

	t.Run("accepts text without group", func(t *testing.T) {
		groupRepo := new(MockGroupRepository)
		v := NewPostFormValidator(groupRepo)

		cleaned, err := v.Validate(ctx, PostInput{Text: "  Тестовый текст  "})

		require.NoError(t, err)
		assert.Equal(t, "Тестовый текст", cleaned.Text)
		assert.Nil(t, cleaned.GroupID)
		assert.Nil(t, cleaned.Group)
		groupRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("resolves existing group", func(t *testing.T) {
		groupRepo := new(MockGroupRepository)
		groupRepo.On("FindByID", ctx, int64(5)).Return(group, nil)
		v := NewPostFormValidator(groupRepo)

		cleaned, err := v.Validate(ctx, PostInput{Text: "text", Group: "5"})

		require.NoError(t, err)
		require.NotNil(t, cleaned.GroupID)
		assert.Equal(t, int64(5), *cleaned.GroupID)
		assert.Equal(t, group, cleaned.Group)
	})

	t.Run("rejects blank text", func(t *testing.T) {
		v := NewPostFormValidator(new(MockGroupRepository))

		_, err := v.Validate(ctx, PostInput{Text: " \n\t "})

		fields := requireFieldErrors(t, err)
		assert.Equal(t, []string{MsgRequired}, fields.Get(FieldText))
		assert.False(t, fields.Has(FieldGroup))
	})

	t.Run("rejects oversized text", func(t *testing.T) {
		v := NewPostFormValidator(new(MockGroupRepository))

		_, err := v.Validate(ctx, PostInput{Text: strings.Repeat("я", posts.MaxTextLength+1)})

		fields := requireFieldErrors(t, err)
		require.Len(t, fields.Get(FieldText), 1)
		assert.Equal(t, "Ensure this value has at most 10000 characters (it has 10001).", fields.Get(FieldText)[0])
	})

	t.Run("accepts text at the length limit", func(t *testing.T) {
		v := NewPostFormValidator(new(MockGroupRepository))

		_, err := v.Validate(ctx, PostInput{Text: strings.Repeat("я", posts.MaxTextLength)})

		assert.NoError(t, err)
	})

	t.Run("rejects non-integer group", func(t *testing.T) {
		groupRepo := new(MockGroupRepository)
		v := NewPostFormValidator(groupRepo)

		_, err := v.Validate(ctx, PostInput{Text: "text", Group: "test-slug"})

		fields := requireFieldErrors(t, err)
		assert.Equal(t, []string{MsgInvalidChoice}, fields.Get(FieldGroup))
		groupRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("rejects unknown group", func(t *testing.T) {
		groupRepo := new(MockGroupRepository)
		groupRepo.On("FindByID", ctx, int64(99)).Return(nil, shared.ErrNotFound)
		v := NewPostFormValidator(groupRepo)

		_, err := v.Validate(ctx, PostInput{Text: "text", Group: "99"})

		fields := requireFieldErrors(t, err)
		assert.Equal(t, []string{MsgInvalidChoice}, fields.Get(FieldGroup))
	})

	t.Run("reports every failing field", func(t *testing.T) {
		v := NewPostFormValidator(new(MockGroupRepository))

		_, err := v.Validate(ctx, PostInput{Text: "", Group: "x"})

		fields := requireFieldErrors(t, err)
		assert.True(t, fields.Has(FieldText))
		assert.True(t, fields.Has(FieldGroup))
	})

	t.Run("propagates repository failure", func(t *testing.T) {
		groupRepo := new(MockGroupRepository)
		groupRepo.On("FindByID", ctx, int64(5)).Return(nil, errors.New("connection reset"))
		v := NewPostFormValidator(groupRepo)

		_, err := v.Validate(ctx, PostInput{Text: "text", Group: "5"})

		require.Error(t, err)
		var ve *shared.ValidationError
		assert.False(t, errors.As(err, &ve))
		assert.Contains(t, err.Error(), "connection reset")
	})
}

func TestNewPostForm(t *testing.T) {
	groups := []GroupResponse{
		{ID: 1, Title: "Первая"},
		{ID: 2, Title: "Вторая"},
	}
	errs := shared.FieldErrors{FieldText: {MsgRequired}}

	form := NewPostForm(PostInput{Text: "", Group: "2"}, errs, groups)

	assert.Equal(t, "Текст поста", form.Text.Label)
	assert.Equal(t, "Введите текст поста", form.Text.HelpText)
	assert.Equal(t, "Группа", form.Group.Label)
	assert.Equal(t, "Выберите группу", form.Group.HelpText)
	assert.Equal(t, []string{MsgRequired}, form.Text.Errors)
	assert.Empty(t, form.Group.Errors)
	assert.True(t, form.HasErrors())
	require.Len(t, form.Choices, 2)
	assert.False(t, form.Choices[0].Selected)
	assert.True(t, form.Choices[1].Selected)

	blank := NewPostForm(PostInput{}, nil, nil)
	assert.False(t, blank.HasErrors())
	assert.Empty(t, blank.Choices)
	assert.Empty(t, blank.NonFieldErrors)
}

func TestNewPostForm_NonFieldErrors(t *testing.T) {
	errs := shared.FieldErrors{}
	errs.Add("", "The submitted form could not be read.")

	form := NewPostForm(PostInput{}, errs, nil)

	assert.Equal(t, []string{"The submitted form could not be read."}, form.NonFieldErrors)
	assert.Empty(t, form.Text.Errors)
	assert.Empty(t, form.Group.Errors)
	assert.True(t, form.HasErrors())
}
