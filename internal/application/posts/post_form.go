package posts

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/yatube/backend/internal/domain/posts"
	"github.com/yatube/backend/internal/domain/shared"
)

// Post form field names
const (
	FieldText  = "text"
	FieldGroup = "group"
)

// Error messages shown next to post form fields
const (
	MsgRequired      = "This field is required."
	MsgInvalidChoice = "Select a valid choice. That choice is not one of the available choices."
)

// postFormFields is the part of the form checked by struct tags
type postFormFields struct {
	Text string `form:"text" validate:"required,max=10000"`
}

// PostFormValidator cleans and validates submitted post forms.
// It never writes anything.
type PostFormValidator struct {
	groupRepo posts.GroupRepository
	validate  *validator.Validate
}

// NewPostFormValidator creates a new PostFormValidator
func NewPostFormValidator(groupRepo posts.GroupRepository) *PostFormValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
	})
	return &PostFormValidator{
		groupRepo: groupRepo,
		validate:  v,
	}
}

// Validate returns the cleaned form or a *shared.ValidationError listing every failing field.
func (v *PostFormValidator) Validate(ctx context.Context, input PostInput) (*CleanedPost, error) {
	fieldErrors := make(shared.FieldErrors)

	fields := postFormFields{Text: strings.TrimSpace(input.Text)}
	if err := v.validate.Struct(fields); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return nil, err
		}
		for _, fe := range validationErrors {
			fieldErrors.Add(fe.Field(), fieldMessage(fe))
		}
	}

	cleaned := &CleanedPost{Text: fields.Text}
	group, err := v.cleanGroup(ctx, input.Group)
	if err != nil {
		if !errors.Is(err, shared.ErrInvalidInput) {
			return nil, err
		}
		fieldErrors.Add(FieldGroup, MsgInvalidChoice)
	}
	if group != nil {
		cleaned.Group = group
		cleaned.GroupID = &group.ID
	}

	if !fieldErrors.Empty() {
		return nil, shared.NewValidationError(fieldErrors)
	}
	return cleaned, nil
}

// cleanGroup resolves the group choice. An empty value means no group.
func (v *PostFormValidator) cleanGroup(ctx context.Context, raw string) (*posts.Group, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, shared.ErrInvalidInput
	}
	group, err := v.groupRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrInvalidInput
		}
		return nil, fmt.Errorf("load group %d: %w", id, err)
	}
	return group, nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return MsgRequired
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters (it has %d).",
			fe.Param(), utf8.RuneCountInString(fmt.Sprint(fe.Value())))
	default:
		return "Enter a valid value."
	}
}

// FormField is one rendered form input
type FormField struct {
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	HelpText string   `json:"help_text"`
	Value    string   `json:"value"`
	Errors   []string `json:"errors,omitempty"`
}

// GroupChoice is one option of the group select
type GroupChoice struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Selected bool   `json:"selected"`
}

// PostForm is the view model of the create and edit pages.
// NonFieldErrors hold messages about the form as a whole, such as a body
// that could not be parsed.
type PostForm struct {
	Text           FormField     `json:"text"`
	Group          FormField     `json:"group"`
	Choices        []GroupChoice `json:"choices"`
	NonFieldErrors []string      `json:"non_field_errors,omitempty"`
}

// NewPostForm builds the form view for input. errs may be nil.
func NewPostForm(input PostInput, errs shared.FieldErrors, groups []GroupResponse) PostForm {
	selected := strings.TrimSpace(input.Group)
	choices := make([]GroupChoice, len(groups))
	for i, g := range groups {
		choices[i] = GroupChoice{
			ID:       g.ID,
			Title:    g.Title,
			Selected: strconv.FormatInt(g.ID, 10) == selected,
		}
	}

	return PostForm{
		Text: FormField{
			Name:     FieldText,
			Label:    "Текст поста",
			HelpText: "Введите текст поста",
			Value:    input.Text,
			Errors:   errs.Get(FieldText),
		},
		Group: FormField{
			Name:     FieldGroup,
			Label:    "Группа",
			HelpText: "Выберите группу",
			Value:    selected,
			Errors:   errs.Get(FieldGroup),
		},
		Choices:        choices,
		NonFieldErrors: errs.Get(""),
	}
}

// HasErrors reports whether the form or any field carries an error
func (f PostForm) HasErrors() bool {
	return len(f.NonFieldErrors) > 0 || len(f.Text.Errors) > 0 || len(f.Group.Errors) > 0
}
