package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yatube/backend/internal/application/identity"
	"github.com/yatube/backend/internal/application/posts"
	"github.com/yatube/backend/internal/domain/shared"
)

type MockUserAdmin struct {
	mock.Mock
}

func (m *MockUserAdmin) Create(ctx context.Context, input identity.CreateUserInput) (*identity.UserInfo, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.UserInfo), args.Error(1)
}

func (m *MockUserAdmin) Delete(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}

func (m *MockUserAdmin) SetPassword(ctx context.Context, username, password string) error {
	args := m.Called(ctx, username, password)
	return args.Error(0)
}

func (m *MockUserAdmin) SetActive(ctx context.Context, username string, active bool) error {
	args := m.Called(ctx, username, active)
	return args.Error(0)
}

type MockGroupAdmin struct {
	mock.Mock
}

func (m *MockGroupAdmin) Create(ctx context.Context, req posts.CreateGroupRequest) (*posts.GroupResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*posts.GroupResponse), args.Error(1)
}

func (m *MockGroupAdmin) Delete(ctx context.Context, slug string) error {
	args := m.Called(ctx, slug)
	return args.Error(0)
}

func (m *MockGroupAdmin) List(ctx context.Context) ([]posts.GroupResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]posts.GroupResponse), args.Error(1)
}

type fixture struct {
	users  *MockUserAdmin
	groups *MockGroupAdmin
	opened int
	closed int
}

func newFixture() *fixture {
	return &fixture{users: new(MockUserAdmin), groups: new(MockGroupAdmin)}
}

func (f *fixture) open(context.Context) (*App, func(), error) {
	f.opened++
	return &App{Users: f.users, Groups: f.groups}, func() { f.closed++ }, nil
}

func (f *fixture) run(stdin string, args ...string) (string, error) {
	cmd := NewRootCommand(f.open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCreateUser(t *testing.T) {
	t.Run("with password flag", func(t *testing.T) {
		f := newFixture()
		id := uuid.New()
		f.users.On("Create", mock.Anything, identity.CreateUserInput{
			Username:  "leo",
			Password:  "password123",
			FirstName: "Лев",
			LastName:  "Толстой",
		}).Return(&identity.UserInfo{ID: id, Username: "leo"}, nil)

		out, err := f.run("", "createuser", "leo", "--password", "password123", "--first-name", "Лев", "--last-name", "Толстой")

		require.NoError(t, err)
		assert.Contains(t, out, "Created user leo ("+id.String()+")")
		assert.Equal(t, 1, f.closed)
		f.users.AssertExpectations(t)
	})

	t.Run("password from stdin", func(t *testing.T) {
		f := newFixture()
		f.users.On("Create", mock.Anything, mock.MatchedBy(func(in identity.CreateUserInput) bool {
			return in.Username == "leo" && in.Password == "from-stdin"
		})).Return(&identity.UserInfo{ID: uuid.New(), Username: "leo"}, nil)

		_, err := f.run("from-stdin\n", "createuser", "leo", "--password-stdin")

		require.NoError(t, err)
		f.users.AssertExpectations(t)
	})

	t.Run("missing password never opens the database", func(t *testing.T) {
		f := newFixture()

		_, err := f.run("", "createuser", "leo")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "password is required")
		assert.Zero(t, f.opened)
	})

	t.Run("duplicate username", func(t *testing.T) {
		f := newFixture()
		f.users.On("Create", mock.Anything, mock.Anything).
			Return(nil, shared.NewDomainError("ALREADY_EXISTS", "A user with that username already exists"))

		_, err := f.run("", "createuser", "leo", "--password", "password123")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
		assert.Equal(t, 1, f.closed)
	})
}

func TestDeleteUser(t *testing.T) {
	f := newFixture()
	f.users.On("Delete", mock.Anything, "leo").Return(nil)

	out, err := f.run("", "deleteuser", "leo")

	require.NoError(t, err)
	assert.Contains(t, out, "Deleted user leo")
	f.users.AssertExpectations(t)
}

func TestDeleteUser_RequiresUsername(t *testing.T) {
	f := newFixture()

	_, err := f.run("", "deleteuser")

	require.Error(t, err)
	assert.Zero(t, f.opened)
}

func TestSetPassword(t *testing.T) {
	t.Run("with password flag", func(t *testing.T) {
		f := newFixture()
		f.users.On("SetPassword", mock.Anything, "leo", "NewPassword456").Return(nil)

		out, err := f.run("", "setpassword", "leo", "--password", "NewPassword456")

		require.NoError(t, err)
		assert.Contains(t, out, "Changed password of leo")
		assert.Equal(t, 1, f.closed)
		f.users.AssertExpectations(t)
	})

	t.Run("password from stdin", func(t *testing.T) {
		f := newFixture()
		f.users.On("SetPassword", mock.Anything, "leo", "from-stdin").Return(nil)

		_, err := f.run("from-stdin\r\n", "setpassword", "leo", "--password-stdin")

		require.NoError(t, err)
		f.users.AssertExpectations(t)
	})

	t.Run("missing password never opens the database", func(t *testing.T) {
		f := newFixture()

		_, err := f.run("", "setpassword", "leo")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "password is required")
		assert.Zero(t, f.opened)
	})

	t.Run("unknown user", func(t *testing.T) {
		f := newFixture()
		f.users.On("SetPassword", mock.Anything, "nobody", "NewPassword456").Return(shared.ErrNotFound)

		_, err := f.run("", "setpassword", "nobody", "--password", "NewPassword456")

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestSetActive(t *testing.T) {
	tests := []struct {
		command string
		active  bool
		want    string
	}{
		{"activate", true, "User leo is now active"},
		{"deactivate", false, "User leo is now inactive"},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			f := newFixture()
			f.users.On("SetActive", mock.Anything, "leo", tt.active).Return(nil)

			out, err := f.run("", tt.command, "leo")

			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
			f.users.AssertExpectations(t)
		})
	}
}

func TestCreateGroup(t *testing.T) {
	f := newFixture()
	f.groups.On("Create", mock.Anything, posts.CreateGroupRequest{
		Title:       "Лев Толстой",
		Slug:        "tolstoy",
		Description: "Группа любителей творчества",
	}).Return(&posts.GroupResponse{ID: 1, Title: "Лев Толстой", Slug: "tolstoy"}, nil)

	out, err := f.run("", "creategroup", "Лев Толстой", "--slug", "tolstoy", "--description", "Группа любителей творчества")

	require.NoError(t, err)
	assert.Contains(t, out, "/group/tolstoy/")
	f.groups.AssertExpectations(t)
}

func TestDeleteGroup(t *testing.T) {
	f := newFixture()
	f.groups.On("Delete", mock.Anything, "tolstoy").Return(shared.ErrNotFound)

	_, err := f.run("", "deletegroup", "tolstoy")

	assert.True(t, errors.Is(err, shared.ErrNotFound))
}

func TestGroups(t *testing.T) {
	f := newFixture()
	f.groups.On("List", mock.Anything).Return([]posts.GroupResponse{
		{ID: 1, Title: "Лев Толстой", Slug: "tolstoy"},
		{ID: 2, Title: "Чехов", Slug: "chekhov"},
	}, nil)

	out, err := f.run("", "groups")

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "SLUG")
	assert.Contains(t, lines[1], "tolstoy")
	assert.Contains(t, lines[2], "chekhov")
}

func TestOpenerFailure(t *testing.T) {
	cmd := NewRootCommand(func(context.Context) (*App, func(), error) {
		return nil, nil, errors.New("connection refused")
	})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"groups"})

	err := cmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
