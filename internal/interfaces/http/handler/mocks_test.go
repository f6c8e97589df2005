package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/yatube/backend/internal/application/identity"
	appposts "github.com/yatube/backend/internal/application/posts"
	"github.com/yatube/backend/internal/domain/shared"
	"github.com/yatube/backend/internal/infrastructure/auth"
	"github.com/yatube/backend/internal/interfaces/http/middleware"
	"github.com/yatube/backend/internal/interfaces/http/view"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// MockFeedReader is a mock implementation of FeedReader
type MockFeedReader struct {
	mock.Mock
}

func (m *MockFeedReader) Index(ctx context.Context, page string) (shared.Page[appposts.PostResponse], error) {
	args := m.Called(ctx, page)
	return args.Get(0).(shared.Page[appposts.PostResponse]), args.Error(1)
}

func (m *MockFeedReader) GroupFeed(ctx context.Context, slug, page string) (*appposts.GroupFeedResult, error) {
	args := m.Called(ctx, slug, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appposts.GroupFeedResult), args.Error(1)
}

func (m *MockFeedReader) ProfileFeed(ctx context.Context, username, page string) (*appposts.ProfileFeedResult, error) {
	args := m.Called(ctx, username, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appposts.ProfileFeedResult), args.Error(1)
}

func (m *MockFeedReader) PostDetail(ctx context.Context, id int64) (*appposts.PostDetailResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appposts.PostDetailResult), args.Error(1)
}

// MockPostWriter is a mock implementation of PostWriter
type MockPostWriter struct {
	mock.Mock
}

func (m *MockPostWriter) Create(ctx context.Context, authorID uuid.UUID, input appposts.PostInput) (*appposts.PostResponse, error) {
	args := m.Called(ctx, authorID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appposts.PostResponse), args.Error(1)
}

func (m *MockPostWriter) GetForEdit(ctx context.Context, requesterID uuid.UUID, postID int64) (*appposts.PostResponse, error) {
	args := m.Called(ctx, requesterID, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appposts.PostResponse), args.Error(1)
}

func (m *MockPostWriter) Edit(ctx context.Context, requesterID uuid.UUID, postID int64, input appposts.PostInput) (*appposts.PostResponse, error) {
	args := m.Called(ctx, requesterID, postID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appposts.PostResponse), args.Error(1)
}

// MockGroupLister is a mock implementation of GroupLister
type MockGroupLister struct {
	mock.Mock
}

func (m *MockGroupLister) List(ctx context.Context) ([]appposts.GroupResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]appposts.GroupResponse), args.Error(1)
}

// MockAuthenticator is a mock implementation of Authenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, input identity.LoginInput) (*identity.LoginResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.LoginResult), args.Error(1)
}

func (m *MockAuthenticator) Logout(ctx context.Context, input identity.LogoutInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

// MockPinger is a mock implementation of Pinger
type MockPinger struct {
	mock.Mock
}

func (m *MockPinger) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// testUser is the author the fake session signs in
type testUser struct {
	ID       uuid.UUID
	Username string
	JTI      string
	Expires  time.Time
}

func newTestUser(username string) testUser {
	return testUser{
		ID:       uuid.New(),
		Username: username,
		JTI:      uuid.NewString(),
		Expires:  time.Now().Add(time.Hour),
	}
}

// fakeSession stands in for middleware.Session. A nil user means anonymous.
func fakeSession(user *testUser) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user != nil {
			c.Set(middleware.SessionClaimsKey, &auth.Claims{
				RegisteredClaims: jwt.RegisteredClaims{
					ID:        user.JTI,
					ExpiresAt: jwt.NewNumericDate(user.Expires),
				},
				UserID:   user.ID.String(),
				Username: user.Username,
			})
		}
		c.Next()
	}
}

// newTestEngine returns an engine with the page templates and a fake session
func newTestEngine(t *testing.T, user *testUser) *gin.Engine {
	t.Helper()
	tmpl, err := view.Templates()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}
	engine := gin.New()
	engine.SetHTMLTemplate(tmpl)
	engine.Use(middleware.RequestID())
	engine.Use(fakeSession(user))
	return engine
}

func doGet(engine *gin.Engine, path string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func doPostForm(engine *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func samplePostResponse(id int64, author string) appposts.PostResponse {
	return appposts.PostResponse{
		ID:      id,
		Text:    "Тестовый текст",
		Summary: "Тестовый текст",
		PubDate: time.Date(2024, time.March, 8, 9, 0, 0, 0, time.UTC),
		Author:  appposts.AuthorResponse{ID: uuid.New(), Username: author, FullName: author},
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
