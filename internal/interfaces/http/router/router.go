package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yatube/backend/internal/infrastructure/logger"
	"github.com/yatube/backend/internal/interfaces/http/handler"
	"github.com/yatube/backend/internal/interfaces/http/middleware"
	"github.com/yatube/backend/internal/interfaces/http/view"
	"go.uber.org/zap"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	registrars []RouteRegistrar
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine) *Router {
	return &Router{
		engine:     engine,
		registrars: make([]RouteRegistrar, 0),
	}
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes at the site root
func (r *Router) Setup() {
	root := &r.engine.RouterGroup
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(root)
	}
}

// DomainGroup collects the routes of one area of the site
type DomainGroup struct {
	name       string
	prefix     string
	routes     []routeDefinition
	subgroups  []*DomainGroup
	middleware []gin.HandlerFunc
}

type routeDefinition struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

// NewDomainGroup creates a new route group
func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{
		name:       name,
		prefix:     prefix,
		routes:     make([]routeDefinition, 0),
		subgroups:  make([]*DomainGroup, 0),
		middleware: make([]gin.HandlerFunc, 0),
	}
}

// Use adds middleware to this group
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

// GET registers a GET route
func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodGet, path, handlers)
}

// POST registers a POST route
func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.handle(http.MethodPost, path, handlers)
}

func (dg *DomainGroup) handle(method, path string, handlers []gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{
		method:   method,
		path:     path,
		handlers: handlers,
	})
	return dg
}

// Group creates a sub-group within this group
func (dg *DomainGroup) Group(name, prefix string) *DomainGroup {
	subgroup := NewDomainGroup(name, prefix)
	dg.subgroups = append(dg.subgroups, subgroup)
	return subgroup
}

// RegisterRoutes implements RouteRegistrar interface
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix)
	if len(dg.middleware) > 0 {
		group.Use(dg.middleware...)
	}

	for _, route := range dg.routes {
		group.Handle(route.method, route.path, route.handlers...)
	}

	for _, subgroup := range dg.subgroups {
		subgroup.RegisterRoutes(group)
	}
}

// Name returns the group name
func (dg *DomainGroup) Name() string {
	return dg.name
}

// Prefix returns the group prefix
func (dg *DomainGroup) Prefix() string {
	return dg.prefix
}

// Config holds what the engine needs besides the handlers
type Config struct {
	Logger         *zap.Logger
	Session        middleware.SessionConfig
	Tracing        middleware.TracingConfig
	Metrics        middleware.HTTPMetricsConfig
	Security       middleware.SecurityConfig
	MaxBodySize    int64
	TrustedProxies []string
	// LoginLimiter throttles POST /auth/login/ per client IP. Nil disables it.
	LoginLimiter *middleware.RateLimiter
	LoginURL     string
}

// Handlers are the page handlers mounted by NewEngine
type Handlers struct {
	Posts  *handler.PostHandler
	Auth   *handler.AuthHandler
	About  *handler.AboutHandler
	System *handler.SystemHandler
}

// NewEngine builds the gin engine serving the whole site
func NewEngine(cfg Config, h Handlers) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	loginURL := cfg.LoginURL
	if loginURL == "" {
		loginURL = handler.DefaultLoginURL
	}

	tmpl, err := view.Templates()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("set trusted proxies: %w", err)
	}
	engine.SetHTMLTemplate(tmpl)
	middleware.SetupValidator()

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.SecureWithConfig(cfg.Security),
		middleware.TracingWithConfig(cfg.Tracing),
		middleware.SpanErrorMarker(),
		middleware.HTTPMetrics(cfg.Metrics),
		middleware.Session(cfg.Session),
		middleware.TracingAttributeInjector(),
	)
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}

	for _, b := range []*handler.BaseHandler{&h.Posts.BaseHandler, &h.Auth.BaseHandler, &h.About.BaseHandler, &h.System.BaseHandler} {
		b.LoginURL = loginURL
	}

	r := NewRouter(engine)
	r.Register(postRoutes(h.Posts, loginURL))
	r.Register(authRoutes(h.Auth, cfg.LoginLimiter))
	r.Register(aboutRoutes(h.About))
	r.Register(systemRoutes(h.System))
	r.Setup()

	engine.NoRoute(h.Posts.NoRoute)
	return engine, nil
}

func postRoutes(h *handler.PostHandler, loginURL string) *DomainGroup {
	posts := NewDomainGroup("posts", "")
	posts.GET("/", h.Index).
		GET("/group/:slug/", h.GroupPosts).
		GET("/profile/:username/", h.Profile).
		GET("/posts/:post_id/", h.PostDetail)

	posts.Group("publishing", "").
		Use(middleware.RequireLogin(loginURL)).
		GET("/create/", h.CreateForm).
		POST("/create/", h.Create).
		GET("/posts/:post_id/edit/", h.EditForm).
		POST("/posts/:post_id/edit/", h.Edit)
	return posts
}

func authRoutes(h *handler.AuthHandler, limiter *middleware.RateLimiter) *DomainGroup {
	login := []gin.HandlerFunc{h.Login}
	if limiter != nil {
		login = append([]gin.HandlerFunc{middleware.LoginRateLimit(limiter)}, login...)
	}

	return NewDomainGroup("auth", "/auth").
		GET("/login/", h.LoginForm).
		POST("/login/", login...).
		GET("/logout/", h.Logout).
		POST("/logout/", h.Logout)
}

func aboutRoutes(h *handler.AboutHandler) *DomainGroup {
	return NewDomainGroup("about", "/about").
		GET("/author/", h.Author).
		GET("/tech/", h.Tech)
}

func systemRoutes(h *handler.SystemHandler) *DomainGroup {
	return NewDomainGroup("system", "").
		GET("/health", h.Health).
		GET("/system/info", h.GetSystemInfo)
}
