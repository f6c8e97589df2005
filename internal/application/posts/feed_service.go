package posts

import (
	"context"
	"fmt"

	"github.com/yatube/backend/internal/domain/identity"
	"github.com/yatube/backend/internal/domain/posts"
	"github.com/yatube/backend/internal/domain/shared"
	"github.com/yatube/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
)

// Feed names reported to metrics
const (
	FeedIndex   = "index"
	FeedGroup   = "group"
	FeedProfile = "profile"
)

// Metrics receives publishing events. *telemetry.BlogMetrics implements it.
type Metrics interface {
	PostCreated(ctx context.Context)
	PostEdited(ctx context.Context)
	EditDenied(ctx context.Context, reason string)
	ValidationFailed(ctx context.Context, field string)
	FeedServed(ctx context.Context, feed string)
}

// FeedService serves the paginated post listings and post detail
type FeedService struct {
	postRepo  posts.PostRepository
	groupRepo posts.GroupRepository
	userRepo  identity.UserRepository
	pageSize  int
	metrics   Metrics
}

// NewFeedService creates a new FeedService showing pageSize posts per page
func NewFeedService(
	postRepo posts.PostRepository,
	groupRepo posts.GroupRepository,
	userRepo identity.UserRepository,
	pageSize int,
) *FeedService {
	return &FeedService{
		postRepo:  postRepo,
		groupRepo: groupRepo,
		userRepo:  userRepo,
		pageSize:  pageSize,
	}
}

// SetMetrics sets the metrics collector
func (s *FeedService) SetMetrics(m Metrics) {
	s.metrics = m
}

// Index returns a page of every post, newest first
func (s *FeedService) Index(ctx context.Context, page string) (shared.Page[PostResponse], error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "feed", "index")
	defer span.End()

	result, err := s.listPage(ctx, span, posts.PostFilter{}, page)
	if err != nil {
		telemetry.RecordError(span, err)
		return shared.Page[PostResponse]{}, err
	}
	s.served(ctx, FeedIndex)
	return result, nil
}

// GroupFeed returns a page of the posts filed under the group with slug
func (s *FeedService) GroupFeed(ctx context.Context, slug, page string) (*GroupFeedResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "feed", "group", telemetry.SpanAttrGroupSlug, slug)
	defer span.End()

	group, err := s.groupRepo.FindBySlug(ctx, slug)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result, err := s.listPage(ctx, span, posts.ForGroup(group.ID), page)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.served(ctx, FeedGroup)

	return &GroupFeedResult{
		Group: ToGroupResponse(group),
		Page:  result,
	}, nil
}

// ProfileFeed returns a page of the posts written by username
func (s *FeedService) ProfileFeed(ctx context.Context, username, page string) (*ProfileFeedResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "feed", "profile", telemetry.SpanAttrUsername, username)
	defer span.End()

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	result, err := s.listPage(ctx, span, posts.ForAuthor(user.ID), page)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	s.served(ctx, FeedProfile)

	return &ProfileFeedResult{
		Author: AuthorResponse{
			ID:       user.ID,
			Username: user.Username,
			FullName: user.FullName(),
		},
		PostsCount: result.Count,
		Page:       result,
	}, nil
}

// PostDetail returns one post and how many posts its author has written
func (s *FeedService) PostDetail(ctx context.Context, id int64) (*PostDetailResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "feed", "post_detail", telemetry.SpanAttrPostID, id)
	defer span.End()

	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	count, err := s.postRepo.Count(ctx, posts.ForAuthor(post.AuthorID))
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("count author posts: %w", err)
	}

	return &PostDetailResult{
		Post:             ToPostResponse(post),
		AuthorPostsCount: count,
	}, nil
}

// ContentStats reports how many posts and groups exist
func (s *FeedService) ContentStats(ctx context.Context) (telemetry.ContentStats, error) {
	postCount, err := s.postRepo.Count(ctx, posts.PostFilter{})
	if err != nil {
		return telemetry.ContentStats{}, fmt.Errorf("count posts: %w", err)
	}
	groupCount, err := s.groupRepo.Count(ctx)
	if err != nil {
		return telemetry.ContentStats{}, fmt.Errorf("count groups: %w", err)
	}
	return telemetry.ContentStats{Posts: postCount, Groups: groupCount}, nil
}

func (s *FeedService) listPage(ctx context.Context, span trace.Span, filter posts.PostFilter, raw string) (shared.Page[PostResponse], error) {
	count, err := s.postRepo.Count(ctx, filter)
	if err != nil {
		return shared.Page[PostResponse]{}, fmt.Errorf("count posts: %w", err)
	}

	paginator := shared.NewPaginator(count, s.pageSize)
	number := paginator.Resolve(raw)
	telemetry.SetAttributes(span, telemetry.SpanAttrPage, number)

	var items []posts.Post
	if count > 0 {
		offset, limit := paginator.Bounds(number)
		items, err = s.postRepo.List(ctx, filter, offset, limit)
		if err != nil {
			return shared.Page[PostResponse]{}, fmt.Errorf("list posts: %w", err)
		}
	}

	page := shared.NewPage(items, number, paginator)
	return shared.MapPage(page, func(p posts.Post) PostResponse {
		return ToPostResponse(&p)
	}), nil
}

func (s *FeedService) served(ctx context.Context, feed string) {
	if s.metrics != nil {
		s.metrics.FeedServed(ctx, feed)
	}
}

var _ telemetry.ContentStatsProvider = (*FeedService)(nil)
