package posts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yatube/backend/internal/domain/identity"
	"github.com/yatube/backend/internal/domain/posts"
	"github.com/yatube/backend/internal/domain/shared"
	"github.com/yatube/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// Reasons an edit is refused, reported to metrics
const (
	DenyNotAuthor = "not_author"
	DenyNotFound  = "not_found"
)

// PostService handles writing and editing posts
type PostService struct {
	postRepo  posts.PostRepository
	userRepo  identity.UserRepository
	validator *PostFormValidator
	logger    *zap.Logger
	metrics   Metrics
	now       func() time.Time
}

// NewPostService creates a new PostService
func NewPostService(
	postRepo posts.PostRepository,
	userRepo identity.UserRepository,
	validator *PostFormValidator,
	logger *zap.Logger,
) *PostService {
	return &PostService{
		postRepo:  postRepo,
		userRepo:  userRepo,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
}

// SetMetrics sets the metrics collector
func (s *PostService) SetMetrics(m Metrics) {
	s.metrics = m
}

// SetClock replaces the publication clock
func (s *PostService) SetClock(now func() time.Time) {
	s.now = now
}

// Create publishes a new post written by authorID
func (s *PostService) Create(ctx context.Context, authorID uuid.UUID, input PostInput) (*PostResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "post", "create", telemetry.SpanAttrUserID, authorID.String())
	defer span.End()

	author, err := s.userRepo.FindByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrUnauthorized
		}
		telemetry.RecordError(span, err)
		return nil, err
	}
	if !author.IsActive {
		return nil, shared.ErrUnauthorized
	}

	cleaned, err := s.clean(ctx, input)
	if err != nil {
		return nil, err
	}

	post, err := posts.NewPost(author.ID, cleaned.Text, cleaned.GroupID, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("create post: %w", err)
	}
	post.Author = posts.Author{
		ID:        author.ID,
		Username:  author.Username,
		FirstName: author.FirstName,
		LastName:  author.LastName,
	}
	post.Group = cleaned.Group

	telemetry.SetAttributes(span, telemetry.SpanAttrPostID, post.ID)
	s.logger.Info("Post created",
		zap.Int64("post_id", post.ID),
		zap.String("author", author.Username),
	)
	if s.metrics != nil {
		s.metrics.PostCreated(ctx)
	}

	response := ToPostResponse(post)
	return &response, nil
}

// GetForEdit loads a post its author is about to edit
func (s *PostService) GetForEdit(ctx context.Context, requesterID uuid.UUID, postID int64) (*PostResponse, error) {
	post, err := s.loadOwned(ctx, requesterID, postID)
	if err != nil {
		return nil, err
	}
	response := ToPostResponse(post)
	return &response, nil
}

// Edit replaces the text and group of a post. Only its author may do this.
func (s *PostService) Edit(ctx context.Context, requesterID uuid.UUID, postID int64, input PostInput) (*PostResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "post", "edit",
		telemetry.SpanAttrPostID, postID,
		telemetry.SpanAttrUserID, requesterID.String(),
	)
	defer span.End()

	post, err := s.loadOwned(ctx, requesterID, postID)
	if err != nil {
		return nil, err
	}

	cleaned, err := s.clean(ctx, input)
	if err != nil {
		return nil, err
	}

	if err := post.Edit(cleaned.Text, cleaned.GroupID); err != nil {
		return nil, err
	}
	post.Group = cleaned.Group
	if err := s.postRepo.Update(ctx, post); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("update post: %w", err)
	}

	s.logger.Info("Post edited", zap.Int64("post_id", post.ID))
	if s.metrics != nil {
		s.metrics.PostEdited(ctx)
	}

	response := ToPostResponse(post)
	return &response, nil
}

func (s *PostService) loadOwned(ctx context.Context, requesterID uuid.UUID, postID int64) (*posts.Post, error) {
	post, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.denied(ctx, DenyNotFound)
		}
		return nil, err
	}
	if !post.IsAuthoredBy(requesterID) {
		s.denied(ctx, DenyNotAuthor)
		return nil, posts.ErrNotAuthor
	}
	return post, nil
}

func (s *PostService) clean(ctx context.Context, input PostInput) (*CleanedPost, error) {
	cleaned, err := s.validator.Validate(ctx, input)
	if err != nil {
		var ve *shared.ValidationError
		if errors.As(err, &ve) && s.metrics != nil {
			for field := range ve.Fields {
				s.metrics.ValidationFailed(ctx, field)
			}
		}
		return nil, err
	}
	return cleaned, nil
}

func (s *PostService) denied(ctx context.Context, reason string) {
	if s.metrics != nil {
		s.metrics.EditDenied(ctx, reason)
	}
}
