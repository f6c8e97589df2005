package posts

import (
	"context"

	"github.com/yatube/backend/internal/domain/posts"
	"github.com/yatube/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// GroupService handles group administration
type GroupService struct {
	groupRepo posts.GroupRepository
	logger    *zap.Logger
}

// NewGroupService creates a new GroupService
func NewGroupService(groupRepo posts.GroupRepository, logger *zap.Logger) *GroupService {
	return &GroupService{
		groupRepo: groupRepo,
		logger:    logger,
	}
}

// Create creates a new group
func (s *GroupService) Create(ctx context.Context, req CreateGroupRequest) (*GroupResponse, error) {
	group, err := posts.NewGroup(req.Title, req.Slug, req.Description)
	if err != nil {
		return nil, err
	}

	exists, err := s.groupRepo.ExistsBySlug(ctx, group.Slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Group with this slug already exists")
	}

	if err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, err
	}
	s.logger.Info("Group created", zap.String("slug", group.Slug), zap.Int64("group_id", group.ID))

	response := ToGroupResponse(group)
	return &response, nil
}

// Delete removes a group and every post filed under it
func (s *GroupService) Delete(ctx context.Context, slug string) error {
	group, err := s.groupRepo.FindBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if err := s.groupRepo.Delete(ctx, group.ID); err != nil {
		return err
	}
	s.logger.Info("Group deleted", zap.String("slug", slug))
	return nil
}

// List returns every group ordered by title
func (s *GroupService) List(ctx context.Context) ([]GroupResponse, error) {
	groups, err := s.groupRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return ToGroupResponses(groups), nil
}

// GetBySlug returns the group with slug
func (s *GroupService) GetBySlug(ctx context.Context, slug string) (*GroupResponse, error) {
	group, err := s.groupRepo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	response := ToGroupResponse(group)
	return &response, nil
}
