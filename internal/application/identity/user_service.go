package identity

import (
	"context"
	"time"

	"github.com/yatube/backend/internal/domain/identity"
	"github.com/yatube/backend/internal/domain/shared"
	"github.com/yatube/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// UserService manages author accounts
type UserService struct {
	userRepo   identity.UserRepository
	blacklist  auth.TokenBlacklist
	sessionTTL time.Duration
	logger     *zap.Logger
}

// NewUserService creates a new UserService.
// sessionTTL is how long issued session tokens stay valid; deleting a user
// revokes their sessions for that long.
func NewUserService(
	userRepo identity.UserRepository,
	blacklist auth.TokenBlacklist,
	sessionTTL time.Duration,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		blacklist:  blacklist,
		sessionTTL: sessionTTL,
		logger:     logger,
	}
}

// Create creates an active author account
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*UserInfo, error) {
	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A user with that username already exists")
	}

	user, err := identity.NewUser(input.Username, input.Password)
	if err != nil {
		return nil, err
	}
	if err := user.SetName(input.FirstName, input.LastName); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("User created",
		zap.String("username", user.Username),
		zap.String("user_id", user.ID.String()))

	info := ToUserInfo(user)
	return &info, nil
}

// Delete removes a user with every post they wrote and revokes their sessions
func (s *UserService) Delete(ctx context.Context, username string) error {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		return err
	}
	s.revokeSessions(ctx, user)

	s.logger.Info("User deleted",
		zap.String("username", username),
		zap.String("user_id", user.ID.String()))
	return nil
}

// SetPassword replaces the password of username and signs out their sessions
func (s *UserService) SetPassword(ctx context.Context, username, password string) error {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if err := user.SetPassword(password); err != nil {
		return err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	s.revokeSessions(ctx, user)

	s.logger.Info("User password changed",
		zap.String("username", username),
		zap.String("user_id", user.ID.String()))
	return nil
}

// SetActive allows or forbids username to log in.
// Deactivation also signs out the sessions already issued.
func (s *UserService) SetActive(ctx context.Context, username string, active bool) error {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if active {
		user.Activate()
	} else {
		user.Deactivate()
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	if !active {
		s.revokeSessions(ctx, user)
	}

	s.logger.Info("User activity changed",
		zap.String("username", username),
		zap.Bool("active", active))
	return nil
}

// revokeSessions invalidates every token issued to user so far.
// Failures are logged; the account change itself already happened.
func (s *UserService) revokeSessions(ctx context.Context, user *identity.User) {
	if s.blacklist == nil {
		return
	}
	if err := s.blacklist.AddUserTokensToBlacklist(ctx, user.ID.String(), s.sessionTTL); err != nil {
		s.logger.Error("Failed to revoke user sessions",
			zap.String("user_id", user.ID.String()),
			zap.Error(err))
	}
}

// GetByUsername returns the user with username, matched exactly
func (s *UserService) GetByUsername(ctx context.Context, username string) (*UserInfo, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	info := ToUserInfo(user)
	return &info, nil
}
