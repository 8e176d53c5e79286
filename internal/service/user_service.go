package service

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/AHMED-techNOP/01BLOG/internal/models"
	"github.com/AHMED-techNOP/01BLOG/internal/repository"
	"github.com/AHMED-techNOP/01BLOG/internal/validation"
)

// UserService covers registration, credential checks and the public user
// directory.
type UserService struct {
	userRepo repository.UserRepository
	subRepo  repository.SubscriptionRepository
}

func NewUserService(userRepo repository.UserRepository, subRepo repository.SubscriptionRepository) *UserService {
	return &UserService{userRepo: userRepo, subRepo: subRepo}
}

// RegisterInput is the sign-up payload.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// Register creates a new USER account with a bcrypt-hashed password.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))

	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: string(hash),
		Role:     models.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate checks credentials. The same Unauthenticated error covers an
// unknown email and a wrong password; banned accounts cannot log in.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthenticatedError("Invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthenticatedError("Invalid email or password")
	}
	if user.IsBanned {
		return nil, models.NewForbiddenError("Account is banned")
	}
	return user, nil
}

// UserProfile is a directory entry: the account plus its social counters.
type UserProfile struct {
	User            *models.User `json:"user"`
	SubscriberCount int64        `json:"subscriber_count"`
	IsSubscribed    bool         `json:"is_subscribed"`
}

// GetProfile returns one user's directory entry as seen by the viewer.
func (s *UserService) GetProfile(ctx context.Context, viewer *models.User, username string) (*UserProfile, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}

	count, err := s.subRepo.CountFollowers(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	profile := &UserProfile{User: user, SubscriberCount: count}
	if viewer != nil && viewer.ID != user.ID {
		subscribed, err := s.subRepo.Exists(ctx, viewer.ID, user.ID)
		if err != nil {
			return nil, err
		}
		profile.IsSubscribed = subscribed
	}
	return profile, nil
}

// ListUsers returns the paginated user directory with subscriber counts.
func (s *UserService) ListUsers(ctx context.Context, viewer *models.User, limit, offset int) ([]*UserProfile, error) {
	users, err := s.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	profiles := make([]*UserProfile, 0, len(users))
	for i := range users {
		u := users[i]
		count, err := s.subRepo.CountFollowers(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		p := &UserProfile{User: &u, SubscriberCount: count}
		if viewer != nil && viewer.ID != u.ID {
			subscribed, err := s.subRepo.Exists(ctx, viewer.ID, u.ID)
			if err != nil {
				return nil, err
			}
			p.IsSubscribed = subscribed
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}
