package service

import (
	"context"

	"github.com/foyerapp/foyer-backend/internal/domain"
	"github.com/google/uuid"
)

// UserService handles user resolution and profile reads
type UserService struct {
	userRepo domain.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo domain.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// ResolveUser returns the local user ID for an Auth0 subject, creating
// the user on first sight
func (s *UserService) ResolveUser(ctx context.Context, auth0ID, email string, name *string) (uuid.UUID, error) {
	user, err := s.userRepo.CreateOrGetByAuth0ID(ctx, auth0ID, email, name)
	if err != nil {
		return uuid.Nil, err
	}
	return user.ID, nil
}

// GetProfile retrieves the user's profile
func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}
