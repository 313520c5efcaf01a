package biz

import (
	"context"
	"time"
)

// MaxUsernameLength is the longest username the identity service accepts
const MaxUsernameLength = 128

// User is the resolved owner identity
type User struct {
	ID          string
	Username    string
	Email       string
	IsSuperuser bool
	CreatedAt   time.Time
}

// UserRepo looks up users by username. Usernames are expected to be unique
// but the store tolerates duplicates; implementations must return matches in
// a deterministic order (oldest first) so callers taking the first match
// behave consistently.
type UserRepo interface {
	FindByUsername(ctx context.Context, username string) ([]*User, error)
}

// UserUseCase exposes owner resolution to other domains
type UserUseCase struct {
	repo UserRepo
}

// NewUserUseCase creates a user use case
func NewUserUseCase(repo UserRepo) *UserUseCase {
	return &UserUseCase{repo: repo}
}

// FindByUsername returns every user with the given username, oldest first
func (uc *UserUseCase) FindByUsername(ctx context.Context, username string) ([]*User, error) {
	return uc.repo.FindByUsername(ctx, username)
}
