package data

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/relocity/relocation-backend/internal/pkg/database"
	"github.com/relocity/relocation-backend/internal/user/biz"
)

// UserPO is the users table model
type UserPO struct {
	ID          string    `gorm:"type:uuid;primarykey;default:gen_random_uuid()"`
	Username    string    `gorm:"column:username;size:128;not null;index:idx_users_username"`
	Email       string    `gorm:"column:email;size:255"`
	IsSuperuser bool      `gorm:"column:is_superuser;not null;default:false"`
	CreatedAt   time.Time `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
}

func (UserPO) TableName() string {
	return "users"
}

// Migrate creates the users table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&UserPO{}); err != nil {
		return fmt.Errorf("failed to migrate user tables: %w", err)
	}
	return nil
}

// UserRepo is the gorm-backed user repository
type UserRepo struct {
	db *database.DB
}

// NewUserRepo creates a user repository
func NewUserRepo(db *database.DB) *UserRepo {
	return &UserRepo{db: db}
}

// FindByUsername returns all users with the given username. Ordering by
// created_at then id keeps "first match" deterministic when duplicates exist.
func (r *UserRepo) FindByUsername(ctx context.Context, username string) ([]*biz.User, error) {
	var pos []UserPO
	err := r.db.WithContext(ctx).GetDB().
		Where("username = ?", username).
		Order("created_at ASC, id ASC").
		Find(&pos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find users by username: %w", err)
	}

	users := make([]*biz.User, len(pos))
	for i, po := range pos {
		users[i] = &biz.User{
			ID:          po.ID,
			Username:    po.Username,
			Email:       po.Email,
			IsSuperuser: po.IsSuperuser,
			CreatedAt:   po.CreatedAt,
		}
	}

	return users, nil
}
