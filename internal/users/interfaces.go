package users

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/boosthq/boosthq-backend/pkg/db/models"
)

// Repository defines persistence operations for accounts and work sessions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) (int64, error)
	OpenSession(ctx context.Context, session *models.WorkSession) error
	FindOpenSession(ctx context.Context, userID uuid.UUID) (*models.WorkSession, error)
	CloseSession(ctx context.Context, sessionID uuid.UUID, logoutTime time.Time, durationMinutes int) error
}
