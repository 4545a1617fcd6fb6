package postgres

import (
	"context"
	"time"

	"boutique/internal/domain/entity"
	domainerrors "boutique/internal/domain/errors"
	"boutique/internal/domain/repository"
	"boutique/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// refreshSessionRepository implements the domain.RefreshSessionRepository interface.
type refreshSessionRepository struct {
	db *gorm.DB
}

// NewRefreshSessionRepository is the constructor for refreshSessionRepository.
func NewRefreshSessionRepository(db *gorm.DB) repository.RefreshSessionRepository {
	return &refreshSessionRepository{db: db}
}

// FindByUserID retrieves the session row for a user, expired or not.
func (repo *refreshSessionRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.RefreshSession, error) {
	var sessionM model.RefreshSessionModel
	err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&sessionM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRefreshSessionNotFound
		}

		return nil, errors.Wrap(err, "failed to find refresh session")
	}

	return toRefreshSessionDomain(&sessionM), nil
}

// Upsert installs the given hash and expiry for the user, replacing any
// previous row. The ON CONFLICT clause makes login and rotation the same
// write: one row per user, last writer wins.
func (repo *refreshSessionRepository) Upsert(ctx context.Context, session *entity.RefreshSession) error {
	sessionM := model.RefreshSessionModel{
		UserID:    session.UserID,
		TokenHash: session.TokenHash,
		ExpiresAt: session.ExpiresAt,
	}

	err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"token_hash", "expires_at", "updated_at"}),
		}).
		Create(&sessionM).Error
	if err != nil {
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrUserNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to upsert refresh session")
	}

	return nil
}

// DeleteByUserID drops the user's session, ending it immediately.
func (repo *refreshSessionRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) error {
	err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&model.RefreshSessionModel{}).Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete refresh session")
	}

	return nil
}

// DeleteExpired removes all sessions whose expiry has passed.
func (repo *refreshSessionRepository) DeleteExpired(ctx context.Context) error {
	err := repo.db.WithContext(ctx).
		Where("expires_at <= ?", time.Now()).
		Delete(&model.RefreshSessionModel{}).Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete expired refresh sessions")
	}

	return nil
}

func toRefreshSessionDomain(data *model.RefreshSessionModel) *entity.RefreshSession {
	if data == nil {
		return nil
	}

	return &entity.RefreshSession{
		UserID:    data.UserID,
		TokenHash: data.TokenHash,
		ExpiresAt: data.ExpiresAt,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}
