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

// actionTokenRepository implements the domain.ActionTokenRepository interface.
type actionTokenRepository struct {
	db *gorm.DB
}

// NewActionTokenRepository is the constructor for actionTokenRepository.
func NewActionTokenRepository(db *gorm.DB) repository.ActionTokenRepository {
	return &actionTokenRepository{db: db}
}

// Create persists a new action token. The ON CONFLICT clause replaces any
// previous token for the same user and purpose, so resending a confirmation
// email invalidates the earlier link.
func (repo *actionTokenRepository) Create(ctx context.Context, token *entity.ActionToken) error {
	tokenM := model.ActionTokenModel{
		ID:        token.ID,
		UserID:    token.UserID,
		Purpose:   string(token.Purpose),
		TokenHash: token.TokenHash,
		ExpiresAt: token.ExpiresAt,
	}

	err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "purpose"}},
			DoUpdates: clause.AssignmentColumns([]string{"token_hash", "expires_at", "created_at"}),
		}).
		Create(&tokenM).Error
	if err != nil {
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrUserNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create action token")
	}

	token.ID = tokenM.ID
	token.CreatedAt = tokenM.CreatedAt

	return nil
}

// FindByHash retrieves a token by purpose, user, and stored hash.
func (repo *actionTokenRepository) FindByHash(ctx context.Context, userID uuid.UUID, purpose entity.ActionTokenPurpose, tokenHash string) (*entity.ActionToken, error) {
	var tokenM model.ActionTokenModel
	err := repo.db.WithContext(ctx).
		Where("user_id = ? AND purpose = ? AND token_hash = ?", userID, string(purpose), tokenHash).
		First(&tokenM).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrActionTokenNotFound
		}

		return nil, errors.Wrap(err, "failed to find action token")
	}

	return &entity.ActionToken{
		ID:        tokenM.ID,
		UserID:    tokenM.UserID,
		Purpose:   entity.ActionTokenPurpose(tokenM.Purpose),
		TokenHash: tokenM.TokenHash,
		ExpiresAt: tokenM.ExpiresAt,
		CreatedAt: tokenM.CreatedAt,
	}, nil
}

// Delete removes a token by ID, consuming it.
func (repo *actionTokenRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.ActionTokenModel{}).Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete action token")
	}

	return nil
}

// DeleteExpired removes all tokens whose expiry has passed.
func (repo *actionTokenRepository) DeleteExpired(ctx context.Context) error {
	err := repo.db.WithContext(ctx).
		Where("expires_at <= ?", time.Now()).
		Delete(&model.ActionTokenModel{}).Error
	if err != nil {
		return domainerrors.NewDatabaseExecuteError(err, "failed to delete expired action tokens")
	}

	return nil
}
