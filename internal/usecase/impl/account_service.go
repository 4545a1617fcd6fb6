// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"boutique/config"
	deliverycontext "boutique/internal/delivery/context"
	"boutique/internal/domain/entity"
	domainerrors "boutique/internal/domain/errors"
	"boutique/internal/domain/repository"
	"boutique/internal/domain/service"
	"boutique/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const (
	confirmEmailTokenTTL  = 24 * time.Hour
	resetPasswordTokenTTL = time.Hour
)

// accountService implements the AccountUsecase interface.
type accountService struct {
	txManager    repository.TransactionManager
	userRepo     repository.UserRepository
	sessionRepo  repository.RefreshSessionRepository
	actionRepo   repository.ActionTokenRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	mailSender   service.MailSender
	apiBaseURL   string
	frontendURL  string
	logger       *slog.Logger

	// refreshLocks serializes refresh rotation per user, so two concurrent
	// refreshes with the same token cannot both rotate. The loser re-reads
	// the session and fails the hash comparison.
	refreshLocks sync.Map // uuid.UUID -> *sync.Mutex
}

// AccountServiceParams holds dependencies for accountService, injected by Fx.
type AccountServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	UserRepo     repository.UserRepository
	SessionRepo  repository.RefreshSessionRepository
	ActionRepo   repository.ActionTokenRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	MailSender   service.MailSender
	Config       *config.Config
	Logger       *slog.Logger
}

// NewAccountService is the constructor for accountService. It receives all dependencies as interfaces.
func NewAccountService(params AccountServiceParams) usecase.AccountUsecase {
	apiBaseURL := ""
	frontendURL := ""
	if params.Config != nil && params.Config.Mail != nil {
		apiBaseURL = params.Config.Mail.APIBaseURL
		frontendURL = params.Config.Mail.FrontendURL
	}

	return &accountService{
		txManager:    params.TxManager,
		userRepo:     params.UserRepo,
		sessionRepo:  params.SessionRepo,
		actionRepo:   params.ActionRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		mailSender:   params.MailSender,
		apiBaseURL:   apiBaseURL,
		frontendURL:  frontendURL,
		logger:       params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register creates an account with the visitor role and emails a
// confirmation link. Mail delivery is best effort: the account exists either
// way and the user can ask for a resend.
func (srv *accountService) Register(ctx context.Context, input usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	srv.log(ctx).Info("Starting registration", slog.String("email", input.Email))

	if err := srv.hasher.ValidateStrength(input.Password); err != nil {
		return nil, err
	}

	hashedPassword, err := srv.hasher.Hash(input.Password)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}

	user := &entity.User{
		Email:       input.Email,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		PhoneNumber: input.PhoneNumber,
		DateOfBirth: input.DateOfBirth,
		Roles:       entity.Roles{entity.RoleVisitor},
	}
	credential := &entity.Credential{PasswordHash: hashedPassword}

	var confirmToken string
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.UserRepo().Create(ctx, user, credential); err != nil {
			if errors.Is(err, repository.ErrEmailTaken) {
				return domainerrors.ErrUserAlreadyExists
			}

			return err
		}

		token, err := srv.issueActionToken(ctx, repoFactory.ActionTokenRepo(), user.ID, entity.PurposeConfirmEmail, confirmEmailTokenTTL)
		if err != nil {
			return err
		}
		confirmToken = token

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Registration failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, err
	}

	srv.sendConfirmationMail(ctx, user, confirmToken)

	srv.log(ctx).Debug("Registration completed", slog.Any("userID", user.ID))

	return &usecase.RegisterOutput{User: user}, nil
}

// Login verifies credentials and issues a token pair. Unknown email and wrong
// password produce the same error; the confirmed-email check runs only after
// the password has verified, so the error never leaks account existence.
func (srv *accountService) Login(ctx context.Context, input usecase.LoginInput) (*usecase.TokenPairOutput, error) {
	user, err := srv.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrInvalidCredentials
		}

		return nil, err
	}

	credential, err := srv.userRepo.FindCredential(ctx, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrInvalidCredentials
		}

		return nil, err
	}

	if !srv.hasher.Check(input.Password, credential.PasswordHash) {
		srv.log(ctx).Warn("Login failed", slog.Any("userID", user.ID))

		return nil, domainerrors.ErrInvalidCredentials
	}

	if !user.EmailConfirmed {
		return nil, domainerrors.ErrEmailNotConfirmed
	}

	pair, err := srv.issueSession(ctx, user, time.Now().Add(srv.tokenService.RefreshTokenDuration()))
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Login succeeded", slog.Any("userID", user.ID))

	return pair, nil
}

// Refresh rotates the refresh token. The presented pair must match: the
// access token (expiry ignored) names the user, and the refresh token's hash
// must equal the stored one. A successful rotation replaces the hash but
// keeps the expiry anchored at login.
func (srv *accountService) Refresh(ctx context.Context, input usecase.RefreshInput) (*usecase.TokenPairOutput, error) {
	claims, err := srv.tokenService.ClaimsFromExpiredToken(input.AccessToken)
	if err != nil {
		return nil, domainerrors.ErrRefreshTokenInvalid
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, domainerrors.ErrRefreshTokenInvalid
	}

	lock := srv.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	session, err := srv.sessionRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrRefreshSessionNotFound) {
			return nil, domainerrors.ErrRefreshTokenInvalid
		}

		return nil, err
	}

	presentedHash := srv.tokenService.HashRefreshToken(input.RefreshToken)
	if subtle.ConstantTimeCompare([]byte(presentedHash), []byte(session.TokenHash)) != 1 {
		srv.log(ctx).Warn("Refresh token mismatch", slog.Any("userID", userID))

		return nil, domainerrors.ErrRefreshTokenInvalid
	}
	if !session.Active(time.Now()) {
		return nil, domainerrors.ErrRefreshTokenInvalid
	}

	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrRefreshTokenInvalid
		}

		return nil, err
	}

	pair, err := srv.issueSession(ctx, user, session.ExpiresAt)
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Debug("Refresh token rotated", slog.Any("userID", userID))

	return pair, nil
}

// Logout ends the user's refresh session.
func (srv *accountService) Logout(ctx context.Context, userID uuid.UUID) error {
	if err := srv.sessionRepo.DeleteByUserID(ctx, userID); err != nil {
		return err
	}

	srv.log(ctx).Info("Logout", slog.Any("userID", userID))

	return nil
}

// ConfirmEmail consumes a confirmation token and marks the email verified.
func (srv *accountService) ConfirmEmail(ctx context.Context, input usecase.ConfirmEmailInput) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		tokenHash := srv.tokenService.HashRefreshToken(input.Token)
		token, err := repoFactory.ActionTokenRepo().FindByHash(ctx, input.UserID, entity.PurposeConfirmEmail, tokenHash)
		if err != nil {
			return domainerrors.ErrConfirmationFailed
		}
		if time.Now().After(token.ExpiresAt) {
			return domainerrors.ErrConfirmationFailed
		}

		if err := repoFactory.ActionTokenRepo().Delete(ctx, token.ID); err != nil {
			return err
		}

		return repoFactory.UserRepo().MarkEmailConfirmed(ctx, input.UserID)
	})
	if err != nil {
		srv.log(ctx).Warn("Email confirmation failed", slog.Any("userID", input.UserID), slog.Any("error", err))

		return err
	}

	srv.log(ctx).Info("Email confirmed", slog.Any("userID", input.UserID))

	return nil
}

// ResendConfirmation emails a fresh confirmation link. Unknown or already
// confirmed emails return success without sending, so the endpoint cannot be
// used to enumerate accounts.
func (srv *accountService) ResendConfirmation(ctx context.Context, input usecase.ResendConfirmationInput) error {
	user, err := srv.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil
		}

		return err
	}
	if user.EmailConfirmed {
		return nil
	}

	token, err := srv.issueActionToken(ctx, srv.actionRepo, user.ID, entity.PurposeConfirmEmail, confirmEmailTokenTTL)
	if err != nil {
		return err
	}

	srv.sendConfirmationMail(ctx, user, token)

	return nil
}

// ForgotPassword emails a reset link, with the same account-probing guard as
// ResendConfirmation.
func (srv *accountService) ForgotPassword(ctx context.Context, input usecase.ForgotPasswordInput) error {
	user, err := srv.userRepo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil
		}

		return err
	}

	token, err := srv.issueActionToken(ctx, srv.actionRepo, user.ID, entity.PurposeResetPassword, resetPasswordTokenTTL)
	if err != nil {
		return err
	}

	link := srv.actionLink(srv.frontendURL, "/reset-password", user.ID, token)
	srv.sendMail(ctx, user, "Reset your password", fmt.Sprintf(
		"<p>Hello %s,</p><p>Click <a href=%q>here</a> to reset your password. The link expires in one hour.</p>",
		user.FullName(), link,
	))

	return nil
}

// ResetPassword consumes a reset token, installs the new password, and ends
// any refresh session so stolen tokens die with the old password.
func (srv *accountService) ResetPassword(ctx context.Context, input usecase.ResetPasswordInput) error {
	if err := srv.hasher.ValidateStrength(input.NewPassword); err != nil {
		return err
	}

	hashedPassword, err := srv.hasher.Hash(input.NewPassword)
	if err != nil {
		return errors.Wrap(err, "failed to hash password")
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		tokenHash := srv.tokenService.HashRefreshToken(input.Token)
		token, err := repoFactory.ActionTokenRepo().FindByHash(ctx, input.UserID, entity.PurposeResetPassword, tokenHash)
		if err != nil {
			return domainerrors.ErrResetTokenInvalid
		}
		if time.Now().After(token.ExpiresAt) {
			return domainerrors.ErrResetTokenInvalid
		}

		if err := repoFactory.ActionTokenRepo().Delete(ctx, token.ID); err != nil {
			return err
		}

		if err := repoFactory.UserRepo().UpdateCredential(ctx, &entity.Credential{
			UserID:       input.UserID,
			PasswordHash: hashedPassword,
		}); err != nil {
			return err
		}

		return repoFactory.RefreshSessionRepo().DeleteByUserID(ctx, input.UserID)
	})
	if err != nil {
		srv.log(ctx).Warn("Password reset failed", slog.Any("userID", input.UserID), slog.Any("error", err))

		return err
	}

	srv.log(ctx).Info("Password reset", slog.Any("userID", input.UserID))

	return nil
}

// GetProfile returns the account's profile.
func (srv *accountService) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}

		return nil, err
	}

	return user, nil
}

// UpdateProfile modifies the editable profile fields.
func (srv *accountService) UpdateProfile(ctx context.Context, input usecase.UpdateProfileInput) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domainerrors.ErrUserNotFound
		}

		return nil, err
	}

	user.FirstName = input.FirstName
	user.LastName = input.LastName
	user.PhoneNumber = input.PhoneNumber
	user.DateOfBirth = input.DateOfBirth

	if err := srv.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// issueSession creates a token pair and installs the refresh hash with the
// given expiry. Login passes a fresh deadline; rotation passes the stored one.
func (srv *accountService) issueSession(ctx context.Context, user *entity.User, expiresAt time.Time) (*usecase.TokenPairOutput, error) {
	accessToken, refreshToken, err := srv.tokenService.IssueTokenPair(user, user.Roles.ToStrings())
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue token pair")
	}

	err = srv.sessionRepo.Upsert(ctx, &entity.RefreshSession{
		UserID:    user.ID,
		TokenHash: srv.tokenService.HashRefreshToken(refreshToken),
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return nil, err
	}

	return &usecase.TokenPairOutput{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// issueActionToken generates an opaque token, stores its hash, and returns
// the raw value for the email link.
func (srv *accountService) issueActionToken(ctx context.Context, repo repository.ActionTokenRepository, userID uuid.UUID, purpose entity.ActionTokenPurpose, ttl time.Duration) (string, error) {
	raw, err := srv.tokenService.NewOpaqueToken()
	if err != nil {
		return "", err
	}

	err = repo.Create(ctx, &entity.ActionToken{
		UserID:    userID,
		Purpose:   purpose,
		TokenHash: srv.tokenService.HashRefreshToken(raw),
		ExpiresAt: time.Now().Add(ttl),
	})
	if err != nil {
		return "", err
	}

	return raw, nil
}

// sendConfirmationMail links directly to the API's confirmation endpoint; a
// single click completes the flow without a frontend page.
func (srv *accountService) sendConfirmationMail(ctx context.Context, user *entity.User, token string) {
	link := srv.actionLink(srv.apiBaseURL, "/accounts/email-confirmation", user.ID, token)
	srv.sendMail(ctx, user, "Confirm your email", fmt.Sprintf(
		"<p>Hello %s,</p><p>Click <a href=%q>here</a> to confirm your email address.</p>",
		user.FullName(), link,
	))
}

func (srv *accountService) sendMail(ctx context.Context, user *entity.User, subject, body string) {
	err := srv.mailSender.Send(ctx, service.MailMessage{
		ToEmail:  user.Email,
		ToName:   user.FullName(),
		Subject:  subject,
		HTMLBody: body,
	})
	if err != nil {
		srv.log(ctx).Warn("Mail delivery failed",
			slog.Any("userID", user.ID),
			slog.String("subject", subject),
			slog.Any("error", err),
		)
	}
}

func (srv *accountService) actionLink(base, path string, userID uuid.UUID, token string) string {
	query := url.Values{
		"userId": {userID.String()},
		"token":  {token},
	}

	return base + path + "?" + query.Encode()
}

func (srv *accountService) userLock(userID uuid.UUID) *sync.Mutex {
	lock, _ := srv.refreshLocks.LoadOrStore(userID, &sync.Mutex{})

	return lock.(*sync.Mutex)
}
