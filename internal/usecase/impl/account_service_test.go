package impl

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"boutique/config"
	domainerrors "boutique/internal/domain/errors"
	"boutique/internal/errors"
	"boutique/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type accountFixture struct {
	svc      usecase.AccountUsecase
	users    *fakeUserRepo
	sessions *fakeSessionRepo
	actions  *fakeActionRepo
	tokens   *fakeTokenService
	mail     *fakeMailSender
}

func newAccountFixture() *accountFixture {
	users := newFakeUserRepo()
	sessions := newFakeSessionRepo()
	actions := newFakeActionRepo()
	products := newFakeProductRepo()
	tokens := newFakeTokenService()
	mail := &fakeMailSender{}

	tx := &fakeTxManager{
		users:    users,
		sessions: sessions,
		actions:  actions,
		products: products,
		carts:    newFakeCartRepo(products),
	}

	svc := NewAccountService(AccountServiceParams{
		TxManager:    tx,
		UserRepo:     users,
		SessionRepo:  sessions,
		ActionRepo:   actions,
		Hasher:       fakeHasher{},
		TokenService: tokens,
		MailSender:   mail,
		Config: &config.Config{
			Mail: &config.MailConfig{
				APIBaseURL:  "https://api.shop.example.com",
				FrontendURL: "https://shop.example.com",
			},
		},
		Logger: discardLogger(),
	})

	return &accountFixture{
		svc:      svc,
		users:    users,
		sessions: sessions,
		actions:  actions,
		tokens:   tokens,
		mail:     mail,
	}
}

func registerInput(email string) usecase.RegisterInput {
	return usecase.RegisterInput{
		Email:     email,
		Password:  "StrongPass123",
		FirstName: "Jane",
		LastName:  "Doe",
	}
}

// registerConfirmed registers an account and walks the email confirmation
// flow, returning the user id.
func registerConfirmed(t *testing.T, f *accountFixture, email string) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	out, err := f.svc.Register(ctx, registerInput(email))
	require.NoError(t, err)

	token := extractMailToken(t, f)
	require.NoError(t, f.svc.ConfirmEmail(ctx, usecase.ConfirmEmailInput{
		UserID: out.User.ID,
		Token:  token,
	}))

	return out.User.ID
}

var mailTokenRe = regexp.MustCompile(`token=([^"&]+)`)

func extractMailToken(t *testing.T, f *accountFixture) string {
	t.Helper()
	f.mail.mu.Lock()
	defer f.mail.mu.Unlock()
	require.NotEmpty(t, f.mail.sent)

	last := f.mail.sent[len(f.mail.sent)-1]
	match := mailTokenRe.FindStringSubmatch(last.Body)
	require.Len(t, match, 2)

	return match[1]
}

func TestAccountService_RegisterSendsConfirmation(t *testing.T) {
	f := newAccountFixture()

	out, err := f.svc.Register(context.Background(), registerInput("jane@example.com"))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, out.User.ID)
	assert.False(t, out.User.EmailConfirmed)
	assert.Equal(t, 1, f.mail.sentCount())
}

func TestAccountService_RegisterDuplicateEmail(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()

	_, err := f.svc.Register(ctx, registerInput("jane@example.com"))
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, registerInput("jane@example.com"))
	assert.True(t, errors.Is(err, domainerrors.ErrUserAlreadyExists))
}

func TestAccountService_RegisterSurvivesMailOutage(t *testing.T) {
	// Mail delivery is best effort: the account still exists and can be
	// confirmed later via resend.
	f := newAccountFixture()
	f.mail.fail = true

	out, err := f.svc.Register(context.Background(), registerInput("jane@example.com"))
	require.NoError(t, err)
	assert.NotNil(t, out.User)
}

func TestAccountService_LoginSingleFailureOutcome(t *testing.T) {
	// Unknown email and wrong password must be indistinguishable.
	f := newAccountFixture()
	ctx := context.Background()
	registerConfirmed(t, f, "jane@example.com")

	_, errUnknown := f.svc.Login(ctx, usecase.LoginInput{Email: "nobody@example.com", Password: "StrongPass123"})
	_, errWrongPw := f.svc.Login(ctx, usecase.LoginInput{Email: "jane@example.com", Password: "WrongPass999"})

	assert.True(t, errors.Is(errUnknown, domainerrors.ErrInvalidCredentials))
	assert.True(t, errors.Is(errWrongPw, domainerrors.ErrInvalidCredentials))
}

func TestAccountService_LoginUnconfirmedEmail(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()

	_, err := f.svc.Register(ctx, registerInput("jane@example.com"))
	require.NoError(t, err)

	// Correct password, unconfirmed email.
	_, err = f.svc.Login(ctx, usecase.LoginInput{Email: "jane@example.com", Password: "StrongPass123"})
	assert.True(t, errors.Is(err, domainerrors.ErrEmailNotConfirmed))

	// Wrong password on an unconfirmed account reports invalid credentials,
	// not the confirmation state.
	_, err = f.svc.Login(ctx, usecase.LoginInput{Email: "jane@example.com", Password: "WrongPass999"})
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))
}

func TestAccountService_LoginIssuesSession(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	userID := registerConfirmed(t, f, "jane@example.com")

	pair, err := f.svc.Login(ctx, usecase.LoginInput{Email: "jane@example.com", Password: "StrongPass123"})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	session, err := f.sessions.FindByUserID(ctx, userID)
	require.NoError(t, err)
	// Only the hash is stored.
	assert.NotEqual(t, pair.RefreshToken, session.TokenHash)
	assert.Equal(t, f.tokens.HashRefreshToken(pair.RefreshToken), session.TokenHash)
	assert.True(t, session.ExpiresAt.After(time.Now()))
}

func TestAccountService_RefreshRotatesToken(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	registerConfirmed(t, f, "jane@example.com")

	pair, err := f.svc.Login(ctx, usecase.LoginInput{Email: "jane@example.com", Password: "StrongPass123"})
	require.NoError(t, err)

	next, err := f.svc.Refresh(ctx, usecase.RefreshInput{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// The old refresh token died at rotation.
	_, err = f.svc.Refresh(ctx, usecase.RefreshInput{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenInvalid))

	// The new one works.
	_, err = f.svc.Refresh(ctx, usecase.RefreshInput{
		AccessToken:  next.AccessToken,
		RefreshToken: next.RefreshToken,
	})
	assert.NoError(t, err)
}

func TestAccountService_RefreshKeepsAbsoluteExpiry(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	userID := registerConfirmed(t, f, "jane@example.com")

	pair, err := f.svc.Login(ctx, usecase.LoginInput{Email: "jane@example.com", Password: "StrongPass123"})
	require.NoError(t, err)

	before, err := f.sessions.FindByUserID(ctx, userID)
	require.NoError(t, err)

	_, err = f.svc.Refresh(ctx, usecase.RefreshInput{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
	require.NoError(t, err)

	after, err := f.sessions.FindByUserID(ctx, userID)
	require.NoError(t, err)
	assert.True(t, after.ExpiresAt.Equal(before.ExpiresAt), "rotation must not extend the session")
	assert.NotEqual(t, before.TokenHash, after.TokenHash)
}

func TestAccountService_RefreshRejectsExpiredSession(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	userID := registerConfirmed(t, f, "jane@example.com")

	pair, err := f.svc.Login(ctx, usecase.LoginInput{Email: "jane@example.com", Password: "StrongPass123"})
	require.NoError(t, err)

	session, err := f.sessions.FindByUserID(ctx, userID)
	require.NoError(t, err)
	session.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, f.sessions.Upsert(ctx, session))

	_, err = f.svc.Refresh(ctx, usecase.RefreshInput{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenInvalid))
}

func TestAccountService_ConcurrentRefreshSingleWinner(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	registerConfirmed(t, f, "jane@example.com")

	pair, err := f.svc.Login(ctx, usecase.LoginInput{Email: "jane@example.com", Password: "StrongPass123"})
	require.NoError(t, err)

	const attempts = 8
	var wg sync.WaitGroup
	results := make([]error, attempts)
	for i := range attempts {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, results[slot] = f.svc.Refresh(ctx, usecase.RefreshInput{
				AccessToken:  pair.AccessToken,
				RefreshToken: pair.RefreshToken,
			})
		}(i)
	}
	wg.Wait()

	var won, lost int
	for _, err := range results {
		if err == nil {
			won++
		} else {
			assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenInvalid))
			lost++
		}
	}
	assert.Equal(t, 1, won, "exactly one concurrent refresh may rotate")
	assert.Equal(t, attempts-1, lost)
}

func TestAccountService_LogoutEndsSession(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	userID := registerConfirmed(t, f, "jane@example.com")

	pair, err := f.svc.Login(ctx, usecase.LoginInput{Email: "jane@example.com", Password: "StrongPass123"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, userID))

	_, err = f.svc.Refresh(ctx, usecase.RefreshInput{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
	assert.True(t, errors.Is(err, domainerrors.ErrRefreshTokenInvalid))
}

func TestAccountService_ConfirmEmailSingleUse(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()

	out, err := f.svc.Register(ctx, registerInput("jane@example.com"))
	require.NoError(t, err)
	token := extractMailToken(t, f)

	input := usecase.ConfirmEmailInput{UserID: out.User.ID, Token: token}
	require.NoError(t, f.svc.ConfirmEmail(ctx, input))

	user, err := f.users.FindByID(ctx, out.User.ID)
	require.NoError(t, err)
	assert.True(t, user.EmailConfirmed)

	// Consumed tokens do not work twice.
	err = f.svc.ConfirmEmail(ctx, input)
	assert.True(t, errors.Is(err, domainerrors.ErrConfirmationFailed))
}

func TestAccountService_ResendInvalidatesPreviousToken(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()

	out, err := f.svc.Register(ctx, registerInput("jane@example.com"))
	require.NoError(t, err)
	firstToken := extractMailToken(t, f)

	require.NoError(t, f.svc.ResendConfirmation(ctx, usecase.ResendConfirmationInput{Email: "jane@example.com"}))
	secondToken := extractMailToken(t, f)
	require.NotEqual(t, firstToken, secondToken)

	err = f.svc.ConfirmEmail(ctx, usecase.ConfirmEmailInput{UserID: out.User.ID, Token: firstToken})
	assert.True(t, errors.Is(err, domainerrors.ErrConfirmationFailed))

	assert.NoError(t, f.svc.ConfirmEmail(ctx, usecase.ConfirmEmailInput{UserID: out.User.ID, Token: secondToken}))
}

func TestAccountService_ResendDoesNotLeakAccounts(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()

	// Unknown email succeeds without sending anything.
	require.NoError(t, f.svc.ResendConfirmation(ctx, usecase.ResendConfirmationInput{Email: "nobody@example.com"}))
	assert.Equal(t, 0, f.mail.sentCount())

	require.NoError(t, f.svc.ForgotPassword(ctx, usecase.ForgotPasswordInput{Email: "nobody@example.com"}))
	assert.Equal(t, 0, f.mail.sentCount())
}

func TestAccountService_ResetPasswordFlow(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	userID := registerConfirmed(t, f, "jane@example.com")

	// An active session must die with the old password.
	_, err := f.svc.Login(ctx, usecase.LoginInput{Email: "jane@example.com", Password: "StrongPass123"})
	require.NoError(t, err)

	require.NoError(t, f.svc.ForgotPassword(ctx, usecase.ForgotPasswordInput{Email: "jane@example.com"}))
	resetToken := extractMailToken(t, f)

	require.NoError(t, f.svc.ResetPassword(ctx, usecase.ResetPasswordInput{
		UserID:      userID,
		Token:       resetToken,
		NewPassword: "FreshPass456",
	}))

	_, err = f.sessions.FindByUserID(ctx, userID)
	assert.Error(t, err)

	_, err = f.svc.Login(ctx, usecase.LoginInput{Email: "jane@example.com", Password: "StrongPass123"})
	assert.True(t, errors.Is(err, domainerrors.ErrInvalidCredentials))

	_, err = f.svc.Login(ctx, usecase.LoginInput{Email: "jane@example.com", Password: "FreshPass456"})
	assert.NoError(t, err)

	// The reset token is single use.
	err = f.svc.ResetPassword(ctx, usecase.ResetPasswordInput{
		UserID:      userID,
		Token:       resetToken,
		NewPassword: "AnotherPass789",
	})
	assert.True(t, errors.Is(err, domainerrors.ErrResetTokenInvalid))
}

func TestAccountService_UpdateProfile(t *testing.T) {
	f := newAccountFixture()
	ctx := context.Background()
	userID := registerConfirmed(t, f, "jane@example.com")

	updated, err := f.svc.UpdateProfile(ctx, usecase.UpdateProfileInput{
		UserID:      userID,
		FirstName:   "Janet",
		LastName:    "Doe",
		PhoneNumber: "+123456789",
	})
	require.NoError(t, err)
	assert.Equal(t, "Janet", updated.FirstName)

	fetched, err := f.svc.GetProfile(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "Janet", fetched.FirstName)
	assert.Equal(t, "+123456789", fetched.PhoneNumber)
}
