// AngelaMos | 2026
// service_test.go

package auth

import (
	"context"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/kandi-backend/internal/config"
	"github.com/carterperez-dev/kandi-backend/internal/core"
	"github.com/carterperez-dev/kandi-backend/internal/notify"
)

type fakeOTPRepository struct {
	mu      sync.Mutex
	records map[string]*otpRecord
}

func newFakeOTPRepository() *fakeOTPRepository {
	return &fakeOTPRepository{records: map[string]*otpRecord{}}
}

func (r *fakeOTPRepository) Save(_ context.Context, id string, rec *otpRecord, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[id] = rec
	return nil
}

func (r *fakeOTPRepository) Find(_ context.Context, id string) (*otpRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	return rec, nil
}

func (r *fakeOTPRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, id)
	return nil
}

type fakeUsers struct {
	byEmail map[string]*UserInfo
}

func (u *fakeUsers) GetByEmail(_ context.Context, email string) (*UserInfo, error) {
	if user, ok := u.byEmail[email]; ok {
		return user, nil
	}
	return nil, core.ErrNotFound
}

func (u *fakeUsers) GetByID(_ context.Context, id string) (*UserInfo, error) {
	for _, user := range u.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, core.ErrNotFound
}

func (u *fakeUsers) Create(_ context.Context, email, hash, name string) (*UserInfo, error) {
	if _, ok := u.byEmail[email]; ok {
		return nil, core.ErrDuplicateKey
	}
	user := &UserInfo{
		ID:           core.NewID(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         "Customer",
		Status:       statusActive,
	}
	u.byEmail[email] = user
	return user, nil
}

func (u *fakeUsers) UpdatePassword(_ context.Context, id, hash string) error {
	for _, user := range u.byEmail {
		if user.ID == id {
			user.PasswordHash = hash
			return nil
		}
	}
	return core.ErrNotFound
}

type captureNotifier struct {
	sent []notify.Email
}

func (n *captureNotifier) Notify(_ context.Context, email notify.Email) {
	n.sent = append(n.sent, email)
}

func newTestJWT(t *testing.T) (*JWTManager, config.JWTConfig) {
	t.Helper()

	dir := t.TempDir()
	cfg := config.JWTConfig{
		PrivateKeyPath:    filepath.Join(dir, "private.pem"),
		PublicKeyPath:     filepath.Join(dir, "public.pem"),
		AccessTokenExpire: time.Hour,
		ResetTokenExpire:  15 * time.Minute,
		Issuer:            "kandi-test",
		Audience:          "kandi-test-api",
	}
	require.NoError(t, GenerateKeyPair(cfg.PrivateKeyPath, cfg.PublicKeyPath))

	m, err := NewJWTManager(cfg)
	require.NoError(t, err)
	return m, cfg
}

type authFixture struct {
	service  *Service
	users    *fakeUsers
	otps     *fakeOTPRepository
	notifier *captureNotifier
	jwt      *JWTManager
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	jwtManager, jwtCfg := newTestJWT(t)
	cfg := &config.Config{
		JWT: jwtCfg,
		OTP: config.OTPConfig{TTL: 10 * time.Minute, Length: 6},
	}

	f := &authFixture{
		users:    &fakeUsers{byEmail: map[string]*UserInfo{}},
		otps:     newFakeOTPRepository(),
		notifier: &captureNotifier{},
		jwt:      jwtManager,
	}
	f.service = NewService(f.otps, jwtManager, f.users, f.notifier, cfg, nil)
	return f
}

func TestRegisterThenLogin(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	reg, err := f.service.Register(ctx, RegisterRequest{
		Email:    "maker@kandi.test",
		Password: "correct-horse",
		FullName: "Bead Maker",
	})
	require.NoError(t, err)
	assert.Equal(t, "Bead Maker", reg.User.FullName)
	assert.NotEmpty(t, reg.Tokens.AccessToken)

	claims, err := f.jwt.VerifyAccessToken(ctx, reg.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, claims.UserID)
	assert.Equal(t, "maker@kandi.test", claims.Email)

	login, err := f.service.Login(ctx, LoginRequest{
		Email:    "maker@kandi.test",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	req := RegisterRequest{Email: "dup@kandi.test", Password: "password1", FullName: "Dup"}

	_, err := f.service.Register(ctx, req)
	require.NoError(t, err)

	_, err = f.service.Register(ctx, req)
	require.ErrorIs(t, err, core.ErrConflict)
}

func TestLoginRejectsBadPasswordAndUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.service.Register(ctx, RegisterRequest{
		Email: "a@kandi.test", Password: "password1", FullName: "A",
	})
	require.NoError(t, err)

	_, err = f.service.Login(ctx, LoginRequest{Email: "a@kandi.test", Password: "password2"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.service.Login(ctx, LoginRequest{Email: "nobody@kandi.test", Password: "password1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejectsSuspendedAccount(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.service.Register(ctx, RegisterRequest{
		Email: "s@kandi.test", Password: "password1", FullName: "S",
	})
	require.NoError(t, err)
	f.users.byEmail["s@kandi.test"].Status = "Suspended"

	_, err = f.service.Login(ctx, LoginRequest{Email: "s@kandi.test", Password: "password1"})
	assert.ErrorIs(t, err, core.ErrForbidden)
}

func TestPasswordResetFlow(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.service.Register(ctx, RegisterRequest{
		Email: "r@kandi.test", Password: "old-password", FullName: "R",
	})
	require.NoError(t, err)

	challenge, err := f.service.ForgotPassword(ctx, "r@kandi.test")
	require.NoError(t, err)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, notify.KindPasswordReset, f.notifier.sent[0].Kind)

	code := extractCode(t, f.notifier.sent[0])
	assert.Len(t, code, 6)

	_, err = f.service.VerifyOTP(ctx, VerifyOTPRequest{Token: challenge.Token, OTP: wrongCode(code)})
	require.ErrorIs(t, err, core.ErrInvalidInput)

	reset, err := f.service.VerifyOTP(ctx, VerifyOTPRequest{Token: challenge.Token, OTP: code})
	require.NoError(t, err)

	_, err = f.service.VerifyOTP(ctx, VerifyOTPRequest{Token: challenge.Token, OTP: code})
	require.ErrorIs(t, err, core.ErrInvalidInput, "code is single use")

	require.NoError(t, f.service.ResetPassword(ctx, ResetPasswordRequest{
		Token:       reset.ResetToken,
		NewPassword: "new-password",
	}))

	_, err = f.service.Login(ctx, LoginRequest{Email: "r@kandi.test", Password: "new-password"})
	require.NoError(t, err)
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.service.ForgotPassword(context.Background(), "ghost@kandi.test")
	require.ErrorIs(t, err, core.ErrNotFound)
	assert.Empty(t, f.notifier.sent)
}

func TestResetPasswordRejectsAccessToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	reg, err := f.service.Register(ctx, RegisterRequest{
		Email: "x@kandi.test", Password: "password1", FullName: "X",
	})
	require.NoError(t, err)

	err = f.service.ResetPassword(ctx, ResetPasswordRequest{
		Token:       reg.Tokens.AccessToken,
		NewPassword: "password2",
	})
	require.ErrorIs(t, err, core.ErrInvalidInput)
}

var codePattern = regexp.MustCompile(`code to reset your password: (\d+)`)

func extractCode(t *testing.T, email notify.Email) string {
	t.Helper()

	m := codePattern.FindStringSubmatch(email.Body)
	require.Len(t, m, 2, "reset email carries the code")
	return m[1]
}

func wrongCode(code string) string {
	if code == "000000" {
		return "111111"
	}
	return "000000"
}
