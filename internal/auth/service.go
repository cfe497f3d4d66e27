// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/carterperez-dev/kandi-backend/internal/config"
	"github.com/carterperez-dev/kandi-backend/internal/core"
	"github.com/carterperez-dev/kandi-backend/internal/notify"
)

const statusActive = "Active"

var ErrInvalidCredentials = errors.New("invalid credentials")

type UserInfo struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         string
	Status       string
}

type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	Create(
		ctx context.Context,
		email, passwordHash, name string,
	) (*UserInfo, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

type Notifier interface {
	Notify(ctx context.Context, email notify.Email)
}

type Service struct {
	repo         Repository
	jwt          *JWTManager
	userProvider UserProvider
	notifier     Notifier
	logger       *slog.Logger
	otp          config.OTPConfig
	accessTTL    time.Duration
	now          func() time.Time
}

func NewService(
	repo Repository,
	jwt *JWTManager,
	userProvider UserProvider,
	notifier Notifier,
	cfg *config.Config,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:         repo,
		jwt:          jwt,
		userProvider: userProvider,
		notifier:     notifier,
		logger:       logger,
		otp:          cfg.OTP,
		accessTTL:    cfg.JWT.AccessTokenExpire,
		now:          time.Now,
	}
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*AuthResponse, error) {
	user, err := s.userProvider.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		req.Password,
		&user.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if user.Status != statusActive {
		return nil, core.ForbiddenError("account is " + user.Status)
	}

	if newHash != "" {
		//nolint:errcheck // best-effort rehash upgrade
		_ = s.userProvider.UpdatePassword(ctx, user.ID, newHash)
	}

	return s.createAuthResponse(user)
}

func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*AuthResponse, error) {
	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.userProvider.Create(ctx, req.Email, passwordHash, req.FullName)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.ConflictError("email already registered")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return s.createAuthResponse(user)
}

// ForgotPassword stores a hashed one-time code for the account and
// queues it by email. The returned challenge token must accompany the
// code in VerifyOTP.
func (s *Service) ForgotPassword(
	ctx context.Context,
	email string,
) (*ChallengeResponse, error) {
	user, err := s.userProvider.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.NotFoundError("user")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	code, err := core.GenerateOTP(s.otp.Length)
	if err != nil {
		return nil, core.InternalError("could not generate code", err)
	}

	challengeID := core.NewID()
	expiresAt := s.now().Add(s.otp.TTL)

	rec := &otpRecord{
		UserID:    user.ID,
		CodeHash:  core.HashToken(code),
		ExpiresAt: expiresAt,
	}
	if err := s.repo.Save(ctx, challengeID, rec, s.otp.TTL); err != nil {
		return nil, fmt.Errorf("save otp: %w", err)
	}

	token, err := s.jwt.CreateOTPChallenge(user.ID, challengeID, s.otp.TTL)
	if err != nil {
		return nil, fmt.Errorf("create challenge: %w", err)
	}

	s.notifier.Notify(ctx, notify.PasswordResetEmail(user.Email, code))

	return &ChallengeResponse{Token: token, ExpiresAt: expiresAt}, nil
}

// VerifyOTP consumes the code on success and returns a reset token.
func (s *Service) VerifyOTP(
	ctx context.Context,
	req VerifyOTPRequest,
) (*ResetTokenResponse, error) {
	userID, challengeID, err := s.jwt.VerifyOTPChallenge(req.Token)
	if err != nil {
		return nil, core.InvalidRequest("invalid or expired reset challenge")
	}

	rec, err := s.repo.Find(ctx, challengeID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.InvalidRequest("invalid or expired code")
		}
		return nil, fmt.Errorf("find otp: %w", err)
	}

	if rec.IsExpired(s.now()) || !rec.Matches(userID, req.OTP) {
		return nil, core.InvalidRequest("invalid or expired code")
	}

	if err := s.repo.Delete(ctx, challengeID); err != nil {
		return nil, fmt.Errorf("consume otp: %w", err)
	}

	resetToken, err := s.jwt.CreateResetToken(userID)
	if err != nil {
		return nil, fmt.Errorf("create reset token: %w", err)
	}

	return &ResetTokenResponse{ResetToken: resetToken}, nil
}

func (s *Service) ResetPassword(
	ctx context.Context,
	req ResetPasswordRequest,
) error {
	userID, err := s.jwt.VerifyResetToken(req.Token)
	if err != nil {
		return core.InvalidRequest("invalid or expired reset token")
	}

	newHash, err := core.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.userProvider.UpdatePassword(ctx, userID, newHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	s.logger.InfoContext(ctx, "password reset", "user_id", userID)
	return nil
}

func (s *Service) GetCurrentUser(
	ctx context.Context,
	userID string,
) (*UserResponse, error) {
	user, err := s.userProvider.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *Service) createAuthResponse(user *UserInfo) (*AuthResponse, error) {
	accessToken, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		UserID: user.ID,
		Role:   user.Role,
		Email:  user.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	return &AuthResponse{
		User: toUserResponse(user),
		Tokens: TokenResponse{
			AccessToken: accessToken,
			TokenType:   "Bearer",
			ExpiresIn:   int(s.accessTTL / time.Second),
			ExpiresAt:   s.now().Add(s.accessTTL),
		},
	}, nil
}

func toUserResponse(user *UserInfo) UserResponse {
	return UserResponse{
		ID:       user.ID,
		Email:    user.Email,
		FullName: user.Name,
		Role:     user.Role,
		Status:   user.Status,
	}
}
