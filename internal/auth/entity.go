// AngelaMos | 2026
// entity.go

package auth

import (
	"time"

	"github.com/carterperez-dev/kandi-backend/internal/core"
)

// otpRecord is what ForgotPassword leaves in Redis for VerifyOTP.
type otpRecord struct {
	UserID    string    `json:"user_id"`
	CodeHash  string    `json:"code_hash"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (r *otpRecord) IsExpired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

func (r *otpRecord) Matches(userID, code string) bool {
	return r.UserID == userID && core.CompareTokenHash(code, r.CodeHash)
}
