package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/Igor-Vicente/English.Registration.API/internal/models"
)

var (
	errResetCodeFormat    = errors.New("invalid reset code format")
	errResetCodeSignature = errors.New("invalid reset code signature")
	errResetCodeExpired   = errors.New("reset code expired")
	errResetCodeStale     = errors.New("reset code no longer matches the account")
)

const resetCodePurpose = "reset-password"

// ResetCodeSigner creates and verifies password reset codes of the form
// userID.expiry.stamp.signature. The stamp is derived from the password hash,
// so a code stops working once the password changes.
type ResetCodeSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewResetCodeSigner constructs a signer.
func NewResetCodeSigner(secret string, ttl time.Duration) *ResetCodeSigner {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &ResetCodeSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Generate returns a code bound to the user's current password.
func (s *ResetCodeSigner) Generate(user *models.User) (string, time.Time) {
	expiresAt := s.now().Add(s.ttl)
	exp := strconv.FormatInt(expiresAt.Unix(), 10)
	stamp := passwordStamp(user.PasswordHash)
	signature := s.sign(user.ID, exp, stamp)
	return strings.Join([]string{user.ID, exp, stamp, signature}, "."), expiresAt
}

// Verify checks the code against the user it claims to belong to.
func (s *ResetCodeSigner) Verify(code string, user *models.User) error {
	parts := strings.Split(code, ".")
	if len(parts) != 4 {
		return errResetCodeFormat
	}
	userID, exp, stamp, signature := parts[0], parts[1], parts[2], parts[3]

	expected := s.sign(userID, exp, stamp)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return errResetCodeSignature
	}
	expUnix, err := strconv.ParseInt(exp, 10, 64)
	if err != nil {
		return errResetCodeFormat
	}
	if !s.now().Before(time.Unix(expUnix, 0)) {
		return errResetCodeExpired
	}
	if userID != user.ID || stamp != passwordStamp(user.PasswordHash) {
		return errResetCodeStale
	}
	return nil
}

func (s *ResetCodeSigner) sign(userID, exp, stamp string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(resetCodePurpose + "|" + userID + "|" + exp + "|" + stamp))
	return hex.EncodeToString(mac.Sum(nil))
}

func passwordStamp(hash string) string {
	sum := sha256.Sum256([]byte(hash))
	return hex.EncodeToString(sum[:8])
}
