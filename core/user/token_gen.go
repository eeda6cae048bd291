package user

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base32"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/trezcool/chuo/core"
)

var (
	salt    = []byte("chuo.core.user.token_gen")
	nowFunc = time.Now // mockable

	// overridable in tests; default from config on first use
	secretKey                 []byte
	passwordResetTimeoutDelta time.Duration

	// errors
	errInvalidToken = errors.New("invalid token")
	errTokenExpired = errors.New("token expired")
)

func tokenParams() ([]byte, time.Duration) {
	if secretKey == nil {
		secretKey = []byte(core.Conf.SecretKey)
		passwordResetTimeoutDelta = core.Conf.PasswordResetTimeoutDelta
	}
	return secretKey, passwordResetTimeoutDelta
}

// EncodeUID base64 encodes given User ID
func EncodeUID(usr User) string {
	return base64.RawURLEncoding.EncodeToString([]byte(usr.ID))
}

// decodeUID base64 decodes given UID
func decodeUID(uid string) (string, error) {
	idBytes, err := base64.RawURLEncoding.DecodeString(uid)
	if err != nil {
		return "", err
	}
	return string(idBytes), nil
}

// makeToken generates a password reset token for a given User.
// The token is invalidated by a password change or after expiry.
func makeToken(usr User) string {
	return makeTokenWithTimestamp(usr, numDaysSince2001(nowFunc()))
}

// verifyToken checks that a password reset token for a given User is valid.
func verifyToken(usr User, token string) error {
	_, timeout := tokenParams()

	if token == "" {
		return errInvalidToken
	}

	parts := strings.SplitN(token, "-", 2)
	if len(parts) < 2 {
		return errInvalidToken
	}
	tsB32 := parts[0]

	data, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(tsB32)
	if err != nil {
		return errInvalidToken
	}
	ts, err := strconv.Atoi(string(data))
	if err != nil {
		return errInvalidToken
	}

	// check that token has not been tampered with
	newToken := makeTokenWithTimestamp(usr, ts)
	if subtle.ConstantTimeCompare([]byte(newToken), []byte(token)) == 0 {
		return errInvalidToken
	}

	// check that the timestamp is within limit
	if (numDaysSince2001(time.Now()) - ts) > int(timeout/(24*time.Hour)) {
		return errTokenExpired
	}
	return nil
}

func makeTokenWithTimestamp(usr User, ts int) string {
	key, _ := tokenParams()

	tsB32 := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString([]byte(strconv.Itoa(ts)))

	// hash on state that surely changes on password reset:
	// - PasswordHash changes
	// - LastLogin may change
	state := fmt.Sprintf("%s%s%s%d", usr.ID, usr.PasswordHash, usr.LastLogin.UTC(), ts)
	mac := hmac.New(sha256.New, append(salt, key...))
	mac.Write([]byte(state))
	sig := hex.EncodeToString(mac.Sum(nil))

	return fmt.Sprintf("%s-%s", tsB32, sig)
}

func numDaysSince2001(t time.Time) int {
	base := time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)
	return int(t.Sub(base).Hours() / 24)
}
