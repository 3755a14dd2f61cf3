package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer signs HS256 access tokens.
type TokenIssuer struct {
	cfg JWTConfig
	ttl time.Duration
	now func() time.Time
}

func NewTokenIssuer(cfg JWTConfig, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{cfg: cfg, ttl: ttl, now: time.Now}
}

// Issue returns a signed token for a dentist with the given roles.
func (i *TokenIssuer) Issue(dentistID int64, roles ...string) (string, time.Time, error) {
	return i.issue(strconv.FormatInt(dentistID, 10), dentistID, i.ttl, roles)
}

// IssueKiosk returns a submit-only token for a reception tablet, valid for ttl.
func (i *TokenIssuer) IssueKiosk(name string, ttl time.Duration) (string, time.Time, error) {
	return i.issue("kiosk:"+name, 0, ttl, []string{RoleKiosk})
}

func (i *TokenIssuer) issue(subject string, dentistID int64, ttl time.Duration, roles []string) (string, time.Time, error) {
	if len(i.cfg.SigningKey) == 0 {
		return "", time.Time{}, fmt.Errorf("token signing key is not configured")
	}
	now := i.now()
	exp := now.Add(ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    i.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Roles:     roles,
		DentistID: dentistID,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.cfg.SigningKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}
