// Package token issues and verifies the bearer JWTs handed out at login.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang-jwt/jwt/v5"
	"github.com/smallbiznis/vyapar/internal/clock"
	"github.com/smallbiznis/vyapar/internal/config"
)

const issuerName = "vyapar"

var (
	ErrMissingSecret = errors.New("auth jwt secret is not configured")
	ErrInvalid       = errors.New("invalid token")
)

// Claims carries the tenant and role of the subject user.
type Claims struct {
	CompanyID string `json:"company_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

func NewIssuer(secret string, ttl time.Duration, clk clock.Clock) (*Issuer, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl, clock: clk}, nil
}

// Provide builds the issuer from application config.
func Provide(cfg config.Config, clk clock.Clock) (*Issuer, error) {
	return NewIssuer(cfg.AuthJWTSecret, cfg.AuthTokenTTL, clk)
}

// Issue signs an HS256 token for userID.
func (i *Issuer) Issue(userID, companyID snowflake.ID, role string) (string, time.Time, error) {
	now := i.clock.Now().UTC()
	expiresAt := now.Add(i.ttl)

	claims := &Claims{
		CompanyID: companyID.String(),
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuerName,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse verifies raw and returns the subject and company ids it names.
func (i *Issuer) Parse(raw string) (userID, companyID snowflake.ID, claims *Claims, err error) {
	parsed, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuerName),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.clock.Now),
	)
	if err != nil {
		return 0, 0, nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return 0, 0, nil, ErrInvalid
	}

	userID, err = snowflake.ParseString(claims.Subject)
	if err != nil || userID == 0 {
		return 0, 0, nil, ErrInvalid
	}
	companyID, err = snowflake.ParseString(claims.CompanyID)
	if err != nil || companyID == 0 {
		return 0, 0, nil, ErrInvalid
	}
	return userID, companyID, claims, nil
}
