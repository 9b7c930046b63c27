package util

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrMissingKey   = errors.New("token signing key is not configured")
)

// TokenOptions carries the server-side signing configuration
type TokenOptions struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// TokenSubject is the identity embedded into a session token
type TokenSubject struct {
	UserID    uint
	Email     string
	Role      string
	FirstName string
	LastName  string
}

// Claims are the session token claims
type Claims struct {
	Email     string `json:"email"`
	Role      string `json:"role"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	UserID    uint   `json:"-"`
	jwt.RegisteredClaims
}

// GenerateToken signs an HS256 session token for the subject and returns it with its expiry
func GenerateToken(subject TokenSubject, opts TokenOptions) (string, time.Time, error) {
	if opts.Secret == "" {
		return "", time.Time{}, ErrMissingKey
	}

	now := time.Now()
	expiresAt := now.Add(opts.TTL)

	claims := Claims{
		Email:     subject.Email,
		Role:      subject.Role,
		FirstName: subject.FirstName,
		LastName:  subject.LastName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(subject.UserID), 10),
			Issuer:    opts.Issuer,
			Audience:  jwt.ClaimStrings{opts.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(opts.Secret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ValidateToken checks signature, issuer, audience and expiry before returning the claims
func ValidateToken(tokenString string, opts TokenOptions) (*Claims, error) {
	if opts.Secret == "" {
		return nil, ErrMissingKey
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(opts.Issuer),
		jwt.WithAudience(opts.Audience),
		jwt.WithExpirationRequired(),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(opts.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, errors.Join(ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return nil, ErrInvalidToken
	}
	claims.UserID = uint(id)

	return claims, nil
}
