package utils // package utils provides helpers for token issuance, hashing and pagination

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// Sentinel errors returned by VerifyToken. Middleware translates
// ErrTokenExpired and ErrTokenInvalid into distinct 401 responses.
var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// AccessToken is a signed JWT together with its expiry time. The
// token embeds the subject id (as a decimal string) and the role so
// protected routes can authorize without a database lookup.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// IssueToken builds and signs an HS256 JWT for a user. Claims are the
// standard set: sub (decimal user id), role, iat and exp = iat + ttlMin
// minutes. The same secret must be used for verification.
func IssueToken(secret string, userID uint64, role string, ttlMin int) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub":  strconv.FormatUint(userID, 10),
		"role": role,
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// VerifyToken parses and validates a signed token. On success it
// returns the subject id and role claims. Expired tokens yield
// ErrTokenExpired; any other parse or signature failure yields
// ErrTokenInvalid. Only HMAC signing methods are accepted.
func VerifyToken(secret, raw string) (uint64, string, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, "", ErrTokenExpired
		}
		return 0, "", ErrTokenInvalid
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok || !tok.Valid {
		return 0, "", ErrTokenInvalid
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, "", ErrTokenInvalid
	}
	uid, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return 0, "", ErrTokenInvalid
	}
	role, _ := claims["role"].(string)
	if role == "" {
		return 0, "", ErrTokenInvalid
	}
	return uid, role, nil
}
