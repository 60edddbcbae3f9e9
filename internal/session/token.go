package session

import (
	"fmt"
	"strconv"
	"time"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
	"github.com/golang-jwt/jwt/v5"
)

// placeholderSignature fills the third segment. It is decorative.
const placeholderSignature = "mock-signature"

// Claims is the token payload.
type Claims struct {
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Encode serializes s into a three-segment token.
func Encode(s models.Session) (string, error) {
	claims := Claims{
		Username: s.Username,
		Role:     s.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(s.ID),
			ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	unsigned, err := token.SigningString()
	if err != nil {
		return "", fmt.Errorf("failed to encode token: %w", err)
	}

	return unsigned + "." + token.EncodeSegment([]byte(placeholderSignature)), nil
}

// Decode parses raw without verifying its signature and checks its expiry against now.
//
// Structural problems wrap [shared.ErrMalformedToken]; a token at or past its expiry wraps [shared.ErrTokenExpired].
func Decode(raw string, now time.Time) (*models.Session, error) {
	parser := jwt.NewParser()

	var claims Claims
	_, parts, err := parser.ParseUnverified(raw, &claims)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrMalformedToken, err)
	}

	if _, err := parser.DecodeSegment(parts[2]); err != nil {
		return nil, fmt.Errorf("%w: signature segment: %v", shared.ErrMalformedToken, err)
	}

	id, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("%w: subject %q is not numeric", shared.ErrMalformedToken, claims.Subject)
	}

	if !claims.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", shared.ErrMalformedToken, claims.Role)
	}

	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: missing expiry", shared.ErrMalformedToken)
	}

	session := &models.Session{
		User:      models.User{ID: id, Username: claims.Username, Role: claims.Role},
		ExpiresAt: claims.ExpiresAt.Time,
	}

	if !session.Valid(now) {
		return nil, fmt.Errorf("%w: expired at %s", shared.ErrTokenExpired, session.ExpiresAt.Format(time.RFC3339))
	}

	return session, nil
}
