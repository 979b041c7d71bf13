package auth

import (
	"errors"
	"fmt"
	"time"

	"collegium_backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carried by the access tokens the identity collaborator issues after
// verifying the upstream Firebase credential. The core only consumes the
// stable subject id and type from them.
type Claims struct {
	SubjectID   string             `json:"sub_id"`
	SubjectType models.SubjectType `json:"sub_type"`
	Role        string             `json:"role"`
	jwt.RegisteredClaims
}

type TokenParser struct {
	secret []byte
}

func NewTokenParser(secret string) *TokenParser {
	return &TokenParser{secret: []byte(secret)}
}

// ParseToken validates an HS256 token and returns its claims.
func (p *TokenParser) ParseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.SubjectID == "" {
		return nil, ErrInvalidToken
	}
	if claims.SubjectType != models.SubjectTypeStudent && claims.SubjectType != models.SubjectTypeCompany {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// IssueToken signs a token for a subject. Used by tests and local tooling;
// production tokens come from the identity collaborator.
func (p *TokenParser) IssueToken(subjectID string, subjectType models.SubjectType, role string, ttl time.Duration) (string, error) {
	claims := &Claims{
		SubjectID:   subjectID,
		SubjectType: subjectType,
		Role:        role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}
