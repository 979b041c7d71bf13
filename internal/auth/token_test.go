package auth

import (
	"testing"
	"time"

	"collegium_backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseToken_RoundTrip(t *testing.T) {
	parser := NewTokenParser("secret")

	token, err := parser.IssueToken("student-1", models.SubjectTypeStudent, "user", time.Hour)
	require.NoError(t, err)

	claims, err := parser.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "student-1", claims.SubjectID)
	assert.Equal(t, models.SubjectTypeStudent, claims.SubjectType)
	assert.Equal(t, "user", claims.Role)
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, err := NewTokenParser("secret-a").IssueToken("student-1", models.SubjectTypeStudent, "user", time.Hour)
	require.NoError(t, err)

	_, err = NewTokenParser("secret-b").ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_Expired(t *testing.T) {
	parser := NewTokenParser("secret")
	token, err := parser.IssueToken("student-1", models.SubjectTypeStudent, "user", -time.Minute)
	require.NoError(t, err)

	_, err = parser.ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_RejectsUnknownSubjectType(t *testing.T) {
	parser := NewTokenParser("secret")

	claims := &Claims{
		SubjectID:   "someone",
		SubjectType: models.SubjectType("admin-panel"),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = parser.ParseToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseToken_RejectsEmptySubject(t *testing.T) {
	parser := NewTokenParser("secret")

	claims := &Claims{
		SubjectType: models.SubjectTypeStudent,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = parser.ParseToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
