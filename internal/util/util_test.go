package util

import (
	"errors"
	"fmt"
	"lms_backend/internal/model"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRound2(t *testing.T) {
	assert.Equal(t, 66.67, Round2(200.0/3.0))
	assert.Equal(t, 33.33, Round2(100.0/3.0))
	assert.Equal(t, 100.0, Round2(100))
	// 1/32 = 3.125%，一半时取偶
	assert.Equal(t, 3.12, Round2(100.0/32.0))
	assert.Equal(t, 9.38, Round2(300.0/32.0))
}

func TestStatusOfWrappedErrors(t *testing.T) {
	assert.Equal(t, http.StatusConflict, StatusOf(fmt.Errorf("enroll: %w", ErrAlreadyEnrolled)))
	assert.Equal(t, http.StatusNotFound, StatusOf(ErrNotFound))
	assert.Equal(t, http.StatusForbidden, StatusOf(ErrPermissionDenied))
	assert.Equal(t, http.StatusBadRequest, StatusOf(ErrOptionNotInQuestion))
	assert.Equal(t, http.StatusUnauthorized, StatusOf(ErrInvalidCredentials))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("boom")))
}

func TestJWTRoundTrip(t *testing.T) {
	user := &model.User{Username: "alice", IsStudent: true}
	user.ID = 7

	token, claims, err := GenerateJWT(user, "secret", time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	parsed, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(7), parsed.UserID)
	assert.True(t, parsed.IsStudent)
	assert.Equal(t, claims.ID, parsed.ID)

	_, err = ParseJWT(token, "other")
	assert.Error(t, err)
}

func TestExpiredJWTIsRejected(t *testing.T) {
	user := &model.User{Username: "bob"}
	token, _, err := GenerateJWT(user, "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseJWT(token, "secret")
	assert.Error(t, err)
}

func TestValidateMimeType(t *testing.T) {
	_, err := ValidateMimeType(strings.NewReader("%PDF-1.4 fake"), []string{MimePDF})
	assert.NoError(t, err)

	_, err = ValidateMimeType(strings.NewReader("plain words"), []string{MimePDF})
	assert.Error(t, err)
}

func TestParseProbeDuration(t *testing.T) {
	d, err := parseProbeDuration(`{"format":{"duration":"12.500000"}}`)
	require.NoError(t, err)
	assert.Equal(t, 12.5, d)

	d, err = parseProbeDuration(`{"format":{}}`)
	require.NoError(t, err)
	assert.Zero(t, d)
}
