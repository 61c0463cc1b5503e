package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fraol-12/WhisperBox/internal/apperr"
	"github.com/Fraol-12/WhisperBox/internal/auth"
	"github.com/Fraol-12/WhisperBox/internal/model"
	"github.com/Fraol-12/WhisperBox/internal/testutil"
)

const testSecret = "test-secret-0123456789"

func newAuthFixture(t *testing.T) (*AuthService, *model.Admin) {
	t.Helper()
	store := testutil.NewMemStore()
	admin := testutil.SeedAdmin(t, store, model.DepartmentIT, "it@university.edu")
	signer := auth.NewSigner(testSecret, "whisperbox", time.Hour)
	return NewAuthService(store.Admins(), signer, zerolog.Nop()), admin
}

func TestLogin_Success(t *testing.T) {
	svc, admin := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), "  IT@University.edu ", testutil.DefaultPassword)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, admin.ID, resp.Admin.ID)
	assert.Equal(t, model.DepartmentIT, resp.Admin.Department)
	assert.Equal(t, "it@university.edu", resp.Admin.Email)

	p, err := svc.Authorize(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, p.AdminID)
	assert.Equal(t, model.DepartmentIT, p.Department)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	_, wrongPassword := svc.Login(ctx, "it@university.edu", "nope")
	_, unknownEmail := svc.Login(ctx, "ghost@university.edu", testutil.DefaultPassword)

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	assert.ErrorIs(t, wrongPassword, apperr.ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, apperr.ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestLogin_MissingFields(t *testing.T) {
	svc, _ := newAuthFixture(t)

	for _, tc := range []struct{ email, password string }{
		{"", "x"},
		{"it@university.edu", ""},
		{"   ", "x"},
	} {
		_, err := svc.Login(context.Background(), tc.email, tc.password)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), "email=%q", tc.email)
	}
}

func TestAuthorize_Rejections(t *testing.T) {
	svc, _ := newAuthFixture(t)

	expired := auth.NewSigner(testSecret, "whisperbox", -time.Minute)
	expiredToken, _, err := expired.Issue("a1", "IT")
	require.NoError(t, err)

	foreign := auth.NewSigner("another-secret-0123456", "whisperbox", time.Hour)
	foreignToken, _, err := foreign.Issue("a1", "IT")
	require.NoError(t, err)

	signer := auth.NewSigner(testSecret, "whisperbox", time.Hour)
	badDept, _, err := signer.Issue("a1", "Gym")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  *apperr.Error
	}{
		{"empty", "", apperr.ErrMissingToken},
		{"garbage", "not.a.jwt", apperr.ErrInvalidToken},
		{"expired", expiredToken, apperr.ErrTokenExpired},
		{"wrong secret", foreignToken, apperr.ErrInvalidToken},
		{"unknown department", badDept, apperr.ErrInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Authorize(tt.token)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, apperr.KindAuthentication, apperr.KindOf(err))
		})
	}
}
