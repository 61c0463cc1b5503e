package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fraol-12/WhisperBox/internal/db"
	"github.com/Fraol-12/WhisperBox/internal/model"
	"github.com/Fraol-12/WhisperBox/internal/repository"
)

func TestMemAdmins_DepartmentIsFixed(t *testing.T) {
	admins := NewMemStore().Admins()
	ctx := context.Background()

	first := &model.Admin{Name: "IT Admin", Department: model.DepartmentIT, Email: "it@university.edu", PasswordHash: "h1"}
	require.NoError(t, admins.Upsert(ctx, first))

	same := &model.Admin{Name: "IT Lead", Department: model.DepartmentIT, Email: "IT@university.edu", PasswordHash: "h2"}
	require.NoError(t, admins.Upsert(ctx, same))
	assert.Equal(t, first.ID, same.ID)

	err := admins.Upsert(ctx, &model.Admin{Name: "IT Lead", Department: model.DepartmentDorm, Email: "it@university.edu", PasswordHash: "h3"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
	assert.Equal(t, db.ConstraintAdminEmail, repository.ViolatedConstraint(err))

	got, err := admins.FindByEmail(ctx, "it@university.edu")
	require.NoError(t, err)
	assert.Equal(t, model.DepartmentIT, got.Department)
	assert.Equal(t, "h2", got.PasswordHash)
}
