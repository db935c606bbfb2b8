package service

import (
	"context"
	"testing"

	"github.com/foyerapp/foyer-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveUser_CreatesOnFirstSight(t *testing.T) {
	repo := testutil.NewMockUserRepository()
	svc := NewUserService(repo)

	id, err := svc.ResolveUser(context.Background(), "auth0|abc", "a@b.fr", nil)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	again, err := svc.ResolveUser(context.Background(), "auth0|abc", "a@b.fr", nil)
	require.NoError(t, err)
	assert.Equal(t, id, again)
}

func TestGetProfile_Success(t *testing.T) {
	repo := testutil.NewMockUserRepository()
	svc := NewUserService(repo)

	id, err := svc.ResolveUser(context.Background(), "auth0|abc", "a@b.fr", nil)
	require.NoError(t, err)

	user, err := svc.GetProfile(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "a@b.fr", user.Email)
}
