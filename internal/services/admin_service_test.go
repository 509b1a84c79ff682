package services

import (
	"context"
	"testing"
	"time"

	"github.com/adminbank/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAdminCode(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	code := GenerateAdminCode("alice", at)
	assert.Len(t, code, 12)
	assert.Regexp(t, "^[0-9A-F]+$", code)
	assert.Equal(t, code, GenerateAdminCode("alice", at.In(time.FixedZone("WAT", 3600))))
	assert.NotEqual(t, code, GenerateAdminCode("alice", at.Add(time.Nanosecond)))
	assert.NotEqual(t, code, GenerateAdminCode("bob", at))
}

func TestAdminService_Create(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	t.Run("creates an active admin", func(t *testing.T) {
		admin, err := f.admins.Create(ctx, "alice", "correct horse", models.RoleStandard)
		require.NoError(t, err)
		assert.True(t, admin.Active())
		assert.Equal(t, models.RoleStandard, admin.Role)
		assert.NotEqual(t, "correct horse", admin.CredentialHash)
		assert.True(t, f.admins.hasher.Verify(admin.CredentialHash, "correct horse"))

		found, err := f.admins.FindByCode(ctx, admin.Code)
		require.NoError(t, err)
		assert.Equal(t, admin.Name, found.Name)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		_, err := f.admins.Create(ctx, "mallory", "pw", models.Role("root"))
		assert.ErrorIs(t, err, ErrInvalidRole)
	})

	t.Run("same name and instant retries with a later instant", func(t *testing.T) {
		fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		svc := NewAdminService(f.store, testHasher(), f.audit)
		svc.now = func() time.Time { return fixed }

		first, err := svc.Create(ctx, "carol", "pw", models.RoleStandard)
		require.NoError(t, err)
		second, err := svc.Create(ctx, "carol", "pw", models.RoleStandard)
		require.NoError(t, err)
		assert.NotEqual(t, first.Code, second.Code)
		assert.True(t, second.CreatedAt.After(first.CreatedAt))
	})

	t.Run("store failure is wrapped", func(t *testing.T) {
		svc := NewAdminService(&failingStore{Store: f.store, failOn: "InsertAdmin"}, testHasher(), f.audit)
		_, err := svc.Create(ctx, "dave", "pw", models.RoleStandard)
		assert.ErrorIs(t, err, ErrAdminCreation)
		assert.ErrorIs(t, err, errBoom)
	})
}

func TestAdminService_FindByCode_NotFound(t *testing.T) {
	f := newFixture()
	_, err := f.admins.FindByCode(context.Background(), "000000000000")
	assert.ErrorIs(t, err, ErrAdminNotFound)
}

func TestAdminService_Transitions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.admin(t, "alice")

	_, err := f.admins.Activate(ctx, a.Code)
	assert.ErrorIs(t, err, ErrAlreadyActivated)

	updated, err := f.admins.Deactivate(ctx, a.Code)
	require.NoError(t, err)
	assert.True(t, updated.Deactivated)

	_, err = f.admins.Deactivate(ctx, a.Code)
	assert.ErrorIs(t, err, ErrAlreadyDeactivated)

	updated, err = f.admins.Activate(ctx, a.Code)
	require.NoError(t, err)
	assert.True(t, updated.Active())

	_, err = f.admins.Deactivate(ctx, "NOPE")
	assert.ErrorIs(t, err, ErrAdminNotFound)

	f.audit.AssertCalled(t, "LogAdminTransition", a.Code, true)
	f.audit.AssertCalled(t, "LogAdminTransition", a.Code, false)
	f.audit.AssertNumberOfCalls(t, "LogAdminTransition", 2)
}

func TestAdminService_FindAll(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	admins, err := f.admins.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, admins)

	a := f.admin(t, "alice")
	b := f.admin(t, "bob")

	admins, err = f.admins.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, admins, 2)
	assert.Equal(t, a.Code, admins[0].Code)
	assert.Equal(t, b.Code, admins[1].Code)
}

func TestAdminService_EnsureSuperAdmin(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	admin, created, err := f.admins.EnsureSuperAdmin(ctx, "root", "bootstrap-secret")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.RoleSuper, admin.Role)

	_, created, err = f.admins.EnsureSuperAdmin(ctx, "root", "bootstrap-secret")
	require.NoError(t, err)
	assert.False(t, created)

	admins, err := f.store.ListAdmins(ctx)
	require.NoError(t, err)
	assert.Len(t, admins, 1)
}
