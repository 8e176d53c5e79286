package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/AHMED-techNOP/01BLOG/internal/models"
)

func newUserFixture(t *testing.T) (*UserService, *testFixture) {
	t.Helper()
	f := newFixture(t)
	return NewUserService(f.users, f.subs), f
}

const testPassword = "Str0ng&Secret!pw"

func TestRegisterAndAuthenticate(t *testing.T) {
	svc, _ := newUserFixture(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: testPassword,
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(testPassword)))

	got, err := svc.Authenticate(ctx, "alice@example.com", testPassword)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newUserFixture(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   RegisterInput
	}{
		{"bad username", RegisterInput{Username: "a!", Email: "a@b.com", Password: testPassword}},
		{"reserved username", RegisterInput{Username: "admin", Email: "a@b.com", Password: testPassword}},
		{"bad email", RegisterInput{Username: "alice", Email: "not-an-email", Password: testPassword}},
		{"weak password", RegisterInput{Username: "alice", Email: "a@b.com", Password: "short"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tc.in)
			require.Error(t, err)
			assert.Equal(t, models.CodeValidationFailed, models.ErrorCode(err))
		})
	}
}

func TestRegister_DuplicateConflicts(t *testing.T) {
	svc, _ := newUserFixture(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: testPassword})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Username: "alice", Email: "other@example.com", Password: testPassword})
	assert.Equal(t, models.CodeConflict, models.ErrorCode(err))
}

func TestAuthenticate_Failures(t *testing.T) {
	svc, f := newUserFixture(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: "alice@example.com", Password: testPassword})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, "ghost@example.com", testPassword)
	assert.Equal(t, models.CodeUnauthenticated, models.ErrorCode(err))

	_, err = svc.Authenticate(ctx, "alice@example.com", "Wrong&Password1!")
	assert.Equal(t, models.CodeUnauthenticated, models.ErrorCode(err))

	require.NoError(t, f.users.SetBanned(ctx, user.ID, true))
	_, err = svc.Authenticate(ctx, "alice@example.com", testPassword)
	assert.Equal(t, models.CodeForbidden, models.ErrorCode(err))
}

func TestGetProfile(t *testing.T) {
	svc, f := newUserFixture(t)
	ctx := context.Background()

	alice := newTestUser(t, f.db, "alice", models.RoleUser)
	bob := newTestUser(t, f.db, "bob", models.RoleUser)
	carol := newTestUser(t, f.db, "carol", models.RoleUser)

	require.NoError(t, f.subs.Create(ctx, &models.Subscription{SubscriberID: alice.ID, SubscribedToID: bob.ID}))
	require.NoError(t, f.subs.Create(ctx, &models.Subscription{SubscriberID: carol.ID, SubscribedToID: bob.ID}))

	profile, err := svc.GetProfile(ctx, alice, "bob")
	require.NoError(t, err)
	assert.EqualValues(t, 2, profile.SubscriberCount)
	assert.True(t, profile.IsSubscribed)

	profile, err = svc.GetProfile(ctx, bob, "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 0, profile.SubscriberCount)
	assert.False(t, profile.IsSubscribed)

	_, err = svc.GetProfile(ctx, alice, "ghost")
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))
}
