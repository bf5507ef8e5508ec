package service_test

import (
	"testing"

	"go-pos-backend/internal/model"
	"go-pos-backend/internal/repository"
	"go-pos-backend/internal/service"
	"go-pos-backend/internal/testutil"
	"go-pos-backend/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckPasswordPolicy(t *testing.T) {
	cases := []struct {
		password string
		ok       bool
	}{
		{"Str0ng!pass", true},
		{"short1!A", true},
		{"Sh0r!t", false},         // too short
		{"alllower1!", false},     // no upper
		{"ALLUPPER1!", false},     // no lower
		{"NoDigits!!", false},     // no digit
		{"NoSpecial11a", false},   // no special
		{"Tr0ub4dor&3xyz", true},
	}
	for _, tc := range cases {
		err := service.CheckPasswordPolicy(tc.password)
		if tc.ok {
			assert.NoErrorf(t, err, "password %q should pass", tc.password)
		} else {
			assert.Errorf(t, err, "password %q should fail", tc.password)
		}
	}
}

func TestRegisterAssignsDefaultRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedRBAC(t, db)
	users := repository.NewUserRepo(db)
	svc := service.NewAuthService(users)

	resp, err := svc.Register(service.RegisterRequest{
		Username: "new.user", Email: "new@test.local", Password: "Str0ng!pass",
	})
	require.NoError(t, err)
	assert.Equal(t, model.SystemRoleUser, resp.SystemRole)
	assert.False(t, resp.UserDetailsCompleted)

	// Duplicate username conflicts.
	_, err = svc.Register(service.RegisterRequest{
		Username: "new.user", Email: "other@test.local", Password: "Str0ng!pass",
	})
	require.Error(t, err)
}

func TestLoginRotatesTokenVersion(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	db := testutil.SetupTestDB(t)
	testutil.SeedRBAC(t, db)
	users := repository.NewUserRepo(db)
	svc := service.NewAuthService(users)

	_, err := svc.Register(service.RegisterRequest{
		Username: "bob", Email: "bob@test.local", Password: "Str0ng!pass",
	})
	require.NoError(t, err)

	first, err := svc.Login(service.LoginRequest{Username: "bob", Password: "Str0ng!pass"})
	require.NoError(t, err)

	second, err := svc.Login(service.LoginRequest{Username: "bob", Password: "Str0ng!pass"})
	require.NoError(t, err)

	// The first token's version no longer matches the stored one.
	firstClaims, err := jwt.ValidateToken(first.Token)
	require.NoError(t, err)
	secondClaims, err := jwt.ValidateToken(second.Token)
	require.NoError(t, err)
	assert.NotEqual(t, firstClaims.TokenVersion, secondClaims.TokenVersion)

	user, err := users.FindByUsername("bob")
	require.NoError(t, err)
	assert.Equal(t, secondClaims.TokenVersion, user.TokenVersion)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	db := testutil.SetupTestDB(t)
	testutil.SeedRBAC(t, db)
	svc := service.NewAuthService(repository.NewUserRepo(db))

	_, err := svc.Register(service.RegisterRequest{
		Username: "carol", Email: "carol@test.local", Password: "Str0ng!pass",
	})
	require.NoError(t, err)

	_, err = svc.Login(service.LoginRequest{Username: "carol", Password: "wrong"})
	require.Error(t, err)
	_, err = svc.Login(service.LoginRequest{Username: "nobody", Password: "Str0ng!pass"})
	require.Error(t, err)
}

func TestChangePasswordChecksCurrent(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	db := testutil.SetupTestDB(t)
	testutil.SeedRBAC(t, db)
	users := repository.NewUserRepo(db)
	svc := service.NewAuthService(users)

	_, err := svc.Register(service.RegisterRequest{
		Username: "dave", Email: "dave@test.local", Password: "Str0ng!pass",
	})
	require.NoError(t, err)
	user, err := users.FindByUsername("dave")
	require.NoError(t, err)

	require.Error(t, svc.ChangePassword(user.ID, "wrong", "N3w!passw0rd"))
	require.Error(t, svc.ChangePassword(user.ID, "Str0ng!pass", "weak"))
	require.NoError(t, svc.ChangePassword(user.ID, "Str0ng!pass", "N3w!passw0rd"))

	_, err = svc.Login(service.LoginRequest{Username: "dave", Password: "N3w!passw0rd"})
	require.NoError(t, err)
}

func TestProfileDetailsCompletion(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SeedRBAC(t, db)
	svc := service.NewAuthService(repository.NewUserRepo(db))

	resp, err := svc.Register(service.RegisterRequest{
		Username: "erin", Email: "erin@test.local", Password: "Str0ng!pass",
	})
	require.NoError(t, err)

	profile, err := svc.GetProfile(resp.ID)
	require.NoError(t, err)
	assert.False(t, profile.UserDetailsCompleted)

	require.NoError(t, svc.UpdateDetail(resp.ID, &model.UserDetail{
		FirstName: "Erin", LastName: "Example", ContactNo: "555-0101",
	}))

	profile, err = svc.GetProfile(resp.ID)
	require.NoError(t, err)
	assert.True(t, profile.UserDetailsCompleted)
}
