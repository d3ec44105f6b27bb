package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shashiranjanraj/heartscript/app/models"
	"github.com/shashiranjanraj/heartscript/app/services"
	"github.com/shashiranjanraj/heartscript/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func registration() services.RegisterInput {
	return services.RegisterInput{
		Name:     "Asha",
		Email:    " Asha@Example.com ",
		Password: "secret1",
		Phone:    "9876543210",
		Address:  "1 MG Road",
		Pincode:  "560001",
		Answers:  services.Answers{"Tommy", "Pune", "Rao", "", "", "", ""},
	}
}

func register(t *testing.T, f *fixture) models.User {
	t.Helper()
	u, err := f.account.Register(context.Background(), registration())
	require.NoError(t, err)
	return u
}

func TestRegisterThenLogin(t *testing.T) {
	f := setup(t)
	u := register(t, f)

	assert.Equal(t, "asha@example.com", u.Email)
	assert.Equal(t, models.RoleCustomer, u.Role)
	assert.NotEqual(t, "secret1", u.Password)
	assert.Equal(t, "tommy", u.Answer1)

	got, err := f.account.Login(context.Background(), "ASHA@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestLoginFailuresLookTheSame(t *testing.T) {
	f := setup(t)
	register(t, f)
	ctx := context.Background()

	_, wrong := f.account.Login(ctx, "asha@example.com", "nope")
	_, unknown := f.account.Login(ctx, "ghost@example.com", "secret1")

	assert.ErrorIs(t, wrong, services.ErrInvalidCredentials)
	assert.ErrorIs(t, unknown, services.ErrInvalidCredentials)
}

func TestRegisterRejectsDuplicatesAndThinAnswers(t *testing.T) {
	f := setup(t)
	register(t, f)
	ctx := context.Background()

	_, err := f.account.Register(ctx, registration())
	var v *services.ValidationError
	require.True(t, errors.As(err, &v))
	assert.Equal(t, "email", v.Field)

	in := registration()
	in.Email = "other@example.com"
	in.Answers = services.Answers{"Tommy", "  ", "Rao"}
	_, err = f.account.Register(ctx, in)
	require.True(t, errors.As(err, &v))
	assert.Equal(t, "answers", v.Field)

	in = registration()
	in.Email = "not-an-email"
	_, err = f.account.Register(ctx, in)
	assert.True(t, services.IsValidation(err))
}

func TestResetPassword(t *testing.T) {
	f := setup(t)
	register(t, f)
	ctx := context.Background()

	denied := f.account.ResetPassword(ctx, services.ResetInput{
		Email:       "asha@example.com",
		NewPassword: "newpass1",
		Answers:     services.Answers{"tommy", "PUNE", "wrong"},
	})
	var rd *services.ResetDeniedError
	require.True(t, errors.As(denied, &rd))
	assert.Equal(t, 2, rd.Matched)

	_, err := f.account.Login(ctx, "asha@example.com", "secret1")
	require.NoError(t, err, "denied reset must keep the old password")

	err = f.account.ResetPassword(ctx, services.ResetInput{
		Email:       "asha@example.com",
		NewPassword: "newpass1",
		Answers:     services.Answers{" Tommy ", "pune", "RAO"},
	})
	require.NoError(t, err)

	_, err = f.account.Login(ctx, "asha@example.com", "newpass1")
	assert.NoError(t, err)
	_, err = f.account.Login(ctx, "asha@example.com", "secret1")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestResetPasswordUnknownEmail(t *testing.T) {
	f := setup(t)

	err := f.account.ResetPassword(context.Background(), services.ResetInput{
		Email:       "ghost@example.com",
		NewPassword: "newpass1",
	})
	assert.True(t, services.IsNotFound(err))
}

func TestMatchAnswersIgnoresUnansweredQuestions(t *testing.T) {
	stored := [models.SecurityQuestionCount]string{"tommy", "", "rao"}
	assert.Equal(t, 0, services.MatchAnswers(stored, services.Answers{}))
	assert.Equal(t, 1, services.MatchAnswers(stored, services.Answers{"Tommy"}))
	assert.Equal(t, 2, services.MatchAnswers(stored, services.Answers{"tommy", "", "RAO "}))
}

func TestUpdateProfile(t *testing.T) {
	f := setup(t)
	u := register(t, f)
	ctx := context.Background()

	body := strings.NewReader("fake image")
	f.images.On("Upload", mock.Anything, "me.png", body).Return("/storage/images/abc.png", nil).Once()

	in := services.ProfileInput{Name: "Asha R", Phone: "111", Address: "2 MG Road", Pincode: "560002"}
	updated, err := f.account.UpdateProfile(ctx, u.ID, in, &services.Upload{Filename: "me.png", Body: body})
	require.NoError(t, err)
	assert.Equal(t, "/storage/images/abc.png", updated.ProfileImage)

	in.Name = "Asha"
	again, err := f.account.UpdateProfile(ctx, u.ID, in, nil)
	require.NoError(t, err)

	stored, err := f.account.CurrentUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Asha", stored.Name)
	assert.Equal(t, "560002", stored.Pincode)
	assert.Equal(t, "/storage/images/abc.png", stored.ProfileImage)
	assert.Equal(t, again.ProfileImage, stored.ProfileImage)
	f.images.AssertExpectations(t)
}

func TestUpdateProfileRejectsUnsupportedImage(t *testing.T) {
	f := setup(t)
	u := register(t, f)

	body := strings.NewReader("#!/bin/sh")
	f.images.On("Upload", mock.Anything, "x.sh", body).Return("", storage.ErrUnsupportedImage).Once()

	in := services.ProfileInput{Name: "Asha", Phone: "111", Address: "X", Pincode: "1"}
	_, err := f.account.UpdateProfile(context.Background(), u.ID, in, &services.Upload{Filename: "x.sh", Body: body})
	assert.True(t, services.IsValidation(err))
}

func TestUserExists(t *testing.T) {
	f := setup(t)
	u := register(t, f)
	ctx := context.Background()

	ok, err := f.account.UserExists(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.account.UserExists(ctx, u.ID+1)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.account.CurrentUser(ctx, u.ID+1)
	assert.True(t, services.IsNotFound(err))
}

func TestAdminLogin(t *testing.T) {
	f := setup(t)
	assert.True(t, f.account.AdminLogin("admin-secret"))
	assert.False(t, f.account.AdminLogin("admin"))
	assert.False(t, f.account.AdminLogin(""))
}
