package services

import (
	"context"
	"strings"
	"sync"

	"github.com/shashiranjanraj/heartscript/app/models"
	"github.com/shashiranjanraj/heartscript/app/repositories"
	"github.com/shashiranjanraj/heartscript/pkg/auth"
	"github.com/shashiranjanraj/heartscript/pkg/logger"
	"github.com/shashiranjanraj/heartscript/pkg/metrics"
	"github.com/shashiranjanraj/heartscript/pkg/orm"
	"github.com/shashiranjanraj/heartscript/pkg/validate"
)

// MinSecurityMatches is how many stored answers a password reset must match.
const MinSecurityMatches = 3

// Answers holds the seven security answers in question order.
type Answers [models.SecurityQuestionCount]string

// NormalizeAnswer lowercases and trims an answer before storing or
// comparing it.
func NormalizeAnswer(a string) string {
	return strings.ToLower(strings.TrimSpace(a))
}

func (a Answers) normalized() Answers {
	var out Answers
	for i, v := range a {
		out[i] = NormalizeAnswer(v)
	}
	return out
}

func (a Answers) count() int {
	n := 0
	for _, v := range a {
		if v != "" {
			n++
		}
	}
	return n
}

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Name     string `form:"name" validate:"required,max=100"`
	Email    string `form:"email" validate:"required,email,max=120"`
	Password string `form:"password" validate:"required,min=6"`
	Phone    string `form:"phone" validate:"required,max=20"`
	Address  string `form:"address" validate:"required"`
	Pincode  string `form:"pincode" validate:"required,max=10"`
	Answers  Answers
}

// ResetInput is the forgot-password form.
type ResetInput struct {
	Email       string `form:"email" validate:"required,email"`
	NewPassword string `form:"new_password" validate:"required,min=6"`
	Answers     Answers
}

// ProfileInput is the profile form.
type ProfileInput struct {
	Name    string `form:"name" validate:"required,max=100"`
	Phone   string `form:"phone" validate:"required,max=20"`
	Address string `form:"address" validate:"required"`
	Pincode string `form:"pincode" validate:"required,max=10"`
}

type AccountService struct {
	users         *repositories.UserRepository
	images        ImageUploader
	adminPassword string
}

func NewAccountService(users *repositories.UserRepository, images ImageUploader, adminPassword string) *AccountService {
	return &AccountService{users: users, images: images, adminPassword: adminPassword}
}

func normalizeEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

func firstInvalid(v interface{}) error {
	if field, msg, failed := validate.First(v); failed {
		return &ValidationError{Field: field, Message: msg}
	}
	return nil
}

// Register creates a customer account.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := firstInvalid(in); err != nil {
		return models.User{}, err
	}

	answers := in.Answers.normalized()
	if answers.count() < MinSecurityMatches {
		return models.User{}, invalid("answers", "Answer at least %d security questions.", MinSecurityMatches)
	}

	taken, err := s.users.EmailTaken(ctx, in.Email)
	if err != nil {
		return models.User{}, persistence("check email", err)
	}
	if taken {
		return models.User{}, invalid("email", "An account with this email already exists.")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, persistence("hash password", err)
	}

	u := models.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: hash,
		Phone:    strings.TrimSpace(in.Phone),
		Address:  strings.TrimSpace(in.Address),
		Pincode:  strings.TrimSpace(in.Pincode),
		Role:     models.RoleCustomer,
	}
	u.SetAnswers(answers)

	if err := s.users.Create(ctx, &u); err != nil {
		return models.User{}, persistence("create user", err)
	}
	logger.WithCtx(ctx).Info("account: registered", "user_id", u.ID)
	return u, nil
}

// Login checks a customer's credentials.
func (s *AccountService) Login(ctx context.Context, email, password string) (models.User, error) {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if orm.IsNotFound(err) {
		auth.CheckPassword(dummyHash(), password)
		metrics.Logins.WithLabelValues("user", "failed").Inc()
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, persistence("find user", err)
	}
	if !auth.CheckPassword(u.Password, password) {
		metrics.Logins.WithLabelValues("user", "failed").Inc()
		return models.User{}, ErrInvalidCredentials
	}
	metrics.Logins.WithLabelValues("user", "success").Inc()
	return u, nil
}

var (
	dummyOnce sync.Once
	dummy     string
)

// dummyHash keeps unknown-email logins as slow as wrong-password ones.
func dummyHash() string {
	dummyOnce.Do(func() { dummy, _ = auth.HashPassword("heartscript-dummy-password") })
	return dummy
}

// AdminLogin checks the shared admin password.
func (s *AccountService) AdminLogin(password string) bool {
	ok := auth.SecretEqual(s.adminPassword, password)
	result := "failed"
	if ok {
		result = "success"
	}
	metrics.Logins.WithLabelValues("admin", result).Inc()
	return ok
}

// ResetPassword sets a new password when enough security answers match.
// A denial carries only the match count.
func (s *AccountService) ResetPassword(ctx context.Context, in ResetInput) error {
	in.Email = normalizeEmail(in.Email)
	if err := firstInvalid(in); err != nil {
		return err
	}

	u, err := s.users.FindByEmail(ctx, in.Email)
	if orm.IsNotFound(err) {
		metrics.PasswordResets.WithLabelValues("unknown").Inc()
		return &NotFoundError{Resource: "account"}
	}
	if err != nil {
		return persistence("find user", err)
	}

	matched := MatchAnswers(u.Answers(), in.Answers)
	if matched < MinSecurityMatches {
		metrics.PasswordResets.WithLabelValues("denied").Inc()
		logger.WithCtx(ctx).Warn("account: password reset denied", "user_id", u.ID, "matched", matched)
		return &ResetDeniedError{Matched: matched}
	}

	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return persistence("hash password", err)
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return persistence("update password", err)
	}
	metrics.PasswordResets.WithLabelValues("success").Inc()
	logger.WithCtx(ctx).Info("account: password reset", "user_id", u.ID)
	return nil
}

// MatchAnswers counts positions where a stored answer is set and equals the
// normalized given one.
func MatchAnswers(stored [models.SecurityQuestionCount]string, given Answers) int {
	n := 0
	for i, want := range stored {
		if want != "" && want == NormalizeAnswer(given[i]) {
			n++
		}
	}
	return n
}

// UpdateProfile overwrites contact details; an image is uploaded and only
// its URL is kept.
func (s *AccountService) UpdateProfile(ctx context.Context, userID uint, in ProfileInput, image *Upload) (models.User, error) {
	if err := firstInvalid(in); err != nil {
		return models.User{}, err
	}

	u, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return models.User{}, err
	}

	u.Name = strings.TrimSpace(in.Name)
	u.Phone = strings.TrimSpace(in.Phone)
	u.Address = strings.TrimSpace(in.Address)
	u.Pincode = strings.TrimSpace(in.Pincode)

	if image != nil {
		url, err := uploadImage(ctx, s.images, image)
		if err != nil {
			return models.User{}, err
		}
		u.ProfileImage = url
	}

	if err := s.users.UpdateProfile(ctx, &u); err != nil {
		return models.User{}, persistence("update profile", err)
	}
	return u, nil
}

func (s *AccountService) CurrentUser(ctx context.Context, id uint) (models.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if orm.IsNotFound(err) {
		return models.User{}, &NotFoundError{Resource: "user", ID: id}
	}
	if err != nil {
		return models.User{}, persistence("find user", err)
	}
	return u, nil
}

// UserExists backs the stale-session check.
func (s *AccountService) UserExists(ctx context.Context, id uint) (bool, error) {
	return s.users.Exists(ctx, id)
}
