package controllers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shashiranjanraj/heartscript/app/models"
	"github.com/shashiranjanraj/heartscript/app/services"
	"github.com/shashiranjanraj/heartscript/pkg/auth"
	"github.com/shashiranjanraj/heartscript/pkg/ctx"
)

type AccountController struct {
	account *services.AccountService
}

func NewAccountController(account *services.AccountService) *AccountController {
	return &AccountController{account: account}
}

// answers reads answer1..answer7 from a parsed form.
func answers(c *ctx.Context) services.Answers {
	var a services.Answers
	for i := range a {
		a[i] = c.PostForm(fmt.Sprintf("answer%d", i+1))
	}
	return a
}

// Login handles GET|POST /login and /user_login.
func (h *AccountController) Login(c *ctx.Context) {
	if !c.IsPost() {
		c.HTML(http.StatusOK, "login", flashes(c, ctx.H{}))
		return
	}

	email := c.PostForm("email")
	u, err := h.account.Login(c.Context(), email, c.PostForm("password"))
	if err != nil {
		c.HTML(statusOf(err), "login", ctx.H{"Email": email, "Error": publicMessage(c, err)})
		return
	}

	sess := c.Session()
	sess.Regenerate()
	sess.Set(auth.SessionUserID, u.ID)
	_ = c.SaveSession()
	c.Redirect("/shop")
}

// Register handles GET|POST /register.
func (h *AccountController) Register(c *ctx.Context) {
	page := ctx.H{
		"Questions":  models.SecurityQuestions,
		"MinAnswers": services.MinSecurityMatches,
	}
	if !c.IsPost() {
		page["Form"] = services.RegisterInput{}
		c.HTML(http.StatusOK, "register", page)
		return
	}

	var in services.RegisterInput
	if _, err := c.Bind(&in); err != nil {
		page["Form"] = in
		page["Error"] = "The form could not be read."
		c.HTML(http.StatusBadRequest, "register", page)
		return
	}
	in.Answers = answers(c)

	if _, err := h.account.Register(c.Context(), in); err != nil {
		in.Password = ""
		page["Form"] = in
		page["Error"] = publicMessage(c, err)
		c.HTML(statusOf(err), "register", page)
		return
	}
	redirectWith(c, loginPath, flashNotice, "Account created, please log in.")
}

// ForgotPassword handles GET|POST /forgot_password.
func (h *AccountController) ForgotPassword(c *ctx.Context) {
	page := ctx.H{
		"Questions":  models.SecurityQuestions,
		"MinAnswers": services.MinSecurityMatches,
	}
	if !c.IsPost() {
		c.HTML(http.StatusOK, "forgot_password", page)
		return
	}

	var in services.ResetInput
	if _, err := c.Bind(&in); err != nil {
		page["Error"] = "The form could not be read."
		c.HTML(http.StatusBadRequest, "forgot_password", page)
		return
	}
	in.Answers = answers(c)
	page["Email"] = in.Email

	err := h.account.ResetPassword(c.Context(), in)
	var denied *services.ResetDeniedError
	switch {
	case err == nil:
		redirectWith(c, loginPath, flashNotice, "Password updated, please log in.")
	case errors.As(err, &denied):
		page["Error"] = fmt.Sprintf("Only %d of your answers matched; at least %d are needed.", denied.Matched, services.MinSecurityMatches)
		c.HTML(http.StatusBadRequest, "forgot_password", page)
	case services.IsNotFound(err):
		page["Error"] = "No account uses that email."
		c.HTML(http.StatusNotFound, "forgot_password", page)
	default:
		page["Error"] = publicMessage(c, err)
		c.HTML(statusOf(err), "forgot_password", page)
	}
}

// Logout handles GET /logout. Both the customer and the admin flag go.
func (h *AccountController) Logout(c *ctx.Context) {
	c.Session().Invalidate()
	_ = c.SaveSession()
	c.Redirect("/")
}

// Profile handles GET|POST /profile for a logged-in customer.
func (h *AccountController) Profile(c *ctx.Context) {
	userID := c.Identity().UserID
	if !c.IsPost() {
		u, err := h.account.CurrentUser(c.Context(), userID)
		if err != nil {
			renderError(c, err)
			return
		}
		c.HTML(http.StatusOK, "profile", flashes(c, ctx.H{"User": u}))
		return
	}

	var in services.ProfileInput
	if _, err := c.Bind(&in); err != nil {
		redirectWith(c, "/profile", flashError, "The form could not be read.")
		return
	}
	image, done := formImage(c, "image")
	defer done()

	if _, err := h.account.UpdateProfile(c.Context(), userID, in, image); err != nil {
		redirectWith(c, "/profile", flashError, publicMessage(c, err))
		return
	}
	redirectWith(c, "/profile", flashNotice, "Profile updated.")
}

// formImage returns the uploaded file in field, or nil when none was sent.
func formImage(c *ctx.Context, field string) (*services.Upload, func()) {
	f, header, err := c.R.FormFile(field)
	if err != nil {
		return nil, func() {}
	}
	return &services.Upload{Filename: header.Filename, Body: f}, func() { f.Close() }
}
