// Package controllers adapts HTTP requests to the services in app/services.
package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/heartscript/app/services"
	"github.com/shashiranjanraj/heartscript/pkg/ctx"
	"github.com/shashiranjanraj/heartscript/pkg/logger"
)

const (
	loginPath = "/login"
	adminPath = "/admin"

	flashNotice = "notice"
	flashError  = "error"
)

// statusOf maps a service error to its response code.
func statusOf(err error) int {
	var rd *services.ResetDeniedError
	switch {
	case services.IsValidation(err), errors.As(err, &rd):
		return http.StatusBadRequest
	case services.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// publicMessage never exposes the cause of a persistence failure.
func publicMessage(c *ctx.Context, err error) string {
	if statusOf(err) == http.StatusInternalServerError {
		logger.WithCtx(c.Context()).Error("request failed", "path", c.Path(), "error", err)
		return "Something went wrong, please try again."
	}
	return err.Error()
}

// renderError shows the error page for a failed page request.
func renderError(c *ctx.Context, err error) {
	code := statusOf(err)
	c.HTML(code, "error", ctx.H{"Code": code, "Message": publicMessage(c, err)})
}

func notFound(c *ctx.Context) {
	c.HTML(http.StatusNotFound, "error", ctx.H{"Code": http.StatusNotFound, "Message": "Page not found."})
}

// NotFound is the router's fallback handler.
func NotFound(c *ctx.Context) { notFound(c) }

// flashes moves pending flash messages into page data.
func flashes(c *ctx.Context, data ctx.H) ctx.H {
	sess := c.Session()
	if v, ok := sess.GetFlash(flashNotice); ok {
		data["Flash"] = v
	}
	if v, ok := sess.GetFlash(flashError); ok {
		data["Error"] = v
	}
	_ = c.SaveSession()
	return data
}

// redirectWith flashes a message and redirects.
func redirectWith(c *ctx.Context, to, kind, message string) {
	c.Session().Flash(kind, message)
	_ = c.SaveSession()
	c.Redirect(to)
}
