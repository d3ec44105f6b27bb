package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/shashiranjanraj/heartscript/pkg/logger"
	"github.com/shashiranjanraj/heartscript/pkg/metrics"
	"github.com/shashiranjanraj/heartscript/pkg/response"
)

const panicPage = `<!doctype html><title>Error | HeartScript</title><h1>500</h1><p>Something went wrong, please try again.</p>`

// Recovery turns a handler panic into a logged 500. Browsers get a plain
// error page, everything else the JSON error body.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			err := recover()
			if err == nil {
				return
			}
			if err == http.ErrAbortHandler {
				panic(err)
			}
			metrics.Panics.Inc()
			logger.WithCtx(r.Context()).Error("panic recovered",
				"error", fmt.Sprintf("%v", err),
				"stack", string(debug.Stack()),
				"method", r.Method,
				"path", r.URL.Path,
			)
			if strings.Contains(r.Header.Get("Accept"), "text/html") {
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(panicPage))
				return
			}
			response.Error(w, http.StatusInternalServerError, "Internal Server Error")
		}()
		next.ServeHTTP(w, r)
	})
}
