// Package bind decodes an HTTP request body (JSON or form) into a struct
// and runs pkg/validate on the result.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/shashiranjanraj/heartscript/config"
	"github.com/shashiranjanraj/heartscript/pkg/validate"
)

// maxBodyBytes returns the configured request body size limit (default 4 MB).
func maxBodyBytes() int64 {
	n, err := strconv.ParseInt(config.Get("MAX_BODY_BYTES", "4194304"), 10, 64)
	if err != nil || n <= 0 {
		return 4 << 20
	}
	return n
}

// IsJSON reports whether the request declares a JSON body.
func IsJSON(r *http.Request) bool {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mt == "application/json"
}

// Request decodes by Content-Type and validates.
// Returns (errs, nil) on validation failures and (nil, err) on a malformed body.
func Request(r *http.Request, dest interface{}) (map[string]string, error) {
	if IsJSON(r) {
		return JSON(r, dest)
	}
	return Form(r, dest)
}

// JSON decodes r.Body as JSON into dest and runs validation.
func JSON(r *http.Request, dest interface{}) (map[string]string, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes())

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("request body too large (max %d bytes)", maxErr.Limit)
		}
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return check(dest), nil
}

// Form decodes url-encoded or multipart fields into dest using `form` tags.
// Supported field kinds are string, bool, integers and floats; unparsable
// numbers are left zero for validation to report.
func Form(r *http.Request, dest interface{}) (map[string]string, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes())

	if err := parse(r); err != nil {
		return nil, fmt.Errorf("invalid form: %w", err)
	}

	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return nil, errors.New("bind: destination must be a pointer to a struct")
	}
	rv = rv.Elem()
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		name := f.Tag.Get("form")
		if name == "" || name == "-" || !f.IsExported() {
			continue
		}
		values, ok := r.Form[name]
		if !ok || len(values) == 0 {
			continue
		}
		setField(rv.Field(i), strings.TrimSpace(values[0]))
	}
	return check(dest), nil
}

func parse(r *http.Request) error {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "multipart/form-data" {
		return r.ParseMultipartForm(maxBodyBytes())
	}
	return r.ParseForm()
}

func setField(v reflect.Value, raw string) {
	switch v.Kind() {
	case reflect.String:
		v.SetString(raw)
	case reflect.Bool:
		b, _ := strconv.ParseBool(raw)
		v.SetBool(b || raw == "on")
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			v.SetInt(n)
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if n, err := strconv.ParseUint(raw, 10, 64); err == nil {
			v.SetUint(n)
		}
	case reflect.Float32, reflect.Float64:
		if n, err := strconv.ParseFloat(raw, 64); err == nil {
			v.SetFloat(n)
		}
	}
}

func check(dest interface{}) map[string]string {
	if errs := validate.Struct(dest); validate.HasErrors(errs) {
		return errs
	}
	return nil
}
