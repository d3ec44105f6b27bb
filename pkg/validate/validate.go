// Package validate provides struct-tag validation for form and JSON input.
//
// Supported rules (comma-separated in the `validate` tag):
//
//	required            field must not be zero/empty
//	nullable            if empty, skip all remaining rules for this field
//	email               valid email address
//	numeric             any number
//	integer             whole number
//	digits=N            exactly N decimal digits
//	min=N               string: min char length | number: min value
//	max=N               string: max char length | number: max value
//	gt=N                number > N
//	in=a|b|c            value must be one of the listed items
//	confirmed           value must equal the sibling field <Field>Confirmation
//
// Example:
//
//	type Input struct {
//	    Name   string `form:"name"   validate:"required,max=100"`
//	    Email  string `form:"email"  validate:"required,email"`
//	    Status string `form:"status" validate:"required,in=Pending|Shipped"`
//	}
package validate

import (
	"fmt"
	"net/mail"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Struct validates all exported fields of v that carry a `validate` tag.
// Returns a map of field name to message; empty means valid.
func Struct(v interface{}) map[string]string {
	errs := make(map[string]string)
	walk(v, func(name, msg string) bool {
		errs[name] = msg
		return true
	})
	return errs
}

// First returns the first failing field in declaration order.
func First(v interface{}) (field, message string, failed bool) {
	walk(v, func(name, msg string) bool {
		field, message, failed = name, msg, true
		return false
	})
	return field, message, failed
}

func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

func walk(v interface{}, report func(name, msg string) bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return
	}
	rt := rv.Type()

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		tag := field.Tag.Get("validate")
		if tag == "" || !field.IsExported() {
			continue
		}

		value := rv.Field(i)
		rules := strings.Split(tag, ",")
		if hasRule(rules, "nullable") && isEmpty(value) {
			continue
		}

		name := FieldName(field)
		for _, rule := range rules {
			if rule == "nullable" {
				continue
			}
			if msg := applyRule(rule, name, field.Name, value, rv); msg != "" {
				if !report(name, msg) {
					return
				}
				break
			}
		}
	}
}

func applyRule(rule, name, goName string, v, parent reflect.Value) string {
	raw := strings.TrimSpace(fmt.Sprintf("%v", v.Interface()))
	key, param, _ := strings.Cut(rule, "=")

	switch key {
	case "required":
		if isEmpty(v) {
			return fmt.Sprintf("The %s field is required.", name)
		}
	case "email":
		addr, err := mail.ParseAddress(raw)
		if err != nil || addr.Address != raw || !strings.Contains(raw[strings.LastIndex(raw, "@")+1:], ".") {
			return fmt.Sprintf("The %s must be a valid email address.", name)
		}
	case "numeric":
		if _, err := strconv.ParseFloat(raw, 64); err != nil {
			return fmt.Sprintf("The %s must be a number.", name)
		}
	case "integer":
		if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
			return fmt.Sprintf("The %s must be an integer.", name)
		}
	case "digits":
		n, _ := strconv.Atoi(param)
		if len(raw) != n || strings.Trim(raw, "0123456789") != "" {
			return fmt.Sprintf("The %s must be %d digits.", name, n)
		}
	case "min":
		limit, _ := strconv.ParseFloat(param, 64)
		if isNumericKind(v) {
			if toFloat(v) < limit {
				return fmt.Sprintf("The %s must be at least %s.", name, param)
			}
		} else if float64(utf8.RuneCountInString(raw)) < limit {
			return fmt.Sprintf("The %s must be at least %s characters.", name, param)
		}
	case "max":
		limit, _ := strconv.ParseFloat(param, 64)
		if isNumericKind(v) {
			if toFloat(v) > limit {
				return fmt.Sprintf("The %s may not be greater than %s.", name, param)
			}
		} else if float64(utf8.RuneCountInString(raw)) > limit {
			return fmt.Sprintf("The %s may not be greater than %s characters.", name, param)
		}
	case "gt":
		limit, _ := strconv.ParseFloat(param, 64)
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil || f <= limit {
			return fmt.Sprintf("The %s must be greater than %s.", name, param)
		}
	case "in":
		for _, opt := range strings.Split(param, "|") {
			if raw == opt {
				return ""
			}
		}
		return fmt.Sprintf("The selected %s is invalid.", name)
	case "confirmed":
		sibling := parent.FieldByName(goName + "Confirmation")
		if !sibling.IsValid() || fmt.Sprintf("%v", sibling.Interface()) != fmt.Sprintf("%v", v.Interface()) {
			return fmt.Sprintf("The %s confirmation does not match.", name)
		}
	}
	return ""
}

func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	}
	return v.IsZero()
}

func isNumericKind(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func toFloat(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	}
	return 0
}

// FieldName prefers the form tag, then json, then the Go name.
func FieldName(f reflect.StructField) string {
	for _, key := range []string{"form", "json"} {
		if tag := f.Tag.Get(key); tag != "" && tag != "-" {
			if name, _, _ := strings.Cut(tag, ","); name != "" {
				return name
			}
		}
	}
	return f.Name
}

func hasRule(rules []string, target string) bool {
	for _, r := range rules {
		if r == target {
			return true
		}
	}
	return false
}
