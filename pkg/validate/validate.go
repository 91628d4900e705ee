// Package validate checks request structs against `validate` struct tags.
//
// Rules are comma separated and run left to right; the first failure wins
// and is reported under the field's json name:
//
//	required         non-zero; a non-nil pointer always passes
//	nullable         skip the remaining rules when the value is empty
//	dive             validate each struct element of a slice
//	email, url       format checks (url means http or https)
//	mobile           Philippine mobile number, 09XXXXXXXXX or +639XXXXXXXXX
//	alpha_num        letters and digits only
//	date             YYYY-MM-DD or RFC 3339
//	in=A,B,C         one of the listed values
//	min=N, max=N     length for strings and slices, value for numbers
//	between=LO,HI    inclusive; length for strings, value for numbers
//
// Pointers are dereferenced first, so optional coordinates can still carry
// a range:
//
//	Lat *float64 `json:"lat" validate:"nullable,between=-90,90"`
//
// Element errors are keyed by path, e.g. "items.0.quantity".
package validate

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Errors maps a json field path to its first failing rule's message.
type Errors = map[string]string

// check returns a message when v fails the rule, or "".
type check func(field, param string, v reflect.Value) string

var rules = map[string]check{
	"required":  checkRequired,
	"email":     checkEmail,
	"url":       checkURL,
	"mobile":    checkMobile,
	"alpha_num": checkAlphaNum,
	"date":      checkDate,
	"in":        checkIn,
	"min":       checkMin,
	"max":       checkMax,
	"between":   checkBetween,
}

// listRules take a comma separated parameter, so the tag splitter keeps
// their commas.
var listRules = map[string]bool{"in": true, "between": true}

// Struct validates the tagged exported fields of v, which may be a struct
// or a pointer to one.
func Struct(v any) Errors {
	errs := make(Errors)
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return errs
		}
		rv = rv.Elem()
	}
	if rv.Kind() == reflect.Struct {
		walk(rv, "", errs)
	}
	return errs
}

// HasErrors reports whether errs holds any failure.
func HasErrors(errs Errors) bool { return len(errs) > 0 }

func walk(rv reflect.Value, prefix string, errs Errors) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		tag, ok := sf.Tag.Lookup("validate")
		if !ok || tag == "" || !sf.IsExported() {
			continue
		}
		field := prefix + jsonName(sf)
		if msg := checkField(field, parseTag(tag), rv.Field(i), errs); msg != "" {
			errs[field] = msg
		}
	}
}

type rule struct {
	name, param string
}

func checkField(field string, rs []rule, v reflect.Value, errs Errors) string {
	has := func(name string) bool {
		for _, r := range rs {
			if r.name == name {
				return true
			}
		}
		return false
	}

	if has("nullable") && empty(v) {
		return ""
	}
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			if has("required") {
				return requiredMsg(field)
			}
			return ""
		}
		v = v.Elem()
		// presence already satisfied required
		rs = without(rs, "required")
	}

	for _, r := range rs {
		fn, ok := rules[r.name]
		if !ok {
			continue
		}
		if msg := fn(field, r.param, v); msg != "" {
			return msg
		}
	}
	if has("dive") {
		dive(v, field, errs)
	}
	return ""
}

func dive(v reflect.Value, field string, errs Errors) {
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return
	}
	for i := 0; i < v.Len(); i++ {
		elem := reflect.Indirect(v.Index(i))
		if elem.Kind() == reflect.Struct {
			walk(elem, fmt.Sprintf("%s.%d.", field, i), errs)
		}
	}
}

func without(rs []rule, name string) []rule {
	out := rs[:0:0]
	for _, r := range rs {
		if r.name != name {
			out = append(out, r)
		}
	}
	return out
}

// parseTag splits "required,in=A,B,max=3" into rules. A token without "="
// that is not a known rule continues the previous list rule's parameter.
func parseTag(tag string) []rule {
	var out []rule
	for _, tok := range strings.Split(tag, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		name, param, hasParam := strings.Cut(tok, "=")
		if n := len(out); n > 0 && !hasParam && listRules[out[n-1].name] && !known(name) {
			out[n-1].param += "," + tok
			continue
		}
		out = append(out, rule{name: name, param: param})
	}
	return out
}

func known(name string) bool {
	_, ok := rules[name]
	return ok || name == "nullable" || name == "dive"
}

// ─── Checks ───────────────────────────────────────────────────────────────────

var (
	emailRE  = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	mobileRE = regexp.MustCompile(`^(09|\+639)\d{9}$`)
)

func requiredMsg(field string) string {
	return fmt.Sprintf("The %s field is required.", field)
}

func checkRequired(field, _ string, v reflect.Value) string {
	if empty(v) {
		return requiredMsg(field)
	}
	return ""
}

func checkEmail(field, _ string, v reflect.Value) string {
	if !emailRE.MatchString(text(v)) {
		return fmt.Sprintf("The %s must be a valid email address.", field)
	}
	return ""
}

func checkURL(field, _ string, v reflect.Value) string {
	u, err := url.ParseRequestURI(text(v))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Sprintf("The %s must be a valid URL.", field)
	}
	return ""
}

func checkMobile(field, _ string, v reflect.Value) string {
	s := strings.NewReplacer(" ", "", "-", "").Replace(text(v))
	if !mobileRE.MatchString(s) {
		return fmt.Sprintf("The %s must be a valid mobile number.", field)
	}
	return ""
}

func checkAlphaNum(field, _ string, v reflect.Value) string {
	for _, c := range text(v) {
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) {
			return fmt.Sprintf("The %s field must contain only letters and numbers.", field)
		}
	}
	return ""
}

func checkDate(field, _ string, v reflect.Value) string {
	s := text(v)
	if _, err := time.Parse(time.DateOnly, s); err == nil {
		return ""
	}
	if _, err := time.Parse(time.RFC3339, s); err == nil {
		return ""
	}
	return fmt.Sprintf("The %s is not a valid date.", field)
}

func checkIn(field, param string, v reflect.Value) string {
	s := text(v)
	for _, opt := range strings.Split(param, ",") {
		if s == strings.TrimSpace(opt) {
			return ""
		}
	}
	return fmt.Sprintf("The selected %s is invalid.", field)
}

func checkMin(field, param string, v reflect.Value) string {
	n := number(param)
	switch {
	case countable(v):
		if float64(v.Len()) < n {
			return fmt.Sprintf("The %s must have at least %s items.", field, param)
		}
	case numeric(v):
		if toFloat(v) < n {
			return fmt.Sprintf("The %s must be at least %s.", field, param)
		}
	default:
		if float64(runes(v)) < n {
			return fmt.Sprintf("The %s must be at least %s characters.", field, param)
		}
	}
	return ""
}

func checkMax(field, param string, v reflect.Value) string {
	n := number(param)
	switch {
	case countable(v):
		if float64(v.Len()) > n {
			return fmt.Sprintf("The %s must not have more than %s items.", field, param)
		}
	case numeric(v):
		if toFloat(v) > n {
			return fmt.Sprintf("The %s must not be greater than %s.", field, param)
		}
	default:
		if float64(runes(v)) > n {
			return fmt.Sprintf("The %s must not exceed %s characters.", field, param)
		}
	}
	return ""
}

func checkBetween(field, param string, v reflect.Value) string {
	lo, hi, ok := strings.Cut(param, ",")
	if !ok {
		return ""
	}
	from, to := number(lo), number(hi)
	if numeric(v) {
		if f := toFloat(v); f < from || f > to {
			return fmt.Sprintf("The %s must be between %s and %s.", field, lo, hi)
		}
		return ""
	}
	if l := float64(runes(v)); l < from || l > to {
		return fmt.Sprintf("The %s must be between %s and %s characters.", field, lo, hi)
	}
	return ""
}

// ─── Reflection helpers ───────────────────────────────────────────────────────

func empty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	case reflect.Bool:
		return false
	}
	if numeric(v) {
		return toFloat(v) == 0
	}
	return false
}

func text(v reflect.Value) string {
	if v.Kind() == reflect.String {
		return v.String()
	}
	return fmt.Sprint(v.Interface())
}

func runes(v reflect.Value) int { return len([]rune(text(v))) }

func countable(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return true
	}
	return false
}

func numeric(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func toFloat(v reflect.Value) float64 {
	switch {
	case v.CanInt():
		return float64(v.Int())
	case v.CanUint():
		return float64(v.Uint())
	case v.CanFloat():
		return v.Float()
	}
	return 0
}

func number(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name)
	}
	return name
}
