package services

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

var emailRegexp = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$")

// ValidationError carries one message per rejected field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return strings.Join(parts, "; ")
}

type validator struct {
	fields map[string]string
}

func newValidator() *validator {
	return &validator{
		fields: make(map[string]string),
	}
}

func (v *validator) hasErrors() bool {
	return len(v.fields) != 0
}

func (v *validator) toError() *ValidationError {
	return &ValidationError{Fields: v.fields}
}

// checkCond records msg under key when the condition does not hold.
// The first failing check per key wins.
func (v *validator) checkCond(cond bool, key, msg string) {
	if cond {
		return
	}
	if _, ok := v.fields[key]; !ok {
		v.fields[key] = msg
	}
}

func (v *validator) checkEmail(email string) {
	v.checkCond(email != "", "email", "must be provided")
	v.checkCond(emailRegexp.MatchString(email), "email", "must be a valid email address")
}

func (v *validator) checkUsername(username string) {
	length := utf8.RuneCountInString(username)
	v.checkCond(length >= 3, "username", "must be at least 3 characters")
	v.checkCond(length <= 50, "username", "must be at most 50 characters")
}
