// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating the dashboard
// form fields and query parameters.

package http

import (
	"errors"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"painel/internal/core"
)

// maxSelectionLength bounds year (tab name) input.
const maxSelectionLength = 100

var (
	errMissingYear  = errors.New("missing year")
	errInvalidYear  = errors.New("invalid year")
	errMissingMonth = errors.New("missing month")
)

// ParseYear extracts the selected year tab from form or query values.
func ParseYear(values url.Values) (string, error) {
	year := sanitizeInput(values.Get("year"))
	if year == "" {
		return "", errMissingYear
	}
	if utf8.RuneCountInString(year) > maxSelectionLength || strings.ContainsAny(year, "\r\n\t") {
		return "", errInvalidYear
	}
	return year, nil
}

// ParseMonth extracts a month given as a number, a canonical name or an
// abbreviation.
func ParseMonth(values url.Values) (time.Month, error) {
	raw := sanitizeInput(values.Get("month"))
	if raw == "" {
		return 0, errMissingMonth
	}
	return core.ParseMonth(raw)
}

// ParseOptionalMonth is ParseMonth for parameters that may be absent; a
// nil month means "infer the default".
func ParseOptionalMonth(values url.Values) (*time.Month, error) {
	m, err := ParseMonth(values)
	if errors.Is(err, errMissingMonth) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Credentials holds a login form submission.
type Credentials struct {
	Username string
	Password string
}

// ParseCredentials reads the login form. The password is taken verbatim.
func ParseCredentials(values url.Values) Credentials {
	return Credentials{
		Username: sanitizeInput(values.Get("username")),
		Password: values.Get("password"),
	}
}

// sanitizeInput removes control characters except tab, newline and
// carriage return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
