// Package auth verifies bearer tokens on the case API.
package auth

import (
	"errors"
	"strings"
)

var (
	ErrMissingToken  = errors.New("missing bearer token")
	ErrInvalidToken  = errors.New("invalid or expired token")
	ErrNotConfigured = errors.New("authentication not configured")
)

// Identity is the caller resolved from a token.
type Identity struct {
	UserID string
	Email  string
	Name   string
}

// TokenVerifier resolves a raw token to an identity.
type TokenVerifier interface {
	Validate(tokenString string) (*Identity, error)
}

// Chain tries each verifier in order and returns the first identity.
type Chain []TokenVerifier

// NewChain drops nil verifiers.
func NewChain(verifiers ...TokenVerifier) Chain {
	var c Chain
	for _, v := range verifiers {
		if v != nil {
			c = append(c, v)
		}
	}
	return c
}

func (c Chain) Validate(tokenString string) (*Identity, error) {
	if len(c) == 0 {
		return nil, ErrNotConfigured
	}
	var errs []error
	for _, v := range c {
		id, err := v.Validate(tokenString)
		if err == nil {
			return id, nil
		}
		errs = append(errs, err)
	}
	return nil, errors.Join(append([]error{ErrInvalidToken}, errs...)...)
}

// Configured reports whether any verifier is present.
func (c Chain) Configured() bool {
	return len(c) > 0
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(parts[1]), nil
}
