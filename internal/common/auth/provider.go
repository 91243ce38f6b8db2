// Package auth supplies credential headers for outbound ServiceNow calls.
package auth

import (
	"encoding/base64"
	"fmt"

	"servicenow-toolkit/internal/common/config"
)

// Provider yields the HTTP headers that authenticate a request. Headers are
// read once per operation and must stay valid for its duration.
type Provider interface {
	GetHeaders() map[string]string
}

// BasicProvider authenticates with a username/password pair.
type BasicProvider struct {
	username string
	password string
}

func NewBasicProvider(username, password string) *BasicProvider {
	return &BasicProvider{username: username, password: password}
}

func (p *BasicProvider) GetHeaders() map[string]string {
	creds := base64.StdEncoding.EncodeToString([]byte(p.username + ":" + p.password))
	return map[string]string{
		"Authorization": "Basic " + creds,
	}
}

// TokenProvider authenticates with a pre-issued OAuth bearer token.
type TokenProvider struct {
	token string
}

func NewTokenProvider(token string) *TokenProvider {
	return &TokenProvider{token: token}
}

func (p *TokenProvider) GetHeaders() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + p.token,
	}
}

// FromConfig builds the provider selected by the auth section.
func FromConfig(cfg config.AuthConfig) (Provider, error) {
	switch cfg.Type {
	case "basic":
		return NewBasicProvider(cfg.Basic.Username, cfg.Basic.Password), nil
	case "oauth":
		return NewTokenProvider(cfg.OAuth.Token), nil
	default:
		return nil, fmt.Errorf("unsupported auth type: %q", cfg.Type)
	}
}
