package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicenow-toolkit/internal/common/config"
)

func TestBasicProvider_GetHeaders(t *testing.T) {
	p := NewBasicProvider("admin", "secret")
	headers := p.GetHeaders()

	// base64("admin:secret")
	assert.Equal(t, "Basic YWRtaW46c2VjcmV0", headers["Authorization"])
}

func TestTokenProvider_GetHeaders(t *testing.T) {
	p := NewTokenProvider("abc123")
	headers := p.GetHeaders()

	assert.Equal(t, "Bearer abc123", headers["Authorization"])
}

func TestFromConfig(t *testing.T) {
	tests := []struct {
		name     string
		authType string
		wantErr  bool
	}{
		{name: "basic", authType: "basic", wantErr: false},
		{name: "oauth", authType: "oauth", wantErr: false},
		{name: "unsupported", authType: "saml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.AuthConfig{Type: tt.authType}
			cfg.Basic.Username = "u"
			cfg.Basic.Password = "p"
			cfg.OAuth.Token = "tok"

			p, err := FromConfig(cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, p.GetHeaders()["Authorization"])
		})
	}
}
