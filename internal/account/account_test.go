package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowsCompliance(t *testing.T) {
	full := &AccessToken{Scopes: []string{"public_profile", ScopeCompliance}}
	basic := &AccessToken{Scopes: []string{ScopeComplianceBasic}}
	none := &AccessToken{Scopes: []string{"public_profile"}}
	var missing *AccessToken

	tests := []struct {
		name        string
		token       *AccessToken
		useAgeRange bool
		want        bool
	}{
		{"full scope with age range", full, true, true},
		{"basic scope with age range", basic, true, false},
		{"basic scope without age range", basic, false, true},
		{"full scope without age range", full, false, true},
		{"no scope", none, false, false},
		{"no token", missing, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.token.AllowsCompliance(tt.useAgeRange))
		})
	}
}

func TestStaticSource(t *testing.T) {
	src := NewStaticSource(nil)
	got, err := src.CurrentToken(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)

	token := &AccessToken{KID: "k"}
	src.Set(token)
	got, err = src.CurrentToken(context.Background())
	require.NoError(t, err)
	assert.Same(t, token, got)
}
