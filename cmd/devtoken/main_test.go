package main

import (
	"testing"

	"github.com/ikkim/manajir-storefront/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    tokenRequest
		wantErr bool
	}{
		{
			name: "Default role",
			args: []string{"7", "ada@example.com"},
			want: tokenRequest{UserID: 7, Email: "ada@example.com", Role: "user"},
		},
		{
			name: "Explicit role",
			args: []string{"1", "ops@example.com", "admin"},
			want: tokenRequest{UserID: 1, Email: "ops@example.com", Role: "admin"},
		},
		{name: "Missing email", args: []string{"7"}, wantErr: true},
		{name: "Non numeric id", args: []string{"seven", "ada@example.com"}, wantErr: true},
		{name: "Zero id", args: []string{"0", "ada@example.com"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseArgs(tt.args)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSignedTokensValidate(t *testing.T) {
	req, err := parseArgs([]string{"42", "grace@example.com"})
	require.NoError(t, err)

	pair, err := util.GenerateTokenPair(req.UserID, req.Email, req.Role, "dev-secret", accessExpiry, refreshExpiry)
	require.NoError(t, err)

	claims, err := util.ValidateToken(pair.AccessToken, "dev-secret")
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, util.AccessToken, claims.TokenType)
}
