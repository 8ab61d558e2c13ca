package service

import (
	"testing"
	"time"

	"golang.org/x/oauth2"
)

func TestTokenUsable(t *testing.T) {
	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		token *oauth2.Token
		want  bool
	}{
		{
			name:  "nil token",
			token: nil,
			want:  false,
		},
		{
			name:  "no access token",
			token: &oauth2.Token{Expiry: now.Add(time.Hour)},
			want:  false,
		},
		{
			name:  "zero expiry",
			token: &oauth2.Token{AccessToken: "tok"},
			want:  false,
		},
		{
			name:  "well before expiry",
			token: &oauth2.Token{AccessToken: "tok", Expiry: now.Add(time.Hour)},
			want:  true,
		},
		{
			name:  "already expired",
			token: &oauth2.Token{AccessToken: "tok", Expiry: now.Add(-time.Minute)},
			want:  false,
		},
		{
			name:  "inside the five minute buffer",
			token: &oauth2.Token{AccessToken: "tok", Expiry: now.Add(3 * time.Minute)},
			want:  false,
		},
		{
			name:  "just outside the buffer",
			token: &oauth2.Token{AccessToken: "tok", Expiry: now.Add(tokenExpiryBuffer + time.Second)},
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tokenUsable(tt.token, now); got != tt.want {
				t.Errorf("tokenUsable = %v, want %v", got, tt.want)
			}
		})
	}
}
