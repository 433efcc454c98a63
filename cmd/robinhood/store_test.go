package main

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestAuthStore(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	got, err := loadAuth()
	if err != nil || got != nil {
		t.Fatalf("loadAuth() on empty home = %v, %v, want nil, nil", got, err)
	}

	want := &storedAuth{Token: "T1", Scheme: "Token", Username: "u", Account: "acct/1/", CreatedAt: time.Now().UTC().Truncate(time.Second)}
	if err := saveAuth(want); err != nil {
		t.Fatalf("saveAuth: %v", err)
	}
	got, err = loadAuth()
	if err != nil {
		t.Fatalf("loadAuth: %v", err)
	}
	if got.Token != want.Token || got.Scheme != want.Scheme || got.Username != want.Username ||
		got.Account != want.Account || !got.CreatedAt.Equal(want.CreatedAt) {
		t.Errorf("loadAuth() = %+v, want %+v", got, want)
	}

	if err := clearAuth(); err != nil {
		t.Fatalf("clearAuth: %v", err)
	}
	if got, _ := loadAuth(); got != nil {
		t.Errorf("loadAuth() after clear = %+v, want nil", got)
	}
	if err := clearAuth(); err != nil {
		t.Errorf("clearAuth twice: %v", err)
	}
}

func TestResolveCredentials(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	defer viper.Reset()

	viper.Reset()
	if _, _, err := resolveCredentials(); err == nil {
		t.Error("expected error with no credentials")
	}

	viper.Set("username", "u")
	viper.Set("password", "p")
	viper.Set("auth_scheme", "Token")
	creds, _, err := resolveCredentials()
	if err != nil {
		t.Fatalf("resolveCredentials: %v", err)
	}
	if creds.Username != "u" || creds.Password != "p" || creds.Token != "" {
		t.Errorf("creds = %+v, want username and password", creds)
	}

	if err := saveAuth(&storedAuth{Token: "saved", Scheme: "Bearer"}); err != nil {
		t.Fatalf("saveAuth: %v", err)
	}
	creds, scheme, err := resolveCredentials()
	if err != nil {
		t.Fatalf("resolveCredentials: %v", err)
	}
	if creds.Token != "saved" || scheme != "Bearer" {
		t.Errorf("creds = %+v, scheme = %q, want the saved token", creds, scheme)
	}

	viper.Set("token", "explicit")
	creds, scheme, err = resolveCredentials()
	if err != nil {
		t.Fatalf("resolveCredentials: %v", err)
	}
	if creds.Token != "explicit" || scheme != "Token" {
		t.Errorf("creds = %+v, scheme = %q, want the explicit token", creds, scheme)
	}
}
