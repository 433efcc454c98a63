package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// storedAuth is the login saved between invocations.
type storedAuth struct {
	Token     string    `json:"token"`
	Scheme    string    `json:"scheme"`
	Username  string    `json:"username"`
	Account   string    `json:"account"`
	CreatedAt time.Time `json:"created_at"`
}

func authFilePath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "auth.json"), nil
}

func saveAuth(auth *storedAuth) error {
	path, err := authFilePath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(auth, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// loadAuth returns nil, nil when nothing is saved.
func loadAuth() (*storedAuth, error) {
	path, err := authFilePath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var auth storedAuth
	if err := json.Unmarshal(data, &auth); err != nil {
		return nil, err
	}
	if auth.Token == "" {
		return nil, nil
	}
	return &auth, nil
}

func clearAuth() error {
	path, err := authFilePath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
