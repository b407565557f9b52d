package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const serviceAccountJSON = `{"type": "service_account", "project_id": "mypay-prod"}`

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("VITE_ORGANIZZE_EMAIL", "user@example.com")
	t.Setenv("VITE_ORGANIZZE_API_KEY", "secret")
	t.Setenv("FIREBASE_USER_ID", "user-1")
	t.Setenv("VITE_S3_ENDPOINT_URL", "https://r2.example.com")
	t.Setenv("VITE_S3_ACCESS_KEY_ID", "ak")
	t.Setenv("VITE_S3_SECRET_ACCESS_KEY", "sk")
	t.Setenv("VITE_S3_BUCKET_NAME", "mypay")
	t.Setenv("VITE_S3_PUBLIC_URL", "https://files.example.com/")
	t.Setenv("FIREBASE_CREDENTIALS", serviceAccountJSON)
	t.Setenv("VITE_S3_REGION", "")
	t.Setenv("VITE_S3_PATH_PREFIX", "")
}

func TestLoad(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.OrganizzeEmail != "user@example.com" || cfg.UserID != "user-1" {
		t.Errorf("cfg = %+v, want values from environment", cfg)
	}
	if cfg.S3PublicURL != "https://files.example.com" {
		t.Errorf("S3PublicURL = %q, want trailing slash trimmed", cfg.S3PublicURL)
	}
	if cfg.FirebaseProjectID != "mypay-prod" {
		t.Errorf("FirebaseProjectID = %q, want mypay-prod from credential JSON", cfg.FirebaseProjectID)
	}
	if string(cfg.FirebaseCredentials) != serviceAccountJSON {
		t.Errorf("FirebaseCredentials = %q, want inline JSON kept verbatim", cfg.FirebaseCredentials)
	}
}

func TestLoad_RegionDefault(t *testing.T) {
	setRequiredEnv(t)
	os.Unsetenv("VITE_S3_REGION")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.S3Region != "auto" {
		t.Errorf("S3Region = %q, want default auto", cfg.S3Region)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("VITE_ORGANIZZE_API_KEY", "")

	_, err := Load()
	if err == nil {
		t.Fatal("Expected error for missing API key, got nil")
	}
	if !strings.Contains(err.Error(), "VITE_ORGANIZZE_API_KEY") {
		t.Errorf("err = %v, want the missing variable named", err)
	}
}

func TestResolveFirebaseCredentials_FilePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "service-account.json")
	if err := os.WriteFile(path, []byte(serviceAccountJSON), 0o600); err != nil {
		t.Fatal(err)
	}

	data, projectID, err := resolveFirebaseCredentials(path)
	if err != nil {
		t.Fatalf("resolveFirebaseCredentials failed: %v", err)
	}
	if projectID != "mypay-prod" {
		t.Errorf("projectID = %q, want mypay-prod", projectID)
	}
	if string(data) != serviceAccountJSON {
		t.Errorf("data = %q, want file contents", data)
	}
}

func TestResolveFirebaseCredentials_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"missing file", "/nonexistent/service-account.json"},
		{"invalid json", "not json"},
		{"no project id", `{"type": "service_account"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := resolveFirebaseCredentials(tt.raw); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}
