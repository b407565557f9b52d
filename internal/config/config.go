package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds every setting the migration tools need. It is built once by
// Load and passed down explicitly; business logic never reads the environment.
//
// The variable names are shared with the myPay web app's .env, so the same
// file configures both.
type Config struct {
	// Organizze API credentials (HTTP Basic auth pair).
	OrganizzeEmail  string
	OrganizzeAPIKey string

	// Target user namespace in Firestore (users/<UserID>/...).
	UserID string

	// Service account material for the Firestore client. ProjectID is read
	// from the credential JSON itself.
	FirebaseCredentials []byte
	FirebaseProjectID   string

	// S3-compatible blob store (Cloudflare R2 in production).
	S3Endpoint     string
	S3AccessKeyID  string
	S3SecretKey    string
	S3Bucket       string
	S3Region       string
	S3PublicURL    string
	S3PathPrefix   string
}

// Load reads configuration from the environment, loading a .env file first if
// one is present. It returns an error for any missing required setting so the
// caller can abort before doing any work.
func Load() (*Config, error) {
	// Load .env file if present
	_ = godotenv.Load()

	cfg := &Config{
		OrganizzeEmail:  os.Getenv("VITE_ORGANIZZE_EMAIL"),
		OrganizzeAPIKey: os.Getenv("VITE_ORGANIZZE_API_KEY"),
		UserID:          os.Getenv("FIREBASE_USER_ID"),
		S3Endpoint:      os.Getenv("VITE_S3_ENDPOINT_URL"),
		S3AccessKeyID:   os.Getenv("VITE_S3_ACCESS_KEY_ID"),
		S3SecretKey:     os.Getenv("VITE_S3_SECRET_ACCESS_KEY"),
		S3Bucket:        os.Getenv("VITE_S3_BUCKET_NAME"),
		S3Region:        getEnv("VITE_S3_REGION", "auto"),
		S3PublicURL:     strings.TrimRight(os.Getenv("VITE_S3_PUBLIC_URL"), "/"),
		S3PathPrefix:    os.Getenv("VITE_S3_PATH_PREFIX"),
	}

	required := []struct {
		name  string
		value string
	}{
		{"VITE_ORGANIZZE_EMAIL", cfg.OrganizzeEmail},
		{"VITE_ORGANIZZE_API_KEY", cfg.OrganizzeAPIKey},
		{"FIREBASE_USER_ID", cfg.UserID},
		{"VITE_S3_ENDPOINT_URL", cfg.S3Endpoint},
		{"VITE_S3_ACCESS_KEY_ID", cfg.S3AccessKeyID},
		{"VITE_S3_SECRET_ACCESS_KEY", cfg.S3SecretKey},
		{"VITE_S3_BUCKET_NAME", cfg.S3Bucket},
		{"VITE_S3_PUBLIC_URL", cfg.S3PublicURL},
	}
	for _, r := range required {
		if r.value == "" {
			return nil, fmt.Errorf("config: %s is required", r.name)
		}
	}

	creds, projectID, err := resolveFirebaseCredentials(os.Getenv("FIREBASE_CREDENTIALS"))
	if err != nil {
		return nil, err
	}
	cfg.FirebaseCredentials = creds
	cfg.FirebaseProjectID = projectID

	return cfg, nil
}

// resolveFirebaseCredentials accepts either a path to a service account file
// (anything starting with "/" or ".") or the JSON content itself, and returns
// the raw JSON plus the project id embedded in it.
func resolveFirebaseCredentials(raw string) ([]byte, string, error) {
	if raw == "" {
		return nil, "", fmt.Errorf("config: FIREBASE_CREDENTIALS is required (file path or inline JSON)")
	}

	data := []byte(raw)
	if strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, ".") {
		b, err := os.ReadFile(raw)
		if err != nil {
			return nil, "", fmt.Errorf("config: reading FIREBASE_CREDENTIALS file %q: %w", raw, err)
		}
		data = b
	}

	var sa struct {
		ProjectID string `json:"project_id"`
	}
	if err := json.Unmarshal(data, &sa); err != nil {
		return nil, "", fmt.Errorf("config: parsing FIREBASE_CREDENTIALS: %w", err)
	}
	if sa.ProjectID == "" {
		return nil, "", fmt.Errorf("config: FIREBASE_CREDENTIALS has no project_id")
	}

	return data, sa.ProjectID, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
