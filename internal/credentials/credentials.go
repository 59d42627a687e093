// Package credentials selects the Google service-account key used by the
// Drive, Sheets and Firebase clients.
package credentials

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"google.golang.org/api/option"

	"kokurikulumAPI/internal/logger"
)

// ErrNotFound is returned when neither source yields a usable key.
var ErrNotFound = errors.New("unable to find valid credentials")

// Config lists the sources in priority order: the environment value first,
// then the local files.
type Config struct {
	// EnvJSON is the service-account key, raw JSON or base64 encoded.
	EnvJSON string
	Files   []string
	// Dir is where Files are looked up. Empty means the working directory.
	Dir string
}

type Credentials struct {
	Source      string
	ClientEmail string
	ProjectID   string
	json        []byte
}

type serviceAccountKey struct {
	Type        string `json:"type"`
	ClientEmail string `json:"client_email"`
	ProjectID   string `json:"project_id"`
	PrivateKey  string `json:"private_key"`
}

// Load returns the first valid key. A broken source is logged and skipped.
func Load(cfg Config) (*Credentials, error) {
	if cfg.EnvJSON != "" {
		creds, err := parse(cfg.EnvJSON, "env:GCP_SERVICE_ACCOUNT_JSON")
		if err == nil {
			logger.Info("Loaded credentials from environment", "client_email", creds.ClientEmail)
			return creds, nil
		}
		logger.Warn("Error loading credentials from environment", "err", err)
	}

	for _, name := range cfg.Files {
		path := name
		if cfg.Dir != "" && !filepath.IsAbs(path) {
			path = filepath.Join(cfg.Dir, name)
		}
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			logger.Warn("Error reading credentials file", "file", path, "err", err)
			continue
		}
		creds, err := parse(string(data), path)
		if err != nil {
			logger.Warn("Error loading credentials file", "file", path, "err", err)
			continue
		}
		logger.Info("Loaded credentials from local file", "file", path, "client_email", creds.ClientEmail)
		return creds, nil
	}

	return nil, fmt.Errorf("%w: set GCP_SERVICE_ACCOUNT_JSON or provide one of %s",
		ErrNotFound, strings.Join(cfg.Files, ", "))
}

func parse(raw, source string) (*Credentials, error) {
	data := []byte(strings.TrimSpace(raw))
	if !bytes.HasPrefix(data, []byte("{")) {
		decoded, err := base64.StdEncoding.DecodeString(string(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 credentials: %w", err)
		}
		data = decoded
	}

	var key serviceAccountKey
	if err := json.Unmarshal(data, &key); err != nil {
		return nil, fmt.Errorf("invalid credentials JSON: %w", err)
	}
	if key.Type != "service_account" {
		return nil, fmt.Errorf("credentials type is %q, want service_account", key.Type)
	}
	if key.ClientEmail == "" || key.PrivateKey == "" {
		return nil, errors.New("credentials are missing client_email or private_key")
	}

	return &Credentials{
		Source:      source,
		ClientEmail: key.ClientEmail,
		ProjectID:   key.ProjectID,
		json:        data,
	}, nil
}

// ClientOptions authenticates a Google API client with these credentials.
func (c *Credentials) ClientOptions(scopes ...string) []option.ClientOption {
	opts := []option.ClientOption{option.WithCredentialsJSON(c.json)}
	if len(scopes) > 0 {
		opts = append(opts, option.WithScopes(scopes...))
	}
	return opts
}
