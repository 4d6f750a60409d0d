package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

const (
	defaultServer = "http://127.0.0.1:8080"
	defaultSocket = "assettrack.sock"

	// cliConfigEnvVar points the CLI at a session file other than ~/.assettrack/cli.json.
	cliConfigEnvVar = "ASSETTRACK_CLI_CONFIG"

	requestIDHeader = "X-Request-ID"
	userAgent       = "assettrack-cli"
)

var errNotLoggedIn = errors.New("not logged in, run `assettrack auth login` first")

// cliConfig is the persisted CLI session: where the server lives and the token it issued.
type cliConfig struct {
	Transport string `json:"transport"`
	Server    string `json:"server"`
	Socket    string `json:"socket"`
	Token     string `json:"token"`
}

func (c cliConfig) withDefaults() cliConfig {
	if c.Transport == "" {
		c.Transport = "uds"
	}
	if c.Server == "" {
		c.Server = defaultServer
	}
	if c.Socket == "" {
		c.Socket = defaultSocket
	}
	return c
}

// remoteError is a failure reported by the server over either transport.
type remoteError struct {
	Transport string
	Code      int
	Message   string
	RequestID string
}

func (e *remoteError) Error() string {
	msg := fmt.Sprintf("%s error (%d): %s", e.Transport, e.Code, e.Message)
	if e.RequestID != "" {
		msg += " [request " + e.RequestID + "]"
	}
	return msg
}

// Unwrap lets callers test rejected tokens with errors.Is(err, errNotLoggedIn).
func (e *remoteError) Unwrap() error {
	if e.Code == http.StatusUnauthorized || e.Code == rpcUnauthorized {
		return errNotLoggedIn
	}
	return nil
}

type apiClient struct {
	httpClient *http.Client
	server     string
	token      string
}

func newAPIClient(server, token string) *apiClient {
	return &apiClient{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		server:     strings.TrimRight(server, "/"),
		token:      token,
	}
}

// request sends one JSON call. Every call carries its own request id so a
// failure can be matched against the server log.
func (c *apiClient) request(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.server+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(requestIDHeader, uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return &remoteError{
			Transport: "api",
			Code:      resp.StatusCode,
			Message:   failureMessage(raw),
			RequestID: resp.Header.Get(requestIDHeader),
		}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// failureMessage pulls the human text out of an error body. Server faults
// carry a generic "message" with the cause under "error".
func failureMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &body) != nil || (body.Message == "" && body.Error == "") {
		return strings.TrimSpace(string(raw))
	}
	switch {
	case body.Error == "" || body.Error == body.Message:
		return body.Message
	case body.Message == "":
		return body.Error
	default:
		return body.Message + ": " + body.Error
	}
}

func configPath() (string, error) {
	if p := os.Getenv(cliConfigEnvVar); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".assettrack", "cli.json"), nil
}

func loadConfig() (cliConfig, error) {
	path, err := configPath()
	if err != nil {
		return cliConfig{}, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cliConfig{}.withDefaults(), nil
	}
	if err != nil {
		return cliConfig{}, err
	}
	var cfg cliConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cliConfig{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg.withDefaults(), nil
}

// loadSession is loadConfig for commands that need a token.
func loadSession() (cliConfig, error) {
	cfg, err := loadConfig()
	if err != nil {
		return cfg, err
	}
	if cfg.Token == "" {
		return cfg, errNotLoggedIn
	}
	return cfg, nil
}

func saveConfig(cfg cliConfig) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
