package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

type tokenData struct {
	ClientID string `json:"client_id"`
	Token    string `json:"token"`
}

// handleWatch follows the live events of an api-server client over
// websocket. The client token is requested once and kept in a file.
func handleWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	baseURL := fs.String("api", "http://localhost:8080", "API base URL")
	tokenPath := fs.String("token", defaultTokenPath(), "client token file")
	_ = fs.Parse(args)

	td, err := readToken(*tokenPath)
	if err != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		td, err = requestToken(ctx, *baseURL)
		cancel()
		if err != nil {
			return fmt.Errorf("request client token: %w", err)
		}
		if err := saveToken(*tokenPath, td); err != nil {
			return fmt.Errorf("save token: %w", err)
		}
	}

	wsURL, err := websocketURL(*baseURL, "/session/ws", td.Token)
	if err != nil {
		return err
	}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", *baseURL, err)
	}
	defer conn.Close()

	fmt.Fprintf(os.Stderr, "watching client %s\n", td.ClientID)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		fmt.Println(string(msg))
	}
}

func requestToken(ctx context.Context, baseURL string) (tokenData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(baseURL, "/")+"/client", nil)
	if err != nil {
		return tokenData{}, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return tokenData{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return tokenData{}, err
	}
	if resp.StatusCode >= 300 {
		return tokenData{}, fmt.Errorf("POST /client failed: %s", strings.TrimSpace(string(data)))
	}
	var td tokenData
	if err := json.Unmarshal(data, &td); err != nil {
		return tokenData{}, err
	}
	return td, nil
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./.vertice-token.json"
	}
	return filepath.Join(home, ".vertice", "token.json")
}

func saveToken(path string, td tokenData) error {
	if td.Token == "" {
		return errors.New("empty token")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(td, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func readToken(path string) (tokenData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tokenData{}, err
	}
	var td tokenData
	if err := json.Unmarshal(data, &td); err != nil {
		return tokenData{}, err
	}
	if strings.TrimSpace(td.Token) == "" {
		return tokenData{}, errors.New("empty token")
	}
	return td, nil
}

func websocketURL(baseURL, path, token string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return (&url.URL{
		Scheme:   scheme,
		Host:     u.Host,
		Path:     path,
		RawQuery: url.Values{"token": {token}}.Encode(),
	}).String(), nil
}
