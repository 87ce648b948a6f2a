package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"vertice/pkg/logger"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:7070", "TCP sync server address")
	token := flag.String("token", "", "client token (defaults to the one saved by `cli watch`)")
	tokenFile := flag.String("token-file", defaultTokenPath(), "client token file")
	namespace := flag.String("client", "", "client id to follow when the server takes bare namespaces")
	pretty := flag.Bool("pretty", true, "pretty print JSON events")
	flag.Parse()

	log, err := logger.New("dev", "info")
	if err != nil {
		panic(err)
	}

	hello := *token
	if hello == "" && *namespace == "" {
		hello, err = readToken(*tokenFile)
		if err != nil {
			log.Fatal("no client token; pass -token or run `cli watch` once", zap.Error(err))
		}
	}
	if hello == "" {
		hello = *namespace
	}

	for {
		if err := run(*addr, hello, *pretty, log); err != nil {
			log.Warn("disconnected", zap.Error(err))
		}
		time.Sleep(1 * time.Second) // auto reconnect
	}
}

// run sends hello (a client token or a namespace) and prints events.
func run(addr, hello string, pretty bool, log *zap.Logger) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	if _, err := fmt.Fprintln(conn, hello); err != nil {
		return fmt.Errorf("send hello: %w", err)
	}
	log.Info("connected", zap.String("addr", addr))

	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		line := sc.Bytes()

		if !pretty {
			fmt.Println(string(line))
			continue
		}

		var obj map[string]any
		if err := json.Unmarshal(line, &obj); err != nil {
			fmt.Println(string(line))
			continue
		}

		b, _ := json.MarshalIndent(obj, "", "  ")
		fmt.Println(string(b))
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return os.ErrClosed
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./.vertice-token.json"
	}
	return filepath.Join(home, ".vertice", "token.json")
}

func readToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var td struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(data, &td); err != nil {
		return "", fmt.Errorf("decode %s: %w", path, err)
	}
	if strings.TrimSpace(td.Token) == "" {
		return "", errors.New("empty token")
	}
	return strings.TrimSpace(td.Token), nil
}
