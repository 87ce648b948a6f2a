package sync

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"

	"vertice/internal/auth"
	"vertice/pkg/logger"
)

var (
	errNoNamespace = errors.New("namespace required")
	errBadToken    = errors.New("invalid token")
)

// Server accepts TCP tail clients. The first line a client sends is its
// client token when Tokens is set, or a plain namespace otherwise. An
// empty line subscribes to every namespace only when AllowAll is set.
type Server struct {
	Addr string
	Hub  *Hub
	Log  *zap.Logger

	Tokens *auth.TokenService
	// Clients, when set, rejects revoked or unknown client ids.
	Clients  *auth.Repo
	AllowAll bool

	// HelloTimeout bounds the wait for the first line.
	HelloTimeout time.Duration
}

func NewServer(addr string, hub *Hub, log *zap.Logger) *Server {
	log = logger.OrNop(log)
	return &Server{Addr: addr, Hub: hub, Log: log, HelloTimeout: 5 * time.Second}
}

// Run listens until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.Log.Info("tcp sync listening", zap.String("addr", ln.Addr().String()))
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.Log.Warn("accept failed", zap.Error(err))
			continue
		}
		go s.handle(conn)
	}
}

func (s *Server) handle(c net.Conn) {
	sc := bufio.NewScanner(c)

	_ = c.SetReadDeadline(time.Now().Add(s.HelloTimeout))
	hello := ""
	if sc.Scan() {
		hello = strings.TrimSpace(sc.Text())
	}
	_ = c.SetReadDeadline(time.Time{})

	namespace, err := s.namespace(context.Background(), hello)
	if err != nil {
		s.Log.Info("tcp client rejected", zap.String("remote", c.RemoteAddr().String()), zap.Error(err))
		_, _ = fmt.Fprintf(c, "{\"type\":\"error\",\"error\":%q}\n", err.Error())
		_ = c.Close()
		return
	}

	s.Hub.Add(c, namespace)
	s.Hub.Welcome(c, namespace)
	log := s.Log.With(zap.String("remote", c.RemoteAddr().String()), zap.String("namespace", namespace))
	log.Info("tcp client connected")

	defer func() {
		s.Hub.Remove(c)
		log.Info("tcp client disconnected")
	}()

	for sc.Scan() {
		// clients only listen
	}
}

// namespace resolves the first line a client sent. "" means every namespace.
func (s *Server) namespace(ctx context.Context, hello string) (string, error) {
	if hello == "" {
		if s.AllowAll {
			return "", nil
		}
		return "", errNoNamespace
	}
	if s.Tokens == nil {
		return hello, nil
	}

	claims, err := s.Tokens.Parse(hello)
	if err != nil {
		return "", errBadToken
	}
	if s.Clients != nil {
		client, err := s.Clients.GetClient(ctx, claims.ClientID)
		if err != nil {
			return "", fmt.Errorf("client lookup: %w", err)
		}
		if client == nil || client.Revoked {
			return "", errBadToken
		}
	}
	return claims.ClientID, nil
}
