// Package server runs the localhost callback server for the one-time Google
// OAuth authorization. It captures a single authorization code (or error)
// from the redirect and shows the user a plain result page.
package server

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

const successHTML = `<!DOCTYPE html>
<html>
<head><title>Authorization Successful</title></head>
<body style="font-family:Arial,sans-serif;text-align:center;margin:50px;">
  <h1 style="color:#28a745;">Authorization Successful</h1>
  <p>The bot is now authorized to post to your Blogger account.</p>
  <p><strong>You can close this tab and return to Telegram.</strong>
  Finish the setup there with <code>/complete_auth</code>.</p>
</body>
</html>`

const errorHTML = `<!DOCTYPE html>
<html>
<head><title>Authorization Failed</title></head>
<body style="font-family:Arial,sans-serif;text-align:center;margin:50px;">
  <h1 style="color:#dc3545;">Authorization Failed</h1>
  <p>Error: %s</p>
  <p>Please try again from the bot with <code>/auth</code>.</p>
</body>
</html>`

// Server is a one-shot OAuth callback listener.
type Server struct {
	srv  *http.Server
	ln   net.Listener
	addr string

	mu      sync.Mutex
	code    string
	authErr string
	done    chan struct{}
	once    sync.Once
}

// New prepares a callback server on addr (e.g. ":8080"; ":0" picks a free
// port). Call Start to begin listening.
func New(addr string) *Server {
	if addr == "" {
		addr = ":8080"
	}
	return &Server{addr: addr, done: make(chan struct{})}
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("start oauth callback server: %w", err)
	}
	s.ln = ln

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleCallback)
	s.srv = &http.Server{Handler: mux}

	go func() {
		// ErrServerClosed after Stop is the normal path.
		_ = s.srv.Serve(ln)
	}()
	return nil
}

// Stop shuts the listener down. Safe to call more than once.
func (s *Server) Stop() {
	if s.srv != nil {
		_ = s.srv.Close()
	}
}

// RedirectURI returns the redirect URI registered with Google for this
// listener, using the actual bound port.
func (s *Server) RedirectURI() string {
	port := ""
	if s.ln != nil {
		if tcp, ok := s.ln.Addr().(*net.TCPAddr); ok {
			port = fmt.Sprintf(":%d", tcp.Port)
		}
	}
	if port == "" {
		port = s.addr
	}
	return "http://localhost" + port
}

// Wait blocks until a callback arrives or the timeout passes, and returns the
// authorization code.
func (s *Server) Wait(timeout time.Duration) (string, error) {
	select {
	case <-s.done:
	case <-time.After(timeout):
		return "", errors.New("no authorization received; complete the consent page in your browser first")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.authErr != "" {
		return "", fmt.Errorf("oauth error: %s", s.authErr)
	}
	if s.code == "" {
		return "", errors.New("callback carried no authorization code")
	}
	return s.code, nil
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	switch {
	case q.Get("code") != "":
		s.mu.Lock()
		s.code = q.Get("code")
		s.mu.Unlock()
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, successHTML)
		s.once.Do(func() { close(s.done) })
	case q.Get("error") != "":
		s.mu.Lock()
		s.authErr = q.Get("error")
		s.mu.Unlock()
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, errorHTML, q.Get("error"))
		s.once.Do(func() { close(s.done) })
	default:
		http.NotFound(w, r)
	}
}
