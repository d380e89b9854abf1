// Package publisher posts finished HTML documents to one configured Blogger
// blog through the Blogger v3 REST API, refreshing the Google OAuth access
// token as needed.
package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	defaultTokenURL = "https://oauth2.googleapis.com/token"
	defaultAPIBase  = "https://www.googleapis.com/blogger/v3"
	defaultAuthURL  = "https://accounts.google.com/o/oauth2/v2/auth"

	bloggerScope = "https://www.googleapis.com/auth/blogger"
)

// Config holds the blog target and Google OAuth client credentials.
type Config struct {
	BlogID       string     `json:"blog_id"`
	ClientID     string     `json:"client_id"`
	ClientSecret string     `json:"client_secret"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	TokenFile    string     `json:"token_file,omitempty"`
	TemplatePath string     `json:"template_path,omitempty"`
	ServerAddr   string     `json:"server_addr,omitempty"`
	LLM          *LLMConfig `json:"llm,omitempty"`
}

// LLMConfig is the optional model configuration for the review draft
// assistant (does not affect publishing).
type LLMConfig struct {
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
	APIKey   string `json:"api_key,omitempty"`
	BaseURL  string `json:"base_url,omitempty"`
}

// LoadConfig reads JSON config from disk and applies environment overrides.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, err
	}

	if v := os.Getenv("BLOG_ID"); v != "" {
		cfg.BlogID = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_ID"); v != "" {
		cfg.ClientID = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_SECRET"); v != "" {
		cfg.ClientSecret = v
	}
	if v := os.Getenv("GOOGLE_REFRESH_TOKEN"); v != "" {
		cfg.RefreshToken = v
	}

	if cfg.BlogID == "" || cfg.ClientID == "" || cfg.ClientSecret == "" {
		return Config{}, errors.New("config must include blog_id, client_id, and client_secret")
	}
	return cfg, nil
}

// PostParams describes one post to create.
type PostParams struct {
	Title   string
	Content string
	Labels  []string
}

// PublishError is a failed Blogger API call, surfaced to the user so they can
// retry without losing the session.
type PublishError struct {
	StatusCode int
	Message    string
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("blogger api: %d %s", e.StatusCode, e.Message)
}

type tokenResp struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Error        string `json:"error"`
	ErrorDesc    string `json:"error_description"`
}

type postPayload struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Labels  []string `json:"labels,omitempty"`
}

type postResp struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Publisher is the gateway to the configured blog. The access token is cached
// and refreshed under the mutex shortly before it expires.
type Publisher struct {
	cfg     Config
	client  *http.Client
	verbose bool
	logger  *log.Logger

	tokenURL string
	apiBase  string
	authURL  string

	mu           sync.Mutex
	refreshToken string
	accessToken  string
	tokenExpires time.Time
}

// New creates a Publisher. The refresh token may be absent at startup; then
// publishing reports that authorization is required until the OAuth flow
// completes.
func New(cfg Config, client *http.Client, verbose bool, logger *log.Logger) (*Publisher, error) {
	if cfg.BlogID == "" || cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("config must include blog_id, client_id, and client_secret")
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if logger == nil {
		logger = log.Default()
	}

	p := &Publisher{
		cfg:          cfg,
		client:       client,
		verbose:      verbose,
		logger:       logger,
		tokenURL:     defaultTokenURL,
		apiBase:      defaultAPIBase,
		authURL:      defaultAuthURL,
		refreshToken: cfg.RefreshToken,
	}
	if p.refreshToken == "" && cfg.TokenFile != "" {
		if data, err := os.ReadFile(cfg.TokenFile); err == nil {
			p.refreshToken = strings.TrimSpace(string(data))
		}
	}
	return p, nil
}

func (p *Publisher) infof(format string, args ...interface{}) {
	if !p.verbose {
		return
	}
	p.logger.Printf("[INFO] "+format, args...)
}

// BlogID returns the configured publishing target.
func (p *Publisher) BlogID() string { return p.cfg.BlogID }

// Authorized reports whether a refresh token is available.
func (p *Publisher) Authorized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.refreshToken != ""
}

// SetRefreshToken stores a freshly obtained refresh token and persists it to
// the token file when one is configured.
func (p *Publisher) SetRefreshToken(tok string) error {
	p.mu.Lock()
	p.refreshToken = tok
	p.accessToken = ""
	p.tokenExpires = time.Time{}
	p.mu.Unlock()

	if p.cfg.TokenFile == "" {
		return nil
	}
	return os.WriteFile(p.cfg.TokenFile, []byte(tok+"\n"), 0o600)
}

// AuthURL builds the Google consent URL for first-time authorization.
func (p *Publisher) AuthURL(redirectURI string) string {
	q := url.Values{}
	q.Set("client_id", p.cfg.ClientID)
	q.Set("redirect_uri", redirectURI)
	q.Set("response_type", "code")
	q.Set("scope", bloggerScope)
	q.Set("access_type", "offline")
	q.Set("prompt", "consent")
	return p.authURL + "?" + q.Encode()
}

// ExchangeCode turns an authorization code into a refresh token and stores it.
func (p *Publisher) ExchangeCode(ctx context.Context, code, redirectURI string) error {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", redirectURI)
	form.Set("client_id", p.cfg.ClientID)
	form.Set("client_secret", p.cfg.ClientSecret)

	data, err := p.postToken(ctx, form)
	if err != nil {
		return err
	}
	if data.RefreshToken == "" {
		return errors.New("token response did not include a refresh token")
	}
	p.infof("authorization code exchanged")
	return p.SetRefreshToken(data.RefreshToken)
}

// CreatePost publishes one finished HTML document to the configured blog and
// returns the post URL. One attempt per call; retries are user-triggered.
func (p *Publisher) CreatePost(ctx context.Context, params PostParams) (string, error) {
	if params.Title == "" || params.Content == "" {
		return "", errors.New("title and content are required")
	}

	token, err := p.token(ctx)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(postPayload{
		Title:   params.Title,
		Content: params.Content,
		Labels:  params.Labels,
	})
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/blogs/%s/posts/", p.apiBase, p.cfg.BlogID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		msg := resp.Status
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Message
		}
		return "", &PublishError{StatusCode: resp.StatusCode, Message: msg}
	}

	var data postResp
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", err
	}
	if data.URL == "" {
		return "", &PublishError{StatusCode: resp.StatusCode, Message: "response did not include a post url"}
	}
	p.infof("post created: %s", data.URL)
	return data.URL, nil
}

// token returns a valid access token, refreshing it when it is within a
// minute of expiry.
func (p *Publisher) token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.refreshToken == "" {
		return "", errors.New("not authorized: complete the OAuth flow with /auth first")
	}
	if p.accessToken != "" && time.Now().Before(p.tokenExpires.Add(-time.Minute)) {
		return p.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", p.refreshToken)
	form.Set("client_id", p.cfg.ClientID)
	form.Set("client_secret", p.cfg.ClientSecret)

	data, err := p.postToken(ctx, form)
	if err != nil {
		return "", err
	}
	p.accessToken = data.AccessToken
	p.tokenExpires = time.Now().Add(time.Duration(data.ExpiresIn) * time.Second)
	p.infof("access token refreshed, expires in %ds", data.ExpiresIn)
	return p.accessToken, nil
}

func (p *Publisher) postToken(ctx context.Context, form url.Values) (tokenResp, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return tokenResp{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return tokenResp{}, err
	}
	defer resp.Body.Close()

	var data tokenResp
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return tokenResp{}, err
	}
	if data.Error != "" {
		return tokenResp{}, fmt.Errorf("oauth token request failed: %s %s", data.Error, data.ErrorDesc)
	}
	if data.AccessToken == "" {
		return tokenResp{}, errors.New("oauth token response missing access_token")
	}
	return data, nil
}
