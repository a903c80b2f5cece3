package lk

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

const (
	Backend                 string = "https://restapi.ladeklubben.dk"
	MaxRefreshAttempts      int    = 3
	RefreshCooldownDuration        = 5 * time.Minute
	userAgent                      = "ladeklubben-go"
)

type Client struct {
	httpClient *http.Client
	config     *Config
	configPath string
	clock      clockwork.Clock

	token      string
	expires    int64
	tokenMutex sync.RWMutex

	refreshAttempts int64
	refreshMutex    sync.Mutex
	lastRefreshTime time.Time
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	Expires     int64  `json:"expires"`
}

var log = logrus.StandardLogger()

func New(config *Config) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	log.Debugf("lk New")
	c := &Client{
		config: config,
		clock:  clockwork.NewRealClock(),
	}
	c.httpClient = &http.Client{
		Transport: lkRoundTripper{client: c},
		Timeout:   30 * time.Second,
	}
	return c, nil
}

func (c *Client) SetConfigPath(path string) {
	c.configPath = path
}

// SetClock replaces the clock used for token expiry checks
func (c *Client) SetClock(clock clockwork.Clock) {
	c.clock = clock
}

// HashPassword returns the md5 hex digest the backend expects instead of the plain password
func HashPassword(password string) string {
	sum := md5.Sum([]byte(password))
	return hex.EncodeToString(sum[:])
}

func (c *Client) Init(ctx context.Context) error {
	log.Debugf("initializing client")

	atomic.StoreInt64(&c.refreshAttempts, 0)

	if c.config.Token != "" {
		log.Debugf("token is not empty, trying to use it")
		c.setToken(c.config.Token, c.config.TokenExpires)
		if err := c.checkToken(ctx); err != nil {
			log.Warnf("token is invalid: %s", err)
			c.setToken("", 0)
			return c.Login(ctx, c.config.Username, c.config.Password)
		}
		return nil
	}

	log.Debugf("token is empty, trying to login")
	if err := c.Login(ctx, c.config.Username, c.config.Password); err != nil {
		return err
	}
	log.Debugf("login OK")
	return nil
}

func (c *Client) Login(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return fmt.Errorf("%w: username and password are required", ErrNotAuthenticated)
	}
	log.Debugf("logging in as %s", username)

	body, err := json.Marshal(loginRequest{
		Email:    username,
		Password: HashPassword(password),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, Backend+"/user/login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json;charset=UTF-8")
	req.Header.Set("User-Agent", userAgent)

	res, err := c.directClient().Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("login failed: %w", getError(res))
	}

	var response tokenResponse
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return err
	}
	if response.AccessToken == "" {
		return fmt.Errorf("login failed: %w", ErrNotAuthenticated)
	}

	c.setToken(response.AccessToken, response.Expires)
	return c.saveToken()
}

// Logout forgets the token, the stored credentials stay in the config
func (c *Client) Logout() error {
	c.setToken("", 0)
	return c.saveToken()
}

func (c *Client) IsAuthenticated() bool {
	return c.getToken() != ""
}

// RefreshToken exchanges the current token for a fresh one
func (c *Client) RefreshToken(ctx context.Context) error {
	token := c.getToken()
	if token == "" {
		return ErrNotAuthenticated
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, Backend+"/user/tokenrefresh", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", userAgent)

	res, err := c.directClient().Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("token refresh failed: %w", getError(res))
	}

	var response tokenResponse
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return err
	}
	c.setToken(response.AccessToken, response.Expires)
	log.Debugf("token refreshed, expires at %d", response.Expires)
	return c.saveToken()
}

func (c *Client) checkToken(ctx context.Context) error {
	if c.getToken() == "" {
		return fmt.Errorf("token is empty")
	}
	_, err := c.GetUserInformation(ctx)
	return err
}

// saveToken saves the token to the config file
func (c *Client) saveToken() error {
	c.tokenMutex.RLock()
	c.config.Token = c.token
	c.config.TokenExpires = c.expires
	c.tokenMutex.RUnlock()

	if c.configPath == "" {
		return nil
	}
	return SaveConfig(c.config, c.configPath)
}

func (c *Client) GetConfig() Config {
	return *c.config
}

func (c *Client) getToken() string {
	c.tokenMutex.RLock()
	defer c.tokenMutex.RUnlock()
	return c.token
}

func (c *Client) setToken(token string, expires int64) {
	c.tokenMutex.Lock()
	defer c.tokenMutex.Unlock()
	c.token = token
	c.expires = expires
}

// tokenExpired reports whether the token carries an expiry that has passed
func (c *Client) tokenExpired() bool {
	c.tokenMutex.RLock()
	defer c.tokenMutex.RUnlock()
	return c.token != "" && c.expires > 0 && c.expires < c.clock.Now().Unix()
}

func (c *Client) hasCredentials() bool {
	return c.config.Username != "" && c.config.Password != ""
}

// directClient bypasses the round tripper to avoid refresh recursion
func (c *Client) directClient() *http.Client {
	return &http.Client{
		Transport: http.DefaultTransport,
		Timeout:   30 * time.Second,
	}
}

// refreshTokenIfNeeded logs in again after a 401
func (c *Client) refreshTokenIfNeeded(ctx context.Context) error {
	c.refreshMutex.Lock()
	defer c.refreshMutex.Unlock()

	attempts := atomic.LoadInt64(&c.refreshAttempts)
	if attempts >= int64(MaxRefreshAttempts) {
		return fmt.Errorf("authentication failed: exceeded maximum refresh attempts (%d). Please check your credentials", MaxRefreshAttempts)
	}

	if attempts > 0 && c.clock.Since(c.lastRefreshTime) < RefreshCooldownDuration {
		return fmt.Errorf("authentication failed: too many recent attempts. Please wait %v before retrying", RefreshCooldownDuration)
	}

	atomic.AddInt64(&c.refreshAttempts, 1)
	c.lastRefreshTime = c.clock.Now()

	log.Debugf("Refreshing token due to 401 response (attempt %d/%d)", atomic.LoadInt64(&c.refreshAttempts), MaxRefreshAttempts)

	if err := c.Login(ctx, c.config.Username, c.config.Password); err != nil {
		log.Errorf("Token refresh failed (attempt %d/%d): %v", atomic.LoadInt64(&c.refreshAttempts), MaxRefreshAttempts, err)
		return fmt.Errorf("failed to refresh token: %w", err)
	}

	atomic.StoreInt64(&c.refreshAttempts, 0)
	log.Infof("Token refreshed successfully")
	return nil
}

// do sends a JSON request and decodes the JSON response into out, if given
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := toJSON(body)
		if err != nil {
			return err
		}
		reader = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, Backend+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json;charset=UTF-8")

	log.Debugf("%s %s", method, path)
	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return getError(res)
	}
	if res.StatusCode == http.StatusNoContent || out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode %s response: %w", path, err)
	}
	return nil
}

func toJSON[T any](request T) (io.Reader, error) {
	buffer := bytes.NewBuffer(nil)
	err := json.NewEncoder(buffer).Encode(request)
	return buffer, err
}
