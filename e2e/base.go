package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
)

type BaseSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration and skips when no server is configured.
func (s *BaseSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.Addr == "" {
		s.T().Skip("LIVE_POLL_ADDR not set, skipping end-to-end suite")
	}
}

// Step prints a colorized header for a scenario step.
func (s *BaseSuite) Step(name string) {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)
}

// Client is one browser-like user: it keeps the session cookie between calls.
type Client struct {
	suite *BaseSuite
	http  *http.Client
	base  *url.URL
}

func (s *BaseSuite) NewClient() *Client {
	jar, err := cookiejar.New(nil)
	s.Require().NoError(err)
	base, err := url.Parse(s.Config.Addr)
	s.Require().NoError(err)
	return &Client{suite: s, http: &http.Client{Jar: jar, Timeout: 10 * time.Second}, base: base}
}

// Signup registers a fresh account and keeps its session.
func (c *Client) Signup(name string) {
	status := c.Do(http.MethodPost, "/signup", map[string]string{
		"name":     name,
		"email":    fmt.Sprintf("%s-%s@example.com", strings.ToLower(name), uuid.NewString()[:8]),
		"password": "ComplexPass123!",
	}, nil)
	c.suite.Require().Equal(http.StatusCreated, status, "signup failed for "+name)
}

// Do sends body as JSON and decodes the response into out when it is not nil.
func (c *Client) Do(method, path string, body any, out any) int {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		c.suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, c.base.JoinPath(path).String(), reader)
	c.suite.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	c.suite.Require().NoError(err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	c.suite.Require().NoError(err)

	c.suite.T().Logf("HTTP %s %s [%d] in %v", method, path, resp.StatusCode, time.Since(start))
	if c.suite.Config.DebugJSON {
		c.suite.T().Logf("RESPONSE:\n%s", raw)
	}
	if out != nil && len(raw) > 0 {
		c.suite.Require().NoError(json.Unmarshal(raw, out))
	}
	return resp.StatusCode
}

// Live opens the websocket with the client's session cookie.
func (c *Client) Live(ctx context.Context) *websocket.Conn {
	wsURL := *c.base.JoinPath("/ws")
	wsURL.Scheme = strings.Replace(wsURL.Scheme, "http", "ws", 1)

	header := http.Header{}
	for _, cookie := range c.http.Jar.Cookies(c.base) {
		header.Add("Cookie", cookie.String())
	}
	conn, _, err := websocket.Dial(ctx, wsURL.String(), &websocket.DialOptions{HTTPHeader: header})
	c.suite.Require().NoError(err, "failed to open the live connection")
	return conn
}
