package amb

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// Client talks to the robot's remote command API over HTTP.
type Client struct {
	mu         sync.RWMutex
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) get(path string, result any) error {
	c.mu.RLock()
	url := c.baseURL + path
	c.mu.RUnlock()
	resp, err := c.httpClient.Get(url)
	if err != nil {
		return fmt.Errorf("amb GET %s: %w", path, err)
	}
	defer resp.Body.Close()
	return c.decode(path, resp, result)
}

func (c *Client) post(path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("amb marshal: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}
	c.mu.RLock()
	url := c.baseURL + path
	c.mu.RUnlock()
	resp, err := c.httpClient.Post(url, "application/json", bodyReader)
	if err != nil {
		return fmt.Errorf("amb POST %s: %w", path, err)
	}
	defer resp.Body.Close()
	return c.decode(path, resp, result)
}

func (c *Client) decode(path string, resp *http.Response, result any) error {
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("amb read body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("amb HTTP %d on %s: %s", resp.StatusCode, path, string(data))
	}
	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("amb decode %s: %w", path, err)
		}
	}
	return nil
}

// BaseURL returns the client's base URL.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// Reconfigure updates the client's base URL and timeout for hot-reload.
func (c *Client) Reconfigure(baseURL string, timeout time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = baseURL
	c.httpClient.Timeout = timeout
}

// checkResponse validates the robot API response envelope code.
func checkResponse(r *Response) error {
	if r.Code != 0 {
		return fmt.Errorf("amb error %d: %s", r.Code, r.Msg)
	}
	return nil
}
