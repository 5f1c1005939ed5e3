package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"neurod/pkg/types"
)

// Client is a thin HTTP client for a running neurod daemon.
type Client struct {
	baseURL string
	hc      *http.Client
}

// NewClient builds a client for the given base URL. A bare host:port is
// accepted and upgraded to http://.
func NewClient(baseURL string) *Client {
	u := strings.TrimRight(baseURL, "/")
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		u = "http://" + u
	}
	return &Client{baseURL: u, hc: &http.Client{Timeout: 10 * time.Minute}}
}

// Endpoints fetches the registry listing.
func (c *Client) Endpoints(ctx context.Context) (types.EndpointsResponse, error) {
	var out types.EndpointsResponse
	err := c.getJSON(ctx, "/endpoints", &out)
	return out, err
}

// Status fetches the daemon status snapshot.
func (c *Client) Status(ctx context.Context) (types.StatusResponse, error) {
	var out types.StatusResponse
	err := c.getJSON(ctx, "/status", &out)
	return out, err
}

// Store creates a note with a freshly simulated recording.
func (c *Client) Store(ctx context.Context, req types.NoteCreateRequest) (types.NoteResponse, error) {
	var out types.NoteResponse
	err := c.postJSON(ctx, "/notes", req, &out)
	return out, err
}

// Search runs a semantic search over stored notes.
func (c *Client) Search(ctx context.Context, req types.SearchRequest) (types.SearchResponse, error) {
	var out types.SearchResponse
	err := c.postJSON(ctx, "/notes/search", req, &out)
	return out, err
}

// Generate streams a completion, invoking onToken for every token line, and
// returns the final summary line.
func (c *Client) Generate(ctx context.Context, req types.GenerateRequest, onToken func(string)) (types.GenerateFinal, error) {
	var final types.GenerateFinal
	body, err := json.Marshal(req)
	if err != nil {
		return final, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate", bytes.NewReader(body))
	if err != nil {
		return final, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return final, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return final, decodeError(resp)
	}

	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	sawFinal := false
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var msg struct {
			Token *string `json:"token"`
			Done  bool    `json:"done"`
		}
		if err := json.Unmarshal(line, &msg); err != nil {
			return final, fmt.Errorf("malformed stream line %q: %w", line, err)
		}
		switch {
		case msg.Token != nil:
			if onToken != nil {
				onToken(*msg.Token)
			}
		case msg.Done:
			if err := json.Unmarshal(line, &final); err != nil {
				return final, err
			}
			sawFinal = true
		}
	}
	if err := sc.Err(); err != nil {
		return final, err
	}
	if !sawFinal {
		return final, fmt.Errorf("stream ended without a final line")
	}
	return final, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return decodeError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// decodeError turns a non-2xx response into an error, preferring the server's
// JSON error payload when present.
func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	var er types.ErrorResponse
	if err := json.Unmarshal(data, &er); err == nil && er.Error != "" {
		return fmt.Errorf("%s (HTTP %d)", er.Error, resp.StatusCode)
	}
	return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
}
