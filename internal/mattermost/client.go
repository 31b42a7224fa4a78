package mattermost

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

type Client struct {
	baseURL    string
	botToken   string
	httpClient *http.Client
}

func NewClient(baseURL, botToken string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		botToken:   botToken,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// Post represents a Mattermost post.
type Post struct {
	ChannelID string `json:"channel_id"`
	Props     Props  `json:"props,omitempty"`
}

// Props holds post properties including attachments.
type Props struct {
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment represents a Mattermost message attachment.
type Attachment struct {
	Text  string `json:"text,omitempty"`
	Color string `json:"color,omitempty"`
}

// CreatePost creates a new post in a channel and returns its id.
func (c *Client) CreatePost(ctx context.Context, post *Post) (string, error) {
	var created struct {
		ID string `json:"id"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/v4/posts", post, &created); err != nil {
		return "", fmt.Errorf("create post: %w", err)
	}
	return created.ID, nil
}

// GetChannelByName looks up a channel by team ID and name.
func (c *Client) GetChannelByName(ctx context.Context, teamID, channelName string) (string, error) {
	var channel struct {
		ID string `json:"id"`
	}
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/v4/teams/%s/channels/name/%s", teamID, channelName), nil, &channel); err != nil {
		return "", fmt.Errorf("get channel by name: %w", err)
	}
	return channel.ID, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.botToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("api error %d: %s", resp.StatusCode, string(respBody))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
