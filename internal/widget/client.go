package widget

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/thanhng-dev/classcal/internal/domain/event"
)

// Client is the HTTP EventSource backing the widget against the schedule
// service.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Fetch(ctx context.Context, instructor string, from time.Time) ([]event.FeedItem, error) {
	q := url.Values{}

	if instructor != "" {
		q.Set("instructor", instructor)
	}

	if !from.IsZero() {
		q.Set("from", from.Format("2006-01-02T15:04:05"))
	}

	endpoint := c.baseURL + "/events"

	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)

	if err != nil {
		return nil, err
	}

	resp, err := c.do(req)

	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}

	var items []event.FeedItem

	err = json.NewDecoder(resp.Body).Decode(&items)

	if err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}

	return items, nil
}

func (c *Client) Save(ctx context.Context, saveReq event.SaveEventRequest) (string, error) {
	body, err := json.Marshal(saveReq)

	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/events", bytes.NewReader(body))

	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")

	return c.doAck(req)
}

func (c *Client) Delete(ctx context.Context, id int64) (string, error) {
	endpoint := fmt.Sprintf("%s/events/%d", c.baseURL, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)

	if err != nil {
		return "", err
	}

	return c.doAck(req)
}

func (c *Client) do(req *http.Request) (*http.Response, error) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	return c.http.Do(req)
}

// doAck runs a mutation and returns the server's acknowledgement message.
func (c *Client) doAck(req *http.Request) (string, error) {
	resp, err := c.do(req)

	if err != nil {
		return "", err
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", decodeAPIError(resp)
	}

	var ack struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}

	err = json.NewDecoder(resp.Body).Decode(&ack)

	if err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	return ack.Message, nil
}

func decodeAPIError(resp *http.Response) error {
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if json.Unmarshal(body, &envelope) == nil && envelope.Error.Message != "" {
		return fmt.Errorf("%s: %s", envelope.Error.Code, envelope.Error.Message)
	}

	return fmt.Errorf("unexpected status %d", resp.StatusCode)
}
