// Package monday is a small client for the monday.com GraphQL API covering
// the two calls the exporter needs: reading a board's items and setting a
// status column label.
package monday

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/gosuda/boardexport/internal/domain"
)

// DefaultEndpoint is the public monday.com API endpoint.
const DefaultEndpoint = "https://api.monday.com/v2"

// Client talks to the monday.com GraphQL endpoint. The API token is passed
// per call because it may come from the caller rather than the server.
type Client struct {
	endpoint   string
	apiVersion string
	pageSize   int
	httpClient *http.Client
	limiter    *rate.Limiter // nil when outbound throttling is off
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithPageSize sets the items_page limit (monday caps it at 500).
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithRateLimit throttles outbound calls to rps requests per second.
// Zero or negative leaves calls unthrottled.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// New creates a Client for the given endpoint. apiVersion is sent as the
// API-Version header when non-empty.
func New(endpoint, apiVersion string, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		apiVersion: apiVersion,
		pageSize:   500,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

const boardItemsQuery = `query ($boardId: [ID!], $limit: Int!) {
  boards(ids: $boardId) {
    items_page(limit: $limit) {
      cursor
      items { id name column_values { id text } }
    }
  }
}`

const nextItemsQuery = `query ($cursor: String!, $limit: Int!) {
  next_items_page(cursor: $cursor, limit: $limit) {
    cursor
    items { id name column_values { id text } }
  }
}`

const changeColumnValueMutation = `mutation ($boardId: ID!, $itemId: ID!, $columnId: String!, $value: JSON!) {
  change_column_value(board_id: $boardId, item_id: $itemId, column_id: $columnId, value: $value) { id }
}`

type itemsPage struct {
	Cursor *string `json:"cursor"`
	Items  []struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		ColumnValues []struct {
			ID   string  `json:"id"`
			Text *string `json:"text"`
		} `json:"column_values"`
	} `json:"items"`
}

func (p *itemsPage) appendTo(items []domain.Item) []domain.Item {
	for _, it := range p.Items {
		values := make([]domain.ColumnValue, 0, len(it.ColumnValues))
		for _, cv := range it.ColumnValues {
			text := ""
			if cv.Text != nil {
				text = *cv.Text
			}
			values = append(values, domain.ColumnValue{ID: cv.ID, Text: text})
		}
		items = append(items, domain.Item{ID: it.ID, Name: it.Name, ColumnValues: values})
	}
	return items
}

// BoardItems returns every item on the board, following items_page cursors
// until the last page. An unknown board yields no items.
func (c *Client) BoardItems(ctx context.Context, token, boardID string) ([]domain.Item, error) {
	var first struct {
		Boards []struct {
			ItemsPage itemsPage `json:"items_page"`
		} `json:"boards"`
	}
	vars := map[string]any{"boardId": []string{boardID}, "limit": c.pageSize}
	if err := c.do(ctx, token, boardItemsQuery, vars, &first); err != nil {
		return nil, fmt.Errorf("monday.Client.BoardItems: %w", err)
	}
	if len(first.Boards) == 0 {
		return []domain.Item{}, nil
	}

	page := first.Boards[0].ItemsPage
	items := page.appendTo(nil)
	cursor := page.Cursor
	pages := 1
	seen := make(map[string]struct{})

	for cursor != nil && *cursor != "" {
		if _, ok := seen[*cursor]; ok {
			return nil, fmt.Errorf("monday.Client.BoardItems: page %d: %w", pages+1, ErrCursorRepeated)
		}
		seen[*cursor] = struct{}{}

		var next struct {
			NextItemsPage itemsPage `json:"next_items_page"`
		}
		nextVars := map[string]any{"cursor": *cursor, "limit": c.pageSize}
		if err := c.do(ctx, token, nextItemsQuery, nextVars, &next); err != nil {
			return nil, fmt.Errorf("monday.Client.BoardItems: page %d: %w", pages+1, err)
		}
		items = next.NextItemsPage.appendTo(items)
		cursor = next.NextItemsPage.Cursor
		pages++
	}

	log.Debug().Str("board_id", boardID).Int("items", len(items)).Int("pages", pages).Msg("monday: fetched board items")

	if items == nil {
		items = []domain.Item{}
	}
	return items, nil
}

// SetStatusLabel sets a status column on one item to the given label.
func (c *Client) SetStatusLabel(ctx context.Context, token, boardID, itemID, columnID, label string) error {
	value, err := json.Marshal(map[string]string{"label": label})
	if err != nil {
		return fmt.Errorf("monday.Client.SetStatusLabel: encode value: %w", err)
	}

	vars := map[string]any{
		"boardId":  boardID,
		"itemId":   itemID,
		"columnId": columnID,
		"value":    string(value),
	}
	var out struct {
		ChangeColumnValue *struct {
			ID string `json:"id"`
		} `json:"change_column_value"`
	}
	if err := c.do(ctx, token, changeColumnValueMutation, vars, &out); err != nil {
		return fmt.Errorf("monday.Client.SetStatusLabel: item %s: %w", itemID, err)
	}
	if out.ChangeColumnValue == nil {
		return fmt.Errorf("monday.Client.SetStatusLabel: item %s: %w", itemID, &APIError{Message: "empty mutation result"})
	}
	return nil
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data         json.RawMessage `json:"data"`
	Errors       []graphQLError  `json:"errors"`
	ErrorMessage string          `json:"error_message"`
	ErrorCode    string          `json:"error_code"`
}

type graphQLError struct {
	Message string `json:"message"`
}

// do posts one GraphQL operation and decodes its data into result.
func (c *Client) do(ctx context.Context, token, query string, vars map[string]any, result any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	data, err := json.Marshal(graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("marshaling request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", token)
	if c.apiVersion != "" {
		req.Header.Set("API-Version", c.apiVersion)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	var gr graphQLResponse
	decodeErr := json.Unmarshal(respBody, &gr)

	if resp.StatusCode >= 400 {
		if decodeErr == nil {
			if msg := gr.message(); msg != "" {
				return &APIError{StatusCode: resp.StatusCode, Code: gr.ErrorCode, Message: msg}
			}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}
	if decodeErr != nil {
		return fmt.Errorf("decoding response: %w", decodeErr)
	}
	if msg := gr.message(); msg != "" {
		return &APIError{StatusCode: resp.StatusCode, Code: gr.ErrorCode, Message: msg}
	}
	if len(gr.Data) == 0 || string(gr.Data) == "null" {
		return &APIError{StatusCode: resp.StatusCode, Message: "response has no data"}
	}

	if result != nil {
		if err := json.Unmarshal(gr.Data, result); err != nil {
			return fmt.Errorf("decoding response data: %w", err)
		}
	}
	return nil
}

func (r *graphQLResponse) message() string {
	if r.ErrorMessage != "" {
		return r.ErrorMessage
	}
	if len(r.Errors) == 0 {
		return ""
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}
