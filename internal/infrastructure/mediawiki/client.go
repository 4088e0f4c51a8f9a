package mediawiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"DraftReviewer/internal/domain"
	"DraftReviewer/internal/ports"
)

// ErrMissingPage is returned when the requested title does not exist.
var ErrMissingPage = errors.New("mediawiki: page does not exist")

// APIError carries an error object returned by the Action API unchanged.
type APIError struct {
	Code string
	Info string
	Raw  json.RawMessage
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mediawiki api error %s: %s", e.Code, e.Info)
}

// EditError is returned when an edit request completes without "Success".
type EditError struct {
	Result string
	Raw    []byte
}

func (e *EditError) Error() string {
	return fmt.Sprintf("mediawiki edit result %q", e.Result)
}

// Client talks to a wiki's api.php endpoint.
type Client struct {
	endpoint    string
	accessToken string
	userAgent   string
	http        *http.Client
}

var _ ports.PageRepository = (*Client)(nil)
var _ ports.CategoryLister = (*Client)(nil)

// NewClient creates a reusable HTTP client with its own cookie jar.
func NewClient(endpoint, accessToken, userAgent string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if userAgent == "" {
		userAgent = "DraftReviewer/1.0"
	}
	jar, _ := cookiejar.New(nil)
	return &Client{
		endpoint:    endpoint,
		accessToken: accessToken,
		userAgent:   userAgent,
		http:        &http.Client{Timeout: timeout, Jar: jar},
	}
}

// GetPage loads the latest revision content and its timestamp.
func (c *Client) GetPage(ctx context.Context, title string) (domain.PageContent, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "revisions")
	params.Set("titles", title)
	params.Set("rvprop", "content|timestamp")
	params.Set("rvslots", "main")

	var resp struct {
		Query struct {
			Pages []struct {
				Title     string `json:"title"`
				Missing   bool   `json:"missing"`
				Invalid   bool   `json:"invalid"`
				Revisions []struct {
					Timestamp time.Time `json:"timestamp"`
					Slots     struct {
						Main struct {
							Content string `json:"content"`
						} `json:"main"`
					} `json:"slots"`
				} `json:"revisions"`
			} `json:"pages"`
		} `json:"query"`
	}
	if err := c.call(ctx, http.MethodGet, params, &resp); err != nil {
		return domain.PageContent{}, err
	}

	if len(resp.Query.Pages) == 0 {
		return domain.PageContent{}, fmt.Errorf("%w: %s", ErrMissingPage, title)
	}
	p := resp.Query.Pages[0]
	if p.Missing || p.Invalid || len(p.Revisions) == 0 {
		return domain.PageContent{Title: title, Missing: true}, fmt.Errorf("%w: %s", ErrMissingPage, title)
	}

	rev := p.Revisions[0]
	return domain.PageContent{
		Title:     p.Title,
		Text:      rev.Slots.Main.Content,
		Timestamp: rev.Timestamp,
	}, nil
}

// SavePage performs an edit. BaseTimestamp, when set, lets the wiki reject
// the edit if someone else saved in between.
func (c *Client) SavePage(ctx context.Context, req domain.EditRequest) (domain.EditResult, error) {
	token, err := c.csrfToken(ctx)
	if err != nil {
		return domain.EditResult{}, err
	}

	params := url.Values{}
	params.Set("action", "edit")
	params.Set("title", req.Title)
	params.Set("summary", req.Summary)
	params.Set("token", token)
	switch req.Mode {
	case domain.EditAppend:
		params.Set("appendtext", req.Text)
	case domain.EditPrepend:
		params.Set("prependtext", req.Text)
	default:
		params.Set("text", req.Text)
	}
	if !req.BaseTimestamp.IsZero() {
		params.Set("basetimestamp", req.BaseTimestamp.UTC().Format(time.RFC3339))
	}

	var resp struct {
		Edit struct {
			Result       string    `json:"result"`
			NewRevID     int64     `json:"newrevid"`
			NewTimestamp time.Time `json:"newtimestamp"`
		} `json:"edit"`
	}
	raw, err := c.callRaw(ctx, http.MethodPost, params, &resp)
	if err != nil {
		return domain.EditResult{}, err
	}
	if resp.Edit.Result != "Success" {
		return domain.EditResult{Raw: raw}, &EditError{Result: resp.Edit.Result, Raw: raw}
	}

	return domain.EditResult{
		Success:      true,
		NewRevID:     resp.Edit.NewRevID,
		NewTimestamp: resp.Edit.NewTimestamp,
		Raw:          raw,
	}, nil
}

// DeletePage deletes title with reason.
func (c *Client) DeletePage(ctx context.Context, title, reason string) error {
	token, err := c.csrfToken(ctx)
	if err != nil {
		return err
	}

	params := url.Values{}
	params.Set("action", "delete")
	params.Set("title", title)
	params.Set("reason", reason)
	params.Set("token", token)

	return c.call(ctx, http.MethodPost, params, nil)
}

// CategoryMembers lists up to limit titles in category, following continuation.
func (c *Client) CategoryMembers(ctx context.Context, category string, limit int) ([]string, error) {
	if !strings.HasPrefix(strings.ToLower(category), "category:") {
		category = "Category:" + category
	}

	var (
		titles []string
		next   string
	)
	for {
		params := url.Values{}
		params.Set("action", "query")
		params.Set("list", "categorymembers")
		params.Set("cmtitle", category)
		params.Set("cmlimit", "max")
		if next != "" {
			params.Set("cmcontinue", next)
		}

		var resp struct {
			Continue struct {
				CMContinue string `json:"cmcontinue"`
			} `json:"continue"`
			Query struct {
				Members []struct {
					Title string `json:"title"`
				} `json:"categorymembers"`
			} `json:"query"`
		}
		if err := c.call(ctx, http.MethodGet, params, &resp); err != nil {
			return nil, fmt.Errorf("category %s: %w", category, err)
		}

		for _, member := range resp.Query.Members {
			titles = append(titles, member.Title)
			if limit > 0 && len(titles) >= limit {
				return titles, nil
			}
		}

		next = resp.Continue.CMContinue
		if next == "" {
			return titles, nil
		}
	}
}

func (c *Client) csrfToken(ctx context.Context) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("meta", "tokens")
	params.Set("type", "csrf")

	var resp struct {
		Query struct {
			Tokens struct {
				CSRF string `json:"csrftoken"`
			} `json:"tokens"`
		} `json:"query"`
	}
	if err := c.call(ctx, http.MethodGet, params, &resp); err != nil {
		return "", fmt.Errorf("fetch csrf token: %w", err)
	}
	if resp.Query.Tokens.CSRF == "" {
		return "", fmt.Errorf("fetch csrf token: empty token")
	}
	return resp.Query.Tokens.CSRF, nil
}

func (c *Client) call(ctx context.Context, method string, params url.Values, v any) error {
	_, err := c.callRaw(ctx, method, params, v)
	return err
}

func (c *Client) callRaw(ctx context.Context, method string, params url.Values, v any) ([]byte, error) {
	params.Set("format", "json")
	params.Set("formatversion", "2")

	var (
		req *http.Request
		err error
	)
	if method == http.MethodPost {
		req, err = http.NewRequestWithContext(ctx, method, c.endpoint, strings.NewReader(params.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.endpoint+"?"+params.Encode(), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	body, err := io.ReadAll(resp.Body)
	if closeErr := resp.Body.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return body, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var envelope struct {
		Error *struct {
			Code string `json:"code"`
			Info string `json:"info"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return body, fmt.Errorf("decode response: %w", err)
	}
	if envelope.Error != nil {
		var raw struct {
			Error json.RawMessage `json:"error"`
		}
		_ = json.Unmarshal(body, &raw)
		return body, &APIError{Code: envelope.Error.Code, Info: envelope.Error.Info, Raw: raw.Error}
	}

	if v == nil {
		return body, nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return body, fmt.Errorf("decode response: %w", err)
	}
	return body, nil
}
