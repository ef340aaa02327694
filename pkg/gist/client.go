package gist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/aaexhub/laohu-todo/pkg/model"
)

const (
	defaultBaseURL = "https://api.github.com"
	acceptHeader   = "application/vnd.github.v3+json"

	// FileName is the single file inside the remote document that carries the
	// JSON-encoded sync envelope.
	FileName = "laohu-todo.json"

	description = "laohu-todo 数据同步"
)

// ErrNoCredential is returned when a remote operation is attempted without a
// configured token. It is a precondition failure; no request is made.
var ErrNoCredential = errors.New("no sync credential configured")

// RemoteError is any network, authorization or not-found failure from the
// document store, carrying a human-readable cause. Callers degrade to
// local-only operation; these never propagate past the sync coordinator.
type RemoteError struct {
	Op     string
	Status int
	Cause  string
	Err    error
}

func (e *RemoteError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("gist %s: %s (HTTP %d)", e.Op, e.Cause, e.Status)
	}
	return fmt.Sprintf("gist %s: %s", e.Op, e.Cause)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

// Client wraps the three document-store operations against the GitHub Gist
// API: create, read and update of a single private gist.
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        *zap.SugaredLogger
}

// NewClient builds a client around the given personal access token. The
// oauth2 static token source injects the `Authorization: token <credential>`
// header on every request.
func NewClient(token string, log *zap.SugaredLogger) (*Client, error) {
	if token == "" {
		return nil, ErrNoCredential
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "token"})
	return &Client{
		httpClient: oauth2.NewClient(context.Background(), src),
		baseURL:    defaultBaseURL,
		log:        log,
	}, nil
}

// SetBaseURL points the client at a different API host. Used by tests.
func (c *Client) SetBaseURL(u string) {
	c.baseURL = strings.TrimSuffix(u, "/")
}

type gistFile struct {
	Content string `json:"content"`
}

type createRequest struct {
	Description string              `json:"description"`
	Public      bool                `json:"public"`
	Files       map[string]gistFile `json:"files"`
}

type updateRequest struct {
	Files map[string]gistFile `json:"files"`
}

type gistResponse struct {
	ID    string              `json:"id"`
	Files map[string]gistFile `json:"files"`
}

// CreateDocument creates a new private gist holding the envelope and returns
// the generated document id.
func (c *Client) CreateDocument(ctx context.Context, env model.Envelope) (string, error) {
	content, err := env.Encode()
	if err != nil {
		return "", &RemoteError{Op: "create", Cause: "could not encode envelope", Err: err}
	}
	body := createRequest{
		Description: description,
		Public:      false,
		Files:       map[string]gistFile{FileName: {Content: string(content)}},
	}

	var resp gistResponse
	if err := c.do(ctx, "create", http.MethodPost, "/gists", body, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", &RemoteError{Op: "create", Cause: "response carried no document id"}
	}
	c.log.Infow("created remote document", "id", resp.ID)
	return resp.ID, nil
}

// ReadDocument fetches the gist and parses the named file as a sync envelope.
func (c *Client) ReadDocument(ctx context.Context, id string) (model.Envelope, error) {
	var resp gistResponse
	if err := c.do(ctx, "read", http.MethodGet, "/gists/"+id, nil, &resp); err != nil {
		return model.Envelope{}, err
	}

	file, ok := resp.Files[FileName]
	if !ok {
		return model.Envelope{}, &RemoteError{Op: "read", Cause: fmt.Sprintf("document has no %s file", FileName)}
	}
	env, err := model.DecodeEnvelope(strings.NewReader(file.Content))
	if err != nil {
		return model.Envelope{}, &RemoteError{Op: "read", Cause: "document content is not a valid envelope", Err: err}
	}
	return env, nil
}

// WriteDocument replaces the named file's content with a freshly serialized
// envelope. It overwrites unconditionally; there is no read-before-write.
func (c *Client) WriteDocument(ctx context.Context, id string, env model.Envelope) error {
	content, err := env.Encode()
	if err != nil {
		return &RemoteError{Op: "write", Cause: "could not encode envelope", Err: err}
	}
	body := updateRequest{
		Files: map[string]gistFile{FileName: {Content: string(content)}},
	}
	return c.do(ctx, "write", http.MethodPatch, "/gists/"+id, body, nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &RemoteError{Op: op, Cause: "could not encode request", Err: err}
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &RemoteError{Op: op, Cause: "could not build request", Err: err}
	}
	req.Header.Set("Accept", acceptHeader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RemoteError{Op: op, Cause: "network unreachable", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RemoteError{Op: op, Status: resp.StatusCode, Cause: causeForStatus(resp.StatusCode)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &RemoteError{Op: op, Cause: "could not parse response", Err: err}
		}
	}
	return nil
}

func causeForStatus(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "token invalid"
	case http.StatusForbidden:
		return "insufficient permission"
	case http.StatusNotFound:
		return "document not found"
	case http.StatusUnprocessableEntity:
		return "request rejected"
	}
	return "unexpected response"
}
