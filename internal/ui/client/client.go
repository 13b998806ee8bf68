// the client package is used by the ui handlers to call the Constella API.
// Failed calls are normalised into a ClientError carrying one user-friendly message (rendered to the end user)
// and a technical message for the request log (see errors.go)
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/constella-app/constella-web/internal/version"
)

// DefaultTimeout is used when NewClient is given a non-positive timeout
const DefaultTimeout = 30 * time.Second

// successBody is returned in place of an empty 2xx response
var successBody = json.RawMessage(`{"message":"Success"}`)

// Client handles communication with the Constella API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the API base url the client was configured with
func (c *Client) BaseURL() string {
	return c.baseURL
}

// MultipartBody is a single file sent as multipart/form-data
type MultipartBody struct {
	FieldName string
	FileName  string
	Content   io.Reader
}

// RequestOptions configures a call made with Request. Set at most one of JSON and Multipart.
type RequestOptions struct {
	Method    string
	Headers   map[string]string
	JSON      any
	Multipart *MultipartBody
}

// Request calls the API and returns the parsed response body.
//
// The path may be absolute or relative to the base url. Content-Type is application/json unless the body is multipart,
// and the bearer token from the context (see ContextWithAccessToken) is attached when present.
//
// The body of a 2xx response is returned as JSON; a non-JSON body is returned as a JSON string and an empty one as {"message":"Success"}.
// Every failure is a *ClientError.
func (c *Client) Request(ctx context.Context, path string, opts *RequestOptions) (json.RawMessage, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}
	if opts.JSON != nil && opts.Multipart != nil {
		return nil, NewClientInternalError(fmt.Errorf("both JSON and multipart bodies supplied"), "building request to "+path)
	}

	body, contentType, err := encodeBody(opts)
	if err != nil {
		return nil, NewClientInternalError(err, "encoding request body for "+path)
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
		if body != nil {
			method = http.MethodPost
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.resolve(path), body)
	if err != nil {
		return nil, NewClientInternalError(err, "creating request to "+path)
	}

	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}
	if token, ok := ContextAccessToken(ctx); ok && req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, NewClientConnectionError(err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, NewClientConnectionError(fmt.Errorf("reading response body: %w", err))
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, NewClientApiError(res.StatusCode, raw)
	}

	return parseSuccessBody(raw), nil
}

// resolve joins relative paths onto the base url
func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

func encodeBody(opts *RequestOptions) (io.Reader, string, error) {
	switch {
	case opts.Multipart != nil:
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)

		fieldName := opts.Multipart.FieldName
		if fieldName == "" {
			fieldName = "file"
		}
		part, err := mw.CreateFormFile(fieldName, opts.Multipart.FileName)
		if err != nil {
			return nil, "", err
		}
		if opts.Multipart.Content != nil {
			if _, err := io.Copy(part, opts.Multipart.Content); err != nil {
				return nil, "", err
			}
		}
		if err := mw.Close(); err != nil {
			return nil, "", err
		}
		return &buf, mw.FormDataContentType(), nil

	case opts.JSON != nil:
		data, err := json.Marshal(opts.JSON)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil

	default:
		return nil, "application/json", nil
	}
}

// parseSuccessBody returns the body as JSON, falling back to the raw text and then to the default success message
func parseSuccessBody(raw []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return successBody
	}
	if json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}
	text, _ := json.Marshal(string(trimmed))
	return json.RawMessage(text)
}

// decodeInto decodes a successful response into out
func decodeInto(raw json.RawMessage, out any, while string) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return NewClientInternalError(err, while)
	}
	return nil
}
