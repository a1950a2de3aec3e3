package v1

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// APIError is a non-2xx server response. Distinct from network failures so
// callers can tell a rejected request from an unreachable server, even
// though the sync reconciler stops on either.
type APIError struct {
	Status  int
	Message string `json:"error"`
	EntryID string `json:"entryId"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Transport handles low-level HTTP and authentication.
type Transport struct {
	BaseURL    string
	AuthToken  string
	HTTPClient *http.Client
}

func NewTransport(baseURL, token string) *Transport {
	return &Transport{
		BaseURL:    baseURL,
		AuthToken:  token,
		HTTPClient: &http.Client{},
	}
}

func (t *Transport) buildURL(path string, query map[string]string) string {
	u, _ := url.Parse(t.BaseURL + path)
	q := u.Query()
	for k, v := range query {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Do sends one JSON request. A nil data sends no body. Network errors are
// returned as-is; non-2xx statuses come back as *APIError.
func (t *Transport) Do(method, path string, data any, query map[string]string) ([]byte, error) {
	fullURL := t.buildURL(path, query)

	var reader io.Reader
	if data != nil {
		body, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewBuffer(body)
	}

	req, err := http.NewRequest(method, fullURL, reader)
	if err != nil {
		return nil, err
	}
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t.AuthToken != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", t.AuthToken))
	}

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	resdata, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		// Error bodies are {error, entryId?}; keep the status even when the
		// body isn't parseable.
		_ = json.Unmarshal(resdata, apiErr)
		if apiErr.Message == "" {
			apiErr.Message = string(resdata)
		}
		return nil, apiErr
	}

	return resdata, nil
}

func (t *Transport) Get(path string, query map[string]string) ([]byte, error) {
	return t.Do(http.MethodGet, path, nil, query)
}

func (t *Transport) Post(path string, data any) ([]byte, error) {
	return t.Do(http.MethodPost, path, data, nil)
}

func (t *Transport) Put(path string, data any) ([]byte, error) {
	return t.Do(http.MethodPut, path, data, nil)
}

func (t *Transport) Patch(path string, data any) ([]byte, error) {
	return t.Do(http.MethodPatch, path, data, nil)
}

func (t *Transport) Delete(path string) ([]byte, error) {
	return t.Do(http.MethodDelete, path, nil, nil)
}
