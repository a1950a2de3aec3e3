// Package v1 is the Go client for the ArchTime REST API.
package v1

import "net/http"

type ArchtimeClient struct {
	Transport *Transport
	Clock     *ClockEndpoint
	Sync      *SyncEndpoint
	Projects  *ProjectEndpoint
}

// NewArchtimeClient initializes the API client.
func NewArchtimeClient(baseURL string, token string) *ArchtimeClient {
	t := NewTransport(baseURL, token)
	return &ArchtimeClient{
		Transport: t,
		Clock:     &ClockEndpoint{transport: t},
		Sync:      &SyncEndpoint{transport: t},
		Projects:  &ProjectEndpoint{transport: t},
	}
}

// Ping reports whether the server is reachable. Used as the connectivity
// probe for the online/offline decision.
func (c *ArchtimeClient) Ping() bool {
	resp, err := c.Transport.HTTPClient.Get(c.Transport.BaseURL + "/ping")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
