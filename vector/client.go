// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client manages collection lifecycle against Qdrant's REST API.
// The langchaingo vector store handles point writes and searches; this
// client covers what it does not: creating, probing and deleting
// collections.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a lifecycle client for the Qdrant server at rawURL.
// Both the URL and the API key are required.
func NewClient(rawURL, apiKey string) (*Client, error) {
	if rawURL == "" {
		return nil, ErrURLRequired
	}
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}

	return &Client{
		baseURL: strings.TrimSuffix(rawURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  slog.Default().With("component", "qdrant-client"),
	}, nil
}

// CollectionExists reports whether a collection exists.
func (c *Client) CollectionExists(ctx context.Context, name string) (bool, error) {
	if name == "" {
		return false, ErrCollectionRequired
	}

	var resp struct {
		Result struct {
			Exists bool `json:"exists"`
		} `json:"result"`
	}
	if err := c.do(ctx, http.MethodGet, "/collections/"+name+"/exists", nil, &resp); err != nil {
		return false, fmt.Errorf("failed to check collection existence: %w", err)
	}
	return resp.Result.Exists, nil
}

// CreateCollection creates a collection with the given vector size and
// distance metric.
func (c *Client) CreateCollection(ctx context.Context, name string, vectorSize int, distance Distance) error {
	if name == "" {
		return ErrCollectionRequired
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     vectorSize,
			"distance": string(distance),
		},
	}
	if err := c.do(ctx, http.MethodPut, "/collections/"+name, body, nil); err != nil {
		return fmt.Errorf("failed to create collection %s: %w", name, err)
	}

	c.logger.Info("created collection", "collection", name, "vectorSize", vectorSize, "distance", distance)
	return nil
}

// DeleteCollection deletes a collection if it exists.
func (c *Client) DeleteCollection(ctx context.Context, name string) error {
	if name == "" {
		return ErrCollectionRequired
	}

	exists, err := c.CollectionExists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	if err := c.do(ctx, http.MethodDelete, "/collections/"+name, nil, nil); err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", name, err)
	}

	c.logger.Info("deleted collection", "collection", name)
	return nil
}

// EnsureCollection makes sure the collection physically exists with the
// given dimensionality before indexing or querying.
//
// If forceRecreate is set and the collection exists, it is deleted and
// recreated. If the collection does not exist, it is created. If it exists
// and forceRecreate is unset, this is a no-op.
func (c *Client) EnsureCollection(ctx context.Context, name string, vectorSize int, distance Distance, forceRecreate bool) error {
	exists, err := c.CollectionExists(ctx, name)
	if err != nil {
		return err
	}

	if exists && forceRecreate {
		c.logger.Info("deleting existing collection", "collection", name)
		if err := c.DeleteCollection(ctx, name); err != nil {
			return err
		}
		exists = false
	}

	if !exists {
		return c.CreateCollection(ctx, name, vectorSize, distance)
	}

	c.logger.Info("collection already exists", "collection", name)
	return nil
}

// do executes one REST call, encoding body and decoding out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("qdrant returned %s: %s", resp.Status, strings.TrimSpace(string(data)))
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
