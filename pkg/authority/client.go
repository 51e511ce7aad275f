/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package authority

import (
	"context"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/bluele/gcache"
	"github.com/pkg/errors"

	"github.com/webpki/saturn-go/pkg/doc/json"
	"github.com/webpki/saturn-go/pkg/saturn"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodySize    = 1 << 20
)

// Client fetches and caches authority objects over HTTP. Decoded objects
// are cached until they expire; a forced fetch bypasses the cache, for
// example after a signature check against a possibly stale object failed.
type Client struct {
	httpClient *http.Client
	cache      gcache.Cache
}

// ClientOpt configures a Client.
type ClientOpt func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOpt {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates an authority client.
func NewClient(opts ...ClientOpt) *Client {
	client := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		cache:      gcache.New(0).Build(),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// ProviderAuthority returns the provider authority published at url,
// fetching it unless a live copy is cached. Setting force bypasses the
// cache.
func (c *Client) ProviderAuthority(ctx context.Context, url string,
	force bool) (*saturn.ProviderAuthority, error) {
	if !force {
		if cached, err := c.cache.Get(url); err == nil {
			if authority, ok := cached.(*saturn.ProviderAuthority); ok {
				return authority, nil
			}
		}
	}

	rd, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	authority, err := saturn.ParseProviderAuthority(rd, url)
	if err != nil {
		return nil, err
	}

	c.store(url, authority, authority.Expires)

	return authority, nil
}

// PayeeAuthority returns the payee authority published at url, fetching it
// unless a live copy is cached. Setting force bypasses the cache.
func (c *Client) PayeeAuthority(ctx context.Context, url string,
	force bool) (*saturn.PayeeAuthority, error) {
	if !force {
		if cached, err := c.cache.Get(url); err == nil {
			if authority, ok := cached.(*saturn.PayeeAuthority); ok {
				return authority, nil
			}
		}
	}

	rd, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	authority, err := saturn.ParsePayeeAuthority(rd, url)
	if err != nil {
		return nil, err
	}

	c.store(url, authority, authority.Expires)

	return authority, nil
}

func (c *Client) store(url string, authority interface{}, expires time.Time) {
	ttl := time.Until(expires)
	if ttl <= 0 {
		return
	}

	if err := c.cache.SetWithExpire(url, authority, ttl); err != nil {
		logger.Warnf("cache authority object %s: %v", url, err)
	}
}

func (c *Client) fetch(ctx context.Context, url string) (*json.Reader, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &saturn.TransientError{Err: errors.Wrapf(err, "build request for %s", url)}
	}

	req.Header.Set("Accept", saturn.ContentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &saturn.TransientError{Err: errors.Wrapf(err, "fetch %s", url)}
	}

	defer func() {
		if errClose := resp.Body.Close(); errClose != nil {
			logger.Warnf("close response body: %v", errClose)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &saturn.TransientError{
			Err: errors.Errorf("fetch %s: unexpected status %d", url, resp.StatusCode),
		}
	}

	mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if err != nil || mediaType != saturn.ContentType {
		return nil, json.NewSchemaError("unexpected content type at %s: %s",
			url, resp.Header.Get("Content-Type"))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &saturn.TransientError{Err: errors.Wrapf(err, "read %s", url)}
	}

	return json.Parse(body)
}
