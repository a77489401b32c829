// Copyright (c) 2025 OData Client Contributors
// SPDX-License-Identifier: MIT

package client

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vportal/odata-client/internal/constants"
	"github.com/vportal/odata-client/internal/debug"
)

// refreshCall represents an in-flight token refresh shared between callers.
// The owner stores the outcome in err before closing done.
type refreshCall struct {
	done chan struct{}
	err  error
}

// RefreshSecurityToken fetches a fresh CSRF token via a HEAD probe to the
// service root. At most one probe is in flight at a time; concurrent callers
// await the same pending outcome instead of issuing duplicate probes. On
// probe failure the in-flight marker is cleared so a later call may try
// again, and the failure is surfaced to every waiter.
func (c *Client) RefreshSecurityToken(ctx context.Context) error {
	c.mu.Lock()
	if call := c.refresh; call != nil {
		c.mu.Unlock()
		select {
		case <-call.done:
			return call.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	call := &refreshCall{done: make(chan struct{})}
	c.refresh = call
	c.mu.Unlock()

	call.err = c.fetchSecurityToken(ctx)

	c.mu.Lock()
	c.refresh = nil
	c.mu.Unlock()
	close(call.done)

	return call.err
}

// fetchSecurityToken issues the header-only probe and stores the token it
// reads back. A probe response without a token header counts as a failure:
// a refresh that leaves no token would only produce a second 403.
func (c *Client) fetchSecurityToken(ctx context.Context) error {
	if c.verbose {
		fmt.Fprintf(os.Stderr, "[VERBOSE] Fetching CSRF token...\n")
	}

	c.setSecurityToken("")

	req, err := c.buildRequest(ctx, constants.HEAD, "", nil, nil)
	if err != nil {
		return err
	}
	req.Header.Set(constants.CSRFTokenHeader, constants.CSRFTokenFetch)
	if c.verbose {
		fmt.Fprintf(os.Stderr, "[VERBOSE] Token fetch headers: %s\n", maskHeaders(req.Header))
	}

	// The probe goes straight to the transport; running it through do()
	// could recurse into another refresh.
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("CSRF token request failed: %w", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	// "required" is the server's refresh signal, never a token value; a
	// probe echoing it back has not produced a usable token.
	token := resp.Header.Get(constants.CSRFTokenHeader)
	if token == "" || token == constants.CSRFTokenFetch || strings.EqualFold(token, constants.CSRFTokenRequired) {
		return fmt.Errorf("%s (status %d)", constants.ErrCSRFTokenNotFound, resp.StatusCode)
	}

	c.setSecurityToken(token)
	if c.verbose {
		fmt.Fprintf(os.Stderr, "[VERBOSE] CSRF token fetched: %s\n", debug.MaskToken(token))
	}

	return nil
}
