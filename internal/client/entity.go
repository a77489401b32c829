package client

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/vportal/odata-client/internal/constants"
	"github.com/vportal/odata-client/internal/models"
)

// Entity convenience operations. Each one is a thin wrapper over Request so
// the CSRF retry contract applies uniformly.

// GetEntitySet retrieves entities from an entity set, applying OData system
// query options ($filter, $select, $top, ...).
func (c *Client) GetEntitySet(ctx context.Context, entitySet string, options map[string]string) (*models.ODataResponse, error) {
	endpoint := entitySet

	params := url.Values{}
	for key, value := range options {
		if value != "" {
			params.Set(key, value)
		}
	}
	if len(params) > 0 {
		endpoint += "?" + encodeQueryParams(params)
	}

	return c.Request(ctx, constants.GET, endpoint, nil, nil)
}

// GetEntity retrieves a single entity by key
func (c *Client) GetEntity(ctx context.Context, entitySet string, key map[string]interface{}, options map[string]string) (*models.ODataResponse, error) {
	endpoint := fmt.Sprintf("%s(%s)", entitySet, buildKeyPredicate(key))

	if len(options) > 0 {
		params := url.Values{}
		for k, v := range options {
			if v != "" {
				params.Set(k, v)
			}
		}
		if len(params) > 0 {
			endpoint += "?" + encodeQueryParams(params)
		}
	}

	return c.Request(ctx, constants.GET, endpoint, nil, nil)
}

// CreateEntity creates a new entity in the given entity set
func (c *Client) CreateEntity(ctx context.Context, entitySet string, data map[string]interface{}) (*models.ODataResponse, error) {
	return c.Request(ctx, constants.POST, entitySet, nil, data)
}

// UpdateEntity updates an existing entity. Method defaults to PATCH, the
// idiomatic v4 update; pass PUT for a full replace.
func (c *Client) UpdateEntity(ctx context.Context, entitySet string, key map[string]interface{}, data map[string]interface{}, method string) (*models.ODataResponse, error) {
	if method == "" {
		method = constants.PATCH
	}
	endpoint := fmt.Sprintf("%s(%s)", entitySet, buildKeyPredicate(key))
	return c.Request(ctx, method, endpoint, nil, data)
}

// DeleteEntity deletes an entity
func (c *Client) DeleteEntity(ctx context.Context, entitySet string, key map[string]interface{}) (*models.ODataResponse, error) {
	endpoint := fmt.Sprintf("%s(%s)", entitySet, buildKeyPredicate(key))
	return c.Request(ctx, constants.DELETE, endpoint, nil, nil)
}

// CallAction invokes an action import. Actions are always POST in OData v4;
// parameters travel in the body.
func (c *Client) CallAction(ctx context.Context, actionName string, parameters map[string]interface{}) (*models.ODataResponse, error) {
	if parameters == nil {
		parameters = map[string]interface{}{}
	}
	return c.Request(ctx, constants.POST, actionName, nil, parameters)
}

// buildKeyPredicate builds an OData key predicate from key-value pairs
func buildKeyPredicate(key map[string]interface{}) string {
	if len(key) == 1 {
		for _, value := range key {
			return formatKeyValue(value)
		}
	}

	// Composite key - iterate deterministically
	names := make([]string, 0, len(key))
	for name := range key {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%s", name, formatKeyValue(key[name])))
	}
	return strings.Join(parts, ",")
}

// formatKeyValue formats a key value for an OData URL
func formatKeyValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		// Quotes stay unencoded; URL encoding happens at the full URL level
		return fmt.Sprintf("'%s'", v)
	case int, int32, int64:
		return fmt.Sprintf("%d", v)
	case float32, float64:
		return fmt.Sprintf("%g", v)
	case bool:
		return fmt.Sprintf("%t", v)
	default:
		return fmt.Sprintf("'%v'", v)
	}
}
