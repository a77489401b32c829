package client

import (
	"encoding/json"
	"fmt"

	"github.com/vportal/odata-client/internal/constants"
	"github.com/vportal/odata-client/internal/models"
)

// parseResponse parses a successful OData v4 response body. Collections use
// the "value" property; anything else is treated as a single entity or
// primitive payload.
func parseResponse(body []byte) (*models.ODataResponse, error) {
	// Empty responses are normal for DELETE and HEAD
	if len(body) == 0 {
		return &models.ODataResponse{}, nil
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%s: %w", constants.ErrResponseParseFailed, err)
	}

	resp := &models.ODataResponse{}

	if value, ok := raw[constants.ODataContext]; ok {
		if s, ok := value.(string); ok {
			resp.Context = s
		}
	}
	if value, ok := raw[constants.ODataNextLink]; ok {
		if s, ok := value.(string); ok {
			resp.NextLink = s
		}
	}
	if value, ok := raw[constants.ODataEtag]; ok {
		if s, ok := value.(string); ok {
			resp.Etag = s
		}
	}
	if count, ok := raw[constants.ODataCount]; ok {
		resp.Count = parseCount(count)
	}

	if value, ok := raw["value"]; ok {
		resp.Value = value
	} else {
		resp.Value = raw
	}

	return resp, nil
}

// parseCount normalizes @odata.count, which some services emit as a string
func parseCount(count interface{}) *int64 {
	switch v := count.(type) {
	case float64:
		n := int64(v)
		return &n
	case string:
		var n int64
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return &n
		}
	}
	return nil
}
