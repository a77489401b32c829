package models

// ODataError represents an OData v4 error response body
type ODataError struct {
	Code       string                 `json:"code,omitempty"`
	Message    string                 `json:"message"`
	Target     string                 `json:"target,omitempty"`
	Details    []ODataErrorDetail     `json:"details,omitempty"`
	InnerError map[string]interface{} `json:"innererror,omitempty"`
}

// ODataErrorDetail represents detailed error information
type ODataErrorDetail struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Target  string `json:"target,omitempty"`
}

// ODataResponse represents a parsed OData v4 response
type ODataResponse struct {
	Context  string      `json:"@odata.context,omitempty"`
	Count    *int64      `json:"@odata.count,omitempty"`
	NextLink string      `json:"@odata.nextLink,omitempty"`
	Etag     string      `json:"@odata.etag,omitempty"`
	Value    interface{} `json:"value,omitempty"`
}

// Entity returns the response value as a single entity map, or nil if the
// response holds a collection or primitive value.
func (r *ODataResponse) Entity() map[string]interface{} {
	if m, ok := r.Value.(map[string]interface{}); ok {
		return m
	}
	return nil
}

// Entities returns the response value as a collection, or nil if the
// response holds a single entity or primitive value.
func (r *ODataResponse) Entities() []interface{} {
	if s, ok := r.Value.([]interface{}); ok {
		return s
	}
	return nil
}
