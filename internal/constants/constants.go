package constants

// HTTP methods used against OData v4 services
const (
	GET    = "GET"
	HEAD   = "HEAD"
	POST   = "POST"
	PUT    = "PUT"
	PATCH  = "PATCH"
	DELETE = "DELETE"
)

// HTTP headers
const (
	ContentType = "Content-Type"
	Accept      = "Accept"
	UserAgent   = "User-Agent"
)

// OData v4 protocol headers
const (
	ODataVersionHeader    = "OData-Version"
	ODataMaxVersionHeader = "OData-MaxVersion"
	ODataVersionValue     = "4.0"
)

// CSRF token contract (SAP-style anti-forgery handshake)
const (
	CSRFTokenHeader   = "X-CSRF-Token"
	CSRFTokenFetch    = "Fetch"
	CSRFTokenRequired = "required"
)

// Content types
const (
	ContentTypeJSON        = "application/json;charset=UTF-8"
	ContentTypeODataJSONV4 = "application/json;odata.metadata=minimal"
)

// OData system query options
const (
	QueryFilter  = "$filter"
	QuerySelect  = "$select"
	QueryExpand  = "$expand"
	QueryOrderBy = "$orderby"
	QueryTop     = "$top"
	QuerySkip    = "$skip"
	QueryCount   = "$count"
)

// OData v4 response annotations
const (
	ODataContext  = "@odata.context"
	ODataCount    = "@odata.count"
	ODataNextLink = "@odata.nextLink"
	ODataEtag     = "@odata.etag"
)

// UI vocabulary terms carried by annotation documents
const (
	TermLineItem        = "UI.LineItem"
	TermHeaderInfo      = "UI.HeaderInfo"
	TermSelectionFields = "UI.SelectionFields"
	TermFieldGroup      = "UI.FieldGroup"
	TermIdentification  = "UI.Identification"
	TermImportance      = "UI.Importance"
	TermContact         = "Communication.Contact"
)

// Error messages
const (
	ErrInvalidServiceURL   = "invalid service URL"
	ErrCSRFTokenNotFound   = "CSRF token not found in response headers"
	ErrRequestFailed       = "HTTP request failed"
	ErrResponseParseFailed = "response parsing failed"
)

// Default values
const (
	DefaultUserAgent = "OData-V4-Client/1.0 (Go)"
	DefaultTimeout   = 30 // seconds
)
