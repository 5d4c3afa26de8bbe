package skylark

import (
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Error codes stored under the "code" extension of transport errors.
const (
	ErrRequestError         = "request_error"
	ErrJsonDecode           = "json_decode_error"
	ErrGraphQLEncode        = "graphql_encode_error"
	ErrGraphQLDecode        = "graphql_decode_error"
	ErrUnsupportedOperation = "unsupported_operation"
)

// Errors is the "errors" array of a GraphQL response, or a single transport
// failure wrapped the same way. When returned as an error it holds at least
// one element.
type Errors []Error

// Error is one GraphQL or transport error.
type Error struct {
	Message    string         `json:"message"`
	Path       []any          `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions"`
	Locations  []struct {
		Line   int `json:"line"`
		Column int `json:"column"`
	} `json:"locations"`
}

// RequestInfo is the request half of the debug information.
type RequestInfo struct {
	Headers http.Header
	Body    string
}

// ResponseInfo is the response half of the debug information.
type ResponseInfo struct {
	Headers http.Header
	Body    string
}

// InternalExtensions is the debug information a client in debug mode stores
// under the "internal" extension.
type InternalExtensions struct {
	Request  *RequestInfo
	Response *ResponseInfo
	Error    error
}

// Error implements error interface. The path, when the server reports one,
// names the aliased root field that failed.
func (e Error) Error() string {
	if len(e.Path) == 0 {
		return fmt.Sprintf("Message: %s, Locations: %+v", e.Message, e.Locations)
	}
	return fmt.Sprintf("Message: %s, Path: %v, Locations: %+v", e.Message, e.Path, e.Locations)
}

// Error implements error interface.
func (e Errors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Code returns the first error's code, or "" if there is none.
func (e Errors) Code() string {
	if len(e) == 0 {
		return ""
	}
	return e[0].GetCode()
}

// GetCode returns the "code" extension, or "" if absent.
func (e Error) GetCode() string {
	code, _ := e.Extensions["code"].(string)
	return code
}

// GetInternalExtensions returns the debug information attached to the
// error, or nil when the client was not in debug mode.
func (e Error) GetInternalExtensions() *InternalExtensions {
	internal, ok := e.Extensions["internal"].(map[string]any)
	if !ok {
		return nil
	}

	ext := &InternalExtensions{}
	if req, ok := internal["request"].(map[string]any); ok {
		ext.Request = &RequestInfo{}
		ext.Request.Headers, _ = req["headers"].(http.Header)
		ext.Request.Body, _ = req["body"].(string)
	}
	if resp, ok := internal["response"].(map[string]any); ok {
		ext.Response = &ResponseInfo{}
		ext.Response.Headers, _ = resp["headers"].(http.Header)
		ext.Response.Body, _ = resp["body"].(string)
	}
	ext.Error, _ = internal["error"].(error)
	return ext
}

func newError(code string, err error) Error {
	return Error{
		Message: err.Error(),
		Extensions: map[string]any{
			"code": code,
		},
	}
}

func newSimpleErrors(code string, err error) Errors {
	return Errors{newError(code, err)}
}

func (e Error) internalExtension() map[string]any {
	if ex, ok := e.Extensions["internal"].(map[string]any); ok {
		return ex
	}
	return make(map[string]any)
}

// withDebugInfo stores headers and the body read from bodyReader under
// the internal extension, keyed by kind ("request" or "response").
func (e Error) withDebugInfo(kind string, headers http.Header, bodyReader io.Reader) Error {
	internal := e.internalExtension()
	body, err := io.ReadAll(bodyReader)
	if err != nil {
		internal["error"] = err
	} else {
		internal[kind] = map[string]any{
			"headers": headers,
			"body":    string(body),
		}
	}
	if e.Extensions == nil {
		e.Extensions = make(map[string]any)
	}
	e.Extensions["internal"] = internal
	return e
}

func (e Error) withRequest(req *http.Request, bodyReader io.Reader) Error {
	return e.withDebugInfo("request", req.Header, bodyReader)
}

func (e Error) withResponse(res *http.Response, bodyReader io.Reader) Error {
	return e.withDebugInfo("response", res.Header, bodyReader)
}
