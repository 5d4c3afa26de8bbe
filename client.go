// Package skylark sends compiled Skylark documents to a GraphQL endpoint and
// returns their de-aliased response data.
//
// Documents come from the compiler package; the client adds transport
// concerns only: authentication, availability headers, gzip, and the
// code-tagged error taxonomy of Errors.
package skylark

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/llehouerou/skylark-graphql/compiler"
	"github.com/llehouerou/skylark-graphql/pkg/jsonutil"
	"github.com/llehouerou/skylark-graphql/schema"
)

// RequestModifier tweaks every HTTP request before it is sent, e.g. to set
// authentication headers.
type RequestModifier func(*http.Request)

// Client is a Skylark GraphQL client.
//
// The With* methods return a new Client and leave the receiver unchanged,
// so a Client may be shared between goroutines. Always use the returned
// value:
//
//	client = client.WithDebug(true).WithToken(token)
type Client struct {
	url             string
	httpClient      *http.Client
	requestModifier RequestModifier
	token           string
	logger          *zap.Logger
	debug           bool
}

// NewClient creates a client targeting the GraphQL endpoint url. If
// httpClient is nil, http.DefaultClient is used.
func NewClient(url string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		url:        url,
		httpClient: httpClient,
		logger:     zap.NewNop(),
	}
}

// Execute sends a compiled document and returns its "data" member with every
// type-scoped alias restored to the plain field name.
//
// A nil compiled document, which the compilers return for operations the
// schema does not support, fails with code ErrUnsupportedOperation without
// a round trip. When the server returns both data and errors, both are
// returned.
func (c *Client) Execute(
	ctx context.Context,
	compiled *compiler.Compiled,
	options ...RequestOption,
) (json.RawMessage, error) {
	if compiled == nil || compiled.Document == nil {
		return nil, newSimpleErrors(
			ErrUnsupportedOperation,
			errors.New("operation is not supported by the schema"),
		)
	}
	if c.debug {
		c.logger.Debug("dispatching operation",
			zap.String("operation", compiled.OperationName()),
			zap.Int("variables", len(compiled.Variables)),
		)
	}
	data, resp, respBuf, errs := c.request(
		ctx,
		compiled.Query(),
		compiled.Variables,
		compiled.OperationName(),
		options...,
	)
	return c.processResponse(data, resp, respBuf, errs)
}

// ExecRaw sends a pre-built query and returns the raw "data" member
// without de-aliasing.
func (c *Client) ExecRaw(
	ctx context.Context,
	query string,
	variables map[string]any,
	options ...RequestOption,
) (json.RawMessage, error) {
	data, _, _, errs := c.request(ctx, query, variables, "", options...)
	if len(errs) > 0 {
		return data, errs
	}
	return data, nil
}

// Introspect runs the standard introspection query and returns the raw
// "data" member, ready for schema.ParseIntrospection or Registry.Load.
func (c *Client) Introspect(ctx context.Context, options ...RequestOption) (json.RawMessage, error) {
	return c.ExecRaw(ctx, schema.IntrospectionQuery, nil, options...)
}

func (c *Client) processResponse(
	data []byte,
	resp *http.Response,
	respBuf io.Reader,
	errs Errors,
) (json.RawMessage, error) {
	var out json.RawMessage
	if len(data) > 0 {
		clean, err := jsonutil.Dealias(data)
		if err != nil {
			we := c.DecorateError(
				newError(ErrGraphQLDecode, err),
				nil,
				resp,
				nil,
				respBuf,
			)
			errs = append(errs, we)
		} else {
			out = clean
		}
	}
	if len(errs) > 0 {
		return out, errs
	}
	return out, nil
}

func (c *Client) request(
	ctx context.Context,
	query string,
	variables map[string]any,
	operationName string,
	options ...RequestOption,
) ([]byte, *http.Response, io.Reader, Errors) {
	request, reqBody, err := c.BuildRequest(ctx, query, variables, operationName, options...)
	if err != nil {
		code := ErrRequestError
		if reqBody == nil {
			code = ErrGraphQLEncode
		}
		e := c.NewRequestError(
			code,
			fmt.Errorf("problem constructing request: %w", err),
			request,
			nil,
			bytes.NewReader(reqBody),
			nil,
		)
		return nil, nil, nil, Errors{e}
	}

	resp, r, err := c.ExecuteRequest(request)
	if err != nil {
		e := c.NewRequestError(
			ErrRequestError,
			err,
			request,
			nil,
			bytes.NewReader(reqBody),
			nil,
		)
		return nil, nil, nil, Errors{e}
	}
	defer func() { _ = resp.Body.Close() }()

	var respBody []byte
	var respReader *bytes.Reader
	if c.debug {
		respBody, err = io.ReadAll(r)
		if err != nil {
			return nil, nil, nil, newSimpleErrors(ErrJsonDecode, err)
		}
		respReader = bytes.NewReader(respBody)
		r = respReader
	}

	rawData, gqlErrors := c.DecodeResponse(r)
	if respReader != nil {
		_, _ = respReader.Seek(0, io.SeekStart)
	}
	if len(gqlErrors) == 0 {
		return rawData, resp, respReader, nil
	}

	if gqlErrors[0].GetCode() == ErrJsonDecode {
		we := c.NewRequestError(
			ErrJsonDecode,
			errors.New(gqlErrors[0].Message),
			request,
			resp,
			bytes.NewReader(reqBody),
			bytes.NewReader(respBody),
		)
		return nil, nil, nil, Errors{we}
	}

	if c.debug && gqlErrors[0].Extensions["internal"] == nil {
		gqlErrors[0] = c.DecorateError(
			gqlErrors[0],
			request,
			resp,
			bytes.NewReader(reqBody),
			bytes.NewReader(respBody),
		)
	}
	return rawData, resp, respReader, gqlErrors
}

// BuildRequest constructs the POST request for one GraphQL operation. It
// returns the request body as well, for error decoration.
func (c *Client) BuildRequest(
	ctx context.Context,
	query string,
	variables map[string]any,
	operationName string,
	options ...RequestOption,
) (*http.Request, []byte, error) {
	if len(variables) == 0 {
		variables = nil
	}
	in := struct {
		Query         string         `json:"query"`
		Variables     map[string]any `json:"variables,omitempty"`
		OperationName string         `json:"operationName,omitempty"`
	}{
		Query:         query,
		Variables:     variables,
		OperationName: operationName,
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(in); err != nil {
		return nil, nil, err
	}

	reqBody := buf.Bytes()
	request, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.url,
		bytes.NewReader(reqBody),
	)
	if err != nil {
		return nil, reqBody, err
	}
	request.Header.Add("Content-Type", "application/json")
	if c.token != "" {
		request.Header.Set("Authorization", c.token)
	}
	if c.requestModifier != nil {
		c.requestModifier(request)
	}
	for _, opt := range options {
		opt(request)
	}
	return request, reqBody, nil
}

// ExecuteRequest sends req and checks the status code. The returned reader
// yields the body, decompressed when the server used gzip; the caller closes
// resp.Body.
func (c *Client) ExecuteRequest(req *http.Request) (*http.Response, io.Reader, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}

	var r io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gr, err := gzip.NewReader(resp.Body)
		if err != nil {
			_ = resp.Body.Close()
			return nil, nil, fmt.Errorf("problem trying to create gzip reader: %w", err)
		}
		r = gr
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(r)
		_ = resp.Body.Close()
		return nil, nil, fmt.Errorf("%v; body: %q", resp.Status, body)
	}
	return resp, r, nil
}

// DecodeResponse splits a GraphQL response into its raw data and errors.
func (c *Client) DecodeResponse(reader io.Reader) ([]byte, Errors) {
	var out struct {
		Data   *json.RawMessage
		Errors Errors
	}
	if err := json.NewDecoder(reader).Decode(&out); err != nil {
		return nil, newSimpleErrors(ErrJsonDecode, err)
	}

	var rawData []byte
	if out.Data != nil && len(*out.Data) > 0 && string(*out.Data) != "null" {
		rawData = *out.Data
	}
	if len(out.Errors) > 0 {
		return rawData, out.Errors
	}
	return rawData, nil
}

// clone copies every field of c.
func (c *Client) clone() *Client {
	cp := *c
	return &cp
}

// WithRequestModifier returns a new Client that applies f to every request.
func (c *Client) WithRequestModifier(f RequestModifier) *Client {
	clone := c.clone()
	clone.requestModifier = f
	return clone
}

// WithDebug returns a new Client with debug mode set. In debug mode errors
// carry the request and response under their "internal" extension and
// dispatched operations are logged.
func (c *Client) WithDebug(debug bool) *Client {
	clone := c.clone()
	clone.debug = debug
	return clone
}

// WithLogger returns a new Client logging to l. A nil logger disables
// logging.
func (c *Client) WithLogger(l *zap.Logger) *Client {
	clone := c.clone()
	if l == nil {
		l = zap.NewNop()
	}
	clone.logger = l
	return clone
}

// WithToken returns a new Client sending token as the Authorization header.
func (c *Client) WithToken(token string) *Client {
	clone := c.clone()
	clone.token = token
	return clone
}

// DecorateError attaches the request and response to err when the client is
// in debug mode. Outside debug mode err is returned unchanged.
func (c *Client) DecorateError(
	err Error,
	req *http.Request,
	resp *http.Response,
	reqBody,
	respBody io.Reader,
) Error {
	if !c.debug {
		return err
	}
	if req != nil && reqBody != nil {
		err = err.withRequest(req, reqBody)
	}
	if resp != nil && respBody != nil {
		err = err.withResponse(resp, respBody)
	}
	return err
}

// NewRequestError creates an error with code and decorates it.
func (c *Client) NewRequestError(
	code string,
	err error,
	req *http.Request,
	resp *http.Response,
	reqBody,
	respBody io.Reader,
) Error {
	return c.DecorateError(newError(code, err), req, resp, reqBody, respBody)
}
