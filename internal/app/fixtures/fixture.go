package fixtures

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// Fixture is one canned request/response pair read from a fixture file.
type Fixture struct {
	File     string
	Enabled  bool
	Request  Request
	Response Response
}

// Request holds the matching criteria of a fixture. Method and Path are nil
// when the fixture does not declare them as strings.
type Request struct {
	Method      *string
	Path        *string
	QueryParams []QueryParam
}

type QueryParam struct {
	Key   string
	Value string
}

// Response is the response section as declared in the file. Defaults are
// applied when the response is planned, not here.
type Response struct {
	StatusCode   int
	Headers      []Header
	Body         []byte
	DelaySeconds float64
}

type Header struct {
	Name  string
	Value string
}

// ParseError reports a fixture file that could not be read or decoded.
type ParseError struct {
	File string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("error decoding JSON from %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse decodes a fixture document. The header and query parameter order of
// the document is kept.
func Parse(file string, data []byte) (*Fixture, error) {
	if !gjson.ValidBytes(data) {
		return nil, &ParseError{File: file, Err: errors.New("invalid JSON")}
	}

	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, &ParseError{File: file, Err: errors.New("fixture must be a JSON object")}
	}

	fixture := &Fixture{
		File:    file,
		Enabled: true,
	}
	if enabled := root.Get("enabled"); enabled.Exists() {
		fixture.Enabled = Truthy(enabled)
	}

	fixture.Request = parseRequest(root.Get("request"))

	response, err := parseResponse(root.Get("response"))
	if err != nil {
		return nil, &ParseError{File: file, Err: err}
	}
	fixture.Response = response

	return fixture, nil
}

func parseRequest(request gjson.Result) Request {
	var result Request
	if !request.IsObject() {
		return result
	}

	if method := request.Get("method"); method.Type == gjson.String {
		result.Method = &method.Str
	}
	if path := request.Get("path"); path.Type == gjson.String {
		result.Path = &path.Str
	}

	if params := request.Get("queryParams"); params.IsObject() {
		params.ForEach(func(key, value gjson.Result) bool {
			result.QueryParams = append(result.QueryParams, QueryParam{
				Key:   key.String(),
				Value: scalarText(value),
			})
			return true
		})
	}

	return result
}

func parseResponse(response gjson.Result) (Response, error) {
	var result Response
	if !response.IsObject() {
		return result, nil
	}

	if status := response.Get("statusCode"); status.Exists() {
		if status.Type != gjson.Number {
			return result, errors.Errorf("statusCode must be a number, got %s", status.Raw)
		}
		code := int(status.Int())
		if code != 0 && (code < 100 || code > 999) {
			return result, errors.Errorf("statusCode %d is out of range", code)
		}
		result.StatusCode = code
	}

	if headers := response.Get("headers"); headers.IsObject() {
		headers.ForEach(func(key, value gjson.Result) bool {
			result.Headers = append(result.Headers, Header{
				Name:  key.String(),
				Value: scalarText(value),
			})
			return true
		})
	}

	if body := response.Get("body"); body.Exists() {
		result.Body = encodeBody(body)
	}

	if delay := response.Get("delaySeconds"); delay.Exists() {
		if delay.Type != gjson.Number {
			return result, errors.Errorf("delaySeconds must be a number, got %s", delay.Raw)
		}
		result.DelaySeconds = delay.Float()
	}

	return result, nil
}

// Truthy reports whether a JSON value counts as set: false, null, zero, the
// empty string and empty containers do not.
func Truthy(value gjson.Result) bool {
	switch value.Type {
	case gjson.True:
		return true
	case gjson.Number:
		return value.Num != 0
	case gjson.String:
		return value.Str != ""
	case gjson.JSON:
		empty := true
		value.ForEach(func(_, _ gjson.Result) bool {
			empty = false
			return false
		})
		return !empty
	default:
		return false
	}
}

// non-string scalars compare by their JSON text, so 7 matches "7"
func scalarText(value gjson.Result) string {
	if value.Type == gjson.String {
		return value.Str
	}
	return value.Raw
}
