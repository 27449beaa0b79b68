package parser

import (
	"encoding/json"
	"io"
	"regexp"
	"strings"

	"github.com/go-faster/errors"
)

// ParseError reports a response body that is neither JSON nor a JSONP
// callback wrapping JSON.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return "parse payload: " + e.Reason + ": " + e.Err.Error()
	}
	return "parse payload: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

// The whole body must be the call; a callback buried in other text is rejected.
var jsonpPattern = regexp.MustCompile(`^[A-Za-z_$][\w$.]*\s*\(([\s\S]*)\)\s*;?$`)

// Unwrap decodes a JSON document or the argument of a JSONP callback such as
// mtopjsonp3({...}). Numbers are kept as json.Number.
func Unwrap(text string) (interface{}, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, &ParseError{Reason: "empty body"}
	}

	if v, err := decodeJSON(trimmed); err == nil {
		return v, nil
	}

	m := jsonpPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return nil, &ParseError{Reason: "not JSON or JSONP"}
	}

	v, err := decodeJSON(m[1])
	if err != nil {
		return nil, &ParseError{Reason: "malformed JSONP argument", Err: err}
	}
	return v, nil
}

// UnwrapObject is Unwrap restricted to payloads whose top level is an object.
func UnwrapObject(text string) (map[string]interface{}, error) {
	v, err := Unwrap(text)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]interface{})
	if !ok {
		return nil, &ParseError{Reason: "top level is not an object"}
	}
	return obj, nil
}

func decodeJSON(s string) (interface{}, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, errors.Wrap(err, "decode")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after JSON value")
	}
	return v, nil
}
