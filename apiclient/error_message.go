package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jrsteele09/go-car-rental/internal/errors"
)

const defaultErrorMessage = "An error occurred"

// ErrorPayload is the decoded body of an error response. It is one of
// TextPayload, DetailPayload, MessagePayload, ErrorFieldPayload,
// FieldErrorsPayload or UnknownPayload.
type ErrorPayload interface {
	// Message is the text shown to the user
	Message() string
	isErrorPayload()
}

// TextPayload is a body that is not a JSON object: plain text or a JSON string
type TextPayload string

// DetailPayload is {"detail": "..."}
type DetailPayload string

// MessagePayload is {"message": "..."}
type MessagePayload string

// ErrorFieldPayload is {"error": "..."}
type ErrorFieldPayload string

// FieldErrorsPayload is a validation error map such as
// {"email": ["Enter a valid email address."]}, reduced to its first field
type FieldErrorsPayload struct {
	Field  string
	Errors []string
}

// UnknownPayload is any other JSON value, kept in compact form
type UnknownPayload struct {
	Raw json.RawMessage
}

func (p TextPayload) Message() string       { return string(p) }
func (p DetailPayload) Message() string     { return string(p) }
func (p MessagePayload) Message() string    { return string(p) }
func (p ErrorFieldPayload) Message() string { return string(p) }
func (p UnknownPayload) Message() string    { return string(p.Raw) }

func (p FieldErrorsPayload) Message() string {
	return fmt.Sprintf("%s: %s", p.Field, p.Errors[0])
}

func (TextPayload) isErrorPayload()        {}
func (DetailPayload) isErrorPayload()      {}
func (MessagePayload) isErrorPayload()     {}
func (ErrorFieldPayload) isErrorPayload()  {}
func (FieldErrorsPayload) isErrorPayload() {}
func (UnknownPayload) isErrorPayload()     {}

// ParseErrorPayload classifies an error body. It returns nil for an empty body.
func ParseErrorPayload(body []byte) ErrorPayload {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil
	}
	if !json.Valid(body) {
		return TextPayload(body)
	}

	switch body[0] {
	case '"':
		var s string
		if json.Unmarshal(body, &s) == nil {
			return TextPayload(s)
		}
	case '{':
		if p := parseObjectPayload(body); p != nil {
			return p
		}
	}
	return UnknownPayload{Raw: compact(body)}
}

func parseObjectPayload(body []byte) ErrorPayload {
	keys, fields, err := decodeOrderedObject(body)
	if err != nil {
		return nil
	}

	for _, key := range []string{"detail", "message", "error"} {
		var s string
		if raw, ok := fields[key]; !ok || json.Unmarshal(raw, &s) != nil || s == "" {
			continue
		}
		switch key {
		case "detail":
			return DetailPayload(s)
		case "message":
			return MessagePayload(s)
		default:
			return ErrorFieldPayload(s)
		}
	}

	// only the first field is considered, as the API lists them in form order
	if len(keys) == 0 {
		return nil
	}
	var errs []json.RawMessage
	if json.Unmarshal(fields[keys[0]], &errs) != nil || len(errs) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		var s string
		if json.Unmarshal(e, &s) != nil {
			s = string(compact(e))
		}
		msgs = append(msgs, s)
	}
	return FieldErrorsPayload{Field: keys[0], Errors: msgs}
}

// decodeOrderedObject decodes a JSON object keeping its key order
func decodeOrderedObject(body []byte) ([]string, map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, nil, fmt.Errorf("not a json object")
	}

	var keys []string
	fields := map[string]json.RawMessage{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("unexpected token %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, err
		}
		if _, seen := fields[key]; !seen {
			keys = append(keys, key)
		}
		fields[key] = raw
	}
	if _, err := dec.Token(); err != nil && err != io.EOF {
		return nil, nil, err
	}
	return keys, fields, nil
}

func compact(raw []byte) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}

// ErrorMessage renders err for display. API errors use the most specific
// text found in the response body; anything else uses err.Error().
func ErrorMessage(err error) string {
	if err == nil {
		return defaultErrorMessage
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if p := apiErr.Payload(); p != nil {
			if msg := p.Message(); msg != "" {
				return msg
			}
		}
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return defaultErrorMessage
}
