package clinicapi

import (
	"bytes"
	"encoding/json"
	"errors"
)

// maxEnvelopeDepth covers the backend's {"data":{"data":X}} shape.
const maxEnvelopeDepth = 2

var errEmptyBody = errors.New("empty body")

// decodeEnvelope accepts {"data":{"data":X}}, {"data":X} and bare X.
func decodeEnvelope[T any](op string, body []byte) (T, error) {
	var out T
	raw := bytes.TrimSpace(body)
	if len(raw) == 0 {
		return out, &ParseError{Op: op, Err: errEmptyBody}
	}
	for i := 0; i < maxEnvelopeDepth; i++ {
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(raw, &wrapper); err != nil {
			break
		}
		inner, ok := wrapper["data"]
		if !ok {
			break
		}
		raw = bytes.TrimSpace(inner)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, &ParseError{Op: op, Body: truncate(string(body), 256), Err: err}
	}
	return out, nil
}

// decodeList is decodeEnvelope for collections; null decodes to an empty slice.
func decodeList[T any](op string, body []byte) ([]T, error) {
	items, err := decodeEnvelope[[]T](op, body)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
