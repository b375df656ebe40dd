// Package external provides adapters for upstream data providers and cache stores.
// Each adapter implements a port and normalizes provider payloads into domain types.
package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"geosynth.app/internal/adapters/transport"
)

// HTTPTransport is the part of the outbound client the adapters use
type HTTPTransport interface {
	RequestWithRetry(ctx context.Context, req transport.Request) (*transport.Response, error)
	GetJSON(ctx context.Context, req transport.Request, out interface{}) error
}

// orderedObject decodes a JSON object keeping its member order, which Go
// maps do not preserve
type orderedObject []orderedMember

type orderedMember struct {
	Key   string
	Value json.RawMessage
}

func (o *orderedObject) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("expected JSON object, got %v", tok)
	}

	var members orderedObject
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("expected object key, got %v", keyTok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return err
		}
		members = append(members, orderedMember{Key: key, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	*o = members
	return nil
}
