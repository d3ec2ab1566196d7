// Package gmcp decodes GMCP sub-negotiation payloads: an ASCII
// "Package.Message" optionally followed by a space and a JSON value.
package gmcp

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Message is one decoded GMCP payload.
type Message struct {
	Package string
	// Value is the raw JSON value following the package name, or nil if
	// the message carried no value.
	Value json.RawMessage
}

// Decode parses a raw GMCP sub-negotiation payload.
//
// Postcondition: returns the package name and the JSON value (nil if
// absent), or an error if the JSON portion is present but malformed.
func Decode(payload []byte) (Message, error) {
	trimmed := bytes.TrimSpace(payload)
	idx := bytes.IndexByte(trimmed, ' ')
	if idx < 0 {
		return Message{Package: string(trimmed)}, nil
	}

	pkg := string(trimmed[:idx])
	rest := bytes.TrimSpace(trimmed[idx+1:])
	if len(rest) == 0 {
		return Message{Package: pkg}, nil
	}

	if !json.Valid(rest) {
		return Message{}, fmt.Errorf("gmcp.Decode: invalid JSON value for package %q", pkg)
	}

	return Message{Package: pkg, Value: json.RawMessage(rest)}, nil
}

// Unmarshal decodes the message's JSON value into dst.
func (m Message) Unmarshal(dst any) error {
	if len(m.Value) == 0 {
		return fmt.Errorf("gmcp.Message.Unmarshal: %s carries no value", m.Package)
	}
	return json.Unmarshal(m.Value, dst)
}
