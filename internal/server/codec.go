package server

import (
	"encoding/json"
	"fmt"
)

// jsonCodec serializes plain Go request and response structs. It replaces connect's
// protojson codec under the same name, so clients send application/json.
type jsonCodec struct{}

func (jsonCodec) Name() string {
	return "json"
}

func (jsonCodec) Marshal(msg any) ([]byte, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal(%T) > %w", msg, err)
	}
	return data, nil
}

func (jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("json.Unmarshal(%T) > %w", msg, err)
	}
	return nil
}
