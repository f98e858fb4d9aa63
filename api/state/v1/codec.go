package statev1

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

func init() {
	// Replace the default proto codec so the hand-defined structs above can
	// travel over gRPC without generated marshalers.
	encoding.RegisterCodec(JSONCodec{})
}

// JSONCodec serializes gRPC messages as JSON.
type JSONCodec struct{}

// Name returns the codec name; using "proto" substitutes the default codec.
func (JSONCodec) Name() string {
	return "proto"
}

// Marshal serializes the message to JSON.
func (JSONCodec) Marshal(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("json marshal error: %w", err)
	}
	return data, nil
}

// Unmarshal deserializes the message from JSON.
func (JSONCodec) Unmarshal(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("json unmarshal error: %w", err)
	}
	return nil
}
