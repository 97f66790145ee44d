// Package rpc is the C5 adapter. It defines the RPC contract as plain Go
// structs and drives google.golang.org/grpc through a hand-built
// ServiceDesc plus a JSON encoding.Codec. The transport is still real gRPC:
// HTTP/2 framing, deadlines, streaming, interceptors — only the wire codec
// differs from the default protobuf one.
package rpc

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

const codecName = "json"

// jsonCodec implements encoding.Codec. Registering it under the name "json"
// makes grpc-go select it automatically for requests whose content-type is
// application/grpc+json; a client selects it via grpc.CallContentSubtype("json").
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("rpc: unmarshal %T: %w", v, err)
	}
	return nil
}

func (jsonCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
