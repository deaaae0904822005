// Package codec registers a JSON codec for gRPC.
//
// Clients select it with grpc.CallContentSubtype(codec.Name), which puts
// "application/grpc+json" on the wire. Protobuf messages (health checks,
// reflection) are encoded with protojson, everything else with encoding/json.
package codec

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// Name is the content-subtype of the codec.
const Name = "json"

type JSON struct{}

func (JSON) Name() string { return Name }

func (JSON) Marshal(v any) ([]byte, error) {
	if m, ok := v.(proto.Message); ok {
		return protojson.Marshal(m)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("json codec: marshal %T: %w", v, err)
	}
	return b, nil
}

func (JSON) Unmarshal(data []byte, v any) error {
	if m, ok := v.(proto.Message); ok {
		return protojson.UnmarshalOptions{DiscardUnknown: true}.Unmarshal(data, m)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("json codec: unmarshal %T: %w", v, err)
	}
	return nil
}

func init() {
	encoding.RegisterCodec(JSON{})
}
