package datastore

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls the datastore service.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps a connection to the datastore service.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Select returns the rows matching req.
func (c *Client) Select(ctx context.Context, req SelectRequest, opts ...grpc.CallOption) ([]Row, error) {
	in, err := req.toStruct()
	if err != nil {
		return nil, fmt.Errorf("encode select: %w", err)
	}
	out, err := c.invoke(ctx, MethodSelect, in, opts...)
	if err != nil {
		return nil, err
	}
	return Rows(out.AsMap(), "rows"), nil
}

// Insert writes one row and returns it as stored.
func (c *Client) Insert(ctx context.Context, req InsertRequest, opts ...grpc.CallOption) (Row, error) {
	in, err := req.toStruct()
	if err != nil {
		return nil, fmt.Errorf("encode insert: %w", err)
	}
	out, err := c.invoke(ctx, MethodInsert, in, opts...)
	if err != nil {
		return nil, err
	}
	row, _ := out.AsMap()["row"].(map[string]any)
	return row, nil
}

// Delete removes matching rows and reports how many were removed.
func (c *Client) Delete(ctx context.Context, req DeleteRequest, opts ...grpc.CallOption) (int, error) {
	in, err := req.toStruct()
	if err != nil {
		return 0, fmt.Errorf("encode delete: %w", err)
	}
	out, err := c.invoke(ctx, MethodDelete, in, opts...)
	if err != nil {
		return 0, err
	}
	return Int(out.AsMap(), "deleted"), nil
}

// Call runs a procedure and returns its result object.
func (c *Client) Call(ctx context.Context, req CallRequest, opts ...grpc.CallOption) (Row, error) {
	in, err := req.toStruct()
	if err != nil {
		return nil, fmt.Errorf("encode call: %w", err)
	}
	out, err := c.invoke(ctx, MethodCall, in, opts...)
	if err != nil {
		return nil, err
	}
	result, _ := out.AsMap()["result"].(map[string]any)
	return result, nil
}

func (c *Client) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	if c == nil || c.cc == nil {
		return nil, fmt.Errorf("datastore client is not configured")
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
