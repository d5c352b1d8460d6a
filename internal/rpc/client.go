package rpc

import (
	"context"
	"fmt"

	coregrpc "github.com/msto63/robolang/pkg/core/grpc"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls a remote validation service
type Client struct {
	conn  *grpc.ClientConn
	owned bool
}

// Dial connects to the validation service at target
func Dial(target string) (*Client, error) {
	conn, err := coregrpc.DialSimple(target)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, owned: true}, nil
}

// NewClient wraps an existing connection. Close leaves it open.
func NewClient(conn *grpc.ClientConn) *Client {
	return &Client{conn: conn}
}

// Validate sends one document to the service
func (c *Client) Validate(ctx context.Context, name, text string) (*Response, error) {
	req, err := structpb.NewStruct(map[string]interface{}{
		"name": name,
		"text": text,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, validateMethod, req, out); err != nil {
		return nil, err
	}
	return DecodeResponse(out)
}

// CheckHealth verifies the service is serving
func (c *Client) CheckHealth(ctx context.Context) error {
	return coregrpc.CheckHealth(ctx, c.conn, ServiceName)
}

// Close closes a connection created by Dial
func (c *Client) Close() error {
	if !c.owned {
		return nil
	}
	return c.conn.Close()
}
