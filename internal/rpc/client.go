package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls the emissions service.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient creates a Client over cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// CalculateCorporate calls CalculateCorporate.
func (c *Client) CalculateCorporate(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodCalculateCorporate, in, opts...)
}

// CalculateAdTechPlatform calls CalculateAdTechPlatform.
func (c *Client) CalculateAdTechPlatform(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodCalculateAdTechPlatform, in, opts...)
}

// CalculateSecondaryBidRequest calls CalculateSecondaryBidRequest.
func (c *Client) CalculateSecondaryBidRequest(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodCalculateSecondaryBidRequest, in, opts...)
}

func (c *Client) invoke(ctx context.Context, method string, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
