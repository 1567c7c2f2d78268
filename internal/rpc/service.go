// Package rpc exposes the emissions calculators as a gRPC service. Messages
// are google.protobuf.Struct values carrying the same JSON documents as the
// REST API.
package rpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/rshade/adtech-emissions/internal/carbon"
	"github.com/rshade/adtech-emissions/internal/service"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "adtech.emissions.v1.EmissionsService"

// Full method names.
const (
	MethodCalculateCorporate           = "/" + ServiceName + "/CalculateCorporate"
	MethodCalculateAdTechPlatform      = "/" + ServiceName + "/CalculateAdTechPlatform"
	MethodCalculateSecondaryBidRequest = "/" + ServiceName + "/CalculateSecondaryBidRequest"
)

// EmissionsServer is the server API of the emissions service.
type EmissionsServer interface {
	CalculateCorporate(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CalculateAdTechPlatform(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CalculateSecondaryBidRequest(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterEmissionsServer registers srv on s.
func RegisterEmissionsServer(s grpc.ServiceRegistrar, srv EmissionsServer) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EmissionsServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CalculateCorporate", Handler: unaryHandler(MethodCalculateCorporate, EmissionsServer.CalculateCorporate)},
		{MethodName: "CalculateAdTechPlatform", Handler: unaryHandler(MethodCalculateAdTechPlatform, EmissionsServer.CalculateAdTechPlatform)},
		{MethodName: "CalculateSecondaryBidRequest", Handler: unaryHandler(MethodCalculateSecondaryBidRequest, EmissionsServer.CalculateSecondaryBidRequest)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "adtech/emissions/v1/emissions.proto",
}

type unaryMethod func(EmissionsServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryMethod) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(EmissionsServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(EmissionsServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// emissionsServer adapts the service layer to EmissionsServer.
type emissionsServer struct {
	svc *service.Service
}

func (e *emissionsServer) CalculateCorporate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in service.CorporateInput
	if err := fromStruct(req, &in); err != nil {
		return nil, err
	}
	out, err := e.svc.CalculateCorporate(in, traceFrom(ctx))
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(out)
}

func (e *emissionsServer) CalculateAdTechPlatform(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in service.ATPInput
	if err := fromStruct(req, &in); err != nil {
		return nil, err
	}
	out, err := e.svc.CalculateATP(in, traceFrom(ctx))
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(out)
}

func (e *emissionsServer) CalculateSecondaryBidRequest(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var in service.SecondaryInput
	if err := fromStruct(req, &in); err != nil {
		return nil, err
	}
	return toStruct(e.svc.CalculateSecondary(in, traceFrom(ctx)))
}

// fromStruct decodes a Struct into one of the service input types.
func fromStruct(s *structpb.Struct, v any) error {
	data, err := protojson.Marshal(s)
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}
	return nil
}

// toStruct encodes a result as a Struct. Decimals become strings.
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

// toStatus maps engine errors to gRPC status codes.
func toStatus(err error) error {
	switch {
	case errors.Is(err, carbon.ErrTemplateNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, carbon.ErrMissingValue),
		errors.Is(err, carbon.ErrInvalidInput),
		errors.Is(err, carbon.ErrDivisionByZero),
		errors.Is(err, carbon.ErrCycle):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, fmt.Sprintf("internal error: %v", err))
	}
}
