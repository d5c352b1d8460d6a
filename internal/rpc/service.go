// ============================================================================
// robolang - Robot Control Language Tools
// ============================================================================
//
// Package:     rpc
// Description: gRPC validation service and client
// Author:      Mike Stoffels
// Created:     2025-02-20
// License:     MIT
// ============================================================================

package rpc

import (
	"context"

	"github.com/msto63/robolang/internal/store"
	"github.com/msto63/robolang/internal/validator"
	coregrpc "github.com/msto63/robolang/pkg/core/grpc"
	"github.com/msto63/robolang/pkg/core/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "robolang.v1.Validator"

const validateMethod = "/" + ServiceName + "/Validate"

// DefaultDocumentName is used when a request carries no name
const DefaultDocumentName = "<grpc>"

// ValidatorServer is the server API of the validation service. Messages are
// google.protobuf.Struct so the service needs no generated code.
type ValidatorServer interface {
	Validate(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes the validation service for grpc.Server
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ValidatorServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Validate",
			Handler:    validateHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "robolang/v1/validator.proto",
}

func validateHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ValidatorServer).Validate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: validateMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(ValidatorServer).Validate(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Service implements ValidatorServer
type Service struct {
	validator *validator.Validator
	logger    *logging.Logger
}

// NewService creates the validation service
func NewService(v *validator.Validator) *Service {
	return &Service{
		validator: v,
		logger:    logging.New("rpc"),
	}
}

// Register adds the service to srv and marks it serving
func Register(srv *coregrpc.Server, svc *Service) {
	srv.GRPCServer().RegisterService(&ServiceDesc, svc)
	srv.SetServing(ServiceName, true)
}

// Validate validates the request's text field. A rejected document is a
// successful call with ok=false.
func (s *Service) Validate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()

	textValue, ok := fields["text"]
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "text is required")
	}
	if _, isString := textValue.GetKind().(*structpb.Value_StringValue); !isString {
		return nil, status.Error(codes.InvalidArgument, "text must be a string")
	}

	name := fields["name"].GetStringValue()
	if name == "" {
		name = DefaultDocumentName
	}

	result := s.validator.Validate(ctx, store.OriginGRPC, name, textValue.GetStringValue())

	resp, err := EncodeResult(result)
	if err != nil {
		s.logger.Error("Failed to encode response", "document", name, "error", err)
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	return resp, nil
}
