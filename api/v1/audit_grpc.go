// Package auditv1 defines the StoreAudit gRPC service.
//
// Messages are google.protobuf.Struct values so the service can be called
// from any gRPC client without generated stubs. The calling evaluator is
// identified by the x-evaluator-id metadata header.
package auditv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "audit.v1.StoreAudit"

// EvaluatorMetadataKey carries the caller's evaluator id.
const EvaluatorMetadataKey = "x-evaluator-id"

const (
	StoreAudit_CreateStore_FullMethodName       = "/" + ServiceName + "/CreateStore"
	StoreAudit_GetStore_FullMethodName          = "/" + ServiceName + "/GetStore"
	StoreAudit_ListStores_FullMethodName        = "/" + ServiceName + "/ListStores"
	StoreAudit_DeleteStore_FullMethodName       = "/" + ServiceName + "/DeleteStore"
	StoreAudit_SubmitEvaluation_FullMethodName  = "/" + ServiceName + "/SubmitEvaluation"
	StoreAudit_GetEvaluation_FullMethodName     = "/" + ServiceName + "/GetEvaluation"
	StoreAudit_RetractEvaluation_FullMethodName = "/" + ServiceName + "/RetractEvaluation"
	StoreAudit_GetStoreSummary_FullMethodName   = "/" + ServiceName + "/GetStoreSummary"
	StoreAudit_GetRankingView_FullMethodName    = "/" + ServiceName + "/GetRankingView"
	StoreAudit_ListRanked_FullMethodName        = "/" + ServiceName + "/ListRanked"
	StoreAudit_GetInsights_FullMethodName       = "/" + ServiceName + "/GetInsights"
	StoreAudit_ReportEvaluation_FullMethodName  = "/" + ServiceName + "/ReportEvaluation"
	StoreAudit_ListReports_FullMethodName       = "/" + ServiceName + "/ListReports"
)

// StoreAuditServer is the server API for the StoreAudit service.
// All implementations must embed UnimplementedStoreAuditServer.
type StoreAuditServer interface {
	// Registers a store. Request: name, city, category. Response: store.
	CreateStore(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// Request: store_id. Response: store.
	GetStore(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// Response: stores, newest first.
	ListStores(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// Deletes a store with its evaluations and reports. Request: store_id.
	DeleteStore(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// Request: store_id, answers (question number to score), comment. Response: evaluation, summary, ranking.
	SubmitEvaluation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// Request: store_id. Response: evaluation of the calling evaluator.
	GetEvaluation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// Request: store_id. Response: summary.
	RetractEvaluation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// Request: store_id. Response: summary.
	GetStoreSummary(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// Request: store_id. Response: ranking.
	GetRankingView(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// Request: store_ids, reviewed_only, limit. Response: entries.
	ListRanked(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// Response: insights.
	GetInsights(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// Request: store_id, evaluator_id, reason. Response: report.
	ReportEvaluation(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// Request: store_id. Response: reports.
	ListReports(context.Context, *structpb.Struct) (*structpb.Struct, error)
	mustEmbedUnimplementedStoreAuditServer()
}

// UnimplementedStoreAuditServer must be embedded to have forward compatible
// implementations.
type UnimplementedStoreAuditServer struct{}

func (UnimplementedStoreAuditServer) CreateStore(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method CreateStore not implemented")
}

func (UnimplementedStoreAuditServer) GetStore(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetStore not implemented")
}

func (UnimplementedStoreAuditServer) ListStores(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ListStores not implemented")
}

func (UnimplementedStoreAuditServer) DeleteStore(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method DeleteStore not implemented")
}

func (UnimplementedStoreAuditServer) SubmitEvaluation(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method SubmitEvaluation not implemented")
}

func (UnimplementedStoreAuditServer) GetEvaluation(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetEvaluation not implemented")
}

func (UnimplementedStoreAuditServer) RetractEvaluation(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method RetractEvaluation not implemented")
}

func (UnimplementedStoreAuditServer) GetStoreSummary(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetStoreSummary not implemented")
}

func (UnimplementedStoreAuditServer) GetRankingView(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetRankingView not implemented")
}

func (UnimplementedStoreAuditServer) ListRanked(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ListRanked not implemented")
}

func (UnimplementedStoreAuditServer) GetInsights(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetInsights not implemented")
}

func (UnimplementedStoreAuditServer) ReportEvaluation(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ReportEvaluation not implemented")
}

func (UnimplementedStoreAuditServer) ListReports(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ListReports not implemented")
}

func (UnimplementedStoreAuditServer) mustEmbedUnimplementedStoreAuditServer() {}

func RegisterStoreAuditServer(s grpc.ServiceRegistrar, srv StoreAuditServer) {
	s.RegisterService(&StoreAudit_ServiceDesc, srv)
}

type unaryCall func(srv StoreAuditServer, ctx context.Context, in *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(fullMethod string, call unaryCall) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(StoreAuditServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(StoreAuditServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// StoreAudit_ServiceDesc is the grpc.ServiceDesc for the StoreAudit service.
var StoreAudit_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*StoreAuditServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateStore",
			Handler:    unaryHandler(StoreAudit_CreateStore_FullMethodName, StoreAuditServer.CreateStore),
		},
		{
			MethodName: "GetStore",
			Handler:    unaryHandler(StoreAudit_GetStore_FullMethodName, StoreAuditServer.GetStore),
		},
		{
			MethodName: "ListStores",
			Handler:    unaryHandler(StoreAudit_ListStores_FullMethodName, StoreAuditServer.ListStores),
		},
		{
			MethodName: "DeleteStore",
			Handler:    unaryHandler(StoreAudit_DeleteStore_FullMethodName, StoreAuditServer.DeleteStore),
		},
		{
			MethodName: "SubmitEvaluation",
			Handler:    unaryHandler(StoreAudit_SubmitEvaluation_FullMethodName, StoreAuditServer.SubmitEvaluation),
		},
		{
			MethodName: "GetEvaluation",
			Handler:    unaryHandler(StoreAudit_GetEvaluation_FullMethodName, StoreAuditServer.GetEvaluation),
		},
		{
			MethodName: "RetractEvaluation",
			Handler:    unaryHandler(StoreAudit_RetractEvaluation_FullMethodName, StoreAuditServer.RetractEvaluation),
		},
		{
			MethodName: "GetStoreSummary",
			Handler:    unaryHandler(StoreAudit_GetStoreSummary_FullMethodName, StoreAuditServer.GetStoreSummary),
		},
		{
			MethodName: "GetRankingView",
			Handler:    unaryHandler(StoreAudit_GetRankingView_FullMethodName, StoreAuditServer.GetRankingView),
		},
		{
			MethodName: "ListRanked",
			Handler:    unaryHandler(StoreAudit_ListRanked_FullMethodName, StoreAuditServer.ListRanked),
		},
		{
			MethodName: "GetInsights",
			Handler:    unaryHandler(StoreAudit_GetInsights_FullMethodName, StoreAuditServer.GetInsights),
		},
		{
			MethodName: "ReportEvaluation",
			Handler:    unaryHandler(StoreAudit_ReportEvaluation_FullMethodName, StoreAuditServer.ReportEvaluation),
		},
		{
			MethodName: "ListReports",
			Handler:    unaryHandler(StoreAudit_ListReports_FullMethodName, StoreAuditServer.ListReports),
		},
	},
	Streams: []grpc.StreamDesc{},
}

// StoreAuditClient is the client API for the StoreAudit service.
type StoreAuditClient interface {
	CreateStore(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetStore(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListStores(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	DeleteStore(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	SubmitEvaluation(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetEvaluation(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	RetractEvaluation(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetStoreSummary(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetRankingView(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListRanked(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetInsights(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ReportEvaluation(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListReports(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type storeAuditClient struct {
	cc grpc.ClientConnInterface
}

func NewStoreAuditClient(cc grpc.ClientConnInterface) StoreAuditClient {
	return &storeAuditClient{cc}
}

func (c *storeAuditClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	if in == nil {
		in = &structpb.Struct{}
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *storeAuditClient) CreateStore(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, StoreAudit_CreateStore_FullMethodName, in, opts)
}

func (c *storeAuditClient) GetStore(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, StoreAudit_GetStore_FullMethodName, in, opts)
}

func (c *storeAuditClient) ListStores(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, StoreAudit_ListStores_FullMethodName, in, opts)
}

func (c *storeAuditClient) DeleteStore(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, StoreAudit_DeleteStore_FullMethodName, in, opts)
}

func (c *storeAuditClient) SubmitEvaluation(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, StoreAudit_SubmitEvaluation_FullMethodName, in, opts)
}

func (c *storeAuditClient) GetEvaluation(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, StoreAudit_GetEvaluation_FullMethodName, in, opts)
}

func (c *storeAuditClient) RetractEvaluation(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, StoreAudit_RetractEvaluation_FullMethodName, in, opts)
}

func (c *storeAuditClient) GetStoreSummary(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, StoreAudit_GetStoreSummary_FullMethodName, in, opts)
}

func (c *storeAuditClient) GetRankingView(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, StoreAudit_GetRankingView_FullMethodName, in, opts)
}

func (c *storeAuditClient) ListRanked(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, StoreAudit_ListRanked_FullMethodName, in, opts)
}

func (c *storeAuditClient) GetInsights(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, StoreAudit_GetInsights_FullMethodName, in, opts)
}

func (c *storeAuditClient) ReportEvaluation(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, StoreAudit_ReportEvaluation_FullMethodName, in, opts)
}

func (c *storeAuditClient) ListReports(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, StoreAudit_ListReports_FullMethodName, in, opts)
}
