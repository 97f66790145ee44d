package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// InventoryServer is the C5 RPC contract : GetStock,
// AdjustStock, ReserveStock, ReleaseReservation, CommitReservation,
// CheckAvailability, BulkCheckAvailability.
type InventoryServer interface {
	GetStock(ctx context.Context, req *GetStockRequest) (*GetStockResponse, error)
	AdjustStock(ctx context.Context, req *AdjustStockRequest) (*AdjustStockResponse, error)
	ReserveStock(ctx context.Context, req *ReserveStockRequest) (*ReserveStockResponse, error)
	ReleaseReservation(ctx context.Context, req *ReleaseReservationRequest) (*ReleaseReservationResponse, error)
	CommitReservation(ctx context.Context, req *CommitReservationRequest) (*CommitReservationResponse, error)
	CheckAvailability(ctx context.Context, req *CheckAvailabilityRequest) (*CheckAvailabilityResponse, error)
	BulkCheckAvailability(ctx context.Context, req *BulkCheckAvailabilityRequest) (*BulkCheckAvailabilityResponse, error)
}

// RegisterInventoryServer registers srv with grpcServer, the same call
// shape a generated productv1.RegisterInventoryServiceServer would have.
func RegisterInventoryServer(grpcServer *grpc.Server, srv InventoryServer) {
	grpcServer.RegisterService(&serviceDesc, srv)
}

const serviceName = "inventory.v1.InventoryService"

var serviceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*InventoryServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetStock", Handler: getStockHandler},
		{MethodName: "AdjustStock", Handler: adjustStockHandler},
		{MethodName: "ReserveStock", Handler: reserveStockHandler},
		{MethodName: "ReleaseReservation", Handler: releaseReservationHandler},
		{MethodName: "CommitReservation", Handler: commitReservationHandler},
		{MethodName: "CheckAvailability", Handler: checkAvailabilityHandler},
		{MethodName: "BulkCheckAvailability", Handler: bulkCheckAvailabilityHandler},
	},
	Streams: []grpc.StreamDesc{},
	Metadata: "inventory.proto",
}

func getStockHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(GetStockRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InventoryServer).GetStock(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/GetStock"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InventoryServer).GetStock(ctx, req.(*GetStockRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func adjustStockHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(AdjustStockRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InventoryServer).AdjustStock(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/AdjustStock"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InventoryServer).AdjustStock(ctx, req.(*AdjustStockRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func reserveStockHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ReserveStockRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InventoryServer).ReserveStock(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/ReserveStock"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InventoryServer).ReserveStock(ctx, req.(*ReserveStockRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func releaseReservationHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ReleaseReservationRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InventoryServer).ReleaseReservation(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/ReleaseReservation"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InventoryServer).ReleaseReservation(ctx, req.(*ReleaseReservationRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func commitReservationHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CommitReservationRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InventoryServer).CommitReservation(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/CommitReservation"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InventoryServer).CommitReservation(ctx, req.(*CommitReservationRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func checkAvailabilityHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CheckAvailabilityRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InventoryServer).CheckAvailability(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/CheckAvailability"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InventoryServer).CheckAvailability(ctx, req.(*CheckAvailabilityRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func bulkCheckAvailabilityHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(BulkCheckAvailabilityRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(InventoryServer).BulkCheckAvailability(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/BulkCheckAvailability"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(InventoryServer).BulkCheckAvailability(ctx, req.(*BulkCheckAvailabilityRequest))
	}
	return interceptor(ctx, in, info, handler)
}
