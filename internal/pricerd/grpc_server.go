package pricerd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/GoSim-25-26J-441/mc-option-pricer/internal/pricer"
	"github.com/GoSim-25-26J-441/mc-option-pricer/pkg/logger"
	"github.com/GoSim-25-26J-441/mc-option-pricer/pkg/models"
)

const (
	PricingServiceName = "pricing.v1.PricingService"

	priceMethod  = "/" + PricingServiceName + "/Price"
	getRunMethod = "/" + PricingServiceName + "/GetRun"
)

// PricingServiceServer is the server API of pricing.v1.PricingService. Messages
// are google.protobuf.Struct values whose fields follow the JSON API.
type PricingServiceServer interface {
	// Price prices a request synchronously. Fields are those of PricingRequest
	// plus an optional run_id; the response is the completed run.
	Price(context.Context, *structpb.Struct) (*structpb.Struct, error)
	// GetRun looks up a run by {"run_id": ...}.
	GetRun(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// PricingServiceDesc describes pricing.v1.PricingService for grpc.Server
var PricingServiceDesc = grpc.ServiceDesc{
	ServiceName: PricingServiceName,
	HandlerType: (*PricingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Price", Handler: priceHandler},
		{MethodName: "GetRun", Handler: getRunHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func RegisterPricingServiceServer(s grpc.ServiceRegistrar, srv PricingServiceServer) {
	s.RegisterService(&PricingServiceDesc, srv)
}

func priceHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PricingServiceServer).Price(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: priceMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PricingServiceServer).Price(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func getRunHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PricingServiceServer).GetRun(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getRunMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(PricingServiceServer).GetRun(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// PricingGRPCServer implements PricingServiceServer on top of a RunStore and RunExecutor
type PricingGRPCServer struct {
	store    *RunStore
	Executor *RunExecutor
}

func NewPricingGRPCServer(store *RunStore, executor *RunExecutor) *PricingGRPCServer {
	return &PricingGRPCServer{
		store:    store,
		Executor: executor,
	}
}

// NewGRPCServer builds a grpc.Server serving the pricing service and the standard
// health service. The returned health server reports SERVING for both the
// pricing service and the overall server.
func NewGRPCServer(store *RunStore, executor *RunExecutor, opts ...grpc.ServerOption) (*grpc.Server, *health.Server) {
	gs := grpc.NewServer(opts...)
	RegisterPricingServiceServer(gs, NewPricingGRPCServer(store, executor))

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(PricingServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(gs, hs)
	return gs, hs
}

type priceRequest struct {
	RunID string `json:"run_id,omitempty"`
	models.PricingRequest
}

func (s *PricingGRPCServer) Price(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	if in == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	req := priceRequest{PricingRequest: models.PricingRequest{Quantity: models.DefaultQuantity}}
	if err := decodeStruct(in, &req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}

	run, err := s.Executor.Submit(req.PricingRequest, SubmitOptions{RunID: req.RunID, Wait: true})
	if err != nil {
		return nil, status.Error(grpcCode(err), err.Error())
	}

	logger.Debug("run priced (gRPC)", "run_id", run.ID)
	return encodeStruct(run)
}

func (s *PricingGRPCServer) GetRun(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	runID := in.GetFields()["run_id"].GetStringValue()
	if runID == "" {
		return nil, status.Error(codes.InvalidArgument, "run_id is required")
	}
	run, ok := s.store.Get(runID)
	if !ok {
		return nil, status.Error(codes.NotFound, "run not found")
	}
	return encodeStruct(run)
}

func grpcCode(err error) codes.Code {
	switch {
	case errors.Is(err, pricer.ErrConfiguration), errors.Is(err, ErrInvalidRunID), errors.Is(err, ErrRunIDMissing):
		return codes.InvalidArgument
	case errors.Is(err, ErrRunExists):
		return codes.AlreadyExists
	case errors.Is(err, ErrRunNotFound):
		return codes.NotFound
	case errors.Is(err, ErrRunTerminal):
		return codes.FailedPrecondition
	default:
		return codes.Internal
	}
}

// decodeStruct maps a Struct onto v through its JSON form
func decodeStruct(in *structpb.Struct, v any) error {
	raw, err := protojson.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func encodeStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

// PricingClient calls pricing.v1.PricingService
type PricingClient struct {
	cc grpc.ClientConnInterface
}

func NewPricingClient(cc grpc.ClientConnInterface) *PricingClient {
	return &PricingClient{cc: cc}
}

// Price prices req remotely under an optional run ID and returns the completed run
func (c *PricingClient) Price(ctx context.Context, runID string, req models.PricingRequest, opts ...grpc.CallOption) (models.Run, error) {
	in, err := encodeStruct(priceRequest{RunID: runID, PricingRequest: req})
	if err != nil {
		return models.Run{}, err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, priceMethod, in, out, opts...); err != nil {
		return models.Run{}, err
	}
	var run models.Run
	if err := decodeStruct(out, &run); err != nil {
		return models.Run{}, fmt.Errorf("decode run: %w", err)
	}
	return run, nil
}

func (c *PricingClient) GetRun(ctx context.Context, runID string, opts ...grpc.CallOption) (models.Run, error) {
	in := &structpb.Struct{Fields: map[string]*structpb.Value{"run_id": structpb.NewStringValue(runID)}}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getRunMethod, in, out, opts...); err != nil {
		return models.Run{}, err
	}
	var run models.Run
	if err := decodeStruct(out, &run); err != nil {
		return models.Run{}, fmt.Errorf("decode run: %w", err)
	}
	return run, nil
}
