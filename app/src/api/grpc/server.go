package grpcapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"dfd-gps-service/app/src/api/payload"
	"dfd-gps-service/app/src/domain"
	"dfd-gps-service/app/src/infra"
)

const requestIDMetadata = "x-request-id"

// NewServer constructs a gRPC server exposing the correction service and the
// standard health service.
func NewServer(service domain.CorrectionService, logger *infra.Logger) *grpc.Server {
	interceptors := []grpc.UnaryServerInterceptor{
		loggingInterceptor(logger),
		infra.GRPCUnaryInterceptor(),
		grpc_prometheus.UnaryServerInterceptor,
	}

	server := grpc.NewServer(
		grpc.ChainUnaryInterceptor(interceptors...),
		grpc.ChainStreamInterceptor(grpc_prometheus.StreamServerInterceptor),
	)
	RegisterCorrectionServiceServer(server, &correctionServer{service: service})

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, hs)

	// grpc_server_* series are pre-populated with zeros for every method.
	grpc_prometheus.Register(server)
	return server
}

type correctionServer struct {
	service domain.CorrectionService
}

func (s *correctionServer) Correct(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request must not be nil")
	}

	raw, err := json.Marshal(req.AsMap())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "request is not representable as JSON")
	}
	body, err := payload.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	measurement, err := body.ToDomain()
	if err != nil {
		return nil, translateServiceError(err)
	}

	result, err := s.service.Correct(ctx, measurement)
	if err != nil {
		return nil, translateServiceError(err)
	}

	return toStruct(payload.FromDomain(result))
}

func toStruct(resp payload.CorrectionResponse) (*structpb.Struct, error) {
	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal server error")
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, status.Error(codes.Internal, "internal server error")
	}
	out, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal server error")
	}
	return out, nil
}

func translateServiceError(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request cancelled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	default:
		return status.Error(codes.Internal, "internal server error")
	}
}

func loggingInterceptor(logger *infra.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		ctx = infra.WithCorrelationID(ctx, requestID(ctx))

		start := time.Now()
		resp, err := handler(ctx, req)
		duration := time.Since(start)
		if err != nil {
			logger.Printf(ctx, "gRPC %s failed in %s: %v", info.FullMethod, duration, err)
		} else {
			logger.Printf(ctx, "gRPC %s completed in %s", info.FullMethod, duration)
		}
		return resp, err
	}
}

func requestID(ctx context.Context) string {
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if values := md.Get(requestIDMetadata); len(values) > 0 && strings.TrimSpace(values[0]) != "" {
			return values[0]
		}
	}
	return uuid.NewString()
}
