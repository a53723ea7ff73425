package grpc

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

// NewServer creates a gRPC server carrying ReadingService, the standard
// health service and reflection (for grpcurl testing)
func NewServer(handler ReadingServiceServer, hs *HealthStatus, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(loggingInterceptor))
	srv := grpc.NewServer(opts...)

	RegisterReadingServiceServer(srv, handler)
	healthpb.RegisterHealthServer(srv, hs.srv)
	reflection.Register(srv)

	return srv
}

// loggingInterceptor logs every unary call with its outcome
func loggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)

	log.Info().
		Str("method", info.FullMethod).
		Str("code", status.Code(err).String()).
		Float64("duration_ms", float64(time.Since(start).Microseconds())/1000).
		Msg("rpc completed")
	return resp, err
}

// HealthStatus publishes database health through grpc.health.v1.Health
type HealthStatus struct {
	srv *health.Server
}

// NewHealthStatus creates a health server that reports NOT_SERVING until
// the first SetServing call
func NewHealthStatus() *HealthStatus {
	hs := &HealthStatus{srv: health.NewServer()}
	hs.SetServing(false)
	return hs
}

// SetServing updates both the overall and the ReadingService status
func (h *HealthStatus) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	h.srv.SetServingStatus("", st)
	h.srv.SetServingStatus(ServiceName, st)
}

// Shutdown marks every service NOT_SERVING and ignores later updates
func (h *HealthStatus) Shutdown() {
	h.srv.Shutdown()
}
