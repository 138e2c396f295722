package server

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	health "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const defaultPort = 50051

type Option func(*settings)

type settings struct {
	port           int
	logger         *zap.Logger
	reflection     bool
	logCalls       bool
	recoverPanics  bool
	identityHeader string
}

// WithPort sets the listen port. 0 picks a free one.
func WithPort(port int) Option {
	return func(s *settings) { s.port = port }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

func WithReflection(enabled bool) Option {
	return func(s *settings) { s.reflection = enabled }
}

// WithLogging logs every unary call with its code and latency.
func WithLogging(enabled bool) Option {
	return func(s *settings) { s.logCalls = enabled }
}

// WithRecovery converts handler panics into Internal errors.
func WithRecovery(enabled bool) Option {
	return func(s *settings) { s.recoverPanics = enabled }
}

// WithIdentityHeader copies the named metadata header into the request
// context, where IdentityFromContext reads it.
func WithIdentityHeader(header string) Option {
	return func(s *settings) { s.identityHeader = header }
}

// interceptors orders the chain outermost first: recovery wraps logging so
// a panic is still logged with its Internal code.
func (s *settings) interceptors(logger *zap.Logger) []grpc.UnaryServerInterceptor {
	var chain []grpc.UnaryServerInterceptor
	if s.recoverPanics {
		chain = append(chain, RecoveryInterceptor(logger))
	}
	if s.logCalls {
		chain = append(chain, LoggingInterceptor(logger))
	}
	if s.identityHeader != "" {
		chain = append(chain, IdentityInterceptor(s.identityHeader))
	}
	return chain
}

// Server is a gRPC server with a standard health service attached.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
	lis    net.Listener
	logger *zap.Logger
}

// New listens on the configured port and builds the server. Nothing is
// served until Start.
func New(opts ...Option) (*Server, error) {
	cfg := settings{port: defaultPort}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}
	if cfg.port < 0 || cfg.port > 65535 {
		return nil, fmt.Errorf("invalid port %d: must be between 0 and 65535", cfg.port)
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.port))
	if err != nil {
		return nil, fmt.Errorf("listen on port %d: %w", cfg.port, err)
	}

	var serverOpts []grpc.ServerOption
	if chain := cfg.interceptors(cfg.logger); len(chain) > 0 {
		serverOpts = append(serverOpts, grpc.ChainUnaryInterceptor(chain...))
	}
	gs := grpc.NewServer(serverOpts...)
	if cfg.reflection {
		reflection.Register(gs)
	}

	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	return &Server{
		grpc:   gs,
		health: hs,
		lis:    lis,
		logger: cfg.logger.Named("grpc-server"),
	}, nil
}

// Register installs a service and reports it as serving.
func (s *Server) Register(name string, install func(*grpc.Server)) {
	install(s.grpc)
	if name == "" {
		return
	}
	s.health.SetServingStatus(name, healthpb.HealthCheckResponse_SERVING)
	s.logger.Info("service registered", zap.String("service", name))
}

// Drain reports name as not serving so load balancers stop routing to it.
func (s *Server) Drain(name string) {
	s.health.SetServingStatus(name, healthpb.HealthCheckResponse_NOT_SERVING)
	s.logger.Info("service draining", zap.String("service", name))
}

// Start serves in the background.
func (s *Server) Start() {
	addr := s.lis.Addr().String()
	s.logger.Info("gRPC server listening", zap.String("addr", addr))
	go func() {
		if err := s.grpc.Serve(s.lis); err != nil {
			s.logger.Error("gRPC serve stopped", zap.Error(err))
		}
	}()
}

// Shutdown waits for in-flight calls until ctx ends, then stops hard.
func (s *Server) Shutdown(ctx context.Context) error {
	s.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.grpc.GracefulStop()
		close(stopped)
	}()

	select {
	case <-stopped:
		s.logger.Info("gRPC server stopped")
		return nil
	case <-ctx.Done():
		s.grpc.Stop()
		s.logger.Warn("gRPC server stopped before calls drained", zap.Error(ctx.Err()))
		return ctx.Err()
	}
}

func (s *Server) Addr() net.Addr {
	return s.lis.Addr()
}
