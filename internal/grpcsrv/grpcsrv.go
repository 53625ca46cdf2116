// Package grpcsrv runs the standard gRPC health service next to the HTTP
// API so orchestrators can check the process over gRPC.
package grpcsrv

import (
	"context"
	"net"
	"time"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	srv    *grpc.Server
	health *health.Server
	db     Pinger
	every  time.Duration
}

func New(db Pinger, every time.Duration) *Server {
	if every <= 0 {
		every = 10 * time.Second
	}
	s := &Server{
		srv:    grpc.NewServer(),
		health: health.NewServer(),
		db:     db,
		every:  every,
	}
	healthpb.RegisterHealthServer(s.srv, s.health)
	return s
}

// Serve blocks serving lis. Health follows the store ping until ctx ends.
func (s *Server) Serve(ctx context.Context, lis net.Listener) error {
	s.check(ctx)
	go s.watch(ctx)
	return s.srv.Serve(lis)
}

func (s *Server) watch(ctx context.Context) {
	t := time.NewTicker(s.every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.check(ctx)
		}
	}
}

func (s *Server) check(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	st := healthpb.HealthCheckResponse_SERVING
	if err := s.db.Ping(ctx); err != nil {
		log.WithError(err).Warn("store ping failed")
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", st)
}

func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.srv.GracefulStop()
}
