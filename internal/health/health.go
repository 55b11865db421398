// Package health exposes the standard gRPC health service and keeps its
// status in line with database reachability.
package health

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Service is the name reported for the ordering API.
const Service = "littlelemon.api"

type Pinger interface {
	Ping(ctx context.Context) error
}

type Checker struct {
	srv      *grpchealth.Server
	pinger   Pinger
	interval time.Duration
	log      *zap.Logger
}

func NewChecker(p Pinger, interval time.Duration, log *zap.Logger) *Checker {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return &Checker{srv: grpchealth.NewServer(), pinger: p, interval: interval, log: log}
}

func (c *Checker) Server() *grpchealth.Server { return c.srv }

// Check pings once and updates both the overall and the named service status.
func (c *Checker) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	st := healthpb.HealthCheckResponse_SERVING
	if err := c.pinger.Ping(ctx); err != nil {
		c.log.Warn("health: ping failed", zap.Error(err))
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	c.srv.SetServingStatus("", st)
	c.srv.SetServingStatus(Service, st)
	return st
}

// Run checks on every tick until ctx is done, then marks everything as not
// serving.
func (c *Checker) Run(ctx context.Context) {
	c.Check(ctx)
	t := time.NewTicker(c.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			c.srv.Shutdown()
			return
		case <-t.C:
			c.Check(ctx)
		}
	}
}

// Serve registers the health service on a new gRPC server listening on addr.
// The returned server is stopped by the caller.
func (c *Checker) Serve(addr string) (*grpc.Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	gs := grpc.NewServer()
	healthpb.RegisterHealthServer(gs, c.srv)
	go func() {
		if err := gs.Serve(lis); err != nil && err != grpc.ErrServerStopped {
			c.log.Error("grpc serve", zap.Error(err))
		}
	}()
	c.log.Info("grpc health listening", zap.String("addr", addr))
	return gs, nil
}
