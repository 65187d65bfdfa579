package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/credauth/internal/authrpc"
	"github.com/dmitrijs2005/credauth/internal/logging"
	"github.com/dmitrijs2005/credauth/internal/server/auth"
	"github.com/dmitrijs2005/credauth/internal/server/models"
	"github.com/dmitrijs2005/credauth/internal/server/services"
	"google.golang.org/grpc"
)

// AuthService is the business layer the handlers delegate to.
type AuthService interface {
	Register(ctx context.Context, email, password, confirmation, firstName, lastName string) (*models.PublicAccount, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	Authenticate(token string) (*auth.Claims, error)
}

type GRPCServer struct {
	authrpc.UnimplementedAuthServiceServer
	address string
	auth    AuthService
	logger  logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, as AuthService) (*GRPCServer, error) {
	return &GRPCServer{
		address: a,
		logger:  l.With("module", "grpc_server"),
		auth:    as,
	}, nil
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled, then stops
// gracefully.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {

	// creates gRPC-server
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))

	// registers service
	authrpc.RegisterAuthServiceServer(srv, s)

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "Stopping gRPC server...")
			srv.GracefulStop()
		case <-done:
		}
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", lis.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
