// Package client is the gRPC client for credauth.v1.AuthService. It keeps the
// access token returned by Login and attaches it to later calls.
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/credauth/internal/authrpc"
	"github.com/dmitrijs2005/credauth/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      authrpc.AuthServiceClient

	mu          sync.RWMutex
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {

	if token := s.AccessToken(); token != "" {
		ctx = withAccessToken(ctx, token)
	}

	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewAuthClient connects lazily to endpointURL. Extra dial options are
// appended after the defaults (insecure transport, token interceptor).
func NewAuthClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.client = authrpc.NewAuthServiceClient(conn)
	return c, nil
}

func (s *GRPCClient) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

func (s *GRPCClient) SetAccessToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = token
}

func (s *GRPCClient) Register(ctx context.Context, email, password, confirmation, firstName, lastName string) (*authrpc.Account, error) {

	req := &authrpc.RegisterRequest{
		Email:                email,
		Password:             password,
		PasswordConfirmation: confirmation,
		FirstName:            firstName,
		LastName:             lastName,
	}

	resp, err := s.client.Register(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}

	return resp.Account, nil

}

// Login authenticates and remembers the returned access token.
func (s *GRPCClient) Login(ctx context.Context, email, password string) (*authrpc.LoginResponse, error) {

	resp, err := s.client.Login(ctx, &authrpc.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, s.mapError(err)
	}

	s.SetAccessToken(resp.AccessToken)

	return resp, nil

}

func (s *GRPCClient) WhoAmI(ctx context.Context) (*authrpc.WhoAmIResponse, error) {

	if s.AccessToken() == "" {
		return nil, ErrNotLoggedIn
	}

	resp, err := s.client.WhoAmI(ctx, &authrpc.WhoAmIRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil

}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

// mapError turns status errors back into the shared sentinels where the
// server sent a stable failure code.
func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrUnavailable
		}
		return fmt.Errorf("rpc error: %w", err)
	}

	switch st.Message() {
	case common.CodeIncorrectCredentials:
		return common.ErrIncorrectCredentials
	case common.CodeAccountLocked:
		return common.ErrAccountLocked
	case common.CodeEmailExists:
		return common.ErrEmailExists
	case common.CodePasswordMismatch:
		return common.ErrPasswordMismatch
	}

	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.InvalidArgument:
		return fmt.Errorf("invalid request: %s", st.Message())
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
