package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/credauth/internal/authrpc"
	"github.com/dmitrijs2005/credauth/internal/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (s *GRPCServer) Register(ctx context.Context, req *authrpc.RegisterRequest) (*authrpc.RegisterResponse, error) {

	if err := validateRegister(req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	result, err := s.auth.Register(ctx, req.Email, req.Password, req.PasswordConfirmation, req.FirstName, req.LastName)
	if err != nil {
		return nil, s.toStatus(ctx, "register", err)
	}

	return &authrpc.RegisterResponse{Account: &authrpc.Account{
		ID:        result.ID,
		Email:     result.Email,
		FirstName: result.FirstName,
		LastName:  result.LastName,
	}}, nil

}

func (s *GRPCServer) Login(ctx context.Context, req *authrpc.LoginRequest) (*authrpc.LoginResponse, error) {

	if err := validateLogin(req); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	result, err := s.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, s.toStatus(ctx, "login", err)
	}

	return &authrpc.LoginResponse{
		AccessToken: result.Token,
		Account: &authrpc.Account{
			ID:        result.ID,
			Email:     result.Email,
			FirstName: result.FirstName,
			LastName:  result.LastName,
		},
	}, nil

}

func (s *GRPCServer) WhoAmI(ctx context.Context, req *authrpc.WhoAmIRequest) (*authrpc.WhoAmIResponse, error) {

	claims, ok := claimsFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "unauthenticated")
	}

	return &authrpc.WhoAmIResponse{ID: claims.AccountID, Email: claims.Email}, nil

}

// toStatus maps service errors onto gRPC codes. Unclassified errors are
// logged and hidden behind a generic message.
func (s *GRPCServer) toStatus(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, common.ErrPasswordMismatch):
		return status.Error(codes.InvalidArgument, common.CodePasswordMismatch)
	case errors.Is(err, common.ErrEmailExists):
		return status.Error(codes.AlreadyExists, common.CodeEmailExists)
	case errors.Is(err, common.ErrIncorrectCredentials):
		return status.Error(codes.Unauthenticated, common.CodeIncorrectCredentials)
	case errors.Is(err, common.ErrAccountLocked):
		return status.Error(codes.Unauthenticated, common.CodeAccountLocked)
	default:
		s.logger.Error(ctx, "request failed", "op", op, "error", err)
		return status.Error(codes.Internal, common.ErrorInternal.Error())
	}
}
