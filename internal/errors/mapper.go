// internal/errors/mapper.go
package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"

	"github.com/stecc88/roommatch/internal/matching"
	"github.com/stecc88/roommatch/internal/utils/pagination"
)

// Map converts domain/repo/infra errors into gRPC status errors.
// Keeps service layer clean by centralizing error mapping.
//
// Anything unclassified becomes an opaque Internal; callers log the cause.
func Map(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}

	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return InvalidArgument(describe(verrs))

	case errors.Is(err, matching.ErrInvalidTarget),
		errors.Is(err, matching.ErrSelfLike),
		errors.Is(err, pagination.ErrInvalidToken):
		return InvalidArgument(err.Error())

	case errors.Is(err, matching.ErrUserNotFound),
		errors.Is(err, matching.ErrListingNotFound):
		return NotFound(err.Error())

	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound("record not found")

	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "request timed out")

	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request was canceled")

	default:
		return status.Error(codes.Internal, "operation failed")
	}
}

// InvalidArgument creates a gRPC InvalidArgument error.
// Use this in service layer for bad input validation.
func InvalidArgument(msg string) error {
	return status.Error(codes.InvalidArgument, msg)
}

// NotFound creates a gRPC NotFound error.
func NotFound(msg string) error {
	return status.Error(codes.NotFound, msg)
}

// describe renders validator errors as "field: rule" pairs.
func describe(verrs validator.ValidationErrors) string {
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
	}
	return "invalid request: " + strings.Join(parts, ", ")
}
