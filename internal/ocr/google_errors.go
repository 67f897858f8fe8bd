package ocr

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	// ErrPermissionDenied is returned when the Google credentials are rejected
	// or lack the role needed by the engine.
	ErrPermissionDenied = errors.New("Google Cloud permission denied")

	// ErrQuotaExceeded is returned when the Google API quota is exhausted.
	ErrQuotaExceeded = errors.New("Google Cloud API quota exceeded")
)

// googleCallError converts a failed Vision or Document AI call into an *Error
// whose Kind and sentinel reflect the gRPC status.
func googleCallError(op, service string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return NewError(op, KindDetection, context.DeadlineExceeded, fmt.Sprintf("%s call timed out", service))
	case errors.Is(err, context.Canceled):
		return NewError(op, KindDetection, context.Canceled, fmt.Sprintf("%s call was canceled", service))
	}

	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return NewError(op, KindEngineInit, ErrPermissionDenied, fmt.Sprintf("%s: %s", service, st.Message()))
	case codes.ResourceExhausted:
		return NewError(op, KindDetection, ErrQuotaExceeded, fmt.Sprintf("%s: %s", service, st.Message()))
	case codes.InvalidArgument:
		return NewError(op, KindFileAccess, ErrInvalidImage, fmt.Sprintf("%s rejected the image: %s", service, st.Message()))
	case codes.DeadlineExceeded:
		return NewError(op, KindDetection, context.DeadlineExceeded, fmt.Sprintf("%s call timed out", service))
	case codes.Canceled:
		return NewError(op, KindDetection, context.Canceled, fmt.Sprintf("%s call was canceled", service))
	default:
		return NewError(op, KindDetection, ErrDetectionFailed, fmt.Sprintf("%s call failed: %v", service, err))
	}
}
