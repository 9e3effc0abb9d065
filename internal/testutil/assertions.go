package testutil

import (
	"errors"
	"strings"
	"testing"

	apperrors "cashflow/internal/errors"
)

// AssertAppError checks that err is an *AppError with the expected error code
// and returns it for further checks.
func AssertAppError(t *testing.T, err error, expectedCode string) *apperrors.AppError {
	t.Helper()

	if err == nil {
		t.Fatalf("expected AppError with code %q, got nil", expectedCode)
	}

	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *AppError, got %T: %v", err, err)
	}

	if appErr.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, appErr.Code, appErr.Message)
	}
	return appErr
}

// AssertFailedWith checks a lifecycle failure: the failure code, a message
// naming the failed action, the cause reachable through errors.Is, and the
// cause's status code carried over.
func AssertFailedWith(t *testing.T, err error, failure, cause *apperrors.AppError) {
	t.Helper()

	appErr := AssertAppError(t, err, failure.Code)
	if !strings.HasPrefix(appErr.Message, failure.Message+": ") {
		t.Errorf("expected message to start with %q, got %q", failure.Message+": ", appErr.Message)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause %s, got %v", cause.Code, appErr.Internal)
	}
	if appErr.StatusCode != cause.StatusCode {
		t.Errorf("expected status %d from the cause, got %d", cause.StatusCode, appErr.StatusCode)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
