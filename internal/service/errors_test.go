package service

import (
	"errors"
	"testing"

	"sidebar-toolkit/internal/supabase"
)

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ValidationError
		want string
	}{
		{
			name: "empty announcement",
			err:  &ValidationError{Field: "content", Message: "empty"},
			want: "invalid content: empty",
		},
		{
			name: "incomplete connection",
			err:  &ValidationError{Field: "connection", Message: "api base and api key are required"},
			want: "invalid connection: api base and api key are required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("ValidationError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWrapError(t *testing.T) {
	if got := WrapError(nil, "failed to publish notice"); got != nil {
		t.Errorf("WrapError(nil) = %v, want nil", got)
	}

	upstream := &supabase.StatusError{Status: 409, Code: "duplicate key"}
	err := WrapError(upstream, "failed to publish notice")

	if err.Error() != "failed to publish notice: duplicate key" {
		t.Errorf("WrapError() = %q", err.Error())
	}
	var statusErr *supabase.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode() != 409 {
		t.Errorf("WrapError() lost the upstream status: %v", err)
	}
}

func TestWrapError_KeepsValidationError(t *testing.T) {
	err := WrapError(&ValidationError{Field: "content", Message: "empty"}, "publish")

	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Message != "empty" {
		t.Errorf("errors.As(ValidationError) failed for %v", err)
	}
}

func TestNoticeErrorCodes(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrUnauthorized, "unauthorized"},
		{ErrBadPassword, "bad_password"},
		{ErrMissingSecret, "missing_env:ADMIN_PASSWORD"},
	}
	for _, tt := range tests {
		if tt.err.Error() != tt.want {
			t.Errorf("error code = %q, want %q", tt.err.Error(), tt.want)
		}
		if !errors.Is(WrapError(tt.err, "ctx"), tt.err) {
			t.Errorf("WrapError() does not wrap %v", tt.err)
		}
	}
}
