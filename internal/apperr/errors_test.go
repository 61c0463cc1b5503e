package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindValidation, http.StatusBadRequest},
		{KindDuplicateVote, http.StatusBadRequest},
		{KindAuthentication, http.StatusUnauthorized},
		{KindAuthorization, http.StatusForbidden},
		{KindNotFound, http.StatusNotFound},
		{KindPersistence, http.StatusInternalServerError},
		{KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			if got := tt.kind.Status(); got != tt.want {
				t.Errorf("Status() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestWrappedSentinelMatches(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("like: %w", ErrDuplicateVote.Wrap(cause))

	if !errors.Is(err, ErrDuplicateVote) {
		t.Fatal("wrapped copy should match sentinel")
	}
	if !errors.Is(err, cause) {
		t.Fatal("cause should stay reachable")
	}
	if errors.Is(err, ErrAccessDenied) {
		t.Fatal("different sentinel must not match")
	}
	if KindOf(err) != KindDuplicateVote {
		t.Errorf("KindOf = %v, want duplicate_vote", KindOf(err))
	}
}

func TestKindOfPlainError(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != KindInternal {
		t.Errorf("KindOf(plain) = %v, want internal", got)
	}
}
