package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"gorm.io/gorm"
)

func TestKindOf(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", Conflict("group %d already has a selection", 3))
	if KindOf(err) != KindConflict {
		t.Errorf("Expected conflict, got %s", KindOf(err))
	}
	if KindOf(errors.New("boom")) != KindInternal {
		t.Error("Expected plain errors to be internal")
	}
	if !Is(err, KindConflict) || Is(err, KindNotFound) {
		t.Error("Is did not match kinds correctly")
	}
}

func TestStorageClassification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"duplicate key", gorm.ErrDuplicatedKey, KindConflict},
		{"not found", gorm.ErrRecordNotFound, KindNotFound},
		{"other", errors.New("disk on fire"), KindInternal},
		{"already classified", Forbidden("nope"), KindForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Storage(tt.err, "failed", "duplicate")
			if KindOf(got) != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, KindOf(got))
			}
		})
	}
	if Storage(nil, "x", "y") != nil {
		t.Error("Expected nil for nil error")
	}
}

func TestMessageHidesInternalDetails(t *testing.T) {
	err := Internal(errors.New("pq: connection refused"), "Failed to load group")
	if Message(err) != "Internal server error" {
		t.Errorf("Expected generic message, got %q", Message(err))
	}
	if Message(NotFound("Group not found")) != "Group not found" {
		t.Error("Expected not found message to be surfaced")
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindNotFound:     http.StatusNotFound,
		KindForbidden:    http.StatusForbidden,
		KindConflict:     http.StatusConflict,
		KindInvalidState: http.StatusUnprocessableEntity,
		KindInvalidInput: http.StatusBadRequest,
		KindInvalidRole:  http.StatusBadRequest,
		KindInternal:     http.StatusInternalServerError,
	}
	for kind, status := range cases {
		if HTTPStatus(kind) != status {
			t.Errorf("Kind %s: expected %d, got %d", kind, status, HTTPStatus(kind))
		}
	}
}
