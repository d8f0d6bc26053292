package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_IsMatchesByKind(t *testing.T) {
	err := fmt.Errorf("get product: %w", NotFound("product"))

	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected errors.Is to match ErrNotFound")
	}
	if errors.Is(err, ErrValidation) {
		t.Fatalf("not-found must not match ErrValidation")
	}
	if KindOf(err) != KindNotFound {
		t.Fatalf("expected KindNotFound, got %s", KindOf(err))
	}
	if MessageOf(err) != "product not found" {
		t.Fatalf("unexpected message %q", MessageOf(err))
	}
}

func TestConflict(t *testing.T) {
	err := Conflict("order in progress")

	if !errors.Is(err, ErrConflict) || KindOf(err) != KindConflict {
		t.Fatalf("expected conflict kind, got %s", KindOf(err))
	}
	if MessageOf(err) != "order in progress" {
		t.Fatalf("unexpected message %q", MessageOf(err))
	}
}

func TestMessageOf_HidesInternalCause(t *testing.T) {
	err := Internal("insert product", errors.New("connection reset by peer"))

	if KindOf(err) != KindInternal {
		t.Fatalf("expected KindInternal, got %s", KindOf(err))
	}
	if MessageOf(err) != "internal server error" {
		t.Fatalf("internal cause leaked: %q", MessageOf(err))
	}
	if KindOf(errors.New("plain")) != KindInternal {
		t.Fatalf("plain errors must classify as internal")
	}
}

func TestNewPage(t *testing.T) {
	tests := []struct {
		name      string
		number    int
		limit     int
		wantErr   bool
		wantLimit int
		offset    int64
	}{
		{name: "defaults", number: DefaultPage, limit: DefaultLimit, wantLimit: 10, offset: 0},
		{name: "second page of five", number: 2, limit: 5, wantLimit: 5, offset: 5},
		{name: "limit capped", number: 3, limit: 1000, wantLimit: MaxLimit, offset: 200},
		{name: "page zero", number: 0, limit: 10, wantErr: true},
		{name: "negative limit", number: 1, limit: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPage(tt.number, tt.limit)
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Limit != tt.wantLimit {
				t.Fatalf("expected limit %d, got %d", tt.wantLimit, p.Limit)
			}
			if p.Offset() != tt.offset {
				t.Fatalf("expected offset %d, got %d", tt.offset, p.Offset())
			}
		})
	}
}

func TestCategoryAndRoleValid(t *testing.T) {
	if !CategoryCereals.Valid() || Category("Serials").Valid() {
		t.Fatalf("unexpected category validity")
	}
	if !RoleRetailer.Valid() || Role("client").Valid() {
		t.Fatalf("unexpected role validity")
	}
}
