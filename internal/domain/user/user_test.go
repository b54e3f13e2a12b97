package user

import (
	"math"
	"testing"
	"time"
)

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total, size, want int
	}{
		{0, 5, 0},
		{1, 5, 1},
		{5, 5, 1},
		{6, 5, 2},
		{11, 5, 3},
		{3, 0, 0},
	}

	for _, tt := range tests {
		if got := TotalPages(tt.total, tt.size); got != tt.want {
			t.Fatalf("TotalPages(%d,%d) = %d, want %d", tt.total, tt.size, got, tt.want)
		}
	}
}

func TestOffsetClampsPage(t *testing.T) {
	if got := Offset(0, 5); got != 0 {
		t.Fatalf("page 0 offset = %d, want 0", got)
	}
	if got := Offset(-3, 5); got != 0 {
		t.Fatalf("page -3 offset = %d, want 0", got)
	}
	if got := Offset(3, 5); got != 10 {
		t.Fatalf("page 3 offset = %d, want 10", got)
	}
}

func TestOffsetSaturatesOnHugePage(t *testing.T) {
	if got := Offset(3689348814741910324, 5); got != math.MaxInt {
		t.Fatalf("huge page offset = %d, want MaxInt", got)
	}
	if got := Offset(math.MaxInt, 5); got < 0 {
		t.Fatalf("offset overflowed to %d", got)
	}
	if got := Offset(4, 0); got != 0 {
		t.Fatalf("zero page size offset = %d, want 0", got)
	}
}

func TestPatchApply(t *testing.T) {
	u := User{ID: "1", Name: "A", Email: "a@x.com", Role: RoleUser}
	name := "B"
	now := time.Now().UTC()

	if err := (Patch{Name: &name}).Apply(&u, now); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if u.Name != "B" || u.Email != "a@x.com" || u.Role != RoleUser {
		t.Fatalf("unexpected user after patch: %+v", u)
	}
	if !u.UpdatedAt.Equal(now) {
		t.Fatalf("UpdatedAt not bumped")
	}

	bad := Role("root")
	if err := (Patch{Role: &bad}).Apply(&u, now); err != ErrInvalidRole {
		t.Fatalf("got %v, want ErrInvalidRole", err)
	}
	if u.Role != RoleUser {
		t.Fatalf("role changed despite invalid patch")
	}
}
