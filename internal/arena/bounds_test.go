package arena

import (
	"errors"
	"testing"
)

func testField() Region {
	return Region{Min: Vec3{X: -100, Y: 0, Z: -100}, Max: Vec3{X: 100, Y: 20, Z: 100}}
}

func TestComputeBounds(t *testing.T) {
	ceiling := Region{Min: Vec3{X: -100, Y: 120, Z: -100}, Max: Vec3{X: 100, Y: 130, Z: 100}}

	b, err := ComputeBounds(testField(), ceiling, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Min.X != -90 || b.Max.X != 90 || b.Min.Z != -90 || b.Max.Z != 90 {
		t.Fatalf("margin not applied: %+v", b)
	}
	if b.Min.Y != 20 || b.Max.Y != 120 {
		t.Fatalf("vertical span: want 20..120, got %.1f..%.1f", b.Min.Y, b.Max.Y)
	}
}

func TestComputeBounds_CeilingBelowFieldTopIsConfigError(t *testing.T) {
	ceiling := Region{Min: Vec3{Y: 20}, Max: Vec3{Y: 25}}
	if _, err := ComputeBounds(testField(), ceiling, 0); !errors.Is(err, ErrDegenerateBounds) {
		t.Fatalf("want ErrDegenerateBounds, got %v", err)
	}
}

func TestComputeBounds_MarginConsumingFootprintIsConfigError(t *testing.T) {
	ceiling := Region{Min: Vec3{Y: 120}, Max: Vec3{Y: 130}}
	if _, err := ComputeBounds(testField(), ceiling, 100); !errors.Is(err, ErrDegenerateBounds) {
		t.Fatalf("want ErrDegenerateBounds, got %v", err)
	}
}
