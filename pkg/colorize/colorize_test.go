package colorize

import (
	"fmt"
	"math"
	"reflect"
	"testing"
)

func TestPaletteSizeAtLeastFifty(t *testing.T) {
	if PaletteSize() < 50 {
		t.Fatalf("curated palette has %d colors, want at least 50", PaletteSize())
	}
}

// TestAssignDeterministic: the same ordered input yields the same map,
// call after call.
func TestAssignDeterministic(t *testing.T) {
	values := []string{"North", "South", "East", "West"}
	first := Assign(values)
	second := Assign(values)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Assign not deterministic: %v vs %v", first, second)
	}
}

// TestAssignCuratedTierDistinct: while the curated palette lasts, every
// category gets a curated color and no two categories share one.
func TestAssignCuratedTierDistinct(t *testing.T) {
	values := make([]string, PaletteSize())
	for i := range values {
		values[i] = fmt.Sprintf("category-%d", i)
	}
	colors := Assign(values)
	curated := make(map[string]bool, len(palette))
	for _, c := range palette {
		curated[c] = true
	}
	seen := make(map[string]string, len(colors))
	for v, c := range colors {
		if !curated[c] {
			t.Errorf("value %s got non-curated color %s", v, c)
		}
		if prev, dup := seen[c]; dup {
			t.Errorf("values %s and %s share color %s", prev, v, c)
		}
		seen[c] = v
	}
}

// TestAssignOverflowGoldenAngle: past the curated tier the first
// palette-size categories keep their curated colors and the generated
// hues advance by exactly the golden angle modulo 360.
func TestAssignOverflowGoldenAngle(t *testing.T) {
	n := PaletteSize() + 3
	values := make([]string, n)
	for i := range values {
		values[i] = fmt.Sprintf("category-%d", i)
	}
	colors := Assign(values)

	for i := 0; i < PaletteSize(); i++ {
		if colors[values[i]] != palette[i] {
			t.Fatalf("category %d lost its curated color: %s", i, colors[values[i]])
		}
	}

	for i := PaletteSize(); i < n; i++ {
		want := fmt.Sprintf("hsl(%.1f, 70%%, 50%%)", HueAt(i))
		if colors[values[i]] != want {
			t.Errorf("category %d = %s, want %s", i, colors[values[i]], want)
		}
	}

	step := math.Mod(HueAt(PaletteSize()+1)-HueAt(PaletteSize())+360, 360)
	if math.Abs(step-math.Mod(goldenAngle, 360)) > 1e-9 {
		t.Errorf("consecutive overflow hues differ by %v, want golden angle %v", step, goldenAngle)
	}
}

func TestHueAtStaysInRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		h := HueAt(i)
		if h < 0 || h >= 360 {
			t.Fatalf("HueAt(%d) = %v outside [0,360)", i, h)
		}
	}
}
