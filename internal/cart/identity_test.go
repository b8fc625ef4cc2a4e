package cart

import (
	"testing"

	"github.com/google/uuid"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/types"
)

func TestIdentityKey_DeterministicAcrossMapOrder(t *testing.T) {
	t.Parallel()

	productID := uuid.New()
	customization := types.Customization{Color: "maroon", Size: "", Notes: "gold tilla work"}

	first := IdentityKey(productID, "m", true, types.Measurements{
		"chest": 40, "waist": 34, "shirt_length": 41.5,
	}, customization)
	second := IdentityKey(productID, "m", true, types.Measurements{
		"shirt_length": 41.5, "waist": 34, "chest": 40,
	}, customization)

	if first != second {
		t.Fatalf("same configuration hashed differently: %s vs %s", first, second)
	}
	if len(first) != 64 {
		t.Fatalf("expected sha256 hex digest, got %d chars", len(first))
	}
}

func TestIdentityKey_EmptyAndNilMeasurementsMatch(t *testing.T) {
	t.Parallel()

	productID := uuid.New()
	withNil := IdentityKey(productID, "", false, nil, types.Customization{})
	withEmpty := IdentityKey(productID, "", false, types.Measurements{}, types.Customization{})

	if withNil != withEmpty {
		t.Fatal("nil and empty measurements should produce the same key")
	}
}

func TestIdentityKey_DistinguishesConfigurations(t *testing.T) {
	t.Parallel()

	productID := uuid.New()
	measurements := types.Measurements{"chest": 40, "waist": 34}
	base := IdentityKey(productID, "m", true, measurements, types.Customization{Color: "maroon"})

	variants := map[string]string{
		"different product":       IdentityKey(uuid.New(), "m", true, measurements, types.Customization{Color: "maroon"}),
		"different variant":       IdentityKey(productID, "l", true, measurements, types.Customization{Color: "maroon"}),
		"different stitching":     IdentityKey(productID, "m", false, nil, types.Customization{Color: "maroon"}),
		"different measurement":   IdentityKey(productID, "m", true, types.Measurements{"chest": 40, "waist": 36}, types.Customization{Color: "maroon"}),
		"different customization": IdentityKey(productID, "m", true, measurements, types.Customization{Color: "teal"}),
	}

	for name, key := range variants {
		if key == base {
			t.Errorf("%s collided with the base configuration", name)
		}
	}
}
