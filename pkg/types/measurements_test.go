package types

import "testing"

func TestMeasurementsValidate(t *testing.T) {
	good := Measurements{"chest": 40, "waist": 34.5, "shirt_length": 29}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected valid measurements, got %v", err)
	}

	if err := (Measurements{"wingspan": 60}).Validate(); err == nil {
		t.Fatal("unknown key should be rejected")
	}
	if err := (Measurements{"chest": 0.5}).Validate(); err == nil {
		t.Fatal("sub-inch value should be rejected")
	}
	if err := (Measurements{"chest": 150}).Validate(); err == nil {
		t.Fatal("oversized value should be rejected")
	}
}

func TestMeasurementsCanonicalIsOrderIndependent(t *testing.T) {
	a := Measurements{"chest": 40, "waist": 34, "neck": 15.5}
	b := Measurements{"neck": 15.5, "chest": 40, "waist": 34}
	if a.Canonical() != b.Canonical() {
		t.Fatalf("canonical forms differ: %q vs %q", a.Canonical(), b.Canonical())
	}
	if (Measurements{}).Canonical() != "" {
		t.Fatal("empty measurements should canonicalize to empty string")
	}
}

func TestCustomizationCanonical(t *testing.T) {
	a := Customization{Color: "maroon", Size: "M"}
	b := Customization{Size: "M", Color: "maroon"}
	if a.Canonical() != b.Canonical() {
		t.Fatal("equal customizations should share a canonical form")
	}
	if a.Canonical() == (Customization{Color: "maroon", Size: "L"}).Canonical() {
		t.Fatal("different sizes should not collide")
	}
}

func TestAddressNormalizeDefaultsCountry(t *testing.T) {
	addr := Address{Name: " Aisha ", Phone: "0300-1234567", Line1: "House 12, Street 4", City: "Lahore", Province: "Punjab"}
	addr.Normalize()
	if addr.Country != "PK" {
		t.Fatalf("expected PK default, got %q", addr.Country)
	}
	if addr.Name != "Aisha" {
		t.Fatalf("expected trimmed name, got %q", addr.Name)
	}
	if err := addr.Validate(); err != nil {
		t.Fatalf("expected valid address, got %v", err)
	}

	if err := (Address{Name: "A", Phone: "1", Line1: "x", City: "Lahore"}).Validate(); err == nil {
		t.Fatal("missing province should fail validation")
	}
}
