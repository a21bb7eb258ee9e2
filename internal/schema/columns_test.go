package schema

import (
	"errors"
	"reflect"
	"regexp"
	"testing"
)

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"Product Name", "product_name"},
		{"  Unit-Price ($) ", "unit_price"},
		{"Qty", "qty"},
		{"Date Sold", "date_sold"},
		{"already_canonical", "already_canonical"},
		{"__id__", "id"},
		{"a - b", "a_b"},
		{"a_-_b", "a___b"},
		{"Cena (Kč)", "cena_kč"},
		{"!!!", ""},
		{"Sales.2024", "sales_2024"},
	}
	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeName_ComposedAndDecomposedAgree(t *testing.T) {
	t.Parallel()

	composed := "Caf\u00e9"
	decomposed := "Cafe\u0301"
	if NormalizeName(composed) != NormalizeName(decomposed) {
		t.Fatalf("NFC forms differ: %q vs %q", NormalizeName(composed), NormalizeName(decomposed))
	}
}

func TestNormalizeName_Idempotent(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"Product Name", " Qty ", "Unit-Price", "x__y", "Ünits Sold!"} {
		once := NormalizeName(s)
		if twice := NormalizeName(once); twice != once {
			t.Errorf("NormalizeName not idempotent for %q: %q then %q", s, once, twice)
		}
	}
}

var asciiColumn = regexp.MustCompile(`^[a-z0-9_]+$`)

func TestNormalizeColumns_ShapeProperty(t *testing.T) {
	t.Parallel()

	in := []string{" Product Name ", "CATEGORY", "Price ($)", "Qty.", "Date-Sold", "", "%%"}
	got, err := NormalizeColumns(in, OnCollisionError)
	if err != nil {
		t.Fatalf("NormalizeColumns error: %v", err)
	}
	want := []string{"product_name", "category", "price", "qty", "date_sold", "col_5", "col_6"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("NormalizeColumns = %v, want %v", got, want)
	}
	for _, c := range got {
		if !asciiColumn.MatchString(c) || c[0] == '_' || c[len(c)-1] == '_' {
			t.Errorf("column %q violates canonical shape", c)
		}
	}
}

func TestNormalizeColumns_CollisionError(t *testing.T) {
	t.Parallel()

	_, err := NormalizeColumns([]string{"Unit-Price", "unit_price"}, OnCollisionError)
	if !errors.Is(err, ErrColumnCollision) {
		t.Fatalf("expected ErrColumnCollision, got %v", err)
	}
	var se *SchemaError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SchemaError, got %T", err)
	}
	if se.Name != "unit_price" || se.First != "Unit-Price" || se.Second != "unit_price" {
		t.Fatalf("unexpected SchemaError: %+v", se)
	}
}

func TestNormalizeColumns_CollisionSuffix(t *testing.T) {
	t.Parallel()

	got, err := NormalizeColumns([]string{"Price", "price ", "PRICE", "price_2"}, OnCollisionSuffix)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// "price_2" in the source collides with the first generated suffix, so
	// the last label is itself renamed.
	want := []string{"price", "price_2", "price_3", "price_2_2"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestNormalizeColumns_UnknownPolicy(t *testing.T) {
	t.Parallel()

	if _, err := NormalizeColumns([]string{"a", "A"}, "merge"); err == nil {
		t.Fatalf("expected error for unknown policy")
	}
}
