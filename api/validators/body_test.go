package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/errors"
)

type addItemPayload struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
	Email     string `json:"email" validate:"omitempty,email"`
}

func decodeBody(t *testing.T, body string, dest any) error {
	t.Helper()
	r := httptest.NewRequest("POST", "/v1/cart/items", strings.NewReader(body))
	return DecodeJSONBody(r, dest)
}

func TestDecodeJSONBodyValid(t *testing.T) {
	var payload addItemPayload
	if err := decodeBody(t, `{"productId":"kurta-classic","quantity":2}`, &payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.ProductID != "kurta-classic" || payload.Quantity != 2 {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestDecodeJSONBodyRejections(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ""},
		{name: "malformed json", body: `{"productId":`},
		{name: "unknown field", body: `{"productId":"kurta-classic","quantity":1,"color":"blue"}`},
		{name: "trailing value", body: `{"productId":"kurta-classic","quantity":1}{"again":true}`},
		{name: "missing required", body: `{"quantity":1}`},
		{name: "below min", body: `{"productId":"kurta-classic","quantity":0}`},
		{name: "bad email", body: `{"productId":"kurta-classic","quantity":1,"email":"not-an-email"}`},
		{name: "oversized", body: `{"productId":"` + strings.Repeat("x", maxBodyBytes) + `"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var payload addItemPayload
			err := decodeBody(t, tc.body, &payload)
			if err == nil {
				t.Fatal("expected error")
			}
			if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestDecodeJSONBodyFieldMessagesUseJSONNames(t *testing.T) {
	var payload addItemPayload
	err := decodeBody(t, `{"productId":"kurta-classic"}`, &payload)
	if err == nil {
		t.Fatal("expected error")
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %T", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %T", typed.Details())
	}
	if details["quantity"] != "is required" {
		t.Fatalf("expected json field name in details, got %+v", details)
	}
}

func TestParseQueryInt(t *testing.T) {
	r := httptest.NewRequest("GET", "/v1/orders?limit=50", nil)
	value, err := ParseQueryInt(r, "limit", 25, 1, 100)
	if err != nil || value != 50 {
		t.Fatalf("expected 50, got %d err %v", value, err)
	}

	r = httptest.NewRequest("GET", "/v1/orders", nil)
	value, err = ParseQueryInt(r, "limit", 25, 1, 100)
	if err != nil || value != 25 {
		t.Fatalf("expected fallback 25, got %d err %v", value, err)
	}

	r = httptest.NewRequest("GET", "/v1/orders?limit=abc", nil)
	if _, err := ParseQueryInt(r, "limit", 25, 1, 100); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	r = httptest.NewRequest("GET", "/v1/orders?limit=500", nil)
	if _, err := ParseQueryInt(r, "limit", 25, 1, 100); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected out of range error, got %v", err)
	}
}
