package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/internal/address"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/types"
)

type stubAddressService struct {
	suggestFn func(ctx context.Context, req address.SuggestRequest) ([]address.Suggestion, error)
	resolveFn func(ctx context.Context, req address.ResolveRequest) (types.Address, error)
}

func (s stubAddressService) Suggest(ctx context.Context, req address.SuggestRequest) ([]address.Suggestion, error) {
	if s.suggestFn != nil {
		return s.suggestFn(ctx, req)
	}
	return nil, nil
}

func (s stubAddressService) Resolve(ctx context.Context, req address.ResolveRequest) (types.Address, error) {
	if s.resolveFn != nil {
		return s.resolveFn(ctx, req)
	}
	return types.Address{}, nil
}

func TestAddressAutocomplete(t *testing.T) {
	svc := stubAddressService{
		suggestFn: func(ctx context.Context, req address.SuggestRequest) ([]address.Suggestion, error) {
			if req.Query != "gulberg" || req.Country != "pk" {
				t.Fatalf("unexpected request %+v", req)
			}
			return []address.Suggestion{{PlaceID: "place-1", Description: "Gulberg III, Lahore"}}, nil
		},
	}

	body := `{"query":"gulberg","country":"pk"}`
	handler := AddressAutocomplete(svc, nil)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data []address.Suggestion `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0].PlaceID != "place-1" {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}

func TestAddressAutocompleteValidatesQuery(t *testing.T) {
	handler := AddressAutocomplete(stubAddressService{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"query":"g"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAddressResolve(t *testing.T) {
	svc := stubAddressService{
		resolveFn: func(ctx context.Context, req address.ResolveRequest) (types.Address, error) {
			if req.PlaceID != "place-1" {
				t.Fatalf("unexpected place id %q", req.PlaceID)
			}
			return types.Address{City: "Lahore", Province: "Punjab", Country: "PK"}, nil
		},
	}

	handler := AddressResolve(svc, nil)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"placeId":"place-1"}`))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data types.Address `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.City != "Lahore" {
		t.Fatalf("unexpected payload %+v", envelope.Data)
	}
}
