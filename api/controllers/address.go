package controllers

import (
	"net/http"

	"github.com/Kaashmalik/laraibcreative-platform-sub000/api/responses"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/api/validators"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/internal/address"
	pkgerrors "github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/errors"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/logger"
)

// AddressAutocomplete proxies checkout address suggestions. Results come from
// Google Places keyed by a server-side credential so the key never reaches
// the browser.
func AddressAutocomplete(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}

		var payload autocompleteRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		suggestions, err := svc.Suggest(r.Context(), address.SuggestRequest{
			Query:    payload.Query,
			Country:  payload.Country,
			Language: payload.Language,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, suggestions)
	}
}

// AddressResolve expands a picked suggestion into address fields for the
// checkout form.
func AddressResolve(svc address.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "address service unavailable"))
			return
		}

		var payload resolveRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resolved, err := svc.Resolve(r.Context(), address.ResolveRequest{PlaceID: payload.PlaceID})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, resolved)
	}
}

type autocompleteRequest struct {
	Query    string `json:"query" validate:"required,min=2,max=200"`
	Country  string `json:"country" validate:"omitempty,len=2"`
	Language string `json:"language" validate:"omitempty,max=8"`
}

type resolveRequest struct {
	PlaceID string `json:"placeId" validate:"required,max=512"`
}
