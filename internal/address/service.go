package address

import (
	"context"
	"fmt"
	"strings"

	pkgerrors "github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/errors"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/maps"
	"github.com/Kaashmalik/laraibcreative-platform-sub000/pkg/types"
)

// Service wraps the Places client for the storefront address helpers:
// Suggest powers the autocomplete box, Resolve turns a picked suggestion
// into a prefilled shipping address. Contact fields (name, phone) are
// always left for the customer to fill in.
type Service interface {
	Suggest(ctx context.Context, req SuggestRequest) ([]Suggestion, error)
	Resolve(ctx context.Context, req ResolveRequest) (types.Address, error)
}

type SuggestRequest struct {
	Query    string
	Country  string
	Language string
}

type ResolveRequest struct {
	PlaceID string
}

type Suggestion struct {
	PlaceID     string `json:"place_id"`
	Description string `json:"description"`
}

type service struct {
	maps *maps.Client
}

// NewService accepts a nil client: when no maps API key is configured the
// service stays constructible and both operations fail with CodeDependency.
func NewService(client *maps.Client) Service {
	return &service{maps: client}
}

func (s *service) Suggest(ctx context.Context, req SuggestRequest) ([]Suggestion, error) {
	if s == nil || s.maps == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "address lookup is not configured")
	}
	if strings.TrimSpace(req.Query) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query is required")
	}

	payload := maps.AutocompleteRequest{
		Input: req.Query,
		// Bias toward Pakistani addresses unless the caller asks otherwise.
		IncludedRegionCodes: []string{"PK"},
	}
	if country := strings.TrimSpace(req.Country); country != "" {
		payload.IncludedRegionCodes = []string{strings.ToUpper(country)}
	}
	if lang := strings.TrimSpace(req.Language); lang != "" {
		payload.LanguageCode = lang
	}

	resp, err := s.maps.Autocomplete(ctx, payload)
	if err != nil {
		return nil, err
	}

	suggestions := make([]Suggestion, 0, len(resp))
	for _, item := range resp {
		suggestions = append(suggestions, Suggestion{
			PlaceID:     item.PlaceID,
			Description: item.Description,
		})
	}
	return suggestions, nil
}

func (s *service) Resolve(ctx context.Context, req ResolveRequest) (types.Address, error) {
	if s == nil || s.maps == nil {
		return types.Address{}, pkgerrors.New(pkgerrors.CodeDependency, "address lookup is not configured")
	}
	if strings.TrimSpace(req.PlaceID) == "" {
		return types.Address{}, pkgerrors.New(pkgerrors.CodeValidation, "place_id is required")
	}

	details, err := s.maps.ResolvePlace(ctx, req.PlaceID)
	if err != nil {
		return types.Address{}, err
	}

	return mapPlaceDetails(details)
}

// mapPlaceDetails shapes Places components into the checkout address block.
// Picks that resolve to a bare city (line1 would just repeat the city name)
// are rejected so the customer chooses a street address instead. Postal codes
// stay optional: Places data for Pakistan frequently omits them and couriers
// deliver without one.
func mapPlaceDetails(details *maps.PlaceDetails) (types.Address, error) {
	if details == nil {
		return types.Address{}, pkgerrors.New(pkgerrors.CodeDependency, "place details missing")
	}

	find := func(kind string) (maps.AddressComponent, bool) {
		for _, comp := range details.AddressComponents {
			for _, typ := range comp.Types {
				if typ == kind && comp.LongName != "" {
					return comp, true
				}
			}
		}
		return maps.AddressComponent{}, false
	}

	line1 := ""
	if number, ok := find("street_number"); ok {
		line1 = number.LongName
	}
	if route, ok := find("route"); ok {
		if line1 != "" {
			line1 = fmt.Sprintf("%s %s", line1, route.LongName)
		} else {
			line1 = route.LongName
		}
	}
	fellBack := false
	if line1 == "" && strings.TrimSpace(details.FormattedAddress) != "" {
		parts := strings.Split(details.FormattedAddress, ",")
		line1 = strings.TrimSpace(parts[0])
		fellBack = true
	}
	if line1 == "" {
		return types.Address{}, pkgerrors.New(pkgerrors.CodeValidation, "selected place is not a street address")
	}

	var line2 *string
	if sub, ok := find("subpremise"); ok {
		line2 = ptr(sub.LongName)
	}

	city := ""
	if locality, ok := find("locality"); ok {
		city = locality.LongName
	} else if town, ok := find("postal_town"); ok {
		city = town.LongName
	} else if district, ok := find("administrative_area_level_2"); ok {
		// Rural Punjab and KP places often carry only the district.
		city = district.LongName
	}
	if city == "" {
		return types.Address{}, pkgerrors.New(pkgerrors.CodeValidation, "selected place has no city")
	}
	if fellBack && strings.EqualFold(line1, city) {
		return types.Address{}, pkgerrors.New(pkgerrors.CodeValidation, "selected place is not a street address")
	}

	province := ""
	if admin, ok := find("administrative_area_level_1"); ok {
		province = admin.LongName
	}
	if province == "" {
		return types.Address{}, pkgerrors.New(pkgerrors.CodeValidation, "selected place has no province")
	}

	postalCode := ""
	if code, ok := find("postal_code"); ok {
		postalCode = code.LongName
	}

	country := ""
	if comp, ok := find("country"); ok {
		country = comp.ShortName
	}

	addr := types.Address{
		Line1:      line1,
		Line2:      line2,
		City:       city,
		Province:   province,
		PostalCode: postalCode,
		Country:    country,
	}
	addr.Normalize()
	return addr, nil
}

func ptr(value string) *string {
	if value == "" {
		return nil
	}
	v := value
	return &v
}
