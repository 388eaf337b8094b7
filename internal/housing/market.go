package housing

import (
	"context"
	"errors"
	"sort"

	"github.com/sells-group/liveable/internal/location"
	"github.com/sells-group/liveable/internal/model"
	"github.com/sells-group/liveable/internal/result"
	"github.com/sells-group/liveable/pkg/rentcast"
)

const (
	rentcastProvider = "rentcast"

	marketNote   = "Market payload summarized to avoid oversized responses."
	listingsNote = "Listings summarized to avoid oversized responses."

	// MaxListingSummaries caps the listings returned by Listings.
	MaxListingSummaries = 20
	maxMarketFallback   = 20
)

var marketKeys = []string{
	"medianSalePrice", "medianListPrice", "medianRent", "averageRent",
	"averageSalePrice", "pricePerSquareFoot", "rentYoY", "priceYoY",
	"marketScore", "marketTemperature", "daysOnMarket", "inventory", "lastUpdated",
}

var listingKeys = []string{
	"address", "city", "state", "zipCode", "price", "listPrice", "beds", "baths",
	"squareFootage", "pricePerSquareFoot", "daysOnMarket", "propertyType", "yearBuilt",
}

// Market wraps the RentCast endpoints. A nil client means no RentCast key is
// configured.
type Market struct {
	client rentcast.Client
}

// NewMarket creates a Market.
func NewMarket(client rentcast.Client) *Market {
	return &Market{client: client}
}

// Stats returns the raw market object for zip, unwrapped from a top-level
// "market" key when present.
func (m *Market) Stats(ctx context.Context, zip string) (map[string]any, error) {
	if m.client == nil {
		return nil, result.MissingKey("", rentcastProvider, "RENTCAST_API_KEY")
	}
	if err := location.ValidateZip(zip); err != nil {
		return nil, err
	}
	raw, err := m.client.Markets(ctx, zip)
	if err != nil {
		return nil, rentcastFailure(err)
	}
	if inner, ok := raw["market"].(map[string]any); ok {
		return inner, nil
	}
	return raw, nil
}

// SaleListings returns up to limit raw sale listings for zip.
func (m *Market) SaleListings(ctx context.Context, zip string, limit int) ([]map[string]any, error) {
	if m.client == nil {
		return nil, result.MissingKey("", rentcastProvider, "RENTCAST_API_KEY")
	}
	if err := location.ValidateZip(zip); err != nil {
		return nil, err
	}
	listings, err := m.client.SaleListings(ctx, zip, limit)
	if err != nil {
		return nil, rentcastFailure(err)
	}
	return listings, nil
}

// Summary returns the trimmed market statistics for zip.
func (m *Market) Summary(ctx context.Context, zip string) (model.MarketSummary, error) {
	stats, err := m.Stats(ctx, zip)
	if err != nil {
		return model.MarketSummary{}, err
	}
	return model.MarketSummary{
		ZipCode: zip,
		Market:  SummarizeMarket(stats),
		Source:  rentcast.DefaultBaseURL,
		Note:    marketNote,
	}, nil
}

// Listings returns trimmed summaries of the first MaxListingSummaries listings.
func (m *Market) Listings(ctx context.Context, zip string, limit int) (model.ListingSummaries, error) {
	listings, err := m.SaleListings(ctx, zip, limit)
	if err != nil {
		return model.ListingSummaries{}, err
	}
	if len(listings) > MaxListingSummaries {
		listings = listings[:MaxListingSummaries]
	}
	out := make([]map[string]any, 0, len(listings))
	for _, l := range listings {
		out = append(out, SummarizeListing(l))
	}
	return model.ListingSummaries{
		ZipCode:  zip,
		Listings: out,
		Source:   rentcast.DefaultBaseURL,
		Note:     listingsNote,
	}, nil
}

// SummarizeMarket keeps the well-known market statistics. When none are
// present it keeps up to 20 scalar fields in key order instead.
func SummarizeMarket(market map[string]any) map[string]any {
	out := pick(market, marketKeys)
	if len(out) > 0 {
		return out
	}
	keys := make([]string, 0, len(market))
	for k := range market {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if len(out) == maxMarketFallback {
			break
		}
		switch market[k].(type) {
		case string, float64, int, int64, bool:
			out[k] = market[k]
		}
	}
	return out
}

// SummarizeListing keeps the well-known listing fields, or returns the
// listing unchanged when it has none of them.
func SummarizeListing(listing map[string]any) map[string]any {
	if out := pick(listing, listingKeys); len(out) > 0 {
		return out
	}
	return listing
}

func pick(m map[string]any, keys []string) map[string]any {
	out := make(map[string]any)
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			out[k] = v
		}
	}
	return out
}

func rentcastFailure(err error) *result.Failure {
	if f, ok := result.As(err); ok {
		return f
	}
	var apiErr *rentcast.APIError
	if errors.As(err, &apiErr) {
		return result.HTTPFailure(result.KindRentCastRequestFailed, "", rentcastProvider, apiErr.StatusCode, apiErr.Body)
	}
	return result.Wrap(err, result.KindRentCastRequestFailed, result.Details{"provider": rentcastProvider, "transient": true})
}
