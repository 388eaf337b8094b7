// Package housing resolves rent and home-price benchmarks from RentCast
// listings, RentCast market statistics and HUD fair market rents.
package housing

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/liveable/internal/location"
	"github.com/sells-group/liveable/internal/model"
	"github.com/sells-group/liveable/internal/result"
	"github.com/sells-group/liveable/pkg/rentcast"
)

// Source labels for the benchmark's contributing providers.
const (
	SourceListings = "RentCast listings"
	SourceMarket   = "RentCast market"

	benchmarkNote = "Home price data uses listings where available; rent uses RentCast or HUD FMR."
)

var (
	priceAliases  = []string{"listPrice", "price", "listingPrice", "list_price"}
	ppsfAliases   = []string{"pricePerSquareFoot", "price_per_sqft", "pricePerSqft"}
	rentAliases   = []string{"medianRent", "medianRentPrice", "averageRent", "averageRentPrice"}
	nestedAliases = []string{"median", "average", "medianRent"}
	yoyAliases    = []string{"rentYoY", "priceYoY", "yoyChange"}
)

type listingStats struct {
	price *float64
	ppsf  *float64
}

type marketStats struct {
	rent *float64
	yoy  *float64
}

// Resolver assembles a RentBenchmark.
type Resolver struct {
	market *Market
	fmr    *FMRResolver
}

// NewResolver creates a Resolver.
func NewResolver(market *Market, fmr *FMRResolver) *Resolver {
	return &Resolver{market: market, fmr: fmr}
}

// Benchmark combines listing medians, market rent and, when no rent was
// found, HUD fair market rent. RentCast failures leave nulls and a caveat;
// only an exhausted HUD chain fails the call.
func (r *Resolver) Benchmark(ctx context.Context, zip string, year int) (model.RentBenchmark, error) {
	if err := location.ValidateZip(zip); err != nil {
		return model.RentBenchmark{}, err
	}

	out := model.RentBenchmark{ZipCode: zip, Note: benchmarkNote}
	var sources []string

	listings := r.listings(ctx, zip)
	if listings.Usable() {
		out.MedianHomePrice = listings.Value.price
		out.PricePerSqft = listings.Value.ppsf
		if out.MedianHomePrice != nil || out.PricePerSqft != nil {
			sources = append(sources, SourceListings)
		}
	} else {
		out.Caveats = append(out.Caveats, listings.Caveat("rentcast listings"))
	}

	market := r.marketStats(ctx, zip)
	if market.Usable() {
		out.MedianRent = market.Value.rent
		out.YoYChange = market.Value.yoy
		if out.MedianRent != nil || out.YoYChange != nil {
			sources = append(sources, SourceMarket)
		}
	} else {
		out.Caveats = append(out.Caveats, market.Caveat("rentcast market"))
	}

	fallbackSource := SourceHUD
	if out.MedianRent == nil {
		fmr, err := r.fmr.Resolve(ctx, zip, year)
		if err != nil {
			return model.RentBenchmark{}, err
		}
		fallbackSource = fmr.Source
		out.MedianRent = fmr.FMR.TwoBR
		if out.MedianRent == nil {
			out.MedianRent = fmr.FMR.OneBR
		}
		if out.MedianRent != nil {
			sources = append(sources, fmr.Source)
		}
	}

	out.Sources = dedupSorted(sources)
	if len(out.Sources) == 0 {
		out.Sources = []string{fallbackSource}
	}
	out.Source = strings.Join(out.Sources, ", ")
	sort.Strings(out.Caveats)
	return out, nil
}

func (r *Resolver) listings(ctx context.Context, zip string) result.Outcome[listingStats] {
	items, err := r.market.SaleListings(ctx, zip, rentcast.DefaultListingLimit)
	if err != nil {
		zap.L().Warn("housing: listings unavailable", zap.String("zip", zip), zap.Error(err))
		return result.Failed[listingStats](err)
	}
	var prices, ppsf []float64
	for _, item := range items {
		if p := firstNumber(item, priceAliases...); p != nil {
			prices = append(prices, *p)
		}
		if p := firstNumber(item, ppsfAliases...); p != nil {
			ppsf = append(ppsf, *p)
		}
	}
	return result.Ok(listingStats{price: Median(prices), ppsf: Median(ppsf)})
}

func (r *Resolver) marketStats(ctx context.Context, zip string) result.Outcome[marketStats] {
	stats, err := r.market.Stats(ctx, zip)
	if err != nil {
		zap.L().Warn("housing: market stats unavailable", zap.String("zip", zip), zap.Error(err))
		return result.Failed[marketStats](err)
	}
	ms := marketStats{
		rent: firstNumber(stats, rentAliases...),
		yoy:  firstNumber(stats, yoyAliases...),
	}
	if ms.rent == nil {
		if nested, ok := stats["rent"].(map[string]any); ok {
			ms.rent = firstNumber(nested, nestedAliases...)
		}
	}
	return result.Ok(ms)
}

func dedupSorted(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
