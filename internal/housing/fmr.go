package housing

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/liveable/internal/location"
	"github.com/sells-group/liveable/internal/model"
	"github.com/sells-group/liveable/internal/result"
	"github.com/sells-group/liveable/pkg/hud"
)

const (
	hudProvider = "hud_fmr"

	// SourceHUD names county-level fair market rents.
	SourceHUD = "HUD FMR API"
	// SourceHUDState names the state-level fallback.
	SourceHUDState = "HUD FMR API (state-level fallback)"

	fmrNote = "Raw HUD payload omitted to avoid oversized tool output."
)

// FMRResolver looks up HUD fair market rents for a ZIP's county, falling back
// to the median of the state's counties. A nil client means no HUD key is
// configured.
type FMRResolver struct {
	client   hud.Client
	profiles location.Profiler
	now      func() time.Time
}

// NewFMRResolver creates an FMRResolver.
func NewFMRResolver(client hud.Client, profiles location.Profiler) *FMRResolver {
	return &FMRResolver{client: client, profiles: profiles, now: time.Now}
}

// EntityID builds the HUD county entity id (state FIPS + county FIPS +
// "99999"), or "" when either part is missing or malformed.
func EntityID(p model.GeoProfile) string {
	if p.StateFIPS == nil || p.CountyFIPS == nil {
		return ""
	}
	if len(*p.StateFIPS) != 2 || len(*p.CountyFIPS) != 3 {
		return ""
	}
	return *p.StateFIPS + *p.CountyFIPS + "99999"
}

// Resolve returns fair market rents for zip. year <= 0 selects last year.
//
// Precedence: the county entity for year, then the county entity for year-1
// when HUD rejects the year, then the state-level endpoint for year. The
// county steps are skipped when the profile has no usable FIPS pair.
func (r *FMRResolver) Resolve(ctx context.Context, zip string, year int) (model.FairMarketRent, error) {
	if r.client == nil {
		return model.FairMarketRent{}, result.MissingKey("", hudProvider, "HUD_API_KEY")
	}
	if err := location.ValidateZip(zip); err != nil {
		return model.FairMarketRent{}, err
	}
	if year <= 0 {
		year = r.now().UTC().Year() - 1
	}

	out := model.FairMarketRent{ZipCode: zip, Note: fmrNote}

	profile, err := r.profiles.Profile(ctx, zip)
	state := profile.State
	if err != nil {
		zap.L().Warn("housing: geo profile unavailable for HUD lookup", zap.String("zip", zip), zap.Error(err))
	} else {
		out.CountyFIPS = profile.CountyFIPS
		out.StateFIPS = profile.StateFIPS
	}

	var lastErr error
	if entity := EntityID(profile); err == nil && entity != "" {
		rents, used, cerr := r.county(ctx, entity, year)
		if cerr == nil {
			out.Year = used
			out.FMR = fmrFrom(*rents)
			out.Source = SourceHUD
			return out, nil
		}
		lastErr = cerr
		zap.L().Warn("housing: county FMR failed, trying state level",
			zap.String("zip", zip), zap.String("entity", entity), zap.Error(cerr))
	}

	if state == "" {
		if lastErr != nil {
			return model.FairMarketRent{}, hudFailure(lastErr).With(result.Details{"zip_code": zip})
		}
		return model.FairMarketRent{}, result.New(result.KindMissingCountyFIPS, result.Details{
			"zip_code": zip,
			"provider": hudProvider,
		})
	}

	counties, serr := r.client.StateFMR(ctx, state, year)
	if serr != nil {
		return model.FairMarketRent{}, hudFailure(serr).With(result.Details{
			"zip_code": zip,
			"fallback": "state",
		})
	}
	if len(counties) == 0 {
		return model.FairMarketRent{}, result.New(result.KindHUDRequestFailed, result.Details{
			"zip_code":   zip,
			"provider":   hudProvider,
			"fallback":   "state",
			"error_type": "no_data",
		})
	}

	out.Year = year
	out.FMR = stateMedian(counties)
	out.Source = SourceHUDState
	return out, nil
}

// county queries the entity for year, retrying once with year-1 when HUD
// rejects the year. It returns the year that answered.
func (r *FMRResolver) county(ctx context.Context, entity string, year int) (*hud.Rents, int, error) {
	rents, err := r.client.CountyFMR(ctx, entity, year)
	if err == nil {
		return rents, year, nil
	}
	var apiErr *hud.APIError
	if !errors.As(err, &apiErr) || !apiErr.YearUnavailable() {
		return nil, 0, err
	}
	rents, err = r.client.CountyFMR(ctx, entity, year-1)
	if err != nil {
		return nil, 0, err
	}
	return rents, year - 1, nil
}

func fmrFrom(r hud.Rents) model.FMR {
	return model.FMR{
		Efficiency: r.Efficiency,
		OneBR:      r.OneBR,
		TwoBR:      r.TwoBR,
		ThreeBR:    r.ThreeBR,
		FourBR:     r.FourBR,
	}
}

// stateMedian takes each bedroom count's median across the state's counties.
func stateMedian(counties []hud.Rents) model.FMR {
	pick := func(get func(hud.Rents) *float64) *float64 {
		var vals []float64
		for _, c := range counties {
			if v := get(c); v != nil {
				vals = append(vals, *v)
			}
		}
		return Median(vals)
	}
	return model.FMR{
		Efficiency: pick(func(r hud.Rents) *float64 { return r.Efficiency }),
		OneBR:      pick(func(r hud.Rents) *float64 { return r.OneBR }),
		TwoBR:      pick(func(r hud.Rents) *float64 { return r.TwoBR }),
		ThreeBR:    pick(func(r hud.Rents) *float64 { return r.ThreeBR }),
		FourBR:     pick(func(r hud.Rents) *float64 { return r.FourBR }),
	}
}

func hudFailure(err error) *result.Failure {
	if f, ok := result.As(err); ok {
		return f
	}
	var apiErr *hud.APIError
	if errors.As(err, &apiErr) {
		return result.HTTPFailure(result.KindHUDRequestFailed, "", hudProvider, apiErr.StatusCode, apiErr.Body)
	}
	return result.Wrap(err, result.KindHUDRequestFailed, result.Details{"provider": hudProvider, "transient": true})
}
