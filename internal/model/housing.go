package model

// RentBenchmark combines listing, market and fair-market-rent figures.
type RentBenchmark struct {
	ZipCode         string   `json:"zip_code"`
	MedianHomePrice *float64 `json:"median_home_price"`
	MedianRent      *float64 `json:"median_rent"`
	PricePerSqft    *float64 `json:"price_per_sqft"`
	YoYChange       *float64 `json:"yoy_change"`
	Sources         []string `json:"sources"`
	Source          string   `json:"source"`
	Note            string   `json:"note"`
	Caveats         []string `json:"caveats,omitempty"`
}

// FMR holds fair market rents by bedroom count.
type FMR struct {
	Efficiency *float64 `json:"fmr_0br"`
	OneBR      *float64 `json:"fmr_1br"`
	TwoBR      *float64 `json:"fmr_2br"`
	ThreeBR    *float64 `json:"fmr_3br"`
	FourBR     *float64 `json:"fmr_4br"`
}

// FairMarketRent is the HUD FMR lookup for a ZIP's county (or its state).
type FairMarketRent struct {
	ZipCode    string  `json:"zip_code"`
	CountyFIPS *string `json:"county_fips"`
	StateFIPS  *string `json:"state_fips"`
	Year       int     `json:"year"`
	FMR        FMR     `json:"fmr"`
	Source     string  `json:"source"`
	Note       string  `json:"note"`
}

// MarketSummary is a trimmed RentCast market payload.
type MarketSummary struct {
	ZipCode string         `json:"zip_code"`
	Market  map[string]any `json:"market"`
	Source  string         `json:"source"`
	Note    string         `json:"note"`
}

// ListingSummaries is a trimmed RentCast sale-listings payload.
type ListingSummaries struct {
	ZipCode  string           `json:"zip_code"`
	Listings []map[string]any `json:"listings"`
	Source   string           `json:"source"`
	Note     string           `json:"note"`
}
