package model

// Geography labels for DemographicsRecord.
const (
	GeographyZCTA   = "zip"
	GeographyCounty = "county"
)

// DemographicsRecord is the ACS profile of a ZIP. Geography and GeographyFIPS
// are set only when the figures come from the county instead of the ZCTA.
type DemographicsRecord struct {
	ZipCode               string   `json:"zip_code"`
	Population            *int64   `json:"population"`
	MedianHouseholdIncome *int64   `json:"median_household_income"`
	MedianAge             *float64 `json:"median_age"`
	PctCollegeEducated    *float64 `json:"pct_college_educated"`
	PctOwnerOccupied      *float64 `json:"pct_owner_occupied"`
	CommuteTimeAvg        *float64 `json:"commute_time_avg"`
	PovertyRate           *float64 `json:"poverty_rate"`
	MedianRent            *int64   `json:"median_rent"`
	Geography             string   `json:"geography,omitempty"`
	GeographyFIPS         string   `json:"geography_fips,omitempty"`
}

// Degraded reports whether the record was produced from a coarser geography.
func (d DemographicsRecord) Degraded() bool {
	return d.Geography != "" && d.Geography != GeographyZCTA
}
