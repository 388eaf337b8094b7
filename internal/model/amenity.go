package model

// RatedPlace is one entry of a ratings-provider top list.
type RatedPlace struct {
	Name        string   `json:"name"`
	Rating      *float64 `json:"rating"`
	RatingCount *int     `json:"rating_count"`
	Address     string   `json:"address,omitempty"`
}

// AmenityQueryResult is the uniform amenity answer returned by both the
// ratings provider path and the open-data path. Category is always canonical.
type AmenityQueryResult struct {
	ZipCode      string       `json:"zip_code,omitempty"`
	Category     string       `json:"category"`
	Count        int          `json:"count"`
	SampleNames  []string     `json:"sample_names"`
	TopRated     []RatedPlace `json:"top_rated,omitempty"`
	AvgRating    *float64     `json:"avg_rating,omitempty"`
	RadiusMeters int          `json:"radius_meters"`
	Source       string       `json:"source"`
	Note         string       `json:"note,omitempty"`
	Center       *Center      `json:"center,omitempty"`
}

// Clone returns a copy that shares no slices with r, so cached results can be
// annotated per caller.
func (r AmenityQueryResult) Clone() AmenityQueryResult {
	c := r
	c.SampleNames = append([]string(nil), r.SampleNames...)
	if r.TopRated != nil {
		c.TopRated = append([]RatedPlace(nil), r.TopRated...)
	}
	if r.Center != nil {
		center := *r.Center
		c.Center = &center
	}
	return c
}
