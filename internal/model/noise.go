package model

// NoiseProxyReport counts infrastructure that correlates with ambient noise.
// ProxyCounts always holds every known tag; a nil count means its query failed
// and the tag is listed in Errors.
type NoiseProxyReport struct {
	ZipCode      string          `json:"zip_code"`
	RadiusMeters int             `json:"radius_meters"`
	Center       Center          `json:"center"`
	ProxyCounts  map[string]*int `json:"proxy_counts"`
	Errors       []string        `json:"errors"`
	Source       string          `json:"source"`
	Note         string          `json:"note"`
}

// Clone returns a copy that shares no map, slice or count with r.
func (r NoiseProxyReport) Clone() NoiseProxyReport {
	c := r
	c.Errors = append([]string(nil), r.Errors...)
	if r.ProxyCounts != nil {
		c.ProxyCounts = make(map[string]*int, len(r.ProxyCounts))
		for k, v := range r.ProxyCounts {
			if v != nil {
				n := *v
				v = &n
			}
			c.ProxyCounts[k] = v
		}
	}
	return c
}
