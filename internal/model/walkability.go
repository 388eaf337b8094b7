package model

// WalkScore holds walk, transit and bike scores for a coordinate.
type WalkScore struct {
	WalkScore    *int    `json:"walkscore"`
	Description  *string `json:"description"`
	TransitScore *int    `json:"transit_score"`
	BikeScore    *int    `json:"bike_score"`
}

// Development is one permit or project record from an open-data portal.
type Development struct {
	Name                string  `json:"name"`
	Type                *string `json:"type"`
	Status              *string `json:"status"`
	EstimatedCompletion *string `json:"estimated_completion"`
	Description         *string `json:"description"`
	Address             *string `json:"address"`
}

// Developments is the permit search result for a ZIP.
type Developments struct {
	ZipCode      string        `json:"zip_code"`
	City         *string       `json:"city"`
	Developments []Development `json:"developments"`
	TrendSummary *string       `json:"trend_summary"`
	Source       string        `json:"source"`
}
