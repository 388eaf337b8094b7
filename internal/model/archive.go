package model

import (
	"encoding/json"
	"time"
)

// ArchivedReport is a produced report persisted for later retrieval.
type ArchivedReport struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	ZipCodes  []string        `json:"zip_codes"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}
