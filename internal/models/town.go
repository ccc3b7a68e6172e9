package models

// TownRecord is the scraped livability data for a single town. Name keeps the
// caller's original spelling, not the URL slug.
type TownRecord struct {
	Name       string  `json:"name"`
	Code       string  `json:"cog_code"`
	PostalCode string  `json:"postal_code"`
	Score      float64 `json:"score"`
}

// TownResponse is the body returned by GET /score/{town}_{code}.
type TownResponse struct {
	Town       string  `json:"town" example:"Antony"`
	CogCode    string  `json:"cog_code" example:"92002"`
	PostalCode string  `json:"postal_code" example:"92160"`
	Score      float64 `json:"score" example:"14.2"`
}

// NewTownResponse maps a record to the public response schema.
func NewTownResponse(t *TownRecord) TownResponse {
	return TownResponse{
		Town:       t.Name,
		CogCode:    t.Code,
		PostalCode: t.PostalCode,
		Score:      t.Score,
	}
}
