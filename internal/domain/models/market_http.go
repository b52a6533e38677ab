package models

// Request payloads for the market HTTP endpoints.

type PricesRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,max=16"`
}

type TrendingRequest struct {
	Limit int `query:"limit" json:"limit" default:"10" validate:"gte=1,lte=50"`
}

type ProfileRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required,max=16"`
}

type RecommendationRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,max=16"`
	// Q seeds the sentiment batch; when empty, recent social texts for the
	// symbol are fetched instead.
	Q string `query:"q" json:"q" validate:"max=512"`
}
