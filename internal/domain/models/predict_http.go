package models

// PredictRequest carries the raw query value. It is parsed as a signed
// base-10 integer by the handler so that bad input is reported as a 400
// rather than a bind error.
type PredictRequest struct {
	Timestamp string `query:"timestamp" validate:"required"`
}

type PredictResponse struct {
	Timestamp      int64   `json:"timestamp"`
	PredictedPrice float64 `json:"predicted_price"`
}

// ProxyRequest is the query of GET /api/coingecko.
type ProxyRequest struct {
	Endpoint string `query:"endpoint" validate:"required,max=2048"`
}

type ReloadResponse struct {
	Reloaded bool  `json:"reloaded"`
	Model    Model `json:"model"`
}
