package handoff

type CustomTokenRequest struct {
	UID          any    `json:"uid"`
	ExchangeCode string `json:"exchangeCode"`
}
