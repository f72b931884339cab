package dto

import "github.com/finhub/ledgerd/internal/core/domain"

// CreateCurrencyRequest defines the data needed to register a currency.
type CreateCurrencyRequest struct {
	Code     string `json:"code" binding:"required,alphanum,uppercase,min=3,max=10"`
	Decimals uint8  `json:"decimals" binding:"lte=18"`
}

// CurrencyResponse defines the data returned for a currency.
type CurrencyResponse struct {
	Code     string `json:"code"`
	Decimals uint8  `json:"decimals"`
}

// ToCurrencyResponse converts a domain.Currency to its response DTO.
func ToCurrencyResponse(c domain.Currency) CurrencyResponse {
	return CurrencyResponse{Code: c.Code, Decimals: c.Decimals}
}
