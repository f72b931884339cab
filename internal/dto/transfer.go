package dto

// ReserveRequest carries a check-liquidity-and-reserve request. All amount
// fields are decimal strings in the scale of CurrencyCode.
type ReserveRequest struct {
	RequestID               string `json:"requestId"`
	TransferID              string `json:"transferId" binding:"required"`
	PayerPositionAccountID  string `json:"payerPositionAccountId" binding:"required"`
	PayerLiquidityAccountID string `json:"payerLiquidityAccountId" binding:"required"`
	HubAccountID            string `json:"hubAccountId" binding:"required"`
	TransferAmount          string `json:"transferAmount" binding:"required,amount"`
	CurrencyCode            string `json:"currencyCode" binding:"required"`
	PayerNetDebitCap        string `json:"payerNetDebitCap" binding:"required,amount"`
}

// CommitRequest carries the payee leg for cancel-reservation-and-commit.
type CommitRequest struct {
	RequestID              string `json:"requestId"`
	PayeePositionAccountID string `json:"payeePositionAccountId" binding:"required"`
}

// CancelRequest carries an optional request id for cancel-reservation.
type CancelRequest struct {
	RequestID string `json:"requestId"`
}

// TransferResultResponse is the uniform {success, errorMessage} reply for the
// reservation endpoints.
type TransferResultResponse struct {
	Success      bool   `json:"success"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}
