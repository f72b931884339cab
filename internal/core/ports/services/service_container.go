package services

// ServiceContainer holds all service facades needed by the HTTP layer.
type ServiceContainer struct {
	Ledger      LedgerSvcFacade
	Reservation ReservationSvcFacade
	Currency    CurrencySvcFacade
}
