package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// Adapters (pgsql, memory) build one of these so wiring stays in one place.
type RepositoryProvider struct {
	AccountRepo     AccountRepository
	JournalRepo     JournalEntryRepository
	ReservationRepo ReservationRepository
	CurrencyRepo    CurrencyRepository
}
