package services

// LedgerStore is everything the services need from persistence.
// *storage.Store satisfies it.
type LedgerStore interface {
	AccountStore
	TransactionStore
	ExpenseStore
	GoalStore
	SavingsStore
	CatalogStore
}

// Registry holds one instance of every service sharing a store and publisher.
type Registry struct {
	Accounts     *AccountService
	Transactions *TransactionService
	Expenses     *ExpenseService
	Goals        *GoalService
	Savings      *SavingsService
	Catalog      *CatalogService
}

// NewRegistry wires the services. publisher may be nil.
func NewRegistry(store LedgerStore, publisher Publisher) *Registry {
	return &Registry{
		Accounts:     NewAccountService(store, publisher),
		Transactions: NewTransactionService(store, publisher),
		Expenses:     NewExpenseService(store),
		Goals:        NewGoalService(store),
		Savings:      NewSavingsService(store),
		Catalog:      NewCatalogService(store),
	}
}
