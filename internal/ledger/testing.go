package ledger

// SeedBalance is a test helper that sets an account balance directly when the
// store is the in-memory implementation.
func SeedBalance(s Store, number string, amount int64) {
	if mem, ok := s.(*memoryStore); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		acct, ok := mem.accounts[number]
		if !ok {
			acct = Account{AccountNumber: number}
		}
		acct.Balance = amount
		mem.accounts[number] = acct
	}
}
