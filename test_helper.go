package portfolio

// USD is a helper to create a Money value in USD, mostly for tests.
func USD(v float64) Money { return M(v, "USD") }

// EUR is a helper to create a Money value in EUR, mostly for tests.
func EUR(v float64) Money { return M(v, "EUR") }
