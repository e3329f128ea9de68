package repositories

// ShopkeeperHistory is the derived, read-only input to fraud scoring. It is
// computed fresh per verification call and never persisted; an upstream
// service may also supply it pre-computed in the request envelope.
type ShopkeeperHistory struct {
	// Mean of per-day sale totals across the shop's trading days, paise.
	AverageDailySales int64

	// Credits extended today, keyed by customer id.
	CreditCountToday map[string]int

	// Lifetime transaction counts keyed by customer id.
	PurchaseCounts map[string]int

	// Catalog unit prices keyed by product code, paise.
	CatalogPrices map[string]int64

	// Sum of today's sales so far, paise.
	SalesTodayTotal int64

	TotalTransactions int64
}

func (h *ShopkeeperHistory) CreditsToday(customerID string) int {
	if h == nil || h.CreditCountToday == nil {
		return 0
	}
	return h.CreditCountToday[customerID]
}

func (h *ShopkeeperHistory) Purchases(customerID string) int {
	if h == nil || h.PurchaseCounts == nil {
		return 0
	}
	return h.PurchaseCounts[customerID]
}
