package services

import (
	"io"
	"testing"

	"kiranaledger/internal/models/db_models"
	"kiranaledger/internal/repositories"
	"kiranaledger/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func newTestVerificationService() VerificationServiceInterface {
	log := logger.NewWithWriter(io.Discard)
	return NewVerificationService(NewFraudService(log), log)
}

func cleanHistory() *repositories.ShopkeeperHistory {
	return &repositories.ShopkeeperHistory{
		AverageDailySales: 200_000,
		CreditCountToday:  map[string]int{},
		PurchaseCounts:    map[string]int{"cust-1": 20},
		CatalogPrices:     map[string]int64{"rice-1kg": 6_000},
	}
}

func TestVerifyCreditTransaction(t *testing.T) {
	svc := newTestVerificationService()

	tests := []struct {
		name        string
		data        CreditVerification
		history     *repositories.ShopkeeperHistory
		wantStatus  db_models.VerificationStatus
		wantStorage db_models.StorageLocation
		wantChain   bool
	}{
		{
			name: "low risk small amount auto verifies",
			data: CreditVerification{
				Transcript: "ramesh ko 150 rupaye udhaar", AmountMinor: 15_000,
				CustomerID: "cust-1", ShopkeeperID: "shop-1", OccurredAt: daytime,
			},
			history:     cleanHistory(),
			wantStatus:  db_models.VerificationVerified,
			wantStorage: db_models.StorageBlockchain,
			wantChain:   true,
		},
		{
			name: "low risk above auto-verify limit waits for the customer",
			data: CreditVerification{
				Transcript: "bada udhaar", AmountMinor: 250_000,
				CustomerID: "cust-1", ShopkeeperID: "shop-1", OccurredAt: daytime,
			},
			history:     cleanHistory(),
			wantStatus:  db_models.VerificationPending,
			wantStorage: db_models.StorageDatabasePending,
			wantChain:   false,
		},
		{
			name: "low risk large amount confirmed goes straight through",
			data: CreditVerification{
				Transcript: "bada udhaar confirmed", AmountMinor: 250_000,
				CustomerID: "cust-1", ShopkeeperID: "shop-1",
				CustomerConfirmed: true, OccurredAt: daytime,
			},
			history:     cleanHistory(),
			wantStatus:  db_models.VerificationVerified,
			wantStorage: db_models.StorageBlockchain,
			wantChain:   true,
		},
		{
			name: "confirmed small credit from a new customer verifies",
			data: CreditVerification{
				Transcript: "naya customer chhota udhaar", AmountMinor: 20_000,
				CustomerID: "newcomer", ShopkeeperID: "shop-1",
				CustomerConfirmed: true, OccurredAt: daytime,
			},
			history: &repositories.ShopkeeperHistory{
				AverageDailySales: 200_000,
				PurchaseCounts:    map[string]int{},
			},
			wantStatus:  db_models.VerificationVerified,
			wantStorage: db_models.StorageBlockchain,
			wantChain:   true,
		},
		{
			name: "high risk flagged even when confirmed",
			data: CreditVerification{
				Transcript: "naya customer bada udhaar", AmountMinor: 500_000,
				CustomerID: "stranger", ShopkeeperID: "shop-1",
				CustomerConfirmed: true, OccurredAt: daytime,
			},
			history:     cleanHistory(),
			wantStatus:  db_models.VerificationFlagged,
			wantStorage: db_models.StorageDatabaseOnly,
			wantChain:   false,
		},
		{
			name: "invalid amount rejected before scoring",
			data: CreditVerification{
				Transcript: "galat amount", AmountMinor: -500,
				CustomerID: "cust-1", ShopkeeperID: "shop-1", OccurredAt: daytime,
			},
			history:     cleanHistory(),
			wantStatus:  db_models.VerificationRejected,
			wantStorage: db_models.StorageDatabaseOnly,
			wantChain:   false,
		},
		{
			name: "missing shopkeeper rejected",
			data: CreditVerification{
				Transcript: "no shop", AmountMinor: 10_000,
				CustomerID: "cust-1", OccurredAt: daytime,
			},
			history:     cleanHistory(),
			wantStatus:  db_models.VerificationRejected,
			wantStorage: db_models.StorageDatabaseOnly,
			wantChain:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.VerifyCreditTransaction(tt.data, tt.history)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, tt.wantStorage, got.StorageLocation)
			assert.Equal(t, tt.wantChain, got.ShouldWriteToBlockchain)
			assert.Len(t, got.TranscriptHash, 64)
		})
	}
}

// Medium risk is the one band where customer confirmation changes the
// decision.
func TestVerifyCreditTransactionMediumRisk(t *testing.T) {
	svc := newTestVerificationService()

	// Third credit of the day plus off-hours puts the score at 0.40.
	history := &repositories.ShopkeeperHistory{
		AverageDailySales: 200_000,
		CreditCountToday:  map[string]int{"cust-1": 3},
		PurchaseCounts:    map[string]int{"cust-1": 20},
	}
	data := CreditVerification{
		Transcript: "raat ka udhaar", AmountMinor: 50_000,
		CustomerID: "cust-1", ShopkeeperID: "shop-1", OccurredAt: lateNight,
	}

	unconfirmed := svc.VerifyCreditTransaction(data, history)
	assert.Equal(t, db_models.RiskMedium, unconfirmed.FraudCheck.RiskLevel)
	assert.Equal(t, db_models.VerificationPending, unconfirmed.Status)
	assert.Equal(t, db_models.StorageDatabasePending, unconfirmed.StorageLocation)
	assert.False(t, unconfirmed.ShouldWriteToBlockchain)

	data.CustomerConfirmed = true
	confirmed := svc.VerifyCreditTransaction(data, history)
	assert.Equal(t, db_models.VerificationVerified, confirmed.Status)
	assert.Equal(t, db_models.StorageBlockchain, confirmed.StorageLocation)
	assert.True(t, confirmed.ShouldWriteToBlockchain)
}

func TestVerifyCreditHighRiskNeverChainEligible(t *testing.T) {
	svc := newTestVerificationService()

	// Empty history: above-average and no-purchase-history rules both fire.
	history := &repositories.ShopkeeperHistory{
		AverageDailySales: 200_000,
		CreditCountToday:  map[string]int{},
		PurchaseCounts:    map[string]int{},
	}

	for _, confirmed := range []bool{false, true} {
		got := svc.VerifyCreditTransaction(CreditVerification{
			Transcript: "anjaan customer", AmountMinor: 500_000,
			CustomerID: "stranger", ShopkeeperID: "shop-1",
			CustomerConfirmed: confirmed, OccurredAt: daytime,
		}, history)

		assert.Equal(t, db_models.RiskHigh, got.FraudCheck.RiskLevel)
		assert.Equal(t, db_models.VerificationFlagged, got.Status)
		assert.False(t, got.ShouldWriteToBlockchain, "confirmed=%v", confirmed)
	}
}

func TestVerifySalesTransaction(t *testing.T) {
	svc := newTestVerificationService()

	tests := []struct {
		name       string
		data       SalesVerification
		history    *repositories.ShopkeeperHistory
		wantStatus db_models.VerificationStatus
	}{
		{
			name: "clean catalog sale verifies",
			data: SalesVerification{
				Transcript: "do kilo chawal", ProductCode: "rice-1kg",
				UnitPriceMinor: 6_000, Quantity: 2, ShopkeeperID: "shop-1", OccurredAt: daytime,
			},
			history:    cleanHistory(),
			wantStatus: db_models.VerificationVerified,
		},
		{
			name: "large price deviation flags",
			data: SalesVerification{
				Transcript: "mehnga chawal", ProductCode: "rice-1kg",
				UnitPriceMinor: 15_000, Quantity: 1, ShopkeeperID: "shop-1", OccurredAt: daytime,
			},
			history:    cleanHistory(),
			wantStatus: db_models.VerificationFlagged,
		},
		{
			name: "invalid quantity rejects",
			data: SalesVerification{
				Transcript: "zero quantity", ProductCode: "rice-1kg",
				UnitPriceMinor: 6_000, Quantity: 0, ShopkeeperID: "shop-1", OccurredAt: daytime,
			},
			history:    cleanHistory(),
			wantStatus: db_models.VerificationRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.VerifySalesTransaction(tt.data, tt.history)
			assert.Equal(t, tt.wantStatus, got.Status)
			assert.Equal(t, db_models.StorageDatabaseOnly, got.StorageLocation)
			assert.False(t, got.ShouldWriteToBlockchain, "individual sales never reach the chain")
		})
	}
}

func TestShouldWriteToBlockchain(t *testing.T) {
	tests := []struct {
		name    string
		status  db_models.VerificationStatus
		storage db_models.StorageLocation
		want    bool
	}{
		{"verified on chain", db_models.VerificationVerified, db_models.StorageBlockchain, true},
		{"verified database only", db_models.VerificationVerified, db_models.StorageDatabaseOnly, false},
		{"pending never eligible", db_models.VerificationPending, db_models.StorageDatabasePending, false},
		{"flagged never eligible", db_models.VerificationFlagged, db_models.StorageBlockchain, false},
		{"rejected never eligible", db_models.VerificationRejected, db_models.StorageBlockchain, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShouldWriteToBlockchain(&VerificationResult{Status: tt.status, StorageLocation: tt.storage})
			assert.Equal(t, tt.want, got)
		})
	}
}
