package services

import (
	"fmt"
	"time"

	"kiranaledger/internal/models/db_models"
	"kiranaledger/internal/repositories"
	"kiranaledger/pkg/utils"

	"github.com/rs/zerolog"
)

// Rule weights and thresholds. Amounts in paise.
const (
	HighValueThresholdMinor = int64(500_000)    // Rs 5,000
	HardAmountCeilingMinor  = int64(10_000_000) // Rs 1,00,000
	AutoVerifyLimitMinor    = int64(200_000)    // Rs 2,000

	maxCreditsPerDay      = 3
	bulkQuantityThreshold = int64(50)
	priceDeviationBand    = 0.20

	flagThreshold      = 0.20
	mediumRiskCutoff   = 0.30
	highRiskCutoff     = 0.50
	criticalRiskCutoff = 0.70

	weightAboveAverageSales = 0.30
	weightCreditFrequency   = 0.25
	weightNoHistory         = 0.20
	weightOffHours          = 0.15
	weightHighValue         = 0.10

	weightPriceDeviation = 0.30
	weightBulkQuantity   = 0.20
	weightSalesSpike     = 0.15
	weightUnknownProduct = 0.10
)

type FraudCheckResult struct {
	IsFlagged       bool                `json:"is_flagged"`
	RiskLevel       db_models.RiskLevel `json:"risk_level"`
	Score           float64             `json:"score"`
	Reasons         []string            `json:"reasons,omitempty"`
	Recommendations []string            `json:"recommendations,omitempty"`
}

type CreditValidation struct {
	Valid                bool
	Errors               []string
	Warnings             []string
	RequiresConfirmation bool
}

type SalesValidation struct {
	Valid            bool
	Errors           []string
	Warnings         []string
	TotalAmountMinor int64
}

type CreditCheck struct {
	AmountMinor int64
	CustomerID  string
	OccurredAt  time.Time
}

type SalesCheck struct {
	ProductCode    string
	UnitPriceMinor int64
	Quantity       int64
	OccurredAt     time.Time
}

type FraudServiceInterface interface {
	DetectCreditAnomaly(check CreditCheck, history *repositories.ShopkeeperHistory) FraudCheckResult
	DetectSalesAnomaly(check SalesCheck, history *repositories.ShopkeeperHistory) FraudCheckResult
	ValidateCreditTransaction(amountMinor int64, customerID, shopkeeperID string, confirmed bool) CreditValidation
	ValidateSalesTransaction(productCode string, unitPriceMinor, quantity int64, catalog map[string]int64) SalesValidation
}

type FraudService struct {
	log zerolog.Logger
}

func NewFraudService(log zerolog.Logger) FraudServiceInterface {
	return &FraudService{log: log.With().Str("component", "fraud_detector").Logger()}
}

// DetectCreditAnomaly scores a credit/repay transaction against shopkeeper
// history with fixed additive weights, capped at 1.0.
func (s *FraudService) DetectCreditAnomaly(check CreditCheck, history *repositories.ShopkeeperHistory) FraudCheckResult {
	var score float64
	var reasons, recommendations []string

	avg := int64(0)
	if history != nil {
		avg = history.AverageDailySales
	}
	if check.AmountMinor > 2*avg {
		score += weightAboveAverageSales
		reasons = append(reasons, fmt.Sprintf("amount %d exceeds 2x average daily sales (%d)", check.AmountMinor, avg))
		recommendations = append(recommendations, "verify the amount with the customer before extending credit")
	}

	if credits := history.CreditsToday(check.CustomerID); credits >= maxCreditsPerDay {
		score += weightCreditFrequency
		reasons = append(reasons, fmt.Sprintf("customer already has %d credits today", credits))
		recommendations = append(recommendations, "ask the customer to settle earlier credits first")
	}

	if history.Purchases(check.CustomerID) == 0 {
		score += weightNoHistory
		reasons = append(reasons, "customer has no purchase history with this shop")
		recommendations = append(recommendations, "collect customer confirmation before recording")
	}

	if utils.IsOffHours(check.OccurredAt) {
		score += weightOffHours
		reasons = append(reasons, "transaction recorded during off-hours (22:00-06:00)")
	}

	if check.AmountMinor > HighValueThresholdMinor {
		score += weightHighValue
		reasons = append(reasons, fmt.Sprintf("amount %d above high-value threshold %d", check.AmountMinor, HighValueThresholdMinor))
	}

	return s.finalize("credit", score, reasons, recommendations)
}

// DetectSalesAnomaly scores a sale against the catalog and the day's totals.
func (s *FraudService) DetectSalesAnomaly(check SalesCheck, history *repositories.ShopkeeperHistory) FraudCheckResult {
	var score float64
	var reasons, recommendations []string

	catalogPrice, inCatalog := int64(0), false
	if history != nil && history.CatalogPrices != nil {
		catalogPrice, inCatalog = history.CatalogPrices[check.ProductCode]
	}

	if inCatalog && catalogPrice > 0 {
		deviation := float64(check.UnitPriceMinor-catalogPrice) / float64(catalogPrice)
		if deviation > priceDeviationBand || deviation < -priceDeviationBand {
			score += weightPriceDeviation
			reasons = append(reasons, fmt.Sprintf("price %d deviates %.0f%% from catalog price %d",
				check.UnitPriceMinor, deviation*100, catalogPrice))
			recommendations = append(recommendations, "re-check the spoken price against the catalog")
		}
	}

	if check.Quantity > bulkQuantityThreshold {
		score += weightBulkQuantity
		reasons = append(reasons, fmt.Sprintf("quantity %d above bulk threshold %d", check.Quantity, bulkQuantityThreshold))
	}

	if history != nil && history.AverageDailySales > 0 {
		saleTotal := check.UnitPriceMinor * check.Quantity
		if history.SalesTodayTotal+saleTotal > 3*history.AverageDailySales {
			score += weightSalesSpike
			reasons = append(reasons, "today's running sales total exceeds 3x average daily sales")
		}
	}

	if !inCatalog {
		score += weightUnknownProduct
		reasons = append(reasons, fmt.Sprintf("product %q not in catalog", check.ProductCode))
		recommendations = append(recommendations, "add the product to the catalog or correct the transcript")
	}

	return s.finalize("sales", score, reasons, recommendations)
}

func (s *FraudService) finalize(kind string, score float64, reasons, recommendations []string) FraudCheckResult {
	if score > 1.0 {
		score = 1.0
	}

	result := FraudCheckResult{
		IsFlagged:       score > flagThreshold,
		RiskLevel:       riskLevelFor(score),
		Score:           score,
		Reasons:         reasons,
		Recommendations: recommendations,
	}

	if result.IsFlagged {
		s.log.Warn().
			Str("check", kind).
			Float64("score", score).
			Strs("reasons", reasons).
			Msg("transaction flagged by anomaly detector")
	}
	return result
}

func riskLevelFor(score float64) db_models.RiskLevel {
	switch {
	case score >= criticalRiskCutoff:
		return db_models.RiskCritical
	case score >= highRiskCutoff:
		return db_models.RiskHigh
	case score >= mediumRiskCutoff:
		return db_models.RiskMedium
	default:
		return db_models.RiskLow
	}
}

// ValidateCreditTransaction is the pure bounds check, independent of anomaly
// scoring: a transaction can fail validation with a low fraud score and vice
// versa.
func (s *FraudService) ValidateCreditTransaction(amountMinor int64, customerID, shopkeeperID string, confirmed bool) CreditValidation {
	v := CreditValidation{Valid: true}

	if amountMinor <= 0 {
		v.Valid = false
		v.Errors = append(v.Errors, fmt.Sprintf("amount must be positive, got %d", amountMinor))
	}
	if amountMinor > HardAmountCeilingMinor {
		v.Valid = false
		v.Errors = append(v.Errors, fmt.Sprintf("amount %d exceeds ceiling %d", amountMinor, HardAmountCeilingMinor))
	}
	if customerID == "" {
		v.Valid = false
		v.Errors = append(v.Errors, "customer id is required")
	}
	if shopkeeperID == "" {
		v.Valid = false
		v.Errors = append(v.Errors, "shopkeeper id is required")
	}

	if v.Valid && amountMinor > AutoVerifyLimitMinor && !confirmed {
		v.RequiresConfirmation = true
		v.Warnings = append(v.Warnings, fmt.Sprintf("amount above %d requires customer confirmation", AutoVerifyLimitMinor))
	}

	return v
}

// ValidateSalesTransaction checks the sale against the catalog and returns
// the computed total.
func (s *FraudService) ValidateSalesTransaction(productCode string, unitPriceMinor, quantity int64, catalog map[string]int64) SalesValidation {
	v := SalesValidation{Valid: true}

	if unitPriceMinor <= 0 {
		v.Valid = false
		v.Errors = append(v.Errors, fmt.Sprintf("price must be positive, got %d", unitPriceMinor))
	}
	if quantity <= 0 {
		v.Valid = false
		v.Errors = append(v.Errors, fmt.Sprintf("quantity must be positive, got %d", quantity))
	}
	if productCode == "" {
		v.Valid = false
		v.Errors = append(v.Errors, "product code is required")
	}

	total := unitPriceMinor * quantity
	if total > HardAmountCeilingMinor {
		v.Valid = false
		v.Errors = append(v.Errors, fmt.Sprintf("sale total %d exceeds ceiling %d", total, HardAmountCeilingMinor))
	}

	// The spoken amount is recorded even when validation rejects the sale.
	v.TotalAmountMinor = total

	if v.Valid {
		if _, ok := catalog[productCode]; !ok {
			v.Warnings = append(v.Warnings, fmt.Sprintf("product %q not in catalog", productCode))
		}
	}

	return v
}
