package utils

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// NormalizeTranscript collapses whitespace and lower-cases a spoken-transaction
// transcript so that trivially different captures hash identically.
func NormalizeTranscript(transcript string) string {
	return strings.ToLower(strings.Join(strings.Fields(transcript), " "))
}

// CalculateTranscriptHash returns the SHA-256 of the normalized transcript as
// 64 lowercase hex characters. Deterministic for equal normalized content.
func CalculateTranscriptHash(transcript string) string {
	sum := sha256.Sum256([]byte(NormalizeTranscript(transcript)))
	return hex.EncodeToString(sum[:])
}

// CalculateBatchHash is the content hash committed for a daily sales batch.
func CalculateBatchHash(shopkeeperID, date string, totalAmountMinor int64, transactionCount int) string {
	payload := fmt.Sprintf("%s|%s|%d|%d", shopkeeperID, date, totalAmountMinor, transactionCount)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

func GenerateSecureToken(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("invalid token length")
	}

	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}

	return hex.EncodeToString(bytes), nil
}
