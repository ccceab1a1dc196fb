// Package id generates the prefixed identifiers used for stored records.
package id

import (
	"fmt"
	"strconv"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// orderSuffixAlphabet keeps order IDs lowercase alphanumeric like payment provider receipts.
const orderSuffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Generate creates a prefixed unique ID using NanoID.
// Format: prefix-nanoid (e.g., "book-V1StGXR8_Z5jdHi6B-myT").
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// GenerateOrderID creates a payment order identifier of the form order_<unix-millis>_<suffix>.
func GenerateOrderID(now time.Time) (string, error) {
	suffix, err := gonanoid.Generate(orderSuffixAlphabet, 9)
	if err != nil {
		return "", fmt.Errorf("generate order suffix: %w", err)
	}
	return "order_" + strconv.FormatInt(now.UnixMilli(), 10) + "_" + suffix, nil
}
