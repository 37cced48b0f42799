package ports

import "go.halyard.dev/halyard/internal/core/domain"

// ReceiptStore defines the interface for storing and retrieving build receipts.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type ReceiptStore interface {
	// Get retrieves the receipt for a given key.
	// Returns nil, nil if not found.
	Get(key string) (*domain.BuildReceipt, error)

	// Put stores the receipt.
	Put(receipt domain.BuildReceipt) error
}
