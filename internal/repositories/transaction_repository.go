package repositories

import (
	"log"
	"sync"

	"github.com/doujindesk/doujindesk-api/internal/models"
)

type financialStoreSnapshot struct {
	Transactions []*models.Transaction `json:"transactions"`
}

// TransactionRepository is the financial ledger, snapshotted under
// FinancialStoreKey. Entries are append-only.
type TransactionRepository struct {
	mu           sync.RWMutex
	transactions []*models.Transaction
	persister    Persister
	logger       *log.Logger
}

func NewTransactionRepository(persister Persister, logger *log.Logger) *TransactionRepository {
	return &TransactionRepository{persister: persister, logger: logger}
}

func (r *TransactionRepository) Restore() error {
	var snap financialStoreSnapshot
	found, err := r.persister.Load(FinancialStoreKey, &snap)
	if err != nil || !found {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.transactions = snap.Transactions
	r.logger.Printf("✅ Financial ledger restored: %d transactions", len(r.transactions))
	return nil
}

func (r *TransactionRepository) Create(tx *models.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := *tx
	r.transactions = append(r.transactions, &c)

	if err := r.persister.Save(FinancialStoreKey, financialStoreSnapshot{Transactions: r.transactions}); err != nil {
		r.logger.Printf("⚠️  Financial ledger snapshot failed: %v", err)
	}
	return nil
}

func (r *TransactionRepository) FindByID(id string) (*models.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, tx := range r.transactions {
		if tx.ID == id {
			c := *tx
			return &c, nil
		}
	}
	return nil, models.ErrTransactionNotFound
}

// List returns transactions in insertion order. An empty txType returns all.
func (r *TransactionRepository) List(txType models.TransactionType) []*models.Transaction {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*models.Transaction{}
	for _, tx := range r.transactions {
		if txType != "" && tx.Type != txType {
			continue
		}
		c := *tx
		result = append(result, &c)
	}
	return result
}
