// internal/service/tx.go
package service

import (
	"context"
	"fmt"

	"shopbot/internal/repository"
	"shopbot/pkg/db"
)

// TxManager bundles what a service needs to run an atomic unit. The
// functions are injected so unit tests can observe commit and rollback.
type TxManager struct {
	Beginner   db.DBTxBeginner
	BeginTx    db.BeginTxFunc
	CommitTx   db.CommitTxFunc
	RollbackTx db.RollbackTxFunc
}

// NewTxManager returns a TxManager backed by the pkg/db helpers.
func NewTxManager(beginner db.DBTxBeginner) TxManager {
	return TxManager{
		Beginner:   beginner,
		BeginTx:    db.BeginTx,
		CommitTx:   db.CommitTx,
		RollbackTx: db.RollbackTx,
	}
}

// begin starts a transaction and exposes it as a DBExecutor for repositories.
func (m TxManager) begin(ctx context.Context) (db.TxController, repository.DBExecutor, error) {
	txController, err := m.BeginTx(ctx, m.Beginner)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		m.RollbackTx(txController)
		return nil, nil, fmt.Errorf("transaction controller does not implement DBExecutor")
	}
	return txController, txExecutor, nil
}
