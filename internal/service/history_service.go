package service

import (
	"context"
	"time"

	"github.com/owaste/rewards-service/internal/catalog"
	"github.com/owaste/rewards-service/internal/domain"
	"github.com/owaste/rewards-service/internal/history"
	"github.com/owaste/rewards-service/internal/repository"
	apperrors "github.com/owaste/rewards-service/pkg/util/errorutil"
)

// statsWasteOrder is the display order of per-material totals. Catalog
// materials not listed follow in catalog order.
var statsWasteOrder = []string{"plastic", "metal", "paper", "glass"}

// HistoryService serves the transaction history screen.
type HistoryService struct {
	ledger  repository.LedgerRepository
	catalog *catalog.Catalog
	now     func() time.Time
}

// NewHistoryService constructs the service.
func NewHistoryService(ledger repository.LedgerRepository, cat *catalog.Catalog) *HistoryService {
	return &HistoryService{ledger: ledger, catalog: cat, now: time.Now}
}

// List returns the member's entries matching filter, newest first.
func (s *HistoryService) List(ctx context.Context, userID string, filter history.Filter) ([]domain.Transaction, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	txns, err := s.ledger.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return filter.Apply(txns), nil
}

// Stats aggregates the member's full ledger.
func (s *HistoryService) Stats(ctx context.Context, userID string) (history.Stats, error) {
	txns, err := s.ledger.ListByUser(ctx, userID)
	if err != nil {
		return history.Stats{}, err
	}
	return history.Compute(txns, s.wasteOrder(), s.now()), nil
}

// Export renders the filtered ledger as an XLSX workbook.
func (s *HistoryService) Export(ctx context.Context, userID string, filter history.Filter) ([]byte, error) {
	txns, err := s.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	return history.ExportXLSX(txns)
}

func (s *HistoryService) wasteOrder() []string {
	order := append([]string(nil), statsWasteOrder...)
	seen := make(map[string]bool, len(order))
	for _, id := range order {
		seen[id] = true
	}
	for _, wt := range s.catalog.WasteTypes() {
		if !seen[wt.ID] {
			order = append(order, wt.ID)
		}
	}
	return order
}

func validateFilter(f history.Filter) error {
	switch domain.TransactionType(f.Type) {
	case "", history.All, domain.TransactionEarned, domain.TransactionRedeemed, domain.TransactionConverted:
	default:
		return apperrors.NewValidationError("unknown transaction type", map[string]any{"type": f.Type})
	}
	switch domain.TransactionStatus(f.Status) {
	case "", history.All, domain.StatusCompleted, domain.StatusProcessing, domain.StatusFailed:
	default:
		return apperrors.NewValidationError("unknown status", map[string]any{"status": f.Status})
	}
	return nil
}
