package service

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/vyrodovalexey/quotestore/internal/model"
)

// ArchiveInactiveItems moves every INACTIVE quote to ARCHIVED and returns how
// many were written.
//
// This is a read-modify-write over a snapshot and is not atomic. A write to
// the same quote between the read and the save is overwritten (last write
// wins), and a quote deleted in that window is stored again as ARCHIVED.
func (s *QuoteService) ArchiveInactiveItems() (int, error) {
	inactive := s.FindByStatus(model.StatusInactive)
	for i := range inactive {
		inactive[i].Status = model.StatusArchived
	}

	saved, err := s.repo.SaveAll(inactive)
	archivedQuotesTotal.Add(float64(len(saved)))
	if len(saved) > 0 {
		s.afterWrite(model.NewBulkEvent(model.EventQuotesArchived, len(saved)))
	}
	if err != nil {
		return len(saved), fmt.Errorf("archive inactive quotes: %w", err)
	}

	s.logger.Info("inactive quotes archived", zap.Int("count", len(saved)))
	return len(saved), nil
}
