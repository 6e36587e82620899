package service

import (
	"context"
	"fmt"

	"github.com/ecanovas/tourbook/internal/domain"
	"github.com/ecanovas/tourbook/internal/repo"
)

// ExportService produces the flat reservation export. Each booking becomes
// one row with its reservation's fields repeated; reservations without
// bookings still emit one row with empty booking columns.
type ExportService struct {
	export repo.ExportRepo
}

func NewExportService(export repo.ExportRepo) *ExportService {
	return &ExportService{export: export}
}

// Rows returns every export row. Always returns a non-nil slice.
func (s *ExportService) Rows(ctx context.Context) ([]domain.ExportRow, error) {
	rows, err := s.export.Rows(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Rows: %w", err)
	}
	if rows == nil {
		rows = []domain.ExportRow{}
	}
	return rows, nil
}
