package usecase

import (
	"context"
	"time"

	"github.com/jhoicas/procurement-api/internal/domain/entity"
	"github.com/jhoicas/procurement-api/internal/domain/repository"
)

// RequisitionDocument datos necesarios para imprimir una requisición de compra.
type RequisitionDocument struct {
	View        *repository.RequestView
	History     []*entity.RequestEvent
	GeneratedAt time.Time
}

// RequisitionPDFGenerator puerto de salida para la representación impresa.
type RequisitionPDFGenerator interface {
	GenerateRequisitionPDF(ctx context.Context, doc RequisitionDocument) ([]byte, error)
}
