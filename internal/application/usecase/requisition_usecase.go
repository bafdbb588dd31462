package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/procurement-api/internal/domain"
	"github.com/jhoicas/procurement-api/internal/domain/entity"
	"github.com/jhoicas/procurement-api/internal/domain/repository"
)

// RequisitionUseCase genera la requisición impresa de una solicitud aprobada.
type RequisitionUseCase struct {
	queries   repository.RequestQueryRepository
	events    repository.RequestEventRepository
	generator RequisitionPDFGenerator
	now       func() time.Time
}

// NewRequisitionUseCase construye el caso de uso inyectando todas sus dependencias.
func NewRequisitionUseCase(
	queries repository.RequestQueryRepository,
	events repository.RequestEventRepository,
	generator RequisitionPDFGenerator,
) *RequisitionUseCase {
	return &RequisitionUseCase{queries: queries, events: events, generator: generator, now: time.Now}
}

// DownloadRequisitionPDF arma el documento y lo entrega como PDF.
//
// Retorna:
//   - (pdfBytes, filename, nil)  si todo sale bien.
//   - domain.ErrNotFound         si la solicitud no existe.
//   - domain.ErrInvalidInput     si la solicitud no fue aprobada (Pending, Rejected o Cancelled).
func (uc *RequisitionUseCase) DownloadRequisitionPDF(ctx context.Context, requestID string) (pdfBytes []byte, filename string, err error) {
	view, err := uc.queries.GetView(ctx, requestID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: obtener solicitud: %w", err)
	}
	if view == nil {
		return nil, "", fmt.Errorf("%w: solicitud %s", domain.ErrNotFound, requestID)
	}

	switch view.Request.Status {
	case entity.RequestApproved, entity.RequestInProgress, entity.RequestCompleted:
	default:
		return nil, "", fmt.Errorf("%w: la solicitud está en estado %s, solo se imprimen solicitudes aprobadas",
			domain.ErrInvalidInput, view.Request.Status)
	}

	history, err := uc.events.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: historial: %w", err)
	}

	pdfBytes, err = uc.generator.GenerateRequisitionPDF(ctx, RequisitionDocument{
		View:        view,
		History:     history,
		GeneratedAt: uc.now(),
	})
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generación fallida: %w", err)
	}
	return pdfBytes, fmt.Sprintf("requisicion_%s.pdf", shortID(requestID)), nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
