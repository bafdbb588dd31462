// Package query expone las lecturas filtradas y desnormalizadas de solicitudes.
// Nunca muta estado ni toma bloqueos.
package query

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/procurement-api/internal/application/dto"
	"github.com/jhoicas/procurement-api/internal/domain"
	"github.com/jhoicas/procurement-api/internal/domain/entity"
	"github.com/jhoicas/procurement-api/internal/domain/repository"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// RequestQueryUseCase listados y detalle de solicitudes.
type RequestQueryUseCase struct {
	repo    repository.RequestQueryRepository
	timeout time.Duration
}

// NewRequestQueryUseCase construye el caso de uso; timeout 0 = sin límite propio.
func NewRequestQueryUseCase(repo repository.RequestQueryRepository, timeout time.Duration) *RequestQueryUseCase {
	return &RequestQueryUseCase{repo: repo, timeout: timeout}
}

// List filtra por solicitante, departamento, estados y rango de fechas (AND),
// ordenado por request_date descendente.
func (uc *RequestQueryUseCase) List(ctx context.Context, f repository.RequestFilter) (*dto.RequestListResponse, error) {
	if err := validateFilter(&f); err != nil {
		return nil, err
	}
	ctx, cancel := uc.withTimeout(ctx)
	defer cancel()

	views, err := uc.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("listar solicitudes: %w", err)
	}
	total, err := uc.repo.Count(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("contar solicitudes: %w", err)
	}
	items := make([]dto.RequestViewResponse, 0, len(views))
	for _, v := range views {
		items = append(items, *dto.ToRequestViewResponse(v))
	}
	return &dto.RequestListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset, Total: total},
	}, nil
}

// Get devuelve la vista de una solicitud.
func (uc *RequestQueryUseCase) Get(ctx context.Context, id string) (*dto.RequestViewResponse, error) {
	ctx, cancel := uc.withTimeout(ctx)
	defer cancel()

	v, err := uc.repo.GetView(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener solicitud: %w", err)
	}
	if v == nil {
		return nil, fmt.Errorf("%w: solicitud %s", domain.ErrNotFound, id)
	}
	return dto.ToRequestViewResponse(v), nil
}

func (uc *RequestQueryUseCase) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if uc.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, uc.timeout)
}

func validateFilter(f *repository.RequestFilter) error {
	for _, s := range f.Statuses {
		if !s.IsValid() {
			return fmt.Errorf("%w: estado %q desconocido", domain.ErrInvalidInput, s)
		}
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return fmt.Errorf("%w: from posterior a to", domain.ErrInvalidInput)
	}
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return nil
}

// ParseStatuses convierte nombres de estado en valores del dominio.
func ParseStatuses(raw []string) ([]entity.RequestStatus, error) {
	out := make([]entity.RequestStatus, 0, len(raw))
	for _, r := range raw {
		s := entity.RequestStatus(r)
		if !s.IsValid() {
			return nil, fmt.Errorf("%w: estado %q desconocido", domain.ErrInvalidInput, r)
		}
		out = append(out, s)
	}
	return out, nil
}
