package http

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/procurement-api/internal/application/dto"
	"github.com/jhoicas/procurement-api/internal/application/procurement"
	"github.com/jhoicas/procurement-api/internal/application/query"
	"github.com/jhoicas/procurement-api/internal/application/usecase"
	"github.com/jhoicas/procurement-api/internal/domain/entity"
	"github.com/jhoicas/procurement-api/internal/domain/repository"
)

// RequestHandler maneja solicitudes de compra: alta, consulta, transiciones y PDF.
type RequestHandler struct {
	engine      *procurement.Engine
	queries     *query.RequestQueryUseCase
	requisition *usecase.RequisitionUseCase
}

// NewRequestHandler construye el handler.
func NewRequestHandler(engine *procurement.Engine, queries *query.RequestQueryUseCase, requisition *usecase.RequisitionUseCase) *RequestHandler {
	return &RequestHandler{engine: engine, queries: queries, requisition: requisition}
}

// Create godoc
// @Summary      Crear solicitud de compra
// @Tags         requests
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateRequestRequest  true  "presupuesto, monto y detalle"
// @Success      201   {object}  dto.RequestResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/requests [post]
func (h *RequestHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateRequestRequest
	if ok, err := decodeBody(c, &in); !ok {
		return err
	}
	draft := procurement.Draft{
		RequesterID:   GetUserID(c),
		BudgetID:      in.BudgetID,
		DepartmentID:  in.DepartmentID,
		Amount:        in.Amount,
		Description:   in.Description,
		Justification: in.Justification,
		FundingSource: in.FundingSource,
	}
	if in.RequestDate != nil {
		draft.RequestDate = *in.RequestDate
	}
	pr, err := h.engine.Create(c.Context(), draft)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToRequestResponse(pr))
}

// List godoc
// @Summary      Listar solicitudes
// @Description  Filtros combinados con AND; orden por fecha de solicitud descendente.
// @Tags         requests
// @Produce      json
// @Param        requester_id   query  string  false  "solicitante"
// @Param        department_id  query  string  false  "departamento"
// @Param        status         query  string  false  "estados separados por coma"
// @Param        from           query  string  false  "YYYY-MM-DD"
// @Param        to             query  string  false  "YYYY-MM-DD"
// @Param        limit          query  int     false  "por defecto 20, máximo 100"
// @Param        offset         query  int     false  "desplazamiento"
// @Success      200  {object}  dto.RequestListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/requests [get]
func (h *RequestHandler) List(c *fiber.Ctx) error {
	f := repository.RequestFilter{
		RequesterID:  c.Query("requester_id"),
		DepartmentID: c.Query("department_id"),
		Limit:        c.QueryInt("limit", 0),
		Offset:       c.QueryInt("offset", 0),
	}
	if raw := c.Query("status"); raw != "" {
		statuses, err := query.ParseStatuses(splitCSV(raw))
		if err != nil {
			return respondError(c, err)
		}
		f.Statuses = statuses
	}
	var err error
	if f.From, err = parseDateParam(c.Query("from"), false); err != nil {
		return badRequest(c, "VALIDATION", "from: formato esperado YYYY-MM-DD")
	}
	if f.To, err = parseDateParam(c.Query("to"), true); err != nil {
		return badRequest(c, "VALIDATION", "to: formato esperado YYYY-MM-DD")
	}

	out, err := h.queries.List(c.Context(), f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// Get godoc
// @Summary      Detalle de una solicitud
// @Tags         requests
// @Produce      json
// @Param        id   path  string  true  "id de la solicitud"
// @Success      200  {object}  dto.RequestViewResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/requests/{id} [get]
func (h *RequestHandler) Get(c *fiber.Ctx) error {
	out, err := h.queries.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(out)
}

// History devuelve las transiciones registradas de una solicitud.
// GET /api/requests/:id/history
func (h *RequestHandler) History(c *fiber.Ctx) error {
	events, err := h.engine.History(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.RequestEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, dto.ToRequestEventResponse(e))
	}
	return c.JSON(out)
}

// DownloadPDF godoc
// @Summary      Requisición de compra en PDF
// @Tags         requests
// @Produce      application/pdf
// @Param        id   path  string  true  "id de la solicitud"
// @Success      200
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/requests/{id}/pdf [get]
func (h *RequestHandler) DownloadPDF(c *fiber.Ctx) error {
	pdf, filename, err := h.requisition.DownloadRequisitionPDF(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdf)
}

type transitionFunc func(ctx context.Context, requestID string, actor procurement.Actor) (*entity.PurchaseRequest, error)

// transition adapta Approve/Reject/Start/Cancel/Complete a un handler POST /api/requests/:id/<acción>.
func (h *RequestHandler) transition(fn transitionFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		pr, err := fn(c.Context(), c.Params("id"), procurement.Actor{UserID: GetUserID(c)})
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(dto.ToRequestResponse(pr))
	}
}

func (h *RequestHandler) Approve() fiber.Handler  { return h.transition(h.engine.Approve) }
func (h *RequestHandler) Reject() fiber.Handler   { return h.transition(h.engine.Reject) }
func (h *RequestHandler) Start() fiber.Handler    { return h.transition(h.engine.Start) }
func (h *RequestHandler) Cancel() fiber.Handler   { return h.transition(h.engine.Cancel) }
func (h *RequestHandler) Complete() fiber.Handler { return h.transition(h.engine.Complete) }

func splitCSV(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseDateParam acepta YYYY-MM-DD o RFC3339. endOfDay extiende una fecha simple
// hasta el último instante del día para que "to" sea inclusivo.
func parseDateParam(raw string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
