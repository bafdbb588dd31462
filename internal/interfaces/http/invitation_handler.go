package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/procurement-api/internal/application/dto"
	"github.com/jhoicas/procurement-api/internal/application/onboarding"
)

// InvitationHandler emisión (admin) y canje (público) de invitaciones.
type InvitationHandler struct {
	svc *onboarding.Service
}

// NewInvitationHandler construye el handler.
func NewInvitationHandler(svc *onboarding.Service) *InvitationHandler {
	return &InvitationHandler{svc: svc}
}

// Issue godoc
// @Summary      Invitar a un usuario
// @Description  El token solo se devuelve en esta respuesta.
// @Tags         invitations
// @Accept       json
// @Produce      json
// @Param        body  body  dto.IssueInvitationRequest  true  "datos del invitado"
// @Success      201   {object}  dto.InvitationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/invitations [post]
func (h *InvitationHandler) Issue(c *fiber.Ctx) error {
	var in dto.IssueInvitationRequest
	if ok, err := decodeBody(c, &in); !ok {
		return err
	}
	inv, err := h.svc.Issue(c.Context(), onboarding.IssueInput{
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		DepartmentID: in.DepartmentID,
		RoleIDs:      in.RoleIDs,
	}, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToInvitationResponse(inv, true))
}

// ListPending GET /api/invitations
func (h *InvitationHandler) ListPending(c *fiber.Ctx) error {
	list, err := h.svc.ListPending(c.Context())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.InvitationResponse, 0, len(list))
	for _, inv := range list {
		out = append(out, *dto.ToInvitationResponse(inv, false))
	}
	return c.JSON(out)
}

// Cancel POST /api/invitations/:id/cancel
func (h *InvitationHandler) Cancel(c *fiber.Ctx) error {
	inv, err := h.svc.Cancel(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.ToInvitationResponse(inv, false))
}

// Lookup GET /api/invitations/:token (público). Datos para la página de registro.
func (h *InvitationHandler) Lookup(c *fiber.Ctx) error {
	view, err := h.svc.Lookup(c.Context(), c.Params("token"))
	if err != nil {
		return respondError(c, err)
	}
	out := dto.ToInvitationResponse(&view.Invitation, false)
	out.DepartmentName = view.DepartmentName
	out.InviterName = view.InviterName
	for _, r := range view.Roles {
		out.Roles = append(out.Roles, *dto.ToRoleResponse(r))
	}
	return c.JSON(out)
}

// Redeem godoc
// @Summary      Canjear invitación
// @Description  Crea el usuario con sus roles. Un segundo canje responde INVITATION_ALREADY_USED.
// @Tags         invitations
// @Accept       json
// @Produce      json
// @Param        token  path  string                       true  "token de la invitación"
// @Param        body   body  dto.RedeemInvitationRequest  true  "credencial"
// @Success      201    {object}  dto.UserResponse
// @Failure      404    {object}  dto.ErrorResponse
// @Failure      409    {object}  dto.ErrorResponse
// @Failure      410    {object}  dto.ErrorResponse
// @Router       /api/invitations/{token}/redeem [post]
func (h *InvitationHandler) Redeem(c *fiber.Ctx) error {
	var in dto.RedeemInvitationRequest
	if ok, err := decodeBody(c, &in); !ok {
		return err
	}
	user, err := h.svc.Redeem(c.Context(), c.Params("token"), in.Password)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToUserResponse(user, nil))
}
