package dto

import (
	"github.com/jhoicas/procurement-api/internal/domain/entity"
	"github.com/jhoicas/procurement-api/internal/domain/repository"
	"github.com/jhoicas/procurement-api/pkg/money"
)

// ToRequestResponse mapea una solicitud.
func ToRequestResponse(pr *entity.PurchaseRequest) *RequestResponse {
	if pr == nil {
		return nil
	}
	return &RequestResponse{
		ID:            pr.ID,
		RequesterID:   pr.RequesterID,
		BudgetID:      pr.BudgetID,
		DepartmentID:  pr.DepartmentID,
		Amount:        pr.Amount,
		AmountDisplay: money.FormatUSD(pr.Amount),
		Status:        string(pr.Status),
		Description:   pr.Description,
		Justification: pr.Justification,
		FundingSource: pr.FundingSource,
		RequestDate:   pr.RequestDate,
		ApprovedBy:    pr.ApprovedBy,
		CreatedAt:     pr.CreatedAt,
		UpdatedAt:     pr.UpdatedAt,
	}
}

// ToRequestViewResponse mapea la proyección desnormalizada.
func ToRequestViewResponse(v *repository.RequestView) *RequestViewResponse {
	if v == nil {
		return nil
	}
	return &RequestViewResponse{
		RequestResponse: *ToRequestResponse(&v.Request),
		Requester: RequesterSummary{
			ID:        v.Request.RequesterID,
			FirstName: v.RequesterFirstName,
			LastName:  v.RequesterLastName,
			Email:     v.RequesterEmail,
		},
		DepartmentName: v.DepartmentName,
		Budget: BudgetSummary{
			ID:               v.Request.BudgetID,
			FiscalYear:       v.FiscalYear,
			TotalAmount:      v.BudgetTotal,
			RemainingAmount:  v.BudgetRemaining,
			RemainingDisplay: money.FormatUSD(v.BudgetRemaining),
		},
		ApproverName: v.ApproverName,
	}
}

// ToRequestEventResponse mapea una entrada del historial.
func ToRequestEventResponse(e *entity.RequestEvent) RequestEventResponse {
	return RequestEventResponse{
		ID:         e.ID,
		Action:     string(e.Action),
		ActorID:    e.ActorID,
		FromStatus: string(e.FromStatus),
		ToStatus:   string(e.ToStatus),
		Amount:     e.Amount,
		OccurredAt: e.OccurredAt,
	}
}

// ToDepartmentResponse mapea un departamento.
func ToDepartmentResponse(d *entity.Department) *DepartmentResponse {
	if d == nil {
		return nil
	}
	return &DepartmentResponse{ID: d.ID, Name: d.Name, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt}
}

// ToBudgetResponse mapea un presupuesto.
func ToBudgetResponse(b *entity.Budget) *BudgetResponse {
	if b == nil {
		return nil
	}
	return &BudgetResponse{
		ID:               b.ID,
		DepartmentID:     b.DepartmentID,
		FiscalYear:       b.FiscalYear,
		TotalAmount:      b.TotalAmount,
		RemainingAmount:  b.RemainingAmount,
		TotalDisplay:     money.FormatUSD(b.TotalAmount),
		RemainingDisplay: money.FormatUSD(b.RemainingAmount),
		CreatedAt:        b.CreatedAt,
		UpdatedAt:        b.UpdatedAt,
	}
}

// ToUserResponse mapea un usuario sin exponer el hash.
func ToUserResponse(u *entity.User, roles []*entity.Role) *UserResponse {
	if u == nil {
		return nil
	}
	out := &UserResponse{
		ID:           u.ID,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		Email:        u.Email,
		DepartmentID: u.DepartmentID,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	for _, r := range roles {
		out.Roles = append(out.Roles, *ToRoleResponse(r))
	}
	return out
}

// ToRoleResponse mapea un rol.
func ToRoleResponse(r *entity.Role) *RoleResponse {
	if r == nil {
		return nil
	}
	return &RoleResponse{
		ID:             r.ID,
		Name:           r.Name,
		Description:    r.Description,
		MaxBudgetLimit: r.MaxBudgetLimit,
		CanApprove:     r.CanApprove,
	}
}

// ToSupplierResponse mapea un proveedor.
func ToSupplierResponse(s *entity.Supplier) *SupplierResponse {
	if s == nil {
		return nil
	}
	return &SupplierResponse{
		ID:             s.ID,
		Name:           s.Name,
		ContactEmail:   s.ContactEmail,
		ContactPhone:   s.ContactPhone,
		OnboardingDate: s.OnboardingDate,
		Status:         string(s.Status),
	}
}

// ToInvitationResponse mapea una invitación; withToken solo al emitirla.
func ToInvitationResponse(inv *entity.Invitation, withToken bool) *InvitationResponse {
	if inv == nil {
		return nil
	}
	out := &InvitationResponse{
		ID:           inv.ID,
		Email:        inv.Email,
		FirstName:    inv.FirstName,
		LastName:     inv.LastName,
		DepartmentID: inv.DepartmentID,
		RoleIDs:      inv.RoleIDs,
		Status:       string(inv.Status),
		ExpiresAt:    inv.ExpiresAt,
		AcceptedAt:   inv.AcceptedAt,
		CreatedAt:    inv.CreatedAt,
	}
	if withToken {
		out.Token = inv.Token
	}
	return out
}
