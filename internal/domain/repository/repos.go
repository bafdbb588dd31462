package repository

// Repos agrupa los repositorios atados a una misma unidad de trabajo (transacción).
type Repos struct {
	Departments   DepartmentRepository
	Budgets       BudgetRepository
	Reservations  ReservationRepository
	Users         UserRepository
	Roles         RoleRepository
	Suppliers     SupplierRepository
	Requests      PurchaseRequestRepository
	RequestEvents RequestEventRepository
	Invitations   InvitationRepository
}
