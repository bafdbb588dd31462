package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/procurement-api/internal/application/usecase"
	"github.com/jhoicas/procurement-api/internal/domain/entity"
	"github.com/jhoicas/procurement-api/internal/domain/repository"
)

func TestGenerateRequisitionPDF(t *testing.T) {
	at := time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	doc := usecase.RequisitionDocument{
		View: &repository.RequestView{
			Request: entity.PurchaseRequest{
				ID: "3f2a9c1e-0000-4000-8000-000000000001", Amount: decimal.NewFromInt(600),
				Status: entity.RequestApproved, Description: "Microscopios", RequestDate: at,
			},
			RequesterFirstName: "Ana", RequesterLastName: "Ruiz",
			DepartmentName: "Physics", FiscalYear: 2024,
			BudgetTotal: decimal.NewFromInt(1000), BudgetRemaining: decimal.NewFromInt(400),
			ApproverName: "Carlos Díaz",
		},
		History: []*entity.RequestEvent{
			{Action: entity.ActionCreated, ToStatus: entity.RequestPending, Amount: decimal.NewFromInt(600), OccurredAt: at},
			{Action: entity.ActionApproved, FromStatus: entity.RequestPending, ToStatus: entity.RequestApproved, Amount: decimal.NewFromInt(600), OccurredAt: at.Add(time.Hour)},
		},
		GeneratedAt: at.Add(2 * time.Hour),
	}

	out, err := NewMarotoPDFGenerator().GenerateRequisitionPDF(context.Background(), doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGenerateRequisitionPDF_SinVista(t *testing.T) {
	_, err := NewMarotoPDFGenerator().GenerateRequisitionPDF(context.Background(), usecase.RequisitionDocument{})
	assert.Error(t, err)
}

func TestRequisitionNumber(t *testing.T) {
	assert.Equal(t, "REQ-3f2a9c1e", requisitionNumber("3f2a9c1e-0000-4000-8000-000000000001"))
	assert.Equal(t, "REQ-abc", requisitionNumber("abc"))
}
