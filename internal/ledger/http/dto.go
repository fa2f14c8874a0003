package ledgerhttp

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quillbooks/quillbooks/internal/ledger/accounts"
	"github.com/quillbooks/quillbooks/internal/ledger/journals"
	"github.com/quillbooks/quillbooks/internal/ledger/periods"
	"github.com/quillbooks/quillbooks/internal/shared"
)

const dateLayout = "2006-01-02"

type createAccountRequest struct {
	Code       string `json:"code" validate:"required,max=20"`
	Name       string `json:"name" validate:"required,max=255"`
	NameAlt    string `json:"name_alt" validate:"max=255"`
	Type       string `json:"type" validate:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	Currency   string `json:"currency" validate:"omitempty,len=3"`
	ParentCode string `json:"parent_code"`
}

type updateAccountRequest struct {
	Code     *string `json:"code" validate:"omitempty,max=20"`
	Type     *string `json:"type" validate:"omitempty,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	Name     *string `json:"name" validate:"omitempty,max=255"`
	NameAlt  *string `json:"name_alt" validate:"omitempty,max=255"`
	IsActive *bool   `json:"is_active"`
}

type createPeriodRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

type entryLineRequest struct {
	AccountCode string          `json:"account_code" validate:"required"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Memo        string          `json:"memo" validate:"max=500"`
}

type createEntryRequest struct {
	Date    string             `json:"date" validate:"required,datetime=2006-01-02"`
	Memo    string             `json:"memo" validate:"max=500"`
	RefType string             `json:"ref_type"`
	RefID   string             `json:"ref_id" validate:"omitempty,uuid"`
	Lines   []entryLineRequest `json:"lines" validate:"required,min=2,dive"`
}

type reverseEntryRequest struct {
	Memo string `json:"memo" validate:"max=500"`
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

func (req createEntryRequest) toInput(id shared.Identity) (journals.CreateInput, error) {
	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return journals.CreateInput{}, err
	}
	in := journals.CreateInput{
		TenantID: id.TenantID,
		Date:     date,
		Memo:     req.Memo,
		RefType:  journals.RefType(req.RefType),
		ActorID:  id.ActorID,
	}
	if req.RefID != "" {
		refID, err := uuid.Parse(req.RefID)
		if err != nil {
			return journals.CreateInput{}, err
		}
		in.RefID = refID
	}
	for _, line := range req.Lines {
		in.Lines = append(in.Lines, journals.LineInput{
			AccountCode: line.AccountCode,
			Debit:       line.Debit,
			Credit:      line.Credit,
			Memo:        line.Memo,
		})
	}
	return in, nil
}

type accountResponse struct {
	ID        int64           `json:"id"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	NameAlt   string          `json:"name_alt,omitempty"`
	Type      string          `json:"type"`
	ParentID  *int64          `json:"parent_id,omitempty"`
	Level     int             `json:"level"`
	IsActive  bool            `json:"is_active"`
	IsSystem  bool            `json:"is_system"`
	Balance   decimal.Decimal `json:"balance"`
	Currency  string          `json:"currency"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func toAccountResponse(a accounts.Account) accountResponse {
	return accountResponse{
		ID:        a.ID,
		Code:      a.Code,
		Name:      a.Name,
		NameAlt:   a.NameAlt,
		Type:      string(a.Type),
		ParentID:  a.ParentID,
		Level:     a.Level,
		IsActive:  a.IsActive,
		IsSystem:  a.IsSystem,
		Balance:   a.Balance,
		Currency:  a.Currency,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

type treeNodeResponse struct {
	accountResponse
	Children []treeNodeResponse `json:"children,omitempty"`
}

func toTreeResponse(nodes []*accounts.TreeNode) []treeNodeResponse {
	out := make([]treeNodeResponse, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, treeNodeResponse{
			accountResponse: toAccountResponse(node.Account),
			Children:        toTreeResponse(node.Children),
		})
	}
	return out
}

type periodResponse struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	StartDate string     `json:"start_date"`
	EndDate   string     `json:"end_date"`
	Status    string     `json:"status"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
	ClosedBy  *int64     `json:"closed_by,omitempty"`
}

func toPeriodResponse(p periods.Period) periodResponse {
	return periodResponse{
		ID:        p.ID,
		Name:      p.Name,
		StartDate: p.StartDate.Format(dateLayout),
		EndDate:   p.EndDate.Format(dateLayout),
		Status:    string(p.Status),
		ClosedAt:  p.ClosedAt,
		ClosedBy:  p.ClosedBy,
	}
}

type entryLineResponse struct {
	ID        int64           `json:"id"`
	AccountID int64           `json:"account_id"`
	Debit     decimal.Decimal `json:"debit"`
	Credit    decimal.Decimal `json:"credit"`
	Memo      string          `json:"memo,omitempty"`
	Position  int             `json:"position"`
}

type entryResponse struct {
	ID           int64               `json:"id"`
	Number       int64               `json:"number"`
	Date         string              `json:"date"`
	Memo         string              `json:"memo,omitempty"`
	RefType      string              `json:"ref_type,omitempty"`
	RefID        uuid.UUID           `json:"ref_id"`
	PeriodID     int64               `json:"period_id"`
	Status       string              `json:"status"`
	CreatedBy    int64               `json:"created_by"`
	PostedBy     *int64              `json:"posted_by,omitempty"`
	PostedAt     *time.Time          `json:"posted_at,omitempty"`
	ReversedByID *int64              `json:"reversed_by_id,omitempty"`
	ReversalOfID *int64              `json:"reversal_of_id,omitempty"`
	TotalDebit   decimal.Decimal     `json:"total_debit"`
	TotalCredit  decimal.Decimal     `json:"total_credit"`
	Lines        []entryLineResponse `json:"lines,omitempty"`
}

func toEntryResponse(e journals.Entry) entryResponse {
	resp := entryResponse{
		ID:           e.ID,
		Number:       e.Number,
		Date:         e.Date.Format(dateLayout),
		Memo:         e.Memo,
		RefType:      string(e.RefType),
		RefID:        e.RefID,
		PeriodID:     e.PeriodID,
		Status:       string(e.Status),
		CreatedBy:    e.CreatedBy,
		PostedBy:     e.PostedBy,
		PostedAt:     e.PostedAt,
		ReversedByID: e.ReversedByID,
		ReversalOfID: e.ReversalOfID,
		TotalDebit:   e.TotalDebit,
		TotalCredit:  e.TotalCredit,
	}
	for _, line := range e.Lines {
		resp.Lines = append(resp.Lines, entryLineResponse{
			ID:        line.ID,
			AccountID: line.AccountID,
			Debit:     line.Debit,
			Credit:    line.Credit,
			Memo:      line.Memo,
			Position:  line.Position,
		})
	}
	return resp
}

type listResponse[T any] struct {
	Data       []T               `json:"data"`
	Pagination shared.Pagination `json:"pagination"`
}
