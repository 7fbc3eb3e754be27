package expenses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"splitease/internal/api/handlers"
	"splitease/internal/notify"
	"splitease/internal/repositories/sqlconnect"
	"splitease/internal/services"
	"splitease/internal/split"
	"splitease/pkg/utils"
)

func expenseService() (*services.ExpenseService, bool) {
	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		return nil, false
	}
	wrapped := services.NewDB(db)
	return services.NewExpenseService(wrapped, notify.NewDBNotifier(db)), true
}

// FUNC TO CREATE AN EXPENSE AND UPDATE SETTLEMENTS
func CreateExpenseHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	svc, ok := expenseService()
	if !ok {
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	userID, err := handlers.UserIDFromRequest(r)
	if err != nil {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	type payerInput struct {
		UserID int             `json:"user_id"`
		Amount decimal.Decimal `json:"amount"`
	}
	type shareInput struct {
		UserID int             `json:"user_id"`
		Amount decimal.Decimal `json:"amount"`
	}
	type request struct {
		GroupID      int             `json:"group_id"`
		Title        string          `json:"title"`
		Description  string          `json:"description"`
		TotalAmount  decimal.Decimal `json:"total_amount"`
		ExpenseDate  string          `json:"expense_date"`
		SplitMode    string          `json:"split_mode"`
		Payers       []payerInput    `json:"payers"`
		CustomShares []shareInput    `json:"custom_shares"`
	}

	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.Title == "" {
		utils.WriteError(w, "title is required", http.StatusBadRequest)
		return
	}
	if req.TotalAmount.LessThanOrEqual(decimal.Zero) {
		utils.WriteError(w, "total amount must be greater than 0", http.StatusBadRequest)
		return
	}
	if len(req.Payers) == 0 {
		utils.WriteError(w, "at least one payer is required", http.StatusBadRequest)
		return
	}
	if req.ExpenseDate == "" {
		req.ExpenseDate = time.Now().Format("2006-01-02")
	}
	if _, err := time.Parse("2006-01-02", req.ExpenseDate); err != nil {
		utils.WriteError(w, "expense date must be YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	mode := split.Mode(req.SplitMode)
	if mode != split.ModeEqual && mode != split.ModeCustom {
		utils.WriteError(w, "split mode must be 'equal' or 'custom'", http.StatusBadRequest)
		return
	}

	payers := make(map[int]decimal.Decimal, len(req.Payers))
	for _, p := range req.Payers {
		payers[p.UserID] = payers[p.UserID].Add(p.Amount)
	}
	shares := make(map[int]decimal.Decimal, len(req.CustomShares))
	for _, s := range req.CustomShares {
		shares[s.UserID] = shares[s.UserID].Add(s.Amount)
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	expense, err := svc.CreateExpense(ctx, services.CreateExpenseInput{
		GroupID:      req.GroupID,
		ActorID:      userID,
		Title:        req.Title,
		Description:  req.Description,
		TotalAmount:  req.TotalAmount,
		ExpenseDate:  req.ExpenseDate,
		SplitMode:    mode,
		Payers:       payers,
		CustomShares: shares,
	})
	if err != nil {
		writeExpenseError(w, err)
		return
	}

	utils.WriteJSON(w, map[string]any{
		"status":  "success",
		"message": "expense created",
		"expense": expense,
	})
}

// FUNC TO LIST A GROUP'S EXPENSES
func ListGroupExpensesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	svc, ok := expenseService()
	if !ok {
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	userID, err := handlers.UserIDFromRequest(r)
	if err != nil {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	groupID, err := handlers.PathID(r, "group_id")
	if err != nil {
		utils.WriteError(w, "invalid group id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, err := svc.ListGroupExpenses(ctx, userID, groupID)
	if err != nil {
		writeExpenseError(w, err)
		return
	}

	utils.WriteJSON(w, map[string]any{
		"status":   "success",
		"expenses": list,
	})
}

// FUNC TO GET ONE EXPENSE WITH PAYERS AND SPLITS
func GetExpenseHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	svc, ok := expenseService()
	if !ok {
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	userID, err := handlers.UserIDFromRequest(r)
	if err != nil {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	expenseID, err := handlers.PathID(r, "id")
	if err != nil {
		utils.WriteError(w, "invalid expense id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	expense, payers, splits, err := svc.GetExpense(ctx, userID, expenseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			utils.WriteError(w, "expense not found", http.StatusNotFound)
			return
		}
		writeExpenseError(w, err)
		return
	}

	utils.WriteJSON(w, map[string]any{
		"status":  "success",
		"expense": expense,
		"payers":  payers,
		"splits":  splits,
	})
}

func writeExpenseError(w http.ResponseWriter, err error) {
	var mismatch *split.SplitMismatchError
	var invalid *split.InvalidSplitError
	switch {
	case errors.As(err, &mismatch):
		utils.WriteError(w, mismatch.Error(), http.StatusBadRequest)
	case errors.As(err, &invalid):
		utils.WriteError(w, invalid.Error(), http.StatusBadRequest)
	case errors.Is(err, services.ErrGroupNotFound):
		utils.WriteError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, services.ErrNotGroupMember):
		utils.WriteError(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, context.DeadlineExceeded):
		utils.WriteError(w, "request timed out", http.StatusGatewayTimeout)
	default:
		utils.Logger.WithError(err).Error("expense request failed")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
	}
}
