package settlements

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"splitease/internal/api/handlers"
	"splitease/internal/models"
	"splitease/internal/notify"
	"splitease/internal/repositories/sqlconnect"
	"splitease/internal/services"
	"splitease/internal/settlement"
	"splitease/pkg/utils"
)

func settlementService() (*services.SettlementService, bool) {
	db := sqlconnect.DB
	if db == nil {
		utils.Logger.Error("DB is not initialized")
		return nil, false
	}
	wrapped := services.NewDB(db)
	return services.NewSettlementService(wrapped, notify.NewDBNotifier(db)), true
}

// action runs the shared plumbing for the lifecycle endpoints: method check,
// auth, id parsing, timeout, error mapping.
func action(w http.ResponseWriter, r *http.Request, run func(ctx context.Context, svc *services.SettlementService, userID, settlementID int) (any, error)) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	svc, ok := settlementService()
	if !ok {
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	userID, err := handlers.UserIDFromRequest(r)
	if err != nil {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	settlementID, err := handlers.PathID(r, "id")
	if err != nil {
		utils.WriteError(w, "invalid settlement id", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	result, err := run(ctx, svc, userID, settlementID)
	if err != nil {
		writeSettlementError(w, err)
		return
	}
	utils.WriteJSON(w, result)
}

// FUNC TO RECORD A PARTIAL OR FULL PAYMENT
func RecordPaymentHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	type request struct {
		Amount decimal.Decimal `json:"amount"`
	}
	var req request
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if req.Amount.LessThanOrEqual(decimal.Zero) {
		utils.WriteError(w, "amount must be greater than 0", http.StatusBadRequest)
		return
	}

	action(w, r, func(ctx context.Context, svc *services.SettlementService, userID, settlementID int) (any, error) {
		res, err := svc.RecordPayment(ctx, userID, settlementID, req.Amount)
		if err != nil {
			return nil, err
		}
		message := "partial payment recorded"
		if res.Completed {
			message = "payment complete, awaiting receiver confirmation"
		}
		return map[string]any{
			"status":     "success",
			"message":    message,
			"reference":  res.Reference,
			"settlement": res.Settlement,
		}, nil
	})
}

// FUNC TO MARK THE FULL BALANCE PAID
func MarkPaidHandler(w http.ResponseWriter, r *http.Request) {
	action(w, r, func(ctx context.Context, svc *services.SettlementService, userID, settlementID int) (any, error) {
		s, err := svc.MarkPaid(ctx, userID, settlementID)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"status":     "success",
			"message":    "marked as paid, awaiting receiver confirmation",
			"settlement": s,
		}, nil
	})
}

// FUNC FOR THE RECEIVER TO CONFIRM PAYMENT
func ConfirmHandler(w http.ResponseWriter, r *http.Request) {
	action(w, r, func(ctx context.Context, svc *services.SettlementService, userID, settlementID int) (any, error) {
		s, err := svc.Confirm(ctx, userID, settlementID)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"status":     "success",
			"message":    "settlement confirmed as paid",
			"settlement": s,
		}, nil
	})
}

// FUNC TO REQUEST CANCELLATION
func RequestCancelHandler(w http.ResponseWriter, r *http.Request) {
	action(w, r, func(ctx context.Context, svc *services.SettlementService, userID, settlementID int) (any, error) {
		s, err := svc.RequestCancel(ctx, userID, settlementID)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"status":     "success",
			"message":    "cancellation requested",
			"settlement": s,
		}, nil
	})
}

// FUNC FOR THE RECEIVER TO APPROVE CANCELLATION
func ApproveCancelHandler(w http.ResponseWriter, r *http.Request) {
	action(w, r, func(ctx context.Context, svc *services.SettlementService, userID, settlementID int) (any, error) {
		s, err := svc.ApproveCancel(ctx, userID, settlementID)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"status":     "success",
			"message":    "settlement cancelled",
			"settlement": s,
		}, nil
	})
}

// FUNC FOR THE RECEIVER TO REJECT CANCELLATION
func RejectCancelHandler(w http.ResponseWriter, r *http.Request) {
	action(w, r, func(ctx context.Context, svc *services.SettlementService, userID, settlementID int) (any, error) {
		s, err := svc.RejectCancel(ctx, userID, settlementID)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"status":     "success",
			"message":    "cancellation rejected",
			"settlement": s,
		}, nil
	})
}

// FUNC FOR THE RECEIVER TO NUDGE THE DEBTOR
func SendReminderHandler(w http.ResponseWriter, r *http.Request) {
	action(w, r, func(ctx context.Context, svc *services.SettlementService, userID, settlementID int) (any, error) {
		if err := svc.SendReminder(ctx, userID, settlementID); err != nil {
			return nil, err
		}
		return map[string]any{
			"status":  "success",
			"message": "reminder sent",
		}, nil
	})
}

// FUNC TO LIST THE USER'S SETTLEMENTS AND BALANCES
func ListSettlementsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	svc, ok := settlementService()
	if !ok {
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
		return
	}

	userID, err := handlers.UserIDFromRequest(r)
	if err != nil {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	groupID := 0
	if raw := r.URL.Query().Get("group_id"); raw != "" {
		groupID, err = strconv.Atoi(raw)
		if err != nil || groupID <= 0 {
			utils.WriteError(w, "invalid group_id", http.StatusBadRequest)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	list, youOwe, owedToYou, err := svc.ListForUser(ctx, userID, groupID)
	if err != nil {
		writeSettlementError(w, err)
		return
	}
	if list == nil {
		list = []models.Settlement{}
	}

	utils.WriteJSON(w, map[string]any{
		"status":      "success",
		"settlements": list,
		"you_owe":     youOwe.StringFixed(2),
		"owed_to_you": owedToYou.StringFixed(2),
	})
}

func writeSettlementError(w http.ResponseWriter, err error) {
	var overpay *settlement.OverpaymentError
	var perm *settlement.PermissionError
	var stale *settlement.StaleStateError
	switch {
	case errors.Is(err, settlement.ErrNotFound):
		utils.WriteError(w, "settlement not found", http.StatusNotFound)
	case errors.As(err, &overpay):
		utils.WriteError(w, overpay.Error(), http.StatusBadRequest)
	case errors.As(err, &perm):
		utils.WriteError(w, perm.Error(), http.StatusForbidden)
	case errors.As(err, &stale):
		utils.WriteError(w, stale.Error(), http.StatusConflict)
	case errors.Is(err, context.DeadlineExceeded):
		utils.WriteError(w, "request timed out", http.StatusGatewayTimeout)
	default:
		utils.Logger.WithError(err).Error("settlement request failed")
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
	}
}
