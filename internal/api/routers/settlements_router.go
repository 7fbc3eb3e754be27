package routers

import (
	"net/http"

	"splitease/internal/api/handlers/settlements"
)

func settlementsRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/settlements/", settlements.ListSettlementsHandler)

	mux.HandleFunc("/settlements/{id}/payment", settlements.RecordPaymentHandler)

	mux.HandleFunc("/settlements/{id}/markpaid", settlements.MarkPaidHandler)

	mux.HandleFunc("/settlements/{id}/confirm", settlements.ConfirmHandler)

	mux.HandleFunc("/settlements/{id}/cancel/request", settlements.RequestCancelHandler)

	mux.HandleFunc("/settlements/{id}/cancel/approve", settlements.ApproveCancelHandler)

	mux.HandleFunc("/settlements/{id}/cancel/reject", settlements.RejectCancelHandler)

	mux.HandleFunc("/settlements/{id}/remind", settlements.SendReminderHandler)

	return mux
}
