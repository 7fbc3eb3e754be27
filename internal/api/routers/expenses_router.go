package routers

import (
	"net/http"

	"splitease/internal/api/handlers/expenses"
)

func expensesRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/expenses/create", expenses.CreateExpenseHandler)

	mux.HandleFunc("/expenses/details/{id}", expenses.GetExpenseHandler)

	mux.HandleFunc("/expenses/{group_id}", expenses.ListGroupExpensesHandler)

	return mux
}
