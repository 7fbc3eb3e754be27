package routers

import (
	"net/http"
)

func MainRouter() *http.ServeMux {

	mux := http.NewServeMux()

	eRouter := expensesRouter()
	mux.Handle("/expenses/", eRouter)

	sRouter := settlementsRouter()
	mux.Handle("/settlements/", sRouter)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return mux
}
