package http

import (
	"net/http"

	"finlink/internal/web"
)

// HandleHealth returns a simple health check response.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// HandleHomePage serves the dashboard.
// Dev only - static HTML file serving.
func HandleHomePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.ServeFileFS(w, r, web.FS, "dashboard.html")
}

// HandleSignInPage serves the sign-in page.
func HandleSignInPage(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, web.FS, "sign-in.html")
}

// HandleSignUpPage serves the sign-up page.
func HandleSignUpPage(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, web.FS, "sign-up.html")
}

// HandleMyBanksPage serves the linked accounts page.
func HandleMyBanksPage(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, web.FS, "my-banks.html")
}

// HandleTransactionHistoryPage serves the transaction history page.
func HandleTransactionHistoryPage(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, web.FS, "transaction-history.html")
}

// HandlePaymentTransferPage serves the transfer form page.
func HandlePaymentTransferPage(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, web.FS, "payment-transfer.html")
}
