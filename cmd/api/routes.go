package main

import (
	"log"
	"net/http"

	httphandlers "finlink/internal/interfaces/http"
	"finlink/internal/shared/config"
	"finlink/internal/shared/middleware"
)

// SetupRoutes configures all HTTP routes and returns the final handler with middleware.
func SetupRoutes(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := http.NewServeMux()

	// Pages (dev only), guarded by the session gate below
	mux.HandleFunc("/", httphandlers.HandleHomePage)
	mux.HandleFunc("/my-banks", httphandlers.HandleMyBanksPage)
	mux.HandleFunc("/transaction-history", httphandlers.HandleTransactionHistoryPage)
	mux.HandleFunc("/payment-transfer", httphandlers.HandlePaymentTransferPage)
	mux.HandleFunc("/sign-in", httphandlers.HandleSignInPage)
	mux.HandleFunc("/sign-up", httphandlers.HandleSignUpPage)

	// Health check
	mux.HandleFunc("/health", httphandlers.HandleHealth)

	// Public API routes
	mux.HandleFunc("/api/auth/sign-up", deps.AuthHandler.HandleSignUp)
	mux.HandleFunc("/api/auth/sign-in", deps.AuthHandler.HandleSignIn)
	mux.HandleFunc("/api/auth/logout", deps.AuthHandler.HandleLogout)

	// Session resolution is public: guests get a null user, not a 401
	mux.HandleFunc("/api/users/me", deps.UserHandler.HandleMe)

	// Protected routes
	authMiddleware := middleware.Auth(deps.Tokens)

	mux.Handle("/api/plaid/link-token", authMiddleware(http.HandlerFunc(deps.BankHandler.HandleLinkToken)))
	mux.Handle("/api/plaid/exchange", authMiddleware(http.HandlerFunc(deps.BankHandler.HandleExchange)))
	mux.Handle("/api/accounts", authMiddleware(http.HandlerFunc(deps.BankHandler.HandleListAccounts)))
	mux.Handle("/api/accounts/{id}", authMiddleware(http.HandlerFunc(deps.BankHandler.HandleAccountByID)))
	mux.Handle("/api/transfers", authMiddleware(http.HandlerFunc(deps.TransferHandler.HandleCreateTransfer)))

	// Pages go through the session gate; API and asset paths are exempt
	handler := middleware.SessionGate(deps.Tokens)(mux)

	// Apply global middleware
	handler = middleware.Logging(middleware.CORS(cfg.Server.AllowedHosts)(handler))

	if cfg.Telemetry.Enabled {
		handler = middleware.Telemetry(middleware.Tracing(handler))
	}

	// Apply security middleware when TLS is enabled
	if cfg.TLS.Enabled {
		handler = middleware.HSTS(middleware.SecureCookies(handler))
		log.Println("TLS security middleware enabled (HSTS + SecureCookies)")
	}

	return handler
}
