package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/status", handler.GetStatus)
	mux.HandleFunc("GET /v1/fixtures", handler.ListWeekFixtures)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/table", handler.GetLeagueTable)
	mux.HandleFunc("GET /v1/teams/{teamID}", handler.GetTeam)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	registerAuthorizedCareerRoutes(mux, handler, verifier)
	registerAuthorizedMatchRoutes(mux, handler, verifier)
	registerAuthorizedTransferRoutes(mux, handler, verifier)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/tick", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunWindowTickJob)))
	mux.Handle("POST /v1/internal/jobs/retirement-sweep", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRetirementSweepJob)))
	mux.Handle("POST /v1/internal/jobs/transfer-refresh", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunTransferRefreshJob)))
}

func registerAuthorizedCareerRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/careers", RequireAuth(verifier, http.HandlerFunc(handler.CreateCareer)))
	mux.Handle("GET /v1/careers/me", RequireAuth(verifier, http.HandlerFunc(handler.GetMyCareer)))
	mux.Handle("POST /v1/careers/me/train", RequireAuth(verifier, http.HandlerFunc(handler.TrainMyCareer)))
}

func registerAuthorizedMatchRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/fixtures/{fixtureID}/match", RequireAuth(verifier, http.HandlerFunc(handler.StartMatch)))
	mux.Handle("GET /v1/fixtures/{fixtureID}/match", RequireAuth(verifier, http.HandlerFunc(handler.GetActiveMatch)))
	mux.Handle("GET /v1/prompts", RequireAuth(verifier, http.HandlerFunc(handler.ListMyPrompts)))
	mux.Handle("POST /v1/prompts/{promptID}/answer", RequireAuth(verifier, http.HandlerFunc(handler.AnswerPrompt)))
}

func registerAuthorizedTransferRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/transfers/offers", RequireAuth(verifier, http.HandlerFunc(handler.ListMyOffers)))
	mux.Handle("POST /v1/transfers/offers/{offerID}/accept", RequireAuth(verifier, http.HandlerFunc(handler.AcceptOffer)))
	mux.Handle("GET /v1/transfers/history", RequireAuth(verifier, http.HandlerFunc(handler.GetMyTransferHistory)))
}
