package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/rankings", handler.ListRankings)
	mux.HandleFunc("GET /v1/athletes", handler.ListAthletes)
	mux.HandleFunc("GET /v1/athletes/{athleteID}", handler.GetAthlete)
	mux.HandleFunc("GET /v1/athletes/{athleteID}/results", handler.ListAthleteResults)
	mux.HandleFunc("GET /v1/athletes/{athleteID}/history", handler.ListAthleteHistory)
	mux.HandleFunc("GET /v1/events/{eventID}", handler.GetEvent)
	mux.HandleFunc("GET /v1/events/{eventID}/results", handler.ListEventResults)
	mux.HandleFunc("GET /v1/seasons", handler.ListSeasons)
	mux.HandleFunc("GET /v1/seasons/active", handler.GetActiveSeason)
	mux.HandleFunc("GET /v1/seasons/{seasonID}", handler.GetSeason)
	mux.HandleFunc("GET /v1/seasons/{seasonID}/events", handler.ListSeasonEvents)
	mux.HandleFunc("GET /v1/seasons/{seasonID}/snapshot", handler.ListSeasonSnapshot)
	mux.HandleFunc("GET /v1/demotion-requests", handler.ListDemotionRequests)
	mux.HandleFunc("GET /v1/demotion-requests/{requestID}", handler.GetDemotionRequest)
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, adminToken string) {
	admin := func(h http.HandlerFunc) http.Handler {
		return RequireAdminToken(adminToken, h)
	}

	mux.Handle("POST /v1/athletes", admin(handler.RegisterAthlete))
	mux.Handle("POST /v1/athletes/{athleteID}/promote", admin(handler.PromoteAthlete))
	mux.Handle("POST /v1/athletes/{athleteID}/demotion-requests", admin(handler.RequestDemotion))
	mux.Handle("POST /v1/demotion-requests/{requestID}/approve", admin(handler.ApproveDemotion))
	mux.Handle("POST /v1/demotion-requests/{requestID}/reject", admin(handler.RejectDemotion))

	mux.Handle("POST /v1/events", admin(handler.CreateEvent))
	mux.Handle("PUT /v1/events/{eventID}/override", admin(handler.SetEventOverride))
	mux.Handle("POST /v1/events/{eventID}/results", admin(handler.RecordResult))
	mux.Handle("POST /v1/events/{eventID}/results/import", admin(handler.ImportEventResults))
	mux.Handle("PATCH /v1/results/{resultID}", admin(handler.EditResult))
	mux.Handle("DELETE /v1/results/{resultID}", admin(handler.DeleteResult))

	mux.Handle("POST /v1/seasons", admin(handler.CreateSeason))
	mux.Handle("POST /v1/seasons/{seasonID}/activate", admin(handler.ActivateSeason))
	mux.Handle("POST /v1/seasons/{seasonID}/archive", admin(handler.ArchiveSeason))

	mux.Handle("POST /v1/maintenance/reset-points", admin(handler.ResetAllPoints))
	mux.Handle("POST /v1/maintenance/recompute-totals", admin(handler.RecomputeAllTotals))

	mux.Handle("POST /v1/rollover/begin", admin(handler.BeginRollover))
	mux.Handle("POST /v1/rollover/archive", admin(handler.RolloverArchiveOld))
	mux.Handle("POST /v1/rollover/create-next", admin(handler.RolloverCreateNext))
	mux.Handle("POST /v1/rollover/reset-points", admin(handler.RolloverResetPoints))
	mux.Handle("POST /v1/rollover/activate-next", admin(handler.RolloverActivateNext))
	mux.Handle("GET /v1/rollover/status", admin(handler.RolloverStatus))

	mux.Handle("GET /v1/duplicates", admin(handler.ListDuplicateClusters))
	mux.Handle("POST /v1/duplicates/merge", admin(handler.MergeAthletes))
}
