package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (st *appState) router() http.Handler {
	r := chi.NewRouter()
	r.Use(loggingMiddleware)

	r.Get("/health", st.handleHealth)
	r.Get("/debug", st.handleDebug)
	r.Get("/", st.handleIndex)
	r.With(limitUploadSize(st.cfg.maxUploadBytes)).Post("/upload", st.handleUpload)
	r.Get("/clear/{group}", st.handleClear)
	r.Post("/clear/{group}", st.handleClear)
	r.Get("/uploads/{group}/{filename}", st.handleUploadedFile)
	r.Post("/compare", st.handleCompare)
	r.Post("/compare/jobs", st.handleCompareJobCreate)
	r.Get("/compare/jobs/{id}", st.handleCompareJobStatus)
	r.Post("/notion-analysis", st.handleNotionAnalysis)
	r.Get("/history", st.handleHistory)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
	})
	return r
}
