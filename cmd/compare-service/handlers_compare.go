package main

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

func (st *appState) handleCompare(w http.ResponseWriter, r *http.Request) {
	res, err := st.runComparison(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"analysis":      res.Analysis,
		"monday_count":  res.MondayCount,
		"friday_count":  res.FridayCount,
		"monday_images": res.Monday,
		"friday_images": res.Friday,
	})
}

func (st *appState) handleCompareJobCreate(w http.ResponseWriter, r *http.Request) {
	taskID, err := st.enqueueCompareTask(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"success": true,
		"message": "Comparison queued.",
		"task_id": taskID,
	})
}

func (st *appState) handleCompareJobStatus(w http.ResponseWriter, r *http.Request) {
	if st.redis == nil {
		writeError(w, r, ErrQueueUnavailable)
		return
	}
	taskID := strings.TrimSpace(chi.URLParam(r, "id"))
	rec, ok := getTaskState(r.Context(), st.redis, taskID)
	if !ok {
		writeError(w, r, ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"task_id":    taskID,
		"state":      rec.Status,
		"message":    taskStateMessage(rec),
		"result":     rec.Result,
		"updated_at": rec.UpdatedAt,
	})
}
