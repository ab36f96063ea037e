package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

type notionAnalysisRequest struct {
	MondayDate string `json:"monday_date"`
	FridayDate string `json:"friday_date"`
}

// handleNotionAnalysis queries the task database once per date (each date is
// its own single-day range) and aggregates both result sets.
func (st *appState) handleNotionAnalysis(w http.ResponseWriter, r *http.Request) {
	var body notionAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, fmt.Errorf("%w: invalid JSON body", ErrMissingDates))
		return
	}
	monday := strings.TrimSpace(body.MondayDate)
	friday := strings.TrimSpace(body.FridayDate)
	if monday == "" || friday == "" {
		writeError(w, r, ErrMissingDates)
		return
	}
	if !validDate(monday) || !validDate(friday) {
		writeError(w, r, ErrInvalidDate)
		return
	}

	ctx := r.Context()
	mondayTasks := st.fetchTasks(ctx, monday, monday)
	fridayTasks := st.fetchTasks(ctx, friday, friday)
	analysis := analyzeTasks(mondayTasks.Records, fridayTasks.Records)

	if raw, err := json.Marshal(analysis); err == nil {
		st.recordRun(historyRun{
			Kind:        runKindTaskAnalysis,
			MondayRef:   monday,
			FridayRef:   friday,
			MondayCount: analysis.MondayTasks,
			FridayCount: analysis.FridayTasks,
			Result:      string(raw),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"analysis":         analysis,
		"monday_date":      monday,
		"friday_date":      friday,
		"monday_truncated": mondayTasks.Truncated,
		"friday_truncated": fridayTasks.Truncated,
	})
}
