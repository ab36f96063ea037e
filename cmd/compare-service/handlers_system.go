package main

import (
	"net/http"
)

type credentialReport struct {
	ModelProvider          string `json:"model_provider"`
	AnthropicKeyExists     bool   `json:"anthropic_key_exists"`
	GeminiKeyExists        bool   `json:"gemini_key_exists"`
	NotionTokenExists      bool   `json:"notion_token_exists"`
	NotionDatabaseIDExists bool   `json:"notion_db_id_exists"`
	ClientInitialized      bool   `json:"client_initialized"`
	TaskSourceInitialized  bool   `json:"task_source_initialized"`
	JobsEnabled            bool   `json:"jobs_enabled"`
	HistoryEnabled         bool   `json:"history_enabled"`
}

// credentialReport only says whether things are configured; no key
// material, prefix or length is ever included.
func (st *appState) credentialReport() credentialReport {
	return credentialReport{
		ModelProvider:          st.cfg.modelProvider,
		AnthropicKeyExists:     st.cfg.anthropicAPIKey != "",
		GeminiKeyExists:        st.cfg.geminiAPIKey != "",
		NotionTokenExists:      st.cfg.notionToken != "",
		NotionDatabaseIDExists: st.cfg.notionDatabaseID != "",
		ClientInitialized:      st.comparator != nil,
		TaskSourceInitialized:  st.tasks != nil,
		JobsEnabled:            st.redis != nil && st.asynqCli != nil,
		HistoryEnabled:         st.history != nil,
	}
}

func (st *appState) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "healthy", "message": "Service is running"})
}

func (st *appState) handleDebug(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, st.credentialReport())
}

func (st *appState) handleHistory(w http.ResponseWriter, r *http.Request) {
	if st.history == nil {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "runs": []historyRun{}})
		return
	}
	limit := parsePositiveInt(r.URL.Query().Get("limit"), defaultHistoryLimit)
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	runs, err := st.history.RecentRuns(limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "runs": runs})
}
