package main

import (
	"context"
	"strings"
)

// isCompareJobBusy reports whether the last enqueued comparison is still
// pending or running. A tracked id without state counts as busy.
func (st *appState) isCompareJobBusy(ctx context.Context) bool {
	taskID, err := st.redis.Get(ctx, compareLastTask).Result()
	if err != nil || strings.TrimSpace(taskID) == "" {
		return false
	}
	rec, ok := getTaskState(ctx, st.redis, taskID)
	if !ok {
		return true
	}
	return rec.Status == taskStatePending || rec.Status == taskStateProgress
}
