package main

import (
	"context"
	"encoding/json"
	"time"
)

const (
	taskStatePending  = "PENDING"
	taskStateProgress = "PROGRESS"
	taskStateSuccess  = "SUCCESS"
	taskStateFailure  = "FAILURE"

	taskStateTTL = 7 * 24 * time.Hour
)

var clock = time.Now

func setTaskState(ctx context.Context, rdb RedisClient, taskID, status string, result interface{}) {
	rec := queueTaskStatus{Status: status, Result: result, UpdatedAt: clock().UTC().Format(time.RFC3339)}
	b, _ := json.Marshal(rec)
	if err := rdb.Set(ctx, taskMetaPrefix+taskID, b, taskStateTTL).Err(); err != nil {
		logger.Error("failed to persist task state", "task_id", taskID, "status", status, "error", err)
	}

	msg := ""
	if resultMap, ok := result.(map[string]any); ok {
		if s, ok := stringFromAny(resultMap["message"]); ok && s != "" {
			msg = s
		} else if s, ok := stringFromAny(resultMap["status"]); ok && s != "" {
			msg = s
		}
	}
	attrs := []any{"task_id", taskID, "status", status}
	if msg != "" {
		attrs = append(attrs, "message", msg)
	}
	switch status {
	case taskStateFailure:
		logger.Error("task state updated", attrs...)
	case taskStateProgress:
		logger.Debug("task state updated", attrs...)
	default:
		logger.Info("task state updated", attrs...)
	}
}

func getTaskState(ctx context.Context, rdb RedisClient, taskID string) (queueTaskStatus, bool) {
	raw, err := rdb.Get(ctx, taskMetaPrefix+taskID).Result()
	if err != nil || raw == "" {
		return queueTaskStatus{}, false
	}
	var rec queueTaskStatus
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return queueTaskStatus{}, false
	}
	return rec, true
}

// taskStateMessage picks the human readable line out of a stored result map.
func taskStateMessage(rec queueTaskStatus) string {
	resultMap, ok := rec.Result.(map[string]any)
	if !ok {
		return ""
	}
	for _, key := range []string{"message", "status"} {
		if s, ok := stringFromAny(resultMap[key]); ok && s != "" {
			return s
		}
	}
	return ""
}
