package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// enqueueCompareTask queues one background comparison. Only one may be
// pending or running at a time.
func (st *appState) enqueueCompareTask(ctx context.Context) (string, error) {
	if st.redis == nil || st.asynqCli == nil {
		return "", ErrQueueUnavailable
	}
	if st.isCompareJobBusy(ctx) {
		return "", ErrJobBusy
	}

	taskID := uuid.NewString()
	b, err := json.Marshal(compareTaskPayload{TaskID: taskID})
	if err != nil {
		return "", fmt.Errorf("marshal compare payload: %w", err)
	}
	task := asynq.NewTask(taskTypeCompareGroups, b)
	_, err = st.asynqCli.Enqueue(task,
		asynq.Queue(st.cfg.queueName),
		asynq.TaskID(taskID),
		asynq.MaxRetry(0),
		asynq.Timeout(st.cfg.modelTimeout+time.Minute),
	)
	if err != nil {
		return "", fmt.Errorf("enqueue %s: %w", taskTypeCompareGroups, err)
	}

	setTaskState(ctx, st.redis, taskID, taskStatePending, map[string]any{"status": "Queued"})
	st.redis.Set(ctx, compareLastTask, taskID, taskStateTTL)
	st.redis.RPush(ctx, compareTaskListKey, taskID)
	st.redis.LTrim(ctx, compareTaskListKey, -maxTrackedTasks, -1)
	logger.Info("compare task queued", "task_type", taskTypeCompareGroups, "task_id", taskID, "queue", st.cfg.queueName)
	return taskID, nil
}

func (st *appState) processCompareTask(ctx context.Context, t *asynq.Task) error {
	var payload compareTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode compare payload: %w", err)
	}
	taskID := payload.TaskID
	if taskID == "" {
		taskID = uuid.NewString()
	}
	setTaskState(ctx, st.redis, taskID, taskStateProgress, map[string]any{"status": "Comparing monday and friday groups..."})

	res, err := st.runComparison(ctx)
	if err != nil {
		setTaskState(ctx, st.redis, taskID, taskStateFailure, map[string]any{"message": clientMessage(err)})
		return err
	}
	res.Message = fmt.Sprintf("Compared %d monday and %d friday images.", res.MondayCount, res.FridayCount)
	setTaskState(ctx, st.redis, taskID, taskStateSuccess, toMap(res))
	return nil
}
