package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// stateSetMatcher matches a task-meta SET and hands the decoded record to check.
func stateSetMatcher(check func(key string, rec queueTaskStatus)) redismock.CustomMatch {
	return func(expected, actual []interface{}) error {
		key, _ := actual[1].(string)
		if !strings.HasPrefix(key, taskMetaPrefix) {
			return fmt.Errorf("unexpected key %v", actual[1])
		}
		raw, ok := actual[2].([]byte)
		if !ok {
			return fmt.Errorf("unexpected value type %T", actual[2])
		}
		var rec queueTaskStatus
		if err := json.Unmarshal(raw, &rec); err != nil {
			return err
		}
		check(key, rec)
		return nil
	}
}

func TestEnqueueCompareTask(t *testing.T) {
	db, rmock := redismock.NewClientMock()
	cli := new(mockAsynqClient)
	st := &appState{cfg: config{queueName: "default", modelTimeout: time.Minute}, redis: db, asynqCli: cli}

	var metaKey, lastID, pushedID string
	rmock.ExpectGet(compareLastTask).RedisNil()
	rmock.CustomMatch(stateSetMatcher(func(key string, rec queueTaskStatus) {
		metaKey = key
		assert.Equal(t, taskStatePending, rec.Status)
	})).ExpectSet(taskMetaPrefix+"x", []byte("x"), taskStateTTL).SetVal("OK")
	rmock.CustomMatch(func(expected, actual []interface{}) error {
		if actual[1] != compareLastTask {
			return fmt.Errorf("unexpected key %v", actual[1])
		}
		lastID, _ = actual[2].(string)
		return nil
	}).ExpectSet(compareLastTask, "x", taskStateTTL).SetVal("OK")
	rmock.CustomMatch(func(expected, actual []interface{}) error {
		if actual[1] != compareTaskListKey {
			return fmt.Errorf("unexpected key %v", actual[1])
		}
		pushedID, _ = actual[2].(string)
		return nil
	}).ExpectRPush(compareTaskListKey, "x").SetVal(1)
	rmock.ExpectLTrim(compareTaskListKey, -maxTrackedTasks, -1).SetVal("OK")

	cli.On("Enqueue", mock.MatchedBy(func(task *asynq.Task) bool {
		var p compareTaskPayload
		return task.Type() == taskTypeCompareGroups && json.Unmarshal(task.Payload(), &p) == nil && p.TaskID != ""
	}), mock.Anything).Return(&asynq.TaskInfo{}, nil).Once()

	taskID, err := st.enqueueCompareTask(context.TODO())
	require.NoError(t, err)
	assert.NotEmpty(t, taskID)
	assert.Equal(t, taskMetaPrefix+taskID, metaKey)
	assert.Equal(t, taskID, lastID)
	assert.Equal(t, taskID, pushedID)
	cli.AssertExpectations(t)
	if err := rmock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestEnqueueCompareTask_Busy(t *testing.T) {
	db, rmock := redismock.NewClientMock()
	cli := new(mockAsynqClient)
	st := &appState{redis: db, asynqCli: cli}

	rmock.ExpectGet(compareLastTask).SetVal("running")
	rmock.ExpectGet(taskMetaPrefix + "running").SetVal(`{"status":"PROGRESS"}`)

	_, err := st.enqueueCompareTask(context.TODO())
	assert.ErrorIs(t, err, ErrJobBusy)
	assert.Equal(t, 409, httpStatusFor(err))
	cli.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
}

func TestEnqueueCompareTask_EnqueueFailure(t *testing.T) {
	db, rmock := redismock.NewClientMock()
	cli := new(mockAsynqClient)
	st := &appState{cfg: config{queueName: "default"}, redis: db, asynqCli: cli}

	rmock.ExpectGet(compareLastTask).RedisNil()
	cli.On("Enqueue", mock.Anything, mock.Anything).Return(nil, assert.AnError).Once()

	_, err := st.enqueueCompareTask(context.TODO())
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, "internal server error", clientMessage(err))
	if err := rmock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestEnqueueCompareTask_QueueUnavailable(t *testing.T) {
	st := &appState{}
	_, err := st.enqueueCompareTask(context.TODO())
	assert.ErrorIs(t, err, ErrQueueUnavailable)
	assert.Equal(t, 503, httpStatusFor(err))
}

func TestProcessCompareTask_Success(t *testing.T) {
	b := newTestBuckets(t)
	_, err := b.Store(groupMonday, "m.png", []byte("m"))
	require.NoError(t, err)
	_, err = b.Store(groupFriday, "f.png", []byte("f"))
	require.NoError(t, err)

	cmp := new(mockComparator)
	cmp.On("Compare", mock.Anything, mock.Anything).Return("worker analysis", nil).Once()

	db, rmock := redismock.NewClientMock()
	st := &appState{buckets: b, comparator: cmp, redis: db}

	rmock.CustomMatch(stateSetMatcher(func(key string, rec queueTaskStatus) {
		assert.Equal(t, taskMetaPrefix+"job-1", key)
		assert.Equal(t, taskStateProgress, rec.Status)
	})).ExpectSet(taskMetaPrefix+"job-1", []byte("x"), taskStateTTL).SetVal("OK")
	rmock.CustomMatch(stateSetMatcher(func(key string, rec queueTaskStatus) {
		assert.Equal(t, taskStateSuccess, rec.Status)
		res, ok := rec.Result.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "worker analysis", res["analysis"])
		assert.EqualValues(t, 1, res["monday_count"])
		assert.Equal(t, "Compared 1 monday and 1 friday images.", res["message"])
	})).ExpectSet(taskMetaPrefix+"job-1", []byte("x"), taskStateTTL).SetVal("OK")

	payload, _ := json.Marshal(compareTaskPayload{TaskID: "job-1"})
	err = st.processCompareTask(context.TODO(), asynq.NewTask(taskTypeCompareGroups, payload))
	require.NoError(t, err)
	cmp.AssertExpectations(t)
	if err := rmock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestProcessCompareTask_FailureStoresClientMessage(t *testing.T) {
	cmp := new(mockComparator)
	db, rmock := redismock.NewClientMock()
	st := &appState{buckets: newTestBuckets(t), comparator: cmp, redis: db}

	rmock.CustomMatch(stateSetMatcher(func(key string, rec queueTaskStatus) {
		assert.Equal(t, taskStateProgress, rec.Status)
	})).ExpectSet(taskMetaPrefix+"job-2", []byte("x"), taskStateTTL).SetVal("OK")
	rmock.CustomMatch(stateSetMatcher(func(key string, rec queueTaskStatus) {
		assert.Equal(t, taskStateFailure, rec.Status)
		assert.Equal(t, ErrEmptyGroup.Error(), taskStateMessage(rec))
	})).ExpectSet(taskMetaPrefix+"job-2", []byte("x"), taskStateTTL).SetVal("OK")

	payload, _ := json.Marshal(compareTaskPayload{TaskID: "job-2"})
	err := st.processCompareTask(context.TODO(), asynq.NewTask(taskTypeCompareGroups, payload))
	assert.ErrorIs(t, err, ErrEmptyGroup)
	cmp.AssertNotCalled(t, "Compare", mock.Anything, mock.Anything)
	if err := rmock.ExpectationsWereMet(); err != nil {
		t.Errorf("there were unfulfilled expectations: %s", err)
	}
}

func TestProcessCompareTask_BadPayload(t *testing.T) {
	st := &appState{}
	err := st.processCompareTask(context.TODO(), asynq.NewTask(taskTypeCompareGroups, []byte("{")))
	assert.Error(t, err)
}
