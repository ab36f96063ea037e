package main

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"
)

type mockComparator struct {
	mock.Mock
}

func (m *mockComparator) Compare(ctx context.Context, blocks []contentBlock) (string, error) {
	args := m.Called(ctx, blocks)
	return args.String(0), args.Error(1)
}

func (m *mockComparator) Name() string { return "mock-model" }

type mockTaskSource struct {
	mock.Mock
}

func (m *mockTaskSource) QueryTasks(ctx context.Context, startDate, endDate string) (taskFetch, error) {
	args := m.Called(ctx, startDate, endDate)
	return args.Get(0).(taskFetch), args.Error(1)
}

type mockHistoryStore struct {
	mock.Mock
}

func (m *mockHistoryStore) Close() error {
	return m.Called().Error(0)
}

func (m *mockHistoryStore) RecordRun(run historyRun) error {
	return m.Called(run).Error(0)
}

func (m *mockHistoryStore) RecentRuns(limit int) ([]historyRun, error) {
	args := m.Called(limit)
	runs, _ := args.Get(0).([]historyRun)
	return runs, args.Error(1)
}

type mockAsynqClient struct {
	mock.Mock
}

func (m *mockAsynqClient) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(task, opts)
	info, _ := args.Get(0).(*asynq.TaskInfo)
	return info, args.Error(1)
}

func (m *mockAsynqClient) Close() error {
	return m.Called().Error(0)
}
