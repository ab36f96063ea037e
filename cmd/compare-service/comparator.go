package main

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// compareGroups issues exactly one model call for the two groups. Nothing is
// retried and nothing is cached.
func compareGroups(ctx context.Context, cmp Comparator, monday, friday []groupImage) (string, error) {
	if cmp == nil {
		return "", ErrServiceUnavailable
	}
	if len(monday) == 0 || len(friday) == 0 {
		return "", ErrEmptyGroup
	}
	blocks := buildComparisonBlocks(monday, friday)
	start := time.Now()
	text, err := cmp.Compare(ctx, blocks)
	if err != nil {
		return "", upstream(cmp.Name(), err)
	}
	logger.Info("comparison completed",
		"model_client", cmp.Name(),
		"monday_count", len(monday),
		"friday_count", len(friday),
		"blocks", len(blocks),
		"duration_ms", time.Since(start).Milliseconds(),
		"response_len", len(text),
	)
	return text, nil
}

// runComparison compares the current contents of both buckets and records
// the run in the history store.
func (st *appState) runComparison(ctx context.Context) (compareResult, error) {
	if st.comparator == nil {
		return compareResult{}, ErrServiceUnavailable
	}
	monday, err := st.buckets.Load(groupMonday)
	if err != nil {
		return compareResult{}, err
	}
	friday, err := st.buckets.Load(groupFriday)
	if err != nil {
		return compareResult{}, err
	}

	analysis, err := compareGroups(ctx, st.comparator, monday, friday)
	if err != nil {
		return compareResult{}, err
	}

	res := compareResult{
		Analysis:    analysis,
		MondayCount: len(monday),
		FridayCount: len(friday),
		Monday:      imageRefs(groupMonday, imageNames(monday)),
		Friday:      imageRefs(groupFriday, imageNames(friday)),
	}
	st.recordRun(historyRun{
		Kind:        runKindImageCompare,
		MondayRef:   strings.Join(imageNames(monday), ","),
		FridayRef:   strings.Join(imageNames(friday), ","),
		MondayCount: len(monday),
		FridayCount: len(friday),
		Result:      analysis,
	})
	return res, nil
}

func (st *appState) recordRun(run historyRun) {
	if st.history == nil {
		return
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().Unix()
	}
	if err := st.history.RecordRun(run); err != nil {
		logger.Warn("failed to record run history", "run_id", run.ID, "kind", run.Kind, "error", err)
	}
}

func imageNames(images []groupImage) []string {
	names := make([]string, 0, len(images))
	for _, img := range images {
		names = append(names, img.Name)
	}
	return names
}
