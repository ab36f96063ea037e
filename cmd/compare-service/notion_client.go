package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const notionVersion = "2022-06-28"

type notionDateCondition struct {
	OnOrAfter  string `json:"on_or_after,omitempty"`
	OnOrBefore string `json:"on_or_before,omitempty"`
}

type notionPropertyFilter struct {
	Property string              `json:"property"`
	Date     notionDateCondition `json:"date"`
}

type notionCompoundFilter struct {
	And []notionPropertyFilter `json:"and"`
}

type notionQueryRequest struct {
	Filter   notionCompoundFilter `json:"filter"`
	PageSize int                  `json:"page_size"`
}

type notionPage struct {
	ID         string                     `json:"id"`
	Properties map[string]json.RawMessage `json:"properties"`
}

type notionQueryResponse struct {
	Results    []notionPage `json:"results"`
	HasMore    bool         `json:"has_more"`
	NextCursor *string      `json:"next_cursor"`
}

type notionErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// notionClient queries one Notion database over the public REST API.
type notionClient struct {
	token      string
	databaseID string
	baseURL    string
	pageSize   int
	props      notionProperties
	httpClient *http.Client
}

func newNotionClient(token, databaseID, baseURL string, pageSize int, props notionProperties, timeout time.Duration) (*notionClient, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("NOTION_TOKEN is not set")
	}
	if strings.TrimSpace(databaseID) == "" {
		return nil, errors.New("NOTION_DATABASE_ID is not set")
	}
	return &notionClient{
		token:      token,
		databaseID: databaseID,
		baseURL:    strings.TrimRight(baseURL, "/"),
		pageSize:   pageSize,
		props:      props,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// QueryTasks runs a single query for pages whose start date lies in
// [startDate, endDate]. Only the first page of results is read; Truncated
// reports whether more existed.
func (c *notionClient) QueryTasks(ctx context.Context, startDate, endDate string) (taskFetch, error) {
	q := notionQueryRequest{
		Filter: notionCompoundFilter{And: []notionPropertyFilter{
			{Property: c.props.start, Date: notionDateCondition{OnOrAfter: startDate}},
			{Property: c.props.start, Date: notionDateCondition{OnOrBefore: endDate}},
		}},
		PageSize: c.pageSize,
	}
	jsonData, err := json.Marshal(q)
	if err != nil {
		return taskFetch{}, fmt.Errorf("marshal query: %w", err)
	}

	url := fmt.Sprintf("%s/databases/%s/query", c.baseURL, c.databaseID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return taskFetch{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", notionVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return taskFetch{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return taskFetch{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr notionErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return taskFetch{}, fmt.Errorf("status %d: %s: %s", resp.StatusCode, apiErr.Code, apiErr.Message)
		}
		return taskFetch{}, fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(body), 512))
	}

	var parsed notionQueryResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return taskFetch{}, fmt.Errorf("parse response: %w", err)
	}
	records := make([]taskRecord, 0, len(parsed.Results))
	for _, page := range parsed.Results {
		records = append(records, c.mapPage(page))
	}
	return taskFetch{Records: records, Truncated: parsed.HasMore}, nil
}

func (c *notionClient) mapPage(page notionPage) taskRecord {
	p := page.Properties
	return taskRecord{
		ID:        page.ID,
		Title:     titleText(p[c.props.title]),
		Status:    selectName(p[c.props.status]),
		Progress:  numberValue(p[c.props.progress]),
		Priority:  multiSelectNames(p[c.props.priority]),
		Category:  multiSelectNames(p[c.props.category]),
		StartDate: dateStart(p[c.props.start]),
		Deadline:  dateStart(p[c.props.deadline]),
	}
}

// Property readers: a missing or malformed property yields the zero value.

func titleText(raw json.RawMessage) string {
	var prop struct {
		Title []struct {
			PlainText string `json:"plain_text"`
		} `json:"title"`
	}
	if len(raw) == 0 || json.Unmarshal(raw, &prop) != nil {
		return ""
	}
	var sb strings.Builder
	for _, t := range prop.Title {
		sb.WriteString(t.PlainText)
	}
	return sb.String()
}

func selectName(raw json.RawMessage) string {
	var prop struct {
		Select *struct {
			Name string `json:"name"`
		} `json:"select"`
		Status *struct {
			Name string `json:"name"`
		} `json:"status"`
	}
	if len(raw) == 0 || json.Unmarshal(raw, &prop) != nil {
		return ""
	}
	switch {
	case prop.Select != nil:
		return prop.Select.Name
	case prop.Status != nil:
		return prop.Status.Name
	default:
		return ""
	}
}

func numberValue(raw json.RawMessage) float64 {
	var prop struct {
		Number *float64 `json:"number"`
	}
	if len(raw) == 0 || json.Unmarshal(raw, &prop) != nil || prop.Number == nil {
		return 0
	}
	return *prop.Number
}

func multiSelectNames(raw json.RawMessage) []string {
	var prop struct {
		MultiSelect []struct {
			Name string `json:"name"`
		} `json:"multi_select"`
	}
	if len(raw) == 0 || json.Unmarshal(raw, &prop) != nil {
		return []string{}
	}
	names := make([]string, 0, len(prop.MultiSelect))
	for _, opt := range prop.MultiSelect {
		names = append(names, opt.Name)
	}
	return names
}

func dateStart(raw json.RawMessage) string {
	var prop struct {
		Date *struct {
			Start string `json:"start"`
		} `json:"date"`
	}
	if len(raw) == 0 || json.Unmarshal(raw, &prop) != nil || prop.Date == nil {
		return ""
	}
	return prop.Date.Start
}

// fetchTasks never fails: an uninitialized client or a failed query yields an
// empty result and a log line.
func (st *appState) fetchTasks(ctx context.Context, startDate, endDate string) taskFetch {
	empty := taskFetch{Records: []taskRecord{}}
	if st.tasks == nil {
		logger.Warn("task database client not initialized", "start_date", startDate, "end_date", endDate)
		return empty
	}
	res, err := st.tasks.QueryTasks(ctx, startDate, endDate)
	if err != nil {
		logger.Error("task database query failed", "start_date", startDate, "end_date", endDate, "error", err)
		return empty
	}
	if res.Records == nil {
		res.Records = []taskRecord{}
	}
	if res.Truncated {
		logger.Warn("task database query truncated to one page",
			"start_date", startDate,
			"end_date", endDate,
			"records", len(res.Records),
		)
	}
	return res
}
