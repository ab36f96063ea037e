package main

type appState struct {
	cfg        config
	buckets    *bucketStore
	comparator Comparator
	tasks      TaskSource
	history    HistoryStore
	redis      RedisClient
	asynqCli   AsynqClient
}

type groupImage struct {
	Name      string
	MediaType string
	Data      []byte
}

type imageRef struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

// contentBlock is one element of a multimodal user message.
type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`

	raw []byte
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type taskRecord struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Status    string   `json:"status"`
	Progress  float64  `json:"progress"`
	Priority  []string `json:"priority"`
	Category  []string `json:"category"`
	StartDate string   `json:"start_date"`
	Deadline  string   `json:"deadline"`
}

type taskFetch struct {
	Records   []taskRecord
	Truncated bool
}

type statusCount struct {
	Monday int `json:"monday"`
	Friday int `json:"friday"`
}

type taskAnalysis struct {
	MondayTasks          int                    `json:"monday_tasks"`
	FridayTasks          int                    `json:"friday_tasks"`
	StatusComparison     map[string]statusCount `json:"status_comparison"`
	PriorityDistribution map[string]int         `json:"priority_distribution"`
	CategoryDistribution map[string]int         `json:"category_distribution"`
}

type historyRun struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	CreatedAt   int64  `json:"created_at"`
	MondayRef   string `json:"monday_ref"`
	FridayRef   string `json:"friday_ref"`
	MondayCount int    `json:"monday_count"`
	FridayCount int    `json:"friday_count"`
	Result      string `json:"result"`
}

type queueTaskStatus struct {
	Status    string      `json:"status"`
	Result    interface{} `json:"result,omitempty"`
	UpdatedAt string      `json:"updated_at"`
}

type compareTaskPayload struct {
	TaskID string `json:"task_id"`
}

type compareResult struct {
	Analysis    string     `json:"analysis"`
	MondayCount int        `json:"monday_count"`
	FridayCount int        `json:"friday_count"`
	Monday      []imageRef `json:"monday_images"`
	Friday      []imageRef `json:"friday_images"`
	Message     string     `json:"message,omitempty"`
}
