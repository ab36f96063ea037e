package main

const (
	groupMonday = "monday"
	groupFriday = "friday"

	taskTypeCompareGroups = "tcmp:compare_groups"

	compareTaskListKey = "tcmp:compare_task_ids"
	compareLastTask    = "tcmp:compare:last_task_id"
	taskMetaPrefix     = "tcmp:task-meta-"
	maxTrackedTasks    = 200

	runKindImageCompare = "image_compare"
	runKindTaskAnalysis = "task_analysis"

	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

var validGroups = []string{groupMonday, groupFriday}

var allowedExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"gif":  {},
	"bmp":  {},
	"webp": {},
}

// media types are derived from the extension only; file contents are never sniffed.
var mediaTypeByExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
}

const defaultMediaType = "image/jpeg"
