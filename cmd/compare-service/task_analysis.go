package main

// analyzeTasks counts statuses on both sides and priority/category labels on
// the friday side only.
func analyzeTasks(monday, friday []taskRecord) taskAnalysis {
	res := taskAnalysis{
		MondayTasks:          len(monday),
		FridayTasks:          len(friday),
		StatusComparison:     make(map[string]statusCount),
		PriorityDistribution: make(map[string]int),
		CategoryDistribution: make(map[string]int),
	}

	for _, t := range monday {
		c := res.StatusComparison[t.Status]
		c.Monday++
		res.StatusComparison[t.Status] = c
	}
	for _, t := range friday {
		c := res.StatusComparison[t.Status]
		c.Friday++
		res.StatusComparison[t.Status] = c

		for _, p := range t.Priority {
			res.PriorityDistribution[p]++
		}
		for _, cat := range t.Category {
			res.CategoryDistribution[cat]++
		}
	}
	return res
}
