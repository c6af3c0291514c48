package model

// StudentResult is one closed, evaluated assignment from a student's results page.
type StudentResult struct {
	AssignmentID int64    `json:"-"`
	Question     string   `json:"question"`
	Score        int      `json:"score"`
	Teacher      string   `json:"teacher"`
	Answer       *string  `json:"answer"`
	Group        []string `json:"group"`
	GroupSize    int      `json:"-"`
}

// StudentResults bundles the result rows with the weighted average.
// Average is nil when the student has no evaluated assignments.
type StudentResults struct {
	Results []StudentResult `json:"results"`
	Average *float64        `json:"average"`
}

// ClassStatRow is the per-student rollup of one teacher's assignments.
type ClassStatRow struct {
	StudentID int64    `json:"id"`
	Name      string   `json:"name"`
	Open      int      `json:"open"`
	Closed    int      `json:"closed"`
	Total     int      `json:"total"`
	Average   *float64 `json:"average"`
}
