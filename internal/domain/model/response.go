package model

// Response is the single current answer recorded for an assignment.
// At most one row exists per assignment; a later submission by any group
// member overwrites both the answer and the submitter.
type Response struct {
	AssignmentID int64  `json:"assignment_id"`
	Answer       string `json:"answer"`
	SubmittedBy  int64  `json:"submitted_by"`
}

// Evaluation is the score recorded for an assignment. Its creation is the
// sole trigger for the open -> closed transition and it is immutable after.
type Evaluation struct {
	AssignmentID int64 `json:"assignment_id"`
	Score        int   `json:"score"`
}
