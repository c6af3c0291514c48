package model

type AssignmentStatus string

const (
	StatusOpen   AssignmentStatus = "open"
	StatusClosed AssignmentStatus = "closed"
)

type Assignment struct {
	ID        int64            `json:"id"`
	Question  string           `json:"question"`
	Status    AssignmentStatus `json:"status"`
	TeacherID int64            `json:"teacher_id"`
}

type GroupMember struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TeacherAssignmentRow is one row of a teacher's assignment overview.
type TeacherAssignmentRow struct {
	ID          int64            `json:"id"`
	Question    string           `json:"question"`
	Status      AssignmentStatus `json:"status"`
	Students    string           `json:"students"` // comma-separated member names
	HasResponse bool             `json:"has_response"`
	Answer      *string          `json:"answer"`
	Score       *int             `json:"score"`
}

// AssignmentDetail is the full view of one assignment as the teacher sees it.
type AssignmentDetail struct {
	Question string           `json:"question"`
	Answer   *string          `json:"answer"`
	Group    []GroupMember    `json:"group"`
	Score    *int             `json:"score"`
	Status   AssignmentStatus `json:"status"`
}

// OpenAssignment is an open assignment as presented to a group member.
type OpenAssignment struct {
	ID         int64            `json:"id"`
	Question   string           `json:"question"`
	Status     AssignmentStatus `json:"status"`
	Teacher    string           `json:"teacher"`
	Group      []string         `json:"group"`
	LastAnswer *string          `json:"last_answer"`
}
