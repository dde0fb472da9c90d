package api

// Wire types for the remote generation service. These mirror the HTTP+JSON
// contract verbatim; translation to domain types happens in the module
// adapters so upstream field-name quirks stay out of the core.

type GenerateRequest struct {
	Topic          string   `json:"topic"`
	ExpertiseLevel string   `json:"expertise_level"`
	DurationWeeks  int      `json:"duration_weeks"`
	TimeCommitment string   `json:"time_commitment"`
	LearningStyle  string   `json:"learning_style"`
	Goals          []string `json:"goals,omitempty"`
}

type GenerateResponse struct {
	TaskID string       `json:"task_id"`
	Status string       `json:"status"`
	Result *PathPayload `json:"result,omitempty"`
}

type StatusResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type PathPayload struct {
	ID          string             `json:"id,omitempty"`
	Topic       string             `json:"topic"`
	Description string             `json:"description,omitempty"`
	Milestones  []MilestonePayload `json:"milestones"`
	Completed   map[string]bool    `json:"completed,omitempty"`
	CreatedAt   string             `json:"created_at,omitempty"`
	UserID      string             `json:"user_id,omitempty"`
}

// MilestonePayload carries both the canonical and the legacy title field;
// the upstream service has emitted either. Decoders prefer Title.
type MilestonePayload struct {
	Title          string            `json:"title,omitempty"`
	LegacyTitle    string            `json:"milestone,omitempty"`
	Description    string            `json:"description,omitempty"`
	EstimatedHours float64           `json:"estimated_hours,omitempty"`
	EstimatedWeeks float64           `json:"estimated_weeks,omitempty"`
	Resources      []ResourcePayload `json:"resources,omitempty"`
	Skills         []string          `json:"skills,omitempty"`
}

type ResourcePayload struct {
	Type  string `json:"type,omitempty"`
	Title string `json:"title,omitempty"`
	URL   string `json:"url,omitempty"`
}

type SavePathRequest struct {
	Path PathPayload `json:"path"`
}

type SavePathResponse struct {
	Success bool   `json:"success"`
	PathID  string `json:"path_id"`
}

type ListPathsResponse struct {
	Paths []PathPayload `json:"paths"`
}

type UpdateMilestoneRequest struct {
	MilestoneIndex int  `json:"milestone_index"`
	Completed      bool `json:"completed"`
}

type SuccessResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type AuthResponse struct {
	Success bool        `json:"success"`
	Token   string      `json:"token"`
	User    UserPayload `json:"user"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
