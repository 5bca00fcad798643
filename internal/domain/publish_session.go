package domain

import "time"

// PublishFlavor selects the publish pipeline to run.
type PublishFlavor string

const (
	// PublishFlavorPackage publishes to the project's package registry
	// (PyPI for python projects, npm for node projects).
	PublishFlavorPackage PublishFlavor = "package"
	// PublishFlavorContainer builds and pushes a container image.
	PublishFlavorContainer PublishFlavor = "container"
)

// ParsePublishFlavor validates a publish flavor supplied on the command line.
func ParsePublishFlavor(s string) (PublishFlavor, error) {
	switch f := PublishFlavor(s); f {
	case PublishFlavorPackage, PublishFlavorContainer:
		return f, nil
	}
	return "", &UnknownPublishFlavorError{Flavor: s}
}

// UnknownPublishFlavorError reports an unrecognized publish flavor.
type UnknownPublishFlavorError struct {
	Flavor string
}

func (e *UnknownPublishFlavorError) Error() string {
	return "unknown publish flavor: " + e.Flavor
}

// SessionStatus is the overall status of a publish session.
type SessionStatus string

const (
	SessionStatusPending   SessionStatus = "pending"
	SessionStatusRunning   SessionStatus = "running"
	SessionStatusCompleted SessionStatus = "completed"
	SessionStatusFailed    SessionStatus = "failed"
)

// StepStatus is the status of one step within a publish session.
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
)

// StepType identifies one step of the publish workflow.
type StepType string

const (
	StepTypeResolveVersion StepType = "resolve_version"
	StepTypeSetVersion     StepType = "set_version"
	StepTypeCheckFormat    StepType = "check_format"
	StepTypePublish        StepType = "publish"
	StepTypeTag            StepType = "tag"
	StepTypeRelease        StepType = "release"
)

// StepRecord records the outcome of a single publish step.
type StepRecord struct {
	Type        StepType   `json:"type"`
	Status      StepStatus `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// PublishSession records a publish workflow run for later inspection.
type PublishSession struct {
	SessionID string        `json:"session_id"`
	StartedAt time.Time     `json:"started_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Flavor    PublishFlavor `json:"flavor"`
	Project   string        `json:"project"`
	Version   string        `json:"version"`
	Tag       string        `json:"tag"`
	DryRun    bool          `json:"dry_run"`
	Steps     []StepRecord  `json:"steps"`
	Status    SessionStatus `json:"status"`
	Error     string        `json:"error,omitempty"`
}

// NewPublishSession creates a pending publish session.
func NewPublishSession(sessionID string, flavor PublishFlavor) *PublishSession {
	now := time.Now()
	return &PublishSession{
		SessionID: sessionID,
		StartedAt: now,
		UpdatedAt: now,
		Flavor:    flavor,
		Steps:     []StepRecord{},
		Status:    SessionStatusPending,
	}
}

// MarkStepCompleted appends a completed step record.
func (s *PublishSession) MarkStepCompleted(stepType StepType, startedAt time.Time) {
	now := time.Now()
	s.Steps = append(s.Steps, StepRecord{
		Type:        stepType,
		Status:      StepStatusCompleted,
		StartedAt:   startedAt,
		CompletedAt: &now,
	})
	s.UpdatedAt = now
}

// MarkStepFailed appends a failed step record and fails the session.
func (s *PublishSession) MarkStepFailed(stepType StepType, startedAt time.Time, err error) {
	now := time.Now()
	s.Steps = append(s.Steps, StepRecord{
		Type:        stepType,
		Status:      StepStatusFailed,
		StartedAt:   startedAt,
		CompletedAt: &now,
		Error:       err.Error(),
	})
	s.UpdatedAt = now
	s.Status = SessionStatusFailed
	s.Error = err.Error()
}
