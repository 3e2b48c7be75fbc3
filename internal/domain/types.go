package domain

// ProductTag is the marker embedded in generated result directory names.
const ProductTag = "MinerU"

// JobState tracks the remote lifecycle of a single parsing job.
type JobState string

const (
	JobStateWaitingFile JobState = "waiting-file"
	JobStateQueued      JobState = "pending"
	JobStateRunning     JobState = "running"
	JobStateConverting  JobState = "converting"
	JobStateDone        JobState = "done"
	JobStateFailed      JobState = "failed"
	JobStateUnknown     JobState = "unknown"
)

// ParseJobState maps a remote status string onto the known state set.
func ParseJobState(raw string) JobState {
	switch JobState(raw) {
	case JobStateWaitingFile, JobStateQueued, JobStateRunning, JobStateConverting, JobStateDone, JobStateFailed:
		return JobState(raw)
	default:
		return JobStateUnknown
	}
}

// Terminal reports whether the state admits no further transitions.
func (s JobState) Terminal() bool {
	return s == JobStateDone || s == JobStateFailed
}

// JobKind distinguishes standalone tasks from batch members.
type JobKind string

const (
	JobKindSingleTask  JobKind = "single-task"
	JobKindBatchMember JobKind = "batch-member"
)

// Progress reports page extraction counts for a running job.
type Progress struct {
	ExtractedPages int    `json:"extracted_pages"`
	TotalPages     int    `json:"total_pages"`
	StartTime      string `json:"start_time,omitempty"`
}

// Job stores the identity and last observed status of one remote parsing job.
type Job struct {
	ID        string   `json:"task_id,omitempty"`
	FileName  string   `json:"file_name,omitempty"`
	Kind      JobKind  `json:"-"`
	State     JobState `json:"-"`
	RawState  string   `json:"state"`
	Progress  Progress `json:"extract_progress"`
	ResultURL string   `json:"full_zip_url,omitempty"`
	ErrMsg    string   `json:"err_msg,omitempty"`
}

// Normalize derives the known state and clears fields that only apply
// to terminal states the job is not in.
func (j *Job) Normalize(kind JobKind) {
	j.Kind = kind
	j.State = ParseJobState(j.RawState)
	if j.State != JobStateDone {
		j.ResultURL = ""
	}
	if j.State != JobStateFailed {
		j.ErrMsg = ""
	}
}

// Batch is an ordered collection of jobs sharing one remote batch ID.
type Batch struct {
	ID   string `json:"batch_id"`
	Jobs []Job  `json:"extract_result"`
}

// Finished reports whether every member reached a terminal state.
func (b Batch) Finished() bool {
	for _, job := range b.Jobs {
		if !job.State.Terminal() {
			return false
		}
	}
	return true
}

// CountByState tallies members currently in the given state.
func (b Batch) CountByState(state JobState) int {
	count := 0
	for _, job := range b.Jobs {
		if job.State == state {
			count++
		}
	}
	return count
}

// FirstRunning returns the first member with extraction in flight, if any.
func (b Batch) FirstRunning() (Job, bool) {
	for _, job := range b.Jobs {
		if job.State == JobStateRunning {
			return job, true
		}
	}
	return Job{}, false
}

// Settings contains persisted CLI configuration.
type Settings struct {
	Token     string `json:"token"`
	OutputDir string `json:"output_dir,omitempty"`
}
