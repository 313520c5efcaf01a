package types

// Status is the coarse outcome state of a relocation job.
type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusFailure    Status = "FAILURE"
	StatusSuccess    Status = "SUCCESS"
	StatusPause      Status = "PAUSE"
)

func (s Status) String() string {
	return string(s)
}

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusInProgress, StatusFailure, StatusSuccess, StatusPause:
		return true
	}
	return false
}

// Terminal reports whether the job has finished, successfully or not.
func (s Status) Terminal() bool {
	return s == StatusFailure || s == StatusSuccess
}

// Active reports whether the job counts against the one-active-job-per-owner
// limit. Only in-progress jobs hold the owner's slot; paused jobs do not.
func (s Status) Active() bool {
	return s == StatusInProgress
}
