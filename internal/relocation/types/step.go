package types

// Step marks how far a relocation job has progressed through the pipeline.
type Step string

const (
	StepUnknown        Step = "UNKNOWN"
	StepUploading      Step = "UPLOADING"
	StepPreprocessing  Step = "PREPROCESSING"
	StepValidating     Step = "VALIDATING"
	StepImporting      Step = "IMPORTING"
	StepPostprocessing Step = "POSTPROCESSING"
	StepNotifying      Step = "NOTIFYING"
	StepCompleted      Step = "COMPLETED"
	StepFailed         Step = "FAILED"
)

// stepOrder gives each pipeline step its position. Terminal and unknown
// steps are excluded.
var stepOrder = map[Step]int{
	StepUploading:      1,
	StepPreprocessing:  2,
	StepValidating:     3,
	StepImporting:      4,
	StepPostprocessing: 5,
	StepNotifying:      6,
	StepCompleted:      7,
}

func (s Step) String() string {
	return string(s)
}

// Valid reports whether s is one of the known pipeline steps.
func (s Step) Valid() bool {
	if s == StepFailed {
		return true
	}
	_, ok := stepOrder[s]
	return ok
}

// Terminal reports whether no further step transitions are possible.
func (s Step) Terminal() bool {
	return s == StepCompleted || s == StepFailed
}

// CanTransitionTo reports whether moving from s to next is a legal
// pipeline transition. Steps advance one at a time and never backward;
// any non-terminal step may fail.
func (s Step) CanTransitionTo(next Step) bool {
	cur, ok := stepOrder[s]
	if !ok {
		return false
	}
	if s.Terminal() {
		return false
	}
	if next == StepFailed {
		return true
	}
	nxt, ok := stepOrder[next]
	if !ok {
		return false
	}
	return nxt == cur+1
}

// ParseStep converts a stored string into a Step, returning StepUnknown
// for unrecognized values.
func ParseStep(s string) Step {
	step := Step(s)
	if !step.Valid() {
		return StepUnknown
	}
	return step
}
