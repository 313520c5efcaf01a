package types

import "testing"

func TestStepTransitions(t *testing.T) {
	tests := []struct {
		name string
		from Step
		to   Step
		want bool
	}{
		{"uploading to preprocessing", StepUploading, StepPreprocessing, true},
		{"preprocessing to validating", StepPreprocessing, StepValidating, true},
		{"validating to importing", StepValidating, StepImporting, true},
		{"importing to postprocessing", StepImporting, StepPostprocessing, true},
		{"postprocessing to notifying", StepPostprocessing, StepNotifying, true},
		{"notifying to completed", StepNotifying, StepCompleted, true},
		{"uploading can fail", StepUploading, StepFailed, true},
		{"importing can fail", StepImporting, StepFailed, true},
		{"completed cannot fail", StepCompleted, StepFailed, false},
		{"failed is terminal", StepFailed, StepUploading, false},
		{"skip a step", StepUploading, StepValidating, false},
		{"backward", StepValidating, StepPreprocessing, false},
		{"self transition", StepImporting, StepImporting, false},
		{"from completed", StepCompleted, StepUploading, false},
		{"from unknown", StepUnknown, StepPreprocessing, false},
		{"to unknown", StepUploading, StepUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestStepValid(t *testing.T) {
	if !StepUploading.Valid() {
		t.Error("UPLOADING should be valid")
	}
	if !StepFailed.Valid() {
		t.Error("FAILED should be valid")
	}
	if StepUnknown.Valid() {
		t.Error("UNKNOWN should not be valid")
	}
	if Step("GARBAGE").Valid() {
		t.Error("GARBAGE should not be valid")
	}
}

func TestParseStep(t *testing.T) {
	if got := ParseStep("IMPORTING"); got != StepImporting {
		t.Errorf("ParseStep(IMPORTING) = %s", got)
	}
	if got := ParseStep("nope"); got != StepUnknown {
		t.Errorf("ParseStep(nope) = %s, want UNKNOWN", got)
	}
}

func TestStatus(t *testing.T) {
	if !StatusInProgress.Active() {
		t.Error("IN_PROGRESS should be active")
	}
	if StatusPause.Active() {
		t.Error("PAUSE should not be active")
	}
	if !StatusFailure.Terminal() || !StatusSuccess.Terminal() {
		t.Error("FAILURE and SUCCESS should be terminal")
	}
	if StatusInProgress.Terminal() {
		t.Error("IN_PROGRESS should not be terminal")
	}
	if Status("bogus").Valid() {
		t.Error("bogus should not be valid")
	}
}

func TestKind(t *testing.T) {
	if !KindRawUserData.Valid() {
		t.Error("RAW_USER_DATA should be valid")
	}
	if Kind("OTHER").Valid() {
		t.Error("OTHER should not be valid")
	}
}
