package core

import "testing"

func TestTrace_AppendAndQuery(t *testing.T) {
	var tr Trace

	if tr.Last() != nil {
		t.Error("Last() on empty trace should be nil")
	}

	tr.Append(StageRecord{Stage: StageFreshState, Outcome: OutcomePass})
	tr.Append(StageRecord{Stage: StageIdentity, Outcome: OutcomePass})
	tr.Append(StageRecord{Stage: StageRefine, Outcome: OutcomeFail})

	if got := len(tr.Records); got != 3 {
		t.Fatalf("len(Records)=%d, want 3", got)
	}
	if tr.Last().Stage != StageRefine {
		t.Errorf("Last().Stage=%v, want %v", tr.Last().Stage, StageRefine)
	}
	if tr.Records[0].At.IsZero() {
		t.Error("Append should stamp records with a time")
	}

	wantStages := []Stage{StageFreshState, StageIdentity, StageRefine}
	got := tr.Stages()
	if len(got) != len(wantStages) {
		t.Fatalf("Stages()=%v, want %v", got, wantStages)
	}
	for i := range wantStages {
		if got[i] != wantStages[i] {
			t.Errorf("Stages()[%d]=%v, want %v", i, got[i], wantStages[i])
		}
	}

	if !tr.Saw(StageIdentity) {
		t.Error("Saw(L1) should be true")
	}
	if tr.Saw(StageDispatch) {
		t.Error("Saw(L6) should be false")
	}
}
