package replay

import (
	"strings"
	"testing"

	"github.com/samuelfneumann/worldmodel/timestep"
)

func transition(i int) timestep.Transition {
	v := float64(i)
	return timestep.Transition{
		State:     []float64{v, v},
		Action:    []float64{-v},
		Reward:    v,
		NextState: []float64{v + 1, v + 1},
		Done:      i%2 == 0,
	}
}

func TestBufferSample(t *testing.T) {
	b, err := New(NewFields(2, 1), 3, 5, 4, 1)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := b.Sample(); !IsEmptyBuffer(err) {
		t.Errorf("sample: expected empty buffer error, got %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := b.Add(transition(i)); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := b.Sample(); !IsInsufficientSamples(err) {
		t.Errorf("sample: expected insufficient samples error, got %v", err)
	}

	if err := b.Add(transition(2)); err != nil {
		t.Fatal(err)
	}
	batch, err := b.Sample()
	if err != nil {
		t.Fatal(err)
	}
	if batch.Len() != 4 {
		t.Errorf("batch length: want(4) have(%v)", batch.Len())
	}

	for i := 0; i < batch.Len(); i++ {
		s := batch.State.At(i, 0)
		if a := batch.Action.At(i, 0); a != -s {
			t.Errorf("row %v: action %v does not belong to state %v", i, a, s)
		}
		if r := batch.Reward.At(i, 0); r != s {
			t.Errorf("row %v: reward %v does not belong to state %v", i, r, s)
		}
		if n := batch.NextState.At(i, 1); n != s+1 {
			t.Errorf("row %v: next state %v does not belong to state %v", i,
				n, s)
		}
		wantDone := 0.0
		if int(s)%2 == 0 {
			wantDone = 1.0
		}
		if d := batch.Done.At(i, 0); d != wantDone {
			t.Errorf("row %v: done want(%v) have(%v)", i, wantDone, d)
		}
	}
}

func TestBufferOverwritesOldest(t *testing.T) {
	b, err := New(NewFields(2, 1), 1, 3, 16, 7)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if err := b.Add(transition(i)); err != nil {
			t.Fatal(err)
		}
	}
	if b.Len() != 3 {
		t.Fatalf("len: want(3) have(%v)", b.Len())
	}

	batch, err := b.Sample()
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < batch.Len(); i++ {
		if s := batch.State.At(i, 0); s < 2 {
			t.Errorf("sampled evicted transition with state %v", s)
		}
	}
}

func TestBufferAddWidth(t *testing.T) {
	b, err := New(NewFields(2, 1), 1, 3, 1, 7)
	if err != nil {
		t.Fatal(err)
	}
	bad := transition(0)
	bad.State = []float64{1, 2, 3}
	err = b.Add(bad)
	if err == nil {
		t.Fatal("add: expected error for state of wrong width")
	}
	if !strings.Contains(err.Error(), "State: [1 2 3]") {
		t.Errorf("add: error does not describe the transition: %v", err)
	}
	if b.Len() != 0 {
		t.Errorf("add: invalid transition stored, len(%v)", b.Len())
	}
}

func TestNewInvalid(t *testing.T) {
	if _, err := New(Fields{State: 2}, 1, 3, 1, 0); err == nil {
		t.Error("new: expected error for invalid fields")
	}
	if _, err := New(NewFields(2, 1), 0, 3, 1, 0); err == nil {
		t.Error("new: expected error for minCapacity 0")
	}
	if _, err := New(NewFields(2, 1), 4, 3, 1, 0); err == nil {
		t.Error("new: expected error for maxCapacity < minCapacity")
	}
}
