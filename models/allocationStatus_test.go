package models

import "testing"

func TestAllocationStatus_TerminalStatesAreImmutable(t *testing.T) {
	all := []AllocationStatus{
		AllocationStatusDraft, AllocationStatusSubmitted, AllocationStatusPending,
		AllocationStatusApproved, AllocationStatusRejected, AllocationStatusExecuted,
		AllocationStatusCancelled,
	}
	for _, terminal := range []AllocationStatus{AllocationStatusRejected, AllocationStatusExecuted, AllocationStatusCancelled} {
		if !terminal.IsTerminal() {
			t.Fatalf("%s should be terminal", terminal)
		}
		for _, next := range all {
			if terminal.CanTransitionTo(next) {
				t.Fatalf("terminal %s allows transition to %s", terminal, next)
			}
		}
	}
}

func TestAllocationStatus_Transitions(t *testing.T) {
	cases := []struct {
		from    AllocationStatus
		to      AllocationStatus
		allowed bool
	}{
		{AllocationStatusDraft, AllocationStatusSubmitted, true},
		{AllocationStatusDraft, AllocationStatusApproved, false},
		{AllocationStatusDraft, AllocationStatusExecuted, false},
		{AllocationStatusSubmitted, AllocationStatusApproved, true},
		{AllocationStatusSubmitted, AllocationStatusRejected, true},
		{AllocationStatusSubmitted, AllocationStatusExecuted, false},
		{AllocationStatusPending, AllocationStatusApproved, true},
		{AllocationStatusPending, AllocationStatusRejected, true},
		{AllocationStatusApproved, AllocationStatusExecuted, true},
		{AllocationStatusApproved, AllocationStatusSubmitted, false},
		// any non-terminal state may be cancelled
		{AllocationStatusDraft, AllocationStatusCancelled, true},
		{AllocationStatusSubmitted, AllocationStatusCancelled, true},
		{AllocationStatusPending, AllocationStatusCancelled, true},
		{AllocationStatusApproved, AllocationStatusCancelled, true},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.allowed {
			t.Fatalf("%s -> %s: expected %v, got %v", tc.from, tc.to, tc.allowed, got)
		}
	}
}
