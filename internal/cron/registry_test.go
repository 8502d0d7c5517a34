package cron

import (
	"errors"
	"testing"
)

func TestRegistryKeepsOrderAndCopies(t *testing.T) {
	jobA := &testJob{name: "payment-reconcile"}
	jobB := &testJob{name: "audit"}
	registry, err := NewRegistry(jobA, nil, jobB)
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	jobs := registry.Jobs()
	if len(jobs) != 2 || jobs[0] != jobA || jobs[1] != jobB {
		t.Fatalf("unexpected jobs %v", jobs)
	}
	jobs[0] = nil
	if registry.Jobs()[0] == nil {
		t.Fatalf("internal slice leaked")
	}
}

func TestRegistryRejectsDuplicateAndUnnamedJobs(t *testing.T) {
	if _, err := NewRegistry(&testJob{name: "payment-reconcile"}, &testJob{name: "payment-reconcile"}); !errors.Is(err, ErrDuplicateJob) {
		t.Fatalf("expected ErrDuplicateJob, got %v", err)
	}
	var registry Registry
	if err := registry.Register(&testJob{name: "  "}); err == nil {
		t.Fatalf("expected error for blank name")
	}
	if err := registry.Register(&testJob{name: "ok"}); err != nil {
		t.Fatalf("zero registry should accept jobs: %v", err)
	}
}
