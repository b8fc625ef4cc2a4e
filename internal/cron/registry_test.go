package cron

import (
	"context"
	"testing"
)

type stubJob struct {
	name string
}

func (s *stubJob) Name() string              { return s.name }
func (s *stubJob) Run(context.Context) error { return nil }

func TestRegistryKeepsRegistrationOrder(t *testing.T) {
	registry := NewRegistry()
	reminder := &stubJob{name: "payment-reminder"}
	cleanup := &stubJob{name: "cart-cleanup"}
	registry.Register(reminder)
	registry.Register(cleanup)

	jobs := registry.Jobs()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0] != reminder || jobs[1] != cleanup {
		t.Fatalf("jobs returned out of registration order")
	}
}

func TestRegistryJobsReturnsACopy(t *testing.T) {
	registry := NewRegistry(&stubJob{name: "payment-reminder"})

	jobs := registry.Jobs()
	jobs[0] = nil
	if registry.Jobs()[0] == nil {
		t.Fatalf("mutating the returned slice must not change the registry")
	}
}

func TestRegistryReplacesJobWithSameName(t *testing.T) {
	first := &stubJob{name: "payment-reminder"}
	second := &stubJob{name: "payment-reminder"}
	registry := NewRegistry(first, &stubJob{name: "cart-cleanup"})
	registry.Register(second)

	jobs := registry.Jobs()
	if len(jobs) != 2 {
		t.Fatalf("expected replacement to keep 2 jobs, got %d", len(jobs))
	}
	if jobs[0] != second {
		t.Fatalf("expected the later registration to win")
	}
	if jobs[1].Name() != "cart-cleanup" {
		t.Fatalf("replacement must keep the original slot, got %q last", jobs[1].Name())
	}
}

func TestRegistryIgnoresNilJobs(t *testing.T) {
	registry := NewRegistry(nil, &stubJob{name: "cart-cleanup"}, nil)
	registry.Register(nil)
	if got := len(registry.Jobs()); got != 1 {
		t.Fatalf("expected 1 job, got %d", got)
	}
}
