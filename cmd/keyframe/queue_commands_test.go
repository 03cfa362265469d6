package main

import (
	"context"
	"strings"
	"testing"

	"keyframe/internal/queue"
	"keyframe/internal/testsupport"
)

func TestSubmitQueuesJob(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"submit", "How do volcanoes work?", "--style", "educational"}, env.configPath)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	requireContains(t, out, "Queued job")
	requireContains(t, out, "Educational style")

	store := testsupport.MustOpenStore(t, env.cfg)
	jobs, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("expected 1 job, got %d", len(jobs))
	}
	if jobs[0].Prompt != "How do volcanoes work?" {
		t.Fatalf("unexpected prompt %q", jobs[0].Prompt)
	}
	if jobs[0].Style != "Educational" {
		t.Fatalf("expected normalized style, got %q", jobs[0].Style)
	}
	if jobs[0].Status != queue.StatusPending {
		t.Fatalf("expected pending, got %s", jobs[0].Status)
	}
}

func TestStatusShowsJob(t *testing.T) {
	env := setupCLITestEnv(t)
	store := testsupport.MustOpenStore(t, env.cfg)
	job := testsupport.NewJob(t, store, "A day in the life of an octopus", "Storytelling")

	out, _, err := runCLI(t, []string{"status", job.PublicID}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, job.PublicID)
	requireContains(t, out, "pending")
	requireContains(t, out, "octopus")
}

func TestStatusUnknownJobFails(t *testing.T) {
	env := setupCLITestEnv(t)

	_, _, err := runCLI(t, []string{"status", "no-such-id"}, env.configPath)
	if err == nil {
		t.Fatal("expected error for unknown job")
	}
	if !strings.Contains(err.Error(), "no job with id") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	env := setupCLITestEnv(t)
	store := testsupport.MustOpenStore(t, env.cfg)
	pending := testsupport.NewJob(t, store, "Pending prompt", "")
	done := testsupport.NewJob(t, store, "Done prompt", "")
	done.SetCompleted("https://cdn.example/v.mp4", "https://cdn.example/t.jpg")
	if err := store.Update(context.Background(), done); err != nil {
		t.Fatalf("Update: %v", err)
	}

	out, _, err := runCLI(t, []string{"list", "--status", "completed"}, env.configPath)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	requireContains(t, out, done.PublicID)
	if strings.Contains(out, pending.PublicID) {
		t.Fatalf("pending job should be filtered out:\n%s", out)
	}

	_, _, err = runCLI(t, []string{"list", "--status", "bogus"}, env.configPath)
	if err == nil {
		t.Fatal("expected error for unknown status")
	}
}
