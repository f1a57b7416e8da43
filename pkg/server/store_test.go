package server

import (
	"testing"

	hwerrors "github.com/helmwire/helmwire/pkg/errors"
	"github.com/helmwire/helmwire/pkg/host"
)

func deployableFixture(name string) host.DeployableSpec {
	return host.DeployableSpec{
		Name:      name,
		ApplyCmd:  "set -ex;\nhelm upgrade --install " + name + " ./chart 1>&2;\nhelm get manifest " + name,
		DeleteCmd: "helm uninstall " + name + " || true",
		AutoInit:  true,
	}
}

func TestStoreRegisterAndGet(t *testing.T) {
	store := NewStore()

	if err := store.RegisterDeployable(deployableFixture("web")); err != nil {
		t.Fatalf("RegisterDeployable failed: %v", err)
	}

	rec, err := store.GetDeployable("web")
	if err != nil {
		t.Fatalf("GetDeployable failed: %v", err)
	}
	if rec.Name != "web" {
		t.Fatalf("expected name web, got %q", rec.Name)
	}
	if rec.RegisteredAt.IsZero() {
		t.Fatal("expected RegisteredAt to be set")
	}

	if _, err := store.GetDeployable("missing"); !hwerrors.IsCode(err, hwerrors.ErrCodeNotFound) {
		t.Fatalf("expected NOT_FOUND for missing deployable, got %v", err)
	}
}

func TestStoreRejectsInvalidSpec(t *testing.T) {
	store := NewStore()

	err := store.RegisterDeployable(host.DeployableSpec{Name: "web"})
	if !hwerrors.IsCode(err, hwerrors.ErrCodeInvalidRequest) {
		t.Fatalf("expected INVALID_REQUEST for missing applyCmd, got %v", err)
	}

	err = store.RegisterTask(host.TaskSpec{Name: "repo"})
	if !hwerrors.IsCode(err, hwerrors.ErrCodeInvalidRequest) {
		t.Fatalf("expected INVALID_REQUEST for missing argv, got %v", err)
	}
}

func TestStoreSharedNameNamespace(t *testing.T) {
	store := NewStore()

	if err := store.RegisterDeployable(deployableFixture("web")); err != nil {
		t.Fatalf("RegisterDeployable failed: %v", err)
	}

	if err := store.RegisterDeployable(deployableFixture("web")); !hwerrors.IsCode(err, hwerrors.ErrCodeAlreadyExists) {
		t.Fatalf("expected ALREADY_EXISTS for duplicate deployable, got %v", err)
	}

	task := host.TaskSpec{Name: "web", Argv: []string{"helm", "repo", "add", "x", "https://x"}}
	if err := store.RegisterTask(task); !hwerrors.IsCode(err, hwerrors.ErrCodeAlreadyExists) {
		t.Fatalf("expected ALREADY_EXISTS for task reusing deployable name, got %v", err)
	}

	task.Name = "repo"
	if err := store.RegisterTask(task); err != nil {
		t.Fatalf("RegisterTask failed: %v", err)
	}
	if err := store.RegisterDeployable(deployableFixture("repo")); !hwerrors.IsCode(err, hwerrors.ErrCodeAlreadyExists) {
		t.Fatalf("expected ALREADY_EXISTS for deployable reusing task name, got %v", err)
	}
}

func TestStoreAttachments(t *testing.T) {
	store := NewStore()

	if err := store.AttachDependencies("web", []string{"db"}); !hwerrors.IsCode(err, hwerrors.ErrCodeNotFound) {
		t.Fatalf("expected NOT_FOUND attaching to missing deployable, got %v", err)
	}

	if err := store.RegisterDeployable(deployableFixture("web")); err != nil {
		t.Fatalf("RegisterDeployable failed: %v", err)
	}

	if err := store.AttachDependencies("web", []string{"db", "cache"}); err != nil {
		t.Fatalf("AttachDependencies failed: %v", err)
	}
	// Re-attaching an existing dep must not duplicate it.
	if err := store.AttachDependencies("web", []string{"cache", "repo"}); err != nil {
		t.Fatalf("AttachDependencies failed: %v", err)
	}
	if err := store.AttachLabels("web", []string{"backend"}); err != nil {
		t.Fatalf("AttachLabels failed: %v", err)
	}

	rec, err := store.GetDeployable("web")
	if err != nil {
		t.Fatalf("GetDeployable failed: %v", err)
	}

	wantDeps := []string{"db", "cache", "repo"}
	if len(rec.Dependencies) != len(wantDeps) {
		t.Fatalf("expected deps %v, got %v", wantDeps, rec.Dependencies)
	}
	for i, want := range wantDeps {
		if rec.Dependencies[i] != want {
			t.Fatalf("expected deps %v, got %v", wantDeps, rec.Dependencies)
		}
	}
	if len(rec.Labels) != 1 || rec.Labels[0] != "backend" {
		t.Fatalf("expected labels [backend], got %v", rec.Labels)
	}
}

func TestStoreReturnsCopies(t *testing.T) {
	store := NewStore()

	if err := store.RegisterDeployable(deployableFixture("web")); err != nil {
		t.Fatalf("RegisterDeployable failed: %v", err)
	}
	if err := store.AttachLabels("web", []string{"backend"}); err != nil {
		t.Fatalf("AttachLabels failed: %v", err)
	}

	rec, _ := store.GetDeployable("web")
	rec.Labels[0] = "mutated"
	rec.Name = "mutated"

	again, _ := store.GetDeployable("web")
	if again.Labels[0] != "backend" {
		t.Fatalf("store record mutated through returned copy: %v", again.Labels)
	}
}

func TestStoreListDeployablesFilters(t *testing.T) {
	store := NewStore()

	for _, name := range []string{"app-backend", "app-frontend", "infra-db"} {
		if err := store.RegisterDeployable(deployableFixture(name)); err != nil {
			t.Fatalf("RegisterDeployable(%s) failed: %v", name, err)
		}
	}
	if err := store.AttachLabels("app-backend", []string{"app"}); err != nil {
		t.Fatalf("AttachLabels failed: %v", err)
	}
	if err := store.AttachLabels("app-frontend", []string{"app"}); err != nil {
		t.Fatalf("AttachLabels failed: %v", err)
	}

	all := store.ListDeployables("", "")
	if len(all) != 3 {
		t.Fatalf("expected 3 deployables, got %d", len(all))
	}
	// Sorted by name.
	if all[0].Name != "app-backend" || all[2].Name != "infra-db" {
		t.Fatalf("expected sorted listing, got %v, %v, %v", all[0].Name, all[1].Name, all[2].Name)
	}

	labeled := store.ListDeployables("app", "")
	if len(labeled) != 2 {
		t.Fatalf("expected 2 labeled deployables, got %d", len(labeled))
	}

	byName := store.ListDeployables("", "app-*")
	if len(byName) != 2 {
		t.Fatalf("expected 2 name matches, got %d", len(byName))
	}

	both := store.ListDeployables("app", "*frontend")
	if len(both) != 1 || both[0].Name != "app-frontend" {
		t.Fatalf("expected app-frontend only, got %v", both)
	}
}

func TestStoreListTasksSorted(t *testing.T) {
	store := NewStore()

	for _, name := range []string{"repo-b", "repo-a"} {
		task := host.TaskSpec{Name: name, Argv: []string{"helm", "repo", "add", name, "https://charts.example.com"}, AllowParallel: true}
		if err := store.RegisterTask(task); err != nil {
			t.Fatalf("RegisterTask(%s) failed: %v", name, err)
		}
	}

	tasks := store.ListTasks()
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].Name != "repo-a" || tasks[1].Name != "repo-b" {
		t.Fatalf("expected sorted tasks, got %v, %v", tasks[0].Name, tasks[1].Name)
	}

	deployables, taskCount := store.Count()
	if deployables != 0 || taskCount != 2 {
		t.Fatalf("expected counts (0, 2), got (%d, %d)", deployables, taskCount)
	}
}

func TestMatchesPattern(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    bool
	}{
		{"app-backend", "app-backend", true},
		{"app-backend", "app-*", true},
		{"app-backend", "*backend", true},
		{"app-backend", "*-back*", true},
		{"app-backend", "*", true},
		{"app-backend", "infra-*", false},
		{"app-backend", "backend", false},
	}

	for _, tt := range tests {
		if got := matchesPattern(tt.name, tt.pattern); got != tt.want {
			t.Errorf("matchesPattern(%q, %q) = %v, want %v", tt.name, tt.pattern, got, tt.want)
		}
	}
}
