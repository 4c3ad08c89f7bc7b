package runner_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"kiln/internal/item"
	"kiln/internal/pipeline"
	"kiln/internal/runner"
	"kiln/internal/services"
	"kiln/internal/tree"
)

// scriptedPlugin fails or misbehaves per item name, so one pipeline stage can
// exercise mixed outcomes across sibling tasks.
type scriptedPlugin struct {
	reject      map[string]bool
	validateErr map[string]error
	publishErr  map[string]error
	finalizeErr map[string]error
	panicOn     map[string]bool
	blockOn     map[string]bool
	published   []string
	finalized   []string
}

func (s *scriptedPlugin) Accept(ctx context.Context, settings pipeline.Settings, it *item.Item) (pipeline.Acceptance, error) {
	if s.reject[it.Name] {
		return pipeline.Acceptance{}, nil
	}
	return pipeline.Acceptance{Accepted: true, Checked: true, Visible: true}, nil
}

func (s *scriptedPlugin) Validate(ctx context.Context, settings pipeline.Settings, it *item.Item) error {
	if s.panicOn[it.Name] {
		panic("scripted validate panic")
	}
	return s.validateErr[it.Name]
}

func (s *scriptedPlugin) Publish(ctx context.Context, settings pipeline.Settings, it *item.Item) error {
	if s.blockOn[it.Name] {
		<-ctx.Done()
		return ctx.Err()
	}
	if err := s.publishErr[it.Name]; err != nil {
		return err
	}
	s.published = append(s.published, it.Name)
	return nil
}

func (s *scriptedPlugin) Finalize(ctx context.Context, settings pipeline.Settings, it *item.Item) error {
	if err := s.finalizeErr[it.Name]; err != nil {
		return err
	}
	s.finalized = append(s.finalized, it.Name)
	return nil
}

func buildTree(t *testing.T, plugin *scriptedPlugin, names ...string) (*tree.Tree, map[string]tree.NodeID) {
	t.Helper()
	kinds := map[string]pipeline.Definition{
		"scripted": {
			DefaultFilters: []string{"mari.texture"},
			Factory: func(host pipeline.Host, name string, settings pipeline.Settings) (pipeline.Plugin, error) {
				return plugin, nil
			},
		},
	}
	p, err := pipeline.New([]pipeline.StageConfig{
		{Name: "Publish Textures", Kind: "scripted", Enabled: true},
	}, kinds)
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}

	tr := tree.New()
	tasks := make(map[string]tree.NodeID)
	for _, name := range names {
		tr.AddItem(tr.Root(), item.New("mari.texture", name))
	}
	tr.AttachTasks(p)
	for _, id := range tr.TaskNodes() {
		tasks[tr.Task(id).Item.Name] = id
	}
	return tr, tasks
}

func acceptAll(t *testing.T, r *runner.Runner, tr *tree.Tree) {
	t.Helper()
	if err := r.Accept(context.Background(), tr); err != nil {
		t.Fatalf("Accept: %v", err)
	}
}

func TestAcceptDropsRejectedTasks(t *testing.T) {
	plugin := &scriptedPlugin{reject: map[string]bool{"specular": true}}
	tr, tasks := buildTree(t, plugin, "diffuse", "specular")

	r := runner.New()
	acceptAll(t, r, tr)

	if tr.Task(tasks["specular"]) != nil {
		t.Fatal("rejected task should be removed from the tree")
	}
	kept := tr.Task(tasks["diffuse"])
	if kept == nil || kept.Status != tree.StatusAccepted {
		t.Fatalf("accepted task wrong: %+v", kept)
	}
	if tr.CheckState(tasks["diffuse"]) != tree.Checked {
		t.Fatal("accepted task should take the plugin's checked default")
	}
}

func TestRunIsolatesValidationFailure(t *testing.T) {
	plugin := &scriptedPlugin{
		validateErr: map[string]error{"broken": errors.New("missing source file")},
	}
	tr, tasks := buildTree(t, plugin, "alpha", "broken", "omega")

	r := runner.New()
	acceptAll(t, r, tr)
	report, err := r.Run(context.Background(), tr)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if report.Published != 2 || report.Failed != 1 {
		t.Fatalf("report = published %d failed %d", report.Published, report.Failed)
	}
	failed := tr.Task(tasks["broken"])
	if failed.Status != tree.StatusFailed || failed.ErrorMessage == "" {
		t.Fatalf("failed task wrong: %+v", failed)
	}
	for _, name := range []string{"alpha", "omega"} {
		if tr.Task(tasks[name]).Status != tree.StatusFinalized {
			t.Fatalf("sibling %s should finish despite broken's failure", name)
		}
	}
	for _, result := range report.Results {
		if result.Item == "broken" {
			if result.Phase != runner.PhaseValidate || !errors.Is(result.Err, services.ErrValidation) {
				t.Fatalf("broken result wrong: %+v", result)
			}
		}
	}
}

func TestRunIsolatesPublishFailure(t *testing.T) {
	plugin := &scriptedPlugin{
		publishErr: map[string]error{"broken": errors.New("disk full")},
	}
	tr, tasks := buildTree(t, plugin, "alpha", "broken")

	r := runner.New()
	acceptAll(t, r, tr)
	report, err := r.Run(context.Background(), tr)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if tr.Task(tasks["broken"]).Status != tree.StatusFailed {
		t.Fatal("publish failure should fail its task")
	}
	if tr.Task(tasks["alpha"]).Status != tree.StatusFinalized {
		t.Fatal("sibling should publish despite failure")
	}
	if report.Failed != 1 || report.Published != 1 {
		t.Fatalf("report = %+v", report)
	}
}

func TestRunAbortsOnConfigurationError(t *testing.T) {
	configErr := services.Wrap(services.ErrConfiguration, runner.PhasePublish, "Publish Textures", "unknown dependency name", nil)
	plugin := &scriptedPlugin{
		publishErr: map[string]error{"alpha": configErr},
	}
	tr, tasks := buildTree(t, plugin, "alpha", "omega")

	r := runner.New()
	acceptAll(t, r, tr)
	report, err := r.Run(context.Background(), tr)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error to abort the run, got %v", err)
	}

	if tr.Task(tasks["alpha"]).Status != tree.StatusFailed {
		t.Fatal("offending task should be failed")
	}
	if got := tr.Task(tasks["omega"]).Status; got != tree.StatusValidated {
		t.Fatalf("remaining task should be left unexecuted, got %v", got)
	}
	if len(plugin.published) != 0 {
		t.Fatalf("no further publishes after abort, got %v", plugin.published)
	}
	if report == nil || report.Failed != 1 {
		t.Fatalf("partial report expected, got %+v", report)
	}
}

func TestRunFinalizeFailureIsNonFatal(t *testing.T) {
	plugin := &scriptedPlugin{
		finalizeErr: map[string]error{"alpha": errors.New("registry unreachable")},
	}
	tr, tasks := buildTree(t, plugin, "alpha")

	r := runner.New()
	acceptAll(t, r, tr)
	report, err := r.Run(context.Background(), tr)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if tr.Task(tasks["alpha"]).Status != tree.StatusFinalized {
		t.Fatal("finalize failure must not fail the task")
	}
	if report.Failed != 0 || report.Published != 1 {
		t.Fatalf("report = %+v", report)
	}
}

func TestRunRecoverFromPluginPanic(t *testing.T) {
	plugin := &scriptedPlugin{panicOn: map[string]bool{"boom": true}}
	tr, tasks := buildTree(t, plugin, "boom", "steady")

	r := runner.New()
	acceptAll(t, r, tr)
	report, err := r.Run(context.Background(), tr)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if tr.Task(tasks["boom"]).Status != tree.StatusFailed {
		t.Fatal("panicking plugin should fail its task")
	}
	if tr.Task(tasks["steady"]).Status != tree.StatusFinalized {
		t.Fatal("sibling should survive a plugin panic")
	}
	if report.Failed != 1 || report.Published != 1 {
		t.Fatalf("report = %+v", report)
	}
}

func TestRunPublishTimeout(t *testing.T) {
	plugin := &scriptedPlugin{blockOn: map[string]bool{"slow": true}}
	tr, tasks := buildTree(t, plugin, "slow", "fast")

	r := runner.New(runner.WithPublishTimeout(20 * time.Millisecond))
	acceptAll(t, r, tr)
	report, err := r.Run(context.Background(), tr)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	slow := tr.Task(tasks["slow"])
	if slow.Status != tree.StatusFailed {
		t.Fatal("timed out publish should fail its task")
	}
	for _, result := range report.Results {
		if result.Item == "slow" && !errors.Is(result.Err, services.ErrTimeout) {
			t.Fatalf("expected timeout classification, got %v", result.Err)
		}
	}
	if tr.Task(tasks["fast"]).Status != tree.StatusFinalized {
		t.Fatal("other tasks should be unaffected by the timeout")
	}
}

func TestRunSkipsUncheckedAndInactive(t *testing.T) {
	plugin := &scriptedPlugin{}
	tr, tasks := buildTree(t, plugin, "wanted", "unwanted")

	r := runner.New()
	acceptAll(t, r, tr)
	tr.SetCheckState(tasks["unwanted"], tree.Unchecked, false)

	report, err := r.Run(context.Background(), tr)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Published != 1 || report.Skipped != 1 {
		t.Fatalf("report = published %d skipped %d", report.Published, report.Skipped)
	}
	if got := tr.Task(tasks["unwanted"]).Status; got != tree.StatusAccepted {
		t.Fatalf("skipped task should stay accepted, got %v", got)
	}
}
