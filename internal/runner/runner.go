package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"kiln/internal/logging"
	"kiln/internal/pipeline"
	"kiln/internal/services"
	"kiln/internal/tree"
)

// Lifecycle phase names used for context annotation and error detail.
const (
	PhaseAccept   = "accept"
	PhaseValidate = "validate"
	PhasePublish  = "publish"
	PhaseFinalize = "finalize"
)

// Runner drives the publish lifecycle over a tree: accept, validate, publish,
// finalize. Tasks fail independently; configuration errors abort the run.
type Runner struct {
	logger         *slog.Logger
	publishTimeout time.Duration
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the structured logger used for phase events.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithPublishTimeout bounds each task's publish call. Zero disables the bound.
func WithPublishTimeout(timeout time.Duration) Option {
	return func(r *Runner) {
		if timeout > 0 {
			r.publishTimeout = timeout
		}
	}
}

// New creates a runner with the supplied options.
func New(opts ...Option) *Runner {
	r := &Runner{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Accept asks every task's plugin whether it applies to its item. Rejected
// tasks (and tasks whose Accept call errors) are removed from the tree; the
// rest take the plugin's suggested visibility and initial check state, with
// the disabled floor still enforced by the tree.
func (r *Runner) Accept(ctx context.Context, tr *tree.Tree) error {
	for _, id := range tr.TaskNodes() {
		if err := ctx.Err(); err != nil {
			return err
		}
		task := tr.Task(id)
		desc := task.Plugin

		phaseCtx := services.WithPhase(ctx, PhaseAccept)
		phaseCtx = services.WithItem(phaseCtx, task.Item.Name)
		phaseCtx = services.WithPlugin(phaseCtx, desc.Name())
		logger := logging.WithContext(phaseCtx, r.logger)

		acceptance, err := callAccept(phaseCtx, task)
		if err != nil {
			logger.Warn("plugin accept failed, dropping task", logging.Error(err))
			tr.RemoveTask(id)
			continue
		}
		if !acceptance.Accepted {
			logger.Debug("plugin rejected item, dropping task")
			tr.RemoveTask(id)
			continue
		}

		task.Visible = acceptance.Visible
		task.Required = acceptance.Required
		task.Advance(tree.StatusAccepted)
		if acceptance.Checked || acceptance.Required {
			tr.SetCheckState(id, tree.Checked, false)
		}
	}
	return nil
}

// Run executes validate, publish, and finalize over every checked, enabled,
// effectively-active accepted task. Validation and publish failures isolate
// to their task; finalize failures only warn. A configuration error aborts
// the run immediately and is returned alongside the partial report.
func (r *Runner) Run(ctx context.Context, tr *tree.Tree) (*Report, error) {
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	runLogger := r.logger.With(logging.String(logging.FieldRunID, runID))

	report := &Report{RunID: runID, StartedAt: time.Now().UTC()}
	var work []*execution
	for _, id := range tr.TaskNodes() {
		task := tr.Task(id)
		if task.Status != tree.StatusAccepted {
			continue
		}
		if tr.CheckState(id) != tree.Checked || !task.Enabled || !tr.ItemActive(id) {
			report.Skipped++
			continue
		}
		work = append(work, &execution{node: id, task: task})
	}

	runLogger.Info(
		"publish run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.Int("tasks", len(work)),
		logging.Int("skipped", report.Skipped),
	)

	var fatal error
	fatal = r.validateAll(ctx, runLogger, work)
	if fatal == nil {
		fatal = r.publishAll(ctx, runLogger, work)
	}
	if fatal == nil {
		r.finalizeAll(ctx, runLogger, work)
	}

	report.FinishedAt = time.Now().UTC()
	for _, exec := range work {
		result := TaskResult{
			Item:     exec.task.Item.Name,
			Plugin:   exec.task.Plugin.Name(),
			Status:   exec.task.Status,
			Phase:    exec.phase,
			Err:      exec.err,
			Duration: exec.duration,
		}
		report.Results = append(report.Results, result)
		switch {
		case exec.task.Status == tree.StatusFailed:
			report.Failed++
		case exec.task.Status == tree.StatusFinalized:
			report.Published++
		default:
			// Tasks never reached after an aborted run.
			report.Skipped++
		}
	}

	runLogger.Info(
		"publish run finished",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("published", report.Published),
		logging.Int("failed", report.Failed),
		logging.Int("skipped", report.Skipped),
		logging.Duration("run_duration", report.FinishedAt.Sub(report.StartedAt)),
	)
	if fatal != nil {
		runLogger.Error("publish run aborted", logging.Error(fatal))
	}
	return report, fatal
}

type execution struct {
	node     tree.NodeID
	task     *tree.Task
	phase    string
	err      error
	duration time.Duration
}

func (r *Runner) validateAll(ctx context.Context, logger *slog.Logger, work []*execution) error {
	for _, exec := range work {
		phaseCtx := r.phaseContext(ctx, PhaseValidate, exec.task)
		phaseLogger := logging.WithContext(phaseCtx, logger)

		err := callPlugin(phaseCtx, exec.task, PhaseValidate)
		if err == nil {
			exec.task.Advance(tree.StatusValidated)
			continue
		}
		if !tagged(err) {
			err = services.Wrap(services.ErrValidation, PhaseValidate, exec.task.Plugin.Name(), exec.task.Item.Name, err)
		}
		if services.IsFatal(err) {
			r.fail(phaseLogger, exec, PhaseValidate, err)
			return err
		}
		r.fail(phaseLogger, exec, PhaseValidate, err)
	}
	return nil
}

func (r *Runner) publishAll(ctx context.Context, logger *slog.Logger, work []*execution) error {
	for _, exec := range work {
		if exec.task.Status != tree.StatusValidated {
			continue
		}
		phaseCtx := r.phaseContext(ctx, PhasePublish, exec.task)
		phaseLogger := logging.WithContext(phaseCtx, logger)

		callCtx := phaseCtx
		cancel := context.CancelFunc(func() {})
		if r.publishTimeout > 0 {
			callCtx, cancel = context.WithTimeout(phaseCtx, r.publishTimeout)
		}
		start := time.Now()
		err := callPlugin(callCtx, exec.task, PhasePublish)
		exec.duration = time.Since(start)
		cancel()

		if err == nil {
			exec.task.Advance(tree.StatusPublished)
			phaseLogger.Info(
				"task published",
				logging.String(logging.FieldEventType, "task_published"),
				logging.Duration("task_duration", exec.duration),
			)
			continue
		}
		if errors.Is(err, context.DeadlineExceeded) {
			err = services.Wrap(services.ErrTimeout, PhasePublish, exec.task.Plugin.Name(),
				fmt.Sprintf("%s: publish exceeded %s", exec.task.Item.Name, r.publishTimeout), err)
		} else if !tagged(err) {
			err = services.Wrap(services.ErrTransient, PhasePublish, exec.task.Plugin.Name(), exec.task.Item.Name, err)
		}
		if services.IsFatal(err) {
			r.fail(phaseLogger, exec, PhasePublish, err)
			return err
		}
		r.fail(phaseLogger, exec, PhasePublish, err)
	}
	return nil
}

func (r *Runner) finalizeAll(ctx context.Context, logger *slog.Logger, work []*execution) {
	for _, exec := range work {
		if exec.task.Status != tree.StatusPublished {
			continue
		}
		phaseCtx := r.phaseContext(ctx, PhaseFinalize, exec.task)
		phaseLogger := logging.WithContext(phaseCtx, logger)

		if err := callPlugin(phaseCtx, exec.task, PhaseFinalize); err != nil {
			// The publish already landed; finalize trouble must not undo it.
			phaseLogger.Warn("finalize failed", logging.Error(err))
		}
		exec.task.Advance(tree.StatusFinalized)
	}
}

func (r *Runner) phaseContext(ctx context.Context, phase string, task *tree.Task) context.Context {
	ctx = services.WithPhase(ctx, phase)
	ctx = services.WithItem(ctx, task.Item.Name)
	return services.WithPlugin(ctx, task.Plugin.Name())
}

func (r *Runner) fail(logger *slog.Logger, exec *execution, phase string, err error) {
	exec.phase = phase
	exec.err = err
	message := strings.TrimSpace(err.Error())
	exec.task.SetFailed(message)
	logger.Error(
		"task failed",
		logging.String(logging.FieldEventType, "task_failure"),
		logging.String("error_message", message),
		logging.Error(err),
	)
}

// callAccept invokes the plugin's Accept with panic recovery.
func callAccept(ctx context.Context, task *tree.Task) (acceptance pipeline.Acceptance, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("plugin panic: %v", rec)
		}
	}()
	return task.Plugin.Plugin().Accept(ctx, task.Settings, task.Item)
}

// callPlugin invokes the named lifecycle method with panic recovery, so a
// misbehaving plugin fails its task instead of the process.
func callPlugin(ctx context.Context, task *tree.Task, phase string) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("plugin panic: %v", rec)
		}
	}()
	plugin := task.Plugin.Plugin()
	switch phase {
	case PhaseValidate:
		return plugin.Validate(ctx, task.Settings, task.Item)
	case PhasePublish:
		return plugin.Publish(ctx, task.Settings, task.Item)
	case PhaseFinalize:
		return plugin.Finalize(ctx, task.Settings, task.Item)
	default:
		return fmt.Errorf("unknown phase %q", phase)
	}
}

func tagged(err error) bool {
	for _, marker := range []error{
		services.ErrConfiguration,
		services.ErrValidation,
		services.ErrExternalTool,
		services.ErrNotFound,
		services.ErrTimeout,
		services.ErrTransient,
	} {
		if errors.Is(err, marker) {
			return true
		}
	}
	return false
}
