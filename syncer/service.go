package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"togglepace/internal/classify"
	"togglepace/internal/logger"
	"togglepace/internal/prompt"
	"togglepace/internal/timeutil"
	"togglepace/reconcile"
	"togglepace/sevenpace"
	"togglepace/submitter"
	"togglepace/toggl"
	"togglepace/worklog"
)

// ErrAborted is returned when the user refuses a confirmation.
var ErrAborted = errors.New("sync aborted by user")

// Source yields the time entries of one week window.
type Source interface {
	FetchEntries(ctx context.Context, window timeutil.Window) ([]toggl.TimeEntry, error)
}

type Options struct {
	PriorWeek bool
	// DryRun fetches and builds everything but never deletes, publishes or prompts.
	DryRun bool
	// Threshold is the work item id above which entries belong to the legacy tracker.
	Threshold int64
}

type Result struct {
	Window    timeutil.Window
	UserID    string
	Source    []toggl.TimeEntry
	Existing  []sevenpace.Worklog
	Built     []worklog.Entry
	Skipped   []toggl.TimeEntry
	Legacy    []worklog.Entry
	Deleted   worklog.Report
	Published worklog.Report
	DryRun    bool
}

// Failed reports whether any delete or publish call failed.
func (r Result) Failed() bool {
	return !r.Deleted.OK() || !r.Published.OK()
}

type Service struct {
	Source      Source
	Destination sevenpace.Client
	Classifier  *classify.Classifier
	Confirmer   prompt.Confirmer
	Out         io.Writer
	// Timeout bounds every remote call. Prompts are not bounded.
	Timeout time.Duration
	Now     func() time.Time
}

// Run executes one sync: fetch the week's source entries, clear the
// destination week, then classify and publish. Steps run strictly in order.
func (s *Service) Run(ctx context.Context, opts Options) (*Result, error) {
	if s.Source == nil {
		return nil, errors.New("source is required")
	}
	if s.Destination == nil {
		return nil, errors.New("destination client is required")
	}
	if s.Confirmer == nil && !opts.DryRun {
		return nil, errors.New("confirmer is required")
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	classifier := s.Classifier
	if classifier == nil {
		classifier = classify.NewClassifier(nil)
	}

	result := &Result{
		Window: timeutil.WeekWindow(now(), opts.PriorWeek),
		DryRun: opts.DryRun,
	}
	s.printf("Start: %s\n", result.Window.StartDay())
	s.printf("End: %s\n", result.Window.EndDay())
	logger.Info("sync started", "window", result.Window.String(), "dry_run", opts.DryRun)

	var err error
	err = s.call(ctx, func(ctx context.Context) error {
		result.Source, err = s.Source.FetchEntries(ctx, result.Window)
		return err
	})
	if err != nil {
		return result, fmt.Errorf("fetch source entries: %w", err)
	}
	if err := s.printJSON(result.Source); err != nil {
		return result, err
	}

	if err := s.clearWeek(ctx, result, opts); err != nil {
		return result, err
	}

	var user sevenpace.User
	err = s.call(ctx, func(ctx context.Context) error {
		user, err = s.Destination.CurrentUser(ctx)
		return err
	})
	if err != nil {
		return result, fmt.Errorf("fetch 7pace user: %w", err)
	}
	result.UserID = user.ID
	s.printf("USER_ID=%s\n", user.ID)

	var types []sevenpace.ActivityType
	err = s.call(ctx, func(ctx context.Context) error {
		types, err = s.Destination.ListActivityTypes(ctx)
		return err
	})
	if err != nil {
		return result, fmt.Errorf("fetch 7pace activity types: %w", err)
	}
	names := sevenpace.ActivityNames(types)
	if err := s.printJSON(names); err != nil {
		return result, err
	}

	result.Built, result.Skipped = submitter.BuildWorklogs(result.Source, user.ID, classifier, names)
	for range result.Skipped {
		s.printf("Ignoring entry with negative duration (pending timer)\n")
	}
	if err := s.printJSON(submitter.Payloads(result.Built)); err != nil {
		return result, err
	}

	if err := s.publish(ctx, result, opts); err != nil {
		return result, err
	}

	logger.Info(
		"sync finished",
		"window", result.Window.String(),
		"deleted", result.Deleted.Succeeded(),
		"published", result.Published.Succeeded(),
		"legacy", len(result.Legacy),
		"failed", result.Deleted.Failed()+result.Published.Failed(),
	)
	return result, nil
}

func (s *Service) clearWeek(ctx context.Context, result *Result, opts Options) error {
	var (
		all []sevenpace.Worklog
		err error
	)
	err = s.call(ctx, func(ctx context.Context) error {
		all, err = s.Destination.ListWorklogs(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("fetch 7pace worklogs: %w", err)
	}

	result.Existing = reconcile.SelectInWindow(all, result.Window)
	if len(result.Existing) == 0 {
		s.printf("No entries already there in 7pace for this week\n")
		return nil
	}
	if err := s.printJSON(reconcile.Comments(result.Existing)); err != nil {
		return err
	}

	if opts.DryRun {
		s.printf("Dry run: %d entries would be deleted\n", len(result.Existing))
		return nil
	}

	ok, err := s.Confirmer.Confirm(ctx, fmt.Sprintf("Deleting %d entries. Continue ? (y/n)", len(result.Existing)))
	if err != nil {
		return fmt.Errorf("confirm deletion: %w", err)
	}
	if !ok {
		return ErrAborted
	}

	result.Deleted = reconcile.DeleteAll(ctx, timedDeleter{client: s.Destination, service: s}, result.Existing)
	for _, failure := range result.Deleted.Failures() {
		s.printf("Error deleting worklog %s\n%v\n", failure.Ref, failure.Err)
	}
	if result.Deleted.OK() {
		s.printf("%s\n", prompt.Success(fmt.Sprintf("%d worklogs deleted successfully", result.Deleted.Total())))
	} else {
		s.printf("%s\n", prompt.Failure(fmt.Sprintf(
			"Deleted %d of %d worklogs, %d failed",
			result.Deleted.Succeeded(),
			result.Deleted.Total(),
			result.Deleted.Failed(),
		)))
	}
	return nil
}

func (s *Service) publish(ctx context.Context, result *Result, opts Options) error {
	toPublish, legacy := submitter.Partition(result.Built, opts.Threshold)
	result.Legacy = legacy

	if len(result.Built) == 0 {
		s.printf("No entries to add for this week\n")
		return nil
	}

	if opts.DryRun {
		s.printf("Dry run: %d entries would be added, %d legacy entries\n", len(toPublish), len(legacy))
		return s.printLegacy(legacy)
	}

	ok, err := s.Confirmer.Confirm(ctx, fmt.Sprintf("%d entries to add. Continue ? (y/n)", len(result.Built)))
	if err != nil {
		return fmt.Errorf("confirm publishing: %w", err)
	}
	if !ok {
		return ErrAborted
	}

	result.Published = submitter.Publish(ctx, timedCreator{client: s.Destination, service: s}, toPublish)
	for _, failure := range result.Published.Failures() {
		s.printf("Error publishing worklog %q\n%v\n", failure.Comment, failure.Err)
	}
	if result.Published.OK() {
		s.printf("%s\n", prompt.Success("Succeeded"))
	} else {
		s.printf("%s\n", prompt.Failure(fmt.Sprintf(
			"Published %d of %d worklogs, %d failed",
			result.Published.Succeeded(),
			result.Published.Total(),
			result.Published.Failed(),
		)))
	}
	return s.printLegacy(legacy)
}

func (s *Service) printLegacy(legacy []worklog.Entry) error {
	if len(legacy) == 0 {
		return nil
	}
	s.printf("%s\n", prompt.Heading("TFS entries:"))
	return s.printJSON(submitter.Payloads(legacy))
}

// call runs fn with the per-operation timeout applied.
func (s *Service) call(ctx context.Context, fn func(context.Context) error) error {
	if s.Timeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()
	return fn(ctx)
}

func (s *Service) printf(format string, args ...any) {
	if s.Out == nil {
		return
	}
	fmt.Fprintf(s.Out, format, args...)
}

func (s *Service) printJSON(value any) error {
	if s.Out == nil {
		return nil
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("render json: %w", err)
	}
	s.printf("%s\n", payload)
	return nil
}

type timedDeleter struct {
	client  sevenpace.Client
	service *Service
}

func (d timedDeleter) DeleteWorklog(ctx context.Context, id string) error {
	return d.service.call(ctx, func(ctx context.Context) error {
		return d.client.DeleteWorklog(ctx, id)
	})
}

type timedCreator struct {
	client  sevenpace.Client
	service *Service
}

func (c timedCreator) CreateWorklog(ctx context.Context, payload sevenpace.NewWorklog) (created sevenpace.Worklog, err error) {
	err = c.service.call(ctx, func(ctx context.Context) error {
		created, err = c.client.CreateWorklog(ctx, payload)
		return err
	})
	if err == nil {
		if printErr := c.service.printJSON(created); printErr != nil {
			logger.Debug("created worklog not printed", "err", printErr)
		}
	}
	return created, err
}
