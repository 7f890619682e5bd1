package report

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/palantir/asana-mailer/internal/asana"
)

// completedSinceNow is the Asana API sentinel meaning "only tasks that are
// currently incomplete".
const completedSinceNow = "now"

// defaultStoryWorkers bounds concurrent story fetches.
const defaultStoryWorkers = 4

// API is the slice of the Asana client the assembler needs.
type API interface {
	GetProject(ctx context.Context, projectGID string) (*asana.Project, error)
	GetTasks(ctx context.Context, projectGID, completedSince string) ([]asana.Task, error)
	GetStories(ctx context.Context, taskGID string) ([]asana.Story, error)
}

// StoryCache is an optional cache of story fetches keyed by task gid and the
// task record's modified_at. Asana bumps modified_at when a comment is
// added, so a matching entry can never serve stale stories. Implementations
// that fail internally should report a miss rather than an error; the cache
// is purely an optimization.
type StoryCache interface {
	Get(taskGID, modifiedAt string) ([]asana.Story, bool)
	Put(taskGID, modifiedAt string, stories []asana.Story) error
}

// AssembleOptions carries the filters and tuning knobs for one run.
type AssembleOptions struct {
	// SectionFilters restricts output to the named sections (marker text
	// with colon). Empty means no section filtering.
	SectionFilters StringSet

	// TagFilters retains only tasks whose tag set is a superset of this set.
	// Empty means no tag filtering.
	TagFilters StringSet

	// CompletedLookback includes tasks completed within this window of now.
	// Zero means only currently incomplete tasks are fetched.
	CompletedLookback time.Duration

	// Workers bounds concurrent story fetches; <=0 uses a small default.
	Workers int

	// Cache, when non-nil, is consulted before each story fetch.
	Cache StoryCache

	// Logger receives progress diagnostics. Nil discards them.
	Logger *slog.Logger
}

// Assemble fetches a project's metadata, tasks, and comment stories, and
// returns the finished filtered tree. Any API error aborts the whole run;
// there is no partial result and no retry, this is a one-shot batch job.
//
// Story fetches for tasks the filters will drop are skipped up front, which
// must be (and is, see NeedsComments) result-identical to fetching
// everything and filtering afterwards. The surviving fetches run on a small
// worker pool; results are slotted by task so ordering is unaffected.
func Assemble(ctx context.Context, api API, projectGID string, now time.Time, opts AssembleOptions) (Project, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	log.Info("assembling report", "project", projectGID)

	proj, err := api.GetProject(ctx, projectGID)
	if err != nil {
		return Project{}, err
	}

	completedSince := completedSinceNow
	if opts.CompletedLookback > 0 {
		completedSince = now.Add(-opts.CompletedLookback).UTC().Truncate(time.Second).Format(time.RFC3339)
		log.Info("retaining completed tasks", "completed_since", completedSince)
	}

	recs, err := api.GetTasks(ctx, projectGID, completedSince)
	if err != nil {
		return Project{}, err
	}

	comments, err := fetchComments(ctx, api, recs, opts, log)
	if err != nil {
		return Project{}, err
	}

	sections, err := BuildSections(recs, comments)
	if err != nil {
		return Project{}, err
	}

	p := Project{
		GID:         proj.GID,
		Name:        proj.Name,
		Description: proj.Notes,
		Sections:    sections,
	}
	return FilterProject(p, opts.SectionFilters, opts.TagFilters), nil
}

// fetchComments retrieves and parses comments for every record that survives
// the early filter decision. The returned map only holds entries for tasks
// that actually have comments.
func fetchComments(ctx context.Context, api API, recs []asana.Task, opts AssembleOptions, log *slog.Logger) (map[string][]Comment, error) {
	// Decide which records need their stories, tracking the section each
	// record will land in. Markers themselves are never rendered, so they
	// are never fetched.
	var wanted []asana.Task
	currentSection := MiscSectionName
	for _, rec := range recs {
		if IsSectionMarker(rec.Name) {
			currentSection = rec.Name
			continue
		}
		if NeedsComments(rec, currentSection, opts.SectionFilters, opts.TagFilters) {
			wanted = append(wanted, rec)
		}
	}

	if len(wanted) == 0 {
		return nil, nil
	}
	log.Info("fetching task comments", "tasks", len(wanted))

	workers := opts.Workers
	if workers <= 0 {
		workers = defaultStoryWorkers
	}

	results := make([][]Comment, len(wanted))
	errs := make([]error, len(wanted))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i, rec := range wanted {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, rec asana.Task) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i], errs[i] = fetchTaskComments(ctx, api, rec, opts.Cache, log)
		}(i, rec)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	comments := make(map[string][]Comment)
	for i, rec := range wanted {
		if len(results[i]) > 0 {
			comments[rec.GID] = results[i]
		}
	}
	return comments, nil
}

func fetchTaskComments(ctx context.Context, api API, rec asana.Task, cache StoryCache, log *slog.Logger) ([]Comment, error) {
	if cache != nil {
		if stories, ok := cache.Get(rec.GID, rec.ModifiedAt); ok {
			return CommentsFromStories(stories)
		}
	}

	stories, err := api.GetStories(ctx, rec.GID)
	if err != nil {
		return nil, err
	}

	if cache != nil {
		// A failed write only costs a refetch next run.
		if err := cache.Put(rec.GID, rec.ModifiedAt, stories); err != nil {
			log.Warn("caching stories failed", "task", rec.GID, "error", err)
		}
	}
	return CommentsFromStories(stories)
}
