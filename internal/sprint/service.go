// Package sprint normalizes raw Jira sprint and issue data into the stable
// records the board UI consumes.
package sprint

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/sprintqa/qaboard/internal/jira"
)

// Tracker is the subset of the Jira client the normalizer needs.
type Tracker interface {
	ActiveSprint(ctx context.Context, boardID string) (*jira.SprintDetail, error)
	Sprint(ctx context.Context, sprintID string) (*jira.SprintDetail, error)
	SprintIssues(ctx context.Context, sprintID string) ([]jira.Issue, error)
	SearchByParent(ctx context.Context, parentKeys []string) ([]jira.Issue, error)
}

// Service resolves a sprint, fetches its issues, and enriches subtasks with
// one bulk parent search instead of per-issue lookups.
type Service struct {
	tracker Tracker
	boardID string
}

func NewService(tracker Tracker, boardID string) *Service {
	return &Service{tracker: tracker, boardID: boardID}
}

// SprintIssues returns the normalized issues of the given sprint. An empty
// sprintID resolves the board's active sprint; when none is active the result
// is an empty issue list with no sprint, not an error.
func (s *Service) SprintIssues(ctx context.Context, sprintID string) (*Result, error) {
	if sprintID == "" {
		active, err := s.tracker.ActiveSprint(ctx, s.boardID)
		if err != nil {
			return nil, fmt.Errorf("resolve active sprint: %w", err)
		}
		if active == nil {
			return &Result{Issues: []Issue{}}, nil
		}
		sprintID = strconv.FormatInt(active.ID, 10)
	}

	// Sprint detail and issue listing are independent; fetch both at once.
	var (
		wg        sync.WaitGroup
		detail    *jira.SprintDetail
		raw       []jira.Issue
		detailErr error
		issuesErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		detail, detailErr = s.tracker.Sprint(ctx, sprintID)
	}()
	go func() {
		defer wg.Done()
		raw, issuesErr = s.tracker.SprintIssues(ctx, sprintID)
	}()
	wg.Wait()
	if detailErr != nil {
		return nil, fmt.Errorf("fetch sprint detail: %w", detailErr)
	}
	if issuesErr != nil {
		return nil, fmt.Errorf("fetch sprint issues: %w", issuesErr)
	}

	issues := make([]Issue, 0, len(raw))
	keys := make([]string, 0, len(raw))
	for _, in := range raw {
		issues = append(issues, normalize(in))
		if in.Key != "" {
			keys = append(keys, in.Key)
		}
	}

	if len(keys) > 0 {
		children, err := s.tracker.SearchByParent(ctx, keys)
		if err != nil {
			return nil, fmt.Errorf("fetch subtasks: %w", err)
		}
		byParent := groupByParent(children)
		for i := range issues {
			// The bulk search sees subtasks the inline field misses; when it
			// returned anything for this issue it wins.
			if subs := byParent[issues[i].Key]; len(subs) > 0 {
				issues[i].Fields.Subtasks = subs
			}
		}
	}

	result := &Result{Issues: issues}
	if detail != nil {
		result.Sprint = &Sprint{ID: sprintID, Name: detail.Name}
	}
	return result, nil
}

// normalize projects a raw issue onto the fixed field set. Missing optional
// fields come out as nil, Labels and Subtasks as empty slices.
func normalize(in jira.Issue) Issue {
	fields := Fields{
		Summary:  in.Fields.Summary,
		DueDate:  in.Fields.DueDate,
		Labels:   []string{},
		Subtasks: []SubtaskRef{},
	}
	if in.Fields.Assignee != nil {
		fields.Assignee = &User{DisplayName: in.Fields.Assignee.DisplayName}
	}
	if in.Fields.Reporter != nil {
		fields.Reporter = &User{DisplayName: in.Fields.Reporter.DisplayName}
	}
	if len(in.Fields.Labels) > 0 {
		fields.Labels = in.Fields.Labels
	}
	for _, st := range in.Fields.Subtasks {
		fields.Subtasks = append(fields.Subtasks, subtaskRef(st))
	}

	status := ""
	if in.Fields.Status != nil {
		status = in.Fields.Status.Name
	}
	return Issue{Key: in.Key, Fields: fields, Status: status}
}

func subtaskRef(in jira.Issue) SubtaskRef {
	ref := SubtaskRef{Key: in.Key, Summary: in.Fields.Summary}
	if in.Fields.Status != nil {
		name := in.Fields.Status.Name
		ref.Status = &name
	}
	return ref
}

func groupByParent(children []jira.Issue) map[string][]SubtaskRef {
	byParent := make(map[string][]SubtaskRef)
	for _, child := range children {
		if child.Fields.Parent == nil || child.Fields.Parent.Key == "" {
			continue
		}
		key := child.Fields.Parent.Key
		byParent[key] = append(byParent[key], subtaskRef(child))
	}
	return byParent
}
