package asana

import (
	"context"
	"fmt"

	"github.com/christopherklint97/asananas/internal/allocation"
)

// Source reads the work items of one Asana project. Workspace and project are
// looked up by name on the first fetch and remembered afterwards.
type Source struct {
	Client          *Client
	WorkspaceName   string
	ProjectName     string
	AllocationField string

	projectID string
}

func (s *Source) Name() string {
	return "asana:" + s.WorkspaceName + "/" + s.ProjectName
}

func (s *Source) resolveProject(ctx context.Context) (string, error) {
	if s.projectID != "" {
		return s.projectID, nil
	}
	workspaceID, err := s.Client.FindWorkspace(ctx, s.WorkspaceName)
	if err != nil {
		return "", err
	}
	projectID, err := s.Client.FindProject(ctx, workspaceID, s.ProjectName)
	if err != nil {
		return "", err
	}
	s.projectID = projectID
	return projectID, nil
}

func (s *Source) Tasks(ctx context.Context) ([]Task, error) {
	projectID, err := s.resolveProject(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving asana project: %w", err)
	}
	return s.Client.GetTasks(ctx, projectID)
}

func (s *Source) WorkItems(ctx context.Context) ([]allocation.WorkItem, error) {
	tasks, err := s.Tasks(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]allocation.WorkItem, len(tasks))
	for i, t := range tasks {
		items[i] = t.WorkItem(s.AllocationField)
	}
	return items, nil
}
