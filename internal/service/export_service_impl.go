package service

import (
	"context"

	"github.com/Now-Tiger/Flow/internal/export"
	"github.com/Now-Tiger/Flow/internal/repository"
)

type exportService struct {
	loader   workspaceLoader
	observer UseCaseObserver
}

func NewExportService(
	projects repository.ProjectRepo,
	groups repository.TaskGroupRepo,
	tasks repository.TaskRepo,
	observers ...UseCaseObserver,
) ExportService {
	return &exportService{
		loader:   workspaceLoader{projects: projects, groups: groups, tasks: tasks},
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *exportService) Export(ctx context.Context, userID, projectID string, format export.Format) (file *ExportFile, err error) {
	done := startUseCase(ctx, s.observer, "export-project", map[string]any{
		"project_id": projectID,
		"format":     format,
	})
	defer func() { done(err) }()

	var ws *workspace
	ws, err = s.loader.load(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	doc := export.NewDocument(*ws.project, ws.groups, ws.tasks)
	var content string
	content, err = export.Render(doc, format)
	if err != nil {
		return nil, err
	}
	return &ExportFile{
		Filename:    export.Filename(*ws.project, format),
		ContentType: format.ContentType(),
		Content:     content,
	}, nil
}
