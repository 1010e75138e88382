package projects

import "context"

type Repo interface {
	List(ctx context.Context) ([]Project, error)
	Get(ctx context.Context, id string) (*Project, error)
	// Chapters returns the chapters of a project ordered by sequence number
	Chapters(ctx context.Context, projectID string) ([]Chapter, error)
	CreateChapter(ctx context.Context, req NewChapter) (*Chapter, error)
	UpdateChapterStatus(ctx context.Context, chapterID string, status ChapterStatus) (*Chapter, error)
}
