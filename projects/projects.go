// Package projects holds a translator's projects and their chapters.
package projects

import (
	"time"
)

type Status string

const (
	StatusOngoing   Status = "ONGOING"
	StatusCompleted Status = "COMPLETED"
	StatusHiatus    Status = "HIATUS"
	StatusDropped   Status = "DROPPED"
)

type ChapterStatus string

const (
	ChapterDraft     ChapterStatus = "DRAFT"
	ChapterCompleted ChapterStatus = "COMPLETED"
	ChapterPublished ChapterStatus = "PUBLISHED"
)

func (s ChapterStatus) Valid() bool {
	switch s {
	case ChapterDraft, ChapterCompleted, ChapterPublished:
		return true
	}
	return false
}

type Type string

const (
	TypeNovel  Type = "NOVEL"
	TypeManhwa Type = "MANHWA"
)

// MaxActiveProjects is how many ongoing projects a translator may run at once.
const MaxActiveProjects = 3

type Project struct {
	ID                 string    `json:"id"`
	TranslatorID       string    `json:"translator_id"`
	Title              string    `json:"title"`
	OriginalAuthorName string    `json:"original_author_name,omitempty"`
	OriginalLanguage   string    `json:"original_language"`
	TargetLanguage     string    `json:"target_language"`
	Description        string    `json:"description,omitempty"`
	CoverImageURL      string    `json:"cover_image_url,omitempty"`
	ProjectType        Type      `json:"project_type"`
	Genre              string    `json:"genre,omitempty"`
	Tags               []string  `json:"tags,omitempty"`
	Status             Status    `json:"status"`
	TotalChapters      int       `json:"total_chapters"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type Chapter struct {
	ID             string        `json:"id"`
	ProjectID      string        `json:"project_id"`
	SequenceNumber int           `json:"sequence_number"`
	Title          string        `json:"title"`
	Subtitle       string        `json:"subtitle,omitempty"`
	GoogleDocURL   string        `json:"google_doc_url"`
	Status         ChapterStatus `json:"status"`
	PublishedAt    *time.Time    `json:"published_at,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}

// NewChapter is the payload for creating a chapter
type NewChapter struct {
	ProjectID string `json:"projectId"`
	Title     string `json:"title"`
	Sequence  int    `json:"sequence"`
}

// Partitioned groups projects the way the dashboard lists them.
type Partitioned struct {
	Active    []Project `json:"active"`
	Completed []Project `json:"completed"`
	Other     []Project `json:"other"`
}

func Partition(list []Project) Partitioned {
	p := Partitioned{
		Active:    []Project{},
		Completed: []Project{},
		Other:     []Project{},
	}
	for _, project := range list {
		switch project.Status {
		case StatusOngoing:
			p.Active = append(p.Active, project)
		case StatusCompleted:
			p.Completed = append(p.Completed, project)
		default:
			p.Other = append(p.Other, project)
		}
	}
	return p
}

// LimitReached reports whether no further project may be started.
func LimitReached(list []Project) bool {
	return len(Partition(list).Active) >= MaxActiveProjects
}
