// Package comments holds reader comments on chapters, threaded by parent.
package comments

import (
	"context"
	"time"
)

type Author struct {
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// Context locates the chapter a comment was left on
type Context struct {
	ProjectID    string `json:"project_id"`
	ProjectTitle string `json:"project_title"`
	ChapterTitle string `json:"chapter_title"`
}

type Comment struct {
	ID              string    `json:"id"`
	ChapterID       string    `json:"chapter_id"`
	UserID          string    `json:"user_id"`
	ParentCommentID *string   `json:"parent_comment_id"`
	Content         string    `json:"content"`
	IsSpoiler       bool      `json:"is_spoiler"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Author          Author    `json:"author"`
	Context         Context   `json:"context"`
	Replies         []Comment `json:"replies"`
}

// Reply is a new answer to an existing comment
type Reply struct {
	ParentID string
	UserID   string
	Author   Author
	Content  string
}

type Repo interface {
	List(ctx context.Context) ([]Comment, error)
	Reply(ctx context.Context, reply Reply) (*Comment, error)
}
