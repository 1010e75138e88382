package comments

import (
	"time"

	"github.com/OlmosJT/studio-tarjimon-io/internal/utils"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func seedComments() []Comment {
	soloLeveling := Context{ProjectID: "p2", ProjectTitle: "Solo Leveling: Arise", ChapterTitle: "Chapter 50"}

	return []Comment{
		{
			ID:        "uuid-c1",
			ChapterID: "chapter-uuid-1",
			UserID:    "user-uuid-101",
			Content:   "Wait, did Ye Xiu actually mean to do that? The strategy seems too risky!",
			CreatedAt: ts("2023-12-04T10:00:00Z"),
			UpdatedAt: ts("2023-12-04T10:00:00Z"),
			Author:    Author{Username: "FanBoy99", AvatarURL: "https://i.pravatar.cc/150?u=fanboy"},
			Context:   Context{ProjectID: "p1", ProjectTitle: "The King's Avatar", ChapterTitle: "Chapter 12"},
			Replies:   []Comment{},
		},
		{
			ID:        "uuid-c2",
			ChapterID: "chapter-uuid-50",
			UserID:    "user-uuid-102",
			Content:   "The translation quality here is amazing. Thanks for the hard work!",
			CreatedAt: ts("2023-12-03T14:30:00Z"),
			UpdatedAt: ts("2023-12-03T14:30:00Z"),
			Author:    Author{Username: "SungJinWooFan", AvatarURL: "https://i.pravatar.cc/150?u=jinwoo"},
			Context:   soloLeveling,
			Replies: []Comment{
				{
					ID:              "uuid-reply-1",
					ChapterID:       "chapter-uuid-50",
					UserID:          "translator-uuid",
					ParentCommentID: utils.Ptr("uuid-c2"),
					Content:         "Thank you! I tried really hard to capture the original tone.",
					CreatedAt:       ts("2023-12-03T15:00:00Z"),
					UpdatedAt:       ts("2023-12-03T15:00:00Z"),
					Author:          Author{Username: "Olmos Davronov", AvatarURL: "/avatar-default.png"},
					Context:         soloLeveling,
					Replies:         []Comment{},
				},
			},
		},
	}
}
