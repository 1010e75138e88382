package projects

import "time"

const (
	KingsAvatarID  = "f47ac10b-58cc-4372-a567-0e02b2c3d479"
	SoloLevelingID = "550e8400-e29b-41d4-a716-446655440000"
	OmniscientID   = "6ba7b810-9dad-11d1-80b4-00c04fd430c8"
)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func seedProjects() []Project {
	return []Project{
		{
			ID:               KingsAvatarID,
			TranslatorID:     "user-uuid-1",
			Title:            "The King's Avatar: Return of the Glory",
			OriginalLanguage: "zh",
			TargetLanguage:   "uz",
			ProjectType:      TypeNovel,
			Status:           StatusOngoing,
			TotalChapters:    120,
			CoverImageURL:    "https://m.media-amazon.com/images/I/81+y+rWwJFL._AC_UF1000,1000_QL80_.jpg",
			CreatedAt:        ts("2023-10-01T10:00:00Z"),
			UpdatedAt:        ts("2023-12-04T08:30:00Z"),
		},
		{
			ID:               SoloLevelingID,
			TranslatorID:     "user-uuid-1",
			Title:            "Solo Leveling: Arise",
			OriginalLanguage: "ko",
			TargetLanguage:   "uz",
			ProjectType:      TypeNovel,
			Description:      "This is Korean Manhwa which is best sold in the world.",
			Status:           StatusOngoing,
			TotalChapters:    270,
			CoverImageURL:    "https://m.media-amazon.com/images/I/81X4R7QhFkL._AC_UF1000,1000_QL80_.jpg",
			CreatedAt:        ts("2023-01-15T10:00:00Z"),
			UpdatedAt:        ts("2023-11-20T14:00:00Z"),
		},
		{
			ID:               OmniscientID,
			TranslatorID:     "user-uuid-1",
			Title:            "Omniscient Reader's Viewpoint",
			OriginalLanguage: "ko",
			TargetLanguage:   "uz",
			ProjectType:      TypeNovel,
			Status:           StatusOngoing,
			TotalChapters:    55,
			CoverImageURL:    "https://m.media-amazon.com/images/I/81B-L1w5ZWL._AC_UF1000,1000_QL80_.jpg",
			CreatedAt:        ts("2023-08-05T10:00:00Z"),
			UpdatedAt:        ts("2023-12-01T09:15:00Z"),
		},
	}
}

func seedChapters() []Chapter {
	// Out of order on purpose; reads sort by sequence number.
	return []Chapter{
		{
			ID:             "c3",
			ProjectID:      KingsAvatarID,
			SequenceNumber: 3,
			Title:          "The Third Goddess",
			GoogleDocURL:   docURLPrefix + "mock-doc-2",
			Status:         ChapterDraft,
			CreatedAt:      ts("2023-10-05T10:00:00Z"),
		},
		{
			ID:             "c1",
			ProjectID:      KingsAvatarID,
			SequenceNumber: 1,
			Title:          "The Beginning of the End",
			Subtitle:       "Introduction",
			GoogleDocURL:   docURLPrefix + "mock-doc-1",
			Status:         ChapterPublished,
			CreatedAt:      ts("2023-10-01T10:00:00Z"),
		},
		{
			ID:             "c2",
			ProjectID:      KingsAvatarID,
			SequenceNumber: 2,
			Title:          "The Second Step",
			GoogleDocURL:   docURLPrefix + "mock-doc-2",
			Status:         ChapterCompleted,
			CreatedAt:      ts("2023-10-05T10:00:00Z"),
		},
	}
}
