package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/OlmosJT/studio-tarjimon-io/comments"
	"github.com/OlmosJT/studio-tarjimon-io/internal/errors"
	"github.com/OlmosJT/studio-tarjimon-io/profiles"
	"github.com/OlmosJT/studio-tarjimon-io/projects"
)

type projectsView struct {
	projects.Partitioned
	Projects     []projects.Project `json:"projects"`
	LimitReached bool               `json:"limit_reached"`
}

func (s *Server) ListProjectsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.deps.Projects.List(r.Context())
		if err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, projectsView{
			Partitioned:  projects.Partition(list),
			Projects:     list,
			LimitReached: projects.LimitReached(list),
		})
	}
}

func (s *Server) GetProjectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		project, err := s.deps.Projects.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, project)
	}
}

func (s *Server) ListChaptersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		chapters, err := s.deps.Projects.Chapters(r.Context(), r.PathValue("id"))
		if err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, chapters)
	}
}

func (s *Server) CreateChapterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req projects.NewChapter
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, "invalid_request", "malformed request body", http.StatusBadRequest)
			return
		}
		// The path names the project
		req.ProjectID = r.PathValue("id")

		chapter, err := s.deps.Projects.CreateChapter(r.Context(), req)
		if err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, chapter)
	}
}

func (s *Server) UpdateChapterStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Status projects.ChapterStatus `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSONError(w, "invalid_request", "malformed request body", http.StatusBadRequest)
			return
		}

		chapter, err := s.deps.Projects.UpdateChapterStatus(r.Context(), r.PathValue("id"), body.Status)
		if err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, chapter)
	}
}

func (s *Server) ListCommentsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.deps.Comments.List(r.Context())
		if err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// ReplyToCommentHandler answers a comment as the signed in user
func (s *Server) ReplyToCommentHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := userFromContext(r.Context())

		var body struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSONError(w, "invalid_request", "malformed request body", http.StatusBadRequest)
			return
		}

		reply, err := s.deps.Comments.Reply(r.Context(), comments.Reply{
			ParentID: r.PathValue("id"),
			UserID:   user.ID,
			Author: comments.Author{
				Username:  user.DisplayName(),
				AvatarURL: user.AvatarURL,
			},
			Content: body.Content,
		})
		if err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, reply)
	}
}

func (s *Server) ListFollowersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.deps.Followers.List(r.Context())
		if err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func (s *Server) ToggleFollowHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ok, err := s.deps.Followers.ToggleFollow(r.Context(), r.PathValue("id"))
		if err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": ok})
	}
}

func (s *Server) GetProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := userFromContext(r.Context())
		profile, err := s.deps.Profiles.Get(r.Context(), user)
		if err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

func (s *Server) UpdateProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := userFromContext(r.Context())

		var update profiles.Update
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			writeJSONError(w, "invalid_request", "malformed request body", http.StatusBadRequest)
			return
		}

		// Make sure the profile exists before merging into it
		if _, err := s.deps.Profiles.Get(r.Context(), user); err != nil {
			writeRepoError(w, err)
			return
		}
		profile, err := s.deps.Profiles.Update(r.Context(), user.ID, update)
		if err != nil {
			writeRepoError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

func (s *Server) UpdatePasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, _ := userFromContext(r.Context())

		var body struct {
			CurrentPassword string `json:"currentPassword"`
			NewPassword     string `json:"newPassword"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSONError(w, "invalid_request", "malformed request body", http.StatusBadRequest)
			return
		}

		if _, err := s.deps.Profiles.Get(r.Context(), user); err != nil {
			writeRepoError(w, err)
			return
		}
		if err := s.deps.Profiles.UpdatePassword(r.Context(), user.ID, body.CurrentPassword, body.NewPassword); err != nil {
			writeRepoError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// writeRepoError maps a repository failure onto an HTTP error
func writeRepoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errors.ErrNotFound):
		writeJSONError(w, "not_found", err.Error(), http.StatusNotFound)
	case errors.Is(err, errors.ErrInvalidRequest), errors.Is(err, errors.ErrWeakPassword):
		writeJSONError(w, "invalid_request", err.Error(), http.StatusBadRequest)
	case errors.Is(err, errors.ErrInvalidPassword):
		writeJSONError(w, "invalid_password", err.Error(), http.StatusForbidden)
	case errors.Is(err, errors.ErrNetwork):
		writeJSONError(w, "temporarily_unavailable", err.Error(), http.StatusServiceUnavailable)
	default:
		log.Err(err).Msg("dashboard request failed")
		writeJSONError(w, "server_error", "internal error", http.StatusInternalServerError)
	}
}
