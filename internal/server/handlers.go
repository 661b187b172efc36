package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/rafael/autoapply/internal/compose"
	"github.com/rafael/autoapply/internal/db"
	"github.com/rafael/autoapply/internal/extract"
	"github.com/rafael/autoapply/internal/jobs"
	"github.com/rafael/autoapply/internal/keywords"
	"github.com/rafael/autoapply/internal/mail"
	"github.com/rafael/autoapply/internal/types"
)

// decodeAndValidate parses a JSON body into dst and runs struct
// validation, writing the error response itself on failure.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "validation_error", "invalid request body")
		return false
	}
	if err := s.validator.Struct(dst); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "validation_error", extractValidationErrors(err))
		return false
	}
	return true
}

// handleCreateSession issues a guest session token carrying the
// application quota.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "not_configured", "sessions are not configured")
		return
	}

	sessionID := uuid.NewString()
	remaining, err := s.db.EnsureSession(r.Context(), sessionID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "internal_error", "failed to create session")
		return
	}

	token, err := s.sessions.IssueToken(sessionID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "internal_error", "failed to issue session token")
		return
	}

	s.jsonResponse(w, http.StatusCreated, map[string]any{
		"session_id":      sessionID,
		"token":           token,
		"remaining_quota": remaining,
	})
}

type extractResponse struct {
	Profile     *types.CandidateProfile `json:"profile"`
	SearchTerms *keywords.SearchTerms   `json:"search_terms"`
}

// handleExtractResume accepts a multipart résumé upload, extracts a
// candidate profile and derives job search terms from it.
func (s *Server) handleExtractResume(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, extract.MaxUploadSize)
	if err := r.ParseMultipartForm(extract.MaxUploadSize); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "validation_error", "upload too large or malformed, limit is 5MB")
		return
	}

	file, header, err := r.FormFile("resume")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "validation_error", "missing resume file field")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "validation_error", "failed to read resume file")
		return
	}

	text, err := extract.Text(header.Filename, data)
	if err != nil {
		s.errorFrom(w, err)
		return
	}

	profile, err := s.policy.Extract(r.Context(), text)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "internal_error", "failed to extract profile")
		return
	}

	terms := s.deriver.Derive(r.Context(), profile)
	s.jsonResponse(w, http.StatusOK, extractResponse{Profile: profile, SearchTerms: terms})
}

type aggregateRequest struct {
	Keywords []string `json:"keywords" validate:"required,min=1"`
	Location string   `json:"location"`
}

// handleAggregateJobs fans out the query to every job board adapter and
// returns the merged, deduplicated postings.
func (s *Server) handleAggregateJobs(w http.ResponseWriter, r *http.Request) {
	var req aggregateRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	postings, err := s.aggregator.Aggregate(r.Context(), jobs.Query{
		Keywords: req.Keywords,
		Location: req.Location,
	})
	if err != nil {
		s.errorFrom(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"jobs":  postings,
		"count": len(postings),
	})
}

type matchRequest struct {
	Profile *types.CandidateProfile `json:"profile" validate:"required"`
	Jobs    []types.JobPosting      `json:"jobs" validate:"required,min=1"`
}

// handleMatchJobs scores the postings against the profile and returns
// them ranked by relevance.
func (s *Server) handleMatchJobs(w http.ResponseWriter, r *http.Request) {
	if s.llm == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "not_configured", "matching requires an LLM, set GEMINI_API_KEY")
		return
	}

	var req matchRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	results, err := s.matcher.Rank(r.Context(), req.Profile, req.Jobs)
	if err != nil {
		s.errorResponse(w, http.StatusBadGateway, "matching_failed", "matching failed")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"matches": results,
		"count":   len(results),
	})
}

type composeRequest struct {
	Profile *types.CandidateProfile `json:"profile" validate:"required"`
	Jobs    []types.JobPosting      `json:"jobs" validate:"required,min=1,max=5"`
}

// handleComposeApplications builds an application draft per job: cover
// letter, subject and recipient. An unresolved recipient never fails the
// batch: the draft is returned with an empty recipient plus a warning so
// the caller can review or fill it in before sending.
func (s *Server) handleComposeApplications(w http.ResponseWriter, r *http.Request) {
	var req composeRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	drafts := make([]*types.ApplicationDraft, 0, len(req.Jobs))
	var warnings []string
	for i := range req.Jobs {
		job := req.Jobs[i]
		s.enricher.Enrich(r.Context(), &job)

		draft, err := s.composer.Compose(r.Context(), req.Profile, job)
		if err != nil {
			var noRecipient *compose.NoRecipientFoundError
			if errors.As(err, &noRecipient) && draft != nil {
				warnings = append(warnings, err.Error())
				drafts = append(drafts, draft)
				continue
			}
			s.errorResponse(w, http.StatusInternalServerError, "internal_error", "failed to compose application for "+job.Title)
			return
		}
		drafts = append(drafts, draft)
	}

	response := map[string]any{
		"drafts": drafts,
		"count":  len(drafts),
	}
	if len(warnings) > 0 {
		response["warnings"] = warnings
	}
	s.jsonResponse(w, http.StatusOK, response)
}

type resumeAttachment struct {
	Filename    string `json:"filename" validate:"required"`
	Content     string `json:"content" validate:"required"` // base64
	ContentType string `json:"content_type"`
}

type sendRequest struct {
	Profile *types.CandidateProfile   `json:"profile" validate:"required"`
	Drafts  []*types.ApplicationDraft `json:"drafts" validate:"required,min=1,max=5"`
	Resume  *resumeAttachment         `json:"resume,omitempty"`
}

// handleSendApplications dispatches composed drafts by email. When guest
// sessions are configured the request must carry a session token and the
// batch is charged against the session quota before any send.
func (s *Server) handleSendApplications(w http.ResponseWriter, r *http.Request) {
	if !s.cfg.MailConfigured() {
		s.errorResponse(w, http.StatusServiceUnavailable, "not_configured", "no mail transport configured")
		return
	}

	var req sendRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	var remaining = -1
	if s.sessions != nil {
		claims, err := s.sessions.ValidateToken(bearerToken(r))
		if err != nil {
			s.errorResponse(w, http.StatusUnauthorized, "unauthorized", "missing or invalid session token")
			return
		}

		remaining, err = s.db.ConsumeQuota(r.Context(), claims.SessionID, len(req.Drafts))
		if err != nil {
			var quota *db.QuotaExceededError
			if errors.As(err, &quota) {
				s.errorFrom(w, err)
				return
			}
			s.errorResponse(w, http.StatusInternalServerError, "internal_error", "failed to check session quota")
			return
		}
	}

	var resume *mail.Attachment
	if req.Resume != nil {
		content, err := base64.StdEncoding.DecodeString(req.Resume.Content)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "validation_error", "resume content is not valid base64")
			return
		}
		resume = &mail.Attachment{
			Filename:    req.Resume.Filename,
			Content:     content,
			ContentType: req.Resume.ContentType,
		}
	}

	drafts, err := s.dispatcher.Dispatch(r.Context(), req.Profile, req.Drafts, resume)
	if err != nil {
		log.Printf("[server] dispatch failed: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "internal_error", "failed to dispatch applications")
		return
	}

	sent, failed := 0, 0
	for _, draft := range drafts {
		if draft.Status == types.StatusSent {
			sent++
		} else {
			failed++
		}
	}

	response := map[string]any{
		"applications": drafts,
		"sent":         sent,
		"failed":       failed,
	}
	if remaining >= 0 {
		response["remaining_quota"] = remaining
	}
	s.jsonResponse(w, http.StatusOK, response)
}

// handleApplicationStats reports the recorded send outcomes.
func (s *Server) handleApplicationStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.Stats(r.Context())
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "internal_error", "failed to load stats")
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"total":  stats.Total,
		"sent":   stats.Sent,
		"failed": stats.Failed,
	})
}
