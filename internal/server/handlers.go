package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/jonathan/resume-scorer/internal/apperr"
	"github.com/jonathan/resume-scorer/internal/ingestion"
	"github.com/jonathan/resume-scorer/internal/logger"
	"github.com/jonathan/resume-scorer/internal/types"
)

// Form field names
const (
	fieldJDText     = "jd_text"
	fieldJDFile     = "jd_file"
	fieldResumeText = "resume_text"
	fieldResumeFile = "resume_file"
	fieldTopK       = "top_k"
)

// maxFormMemory is the multipart size kept in memory before spilling to disk.
const maxFormMemory = 8 << 20

// handleScore generates questions from the job description and scores the résumé
// against them.
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	topK, err := s.topK(r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	jdText, resumeText, err := s.resolveBoth(r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	// A dropped client must not abandon model calls half way through
	ctx := context.WithoutCancel(r.Context())
	log := s.log.With(zap.String(logger.FieldRequestID, RequestID(ctx)))

	questions, err := s.cfg.Generator.Generate(ctx, jdText)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	log.Debug("questions generated", zap.Int("count", questions.Total()))

	result, err := s.cfg.Scorer.Score(ctx, questions, resumeText, topK)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.ScoreResponse{
		Success:             true,
		Result:              result,
		JDTextLength:        utf8.RuneCountInString(jdText),
		ResumeTextLength:    utf8.RuneCountInString(resumeText),
		JDTokenEstimate:     ingestion.EstimateTokens(jdText),
		ResumeTokenEstimate: ingestion.EstimateTokens(resumeText),
		JDText:              jdText,
		ResumeText:          resumeText,
		Questions:           questions,
		Message:             scoreMessage(result),
	})
}

func scoreMessage(result *types.ResumeRagResult) string {
	n := len(result.Questions)
	if n == 0 {
		return "No screening questions were generated for this job description."
	}
	if result.FailedQuestions > 0 {
		return fmt.Sprintf("Scored %d questions (%d could not be scored).", n, result.FailedQuestions)
	}
	return fmt.Sprintf("Scored %d questions.", n)
}

// handleQuestions only generates the screening questions.
func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	jdText, err := s.resolve(r, "jd", fieldJDText, fieldJDFile, s.cfg.MaxJDChars)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	questions, err := s.cfg.Generator.Generate(context.WithoutCancel(r.Context()), jdText)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, questions)
}

// handleEstimate reports text lengths and token estimates without calling a model.
func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r); err != nil {
		s.errorResponse(w, r, err)
		return
	}

	jdText, resumeText, err := s.resolveBoth(r)
	if err != nil {
		s.errorResponse(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, types.TokenEstimateResponse{
		JDTextLength:        utf8.RuneCountInString(jdText),
		ResumeTextLength:    utf8.RuneCountInString(resumeText),
		JDTokenEstimate:     ingestion.EstimateTokens(jdText),
		ResumeTokenEstimate: ingestion.EstimateTokens(resumeText),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, s.cfg.Metrics.Render())
}

// parseForm reads a multipart or urlencoded body, bounded by room for two uploads.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) error {
	limit := 2*s.cfg.Extractor.MaxUploadBytes + 1<<20
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	err := r.ParseMultipartForm(maxFormMemory)
	if err == nil || errors.Is(err, http.ErrNotMultipart) {
		return nil
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperr.TooLarge(apperr.CodeUploadTooLarge,
			fmt.Sprintf("request body is too large (>%d bytes).", limit))
	}
	return apperr.Wrap(apperr.KindClient, apperr.CodeInvalidInput, "could not parse form body", err)
}

func (s *Server) topK(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.PostFormValue(fieldTopK))
	if raw == "" {
		return s.cfg.TopK, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation(fmt.Sprintf("top_k must be an integer, got %q.", raw))
	}
	form := types.ScoreForm{TopK: n}
	if err := form.Validate(); err != nil {
		return 0, apperr.Validation(fmt.Sprintf("top_k must be between 0 and 20, got %d.", n))
	}
	if n == 0 {
		return s.cfg.TopK, nil
	}
	return n, nil
}

func (s *Server) resolveBoth(r *http.Request) (string, string, error) {
	jdText, err := s.resolve(r, "jd", fieldJDText, fieldJDFile, s.cfg.MaxJDChars)
	if err != nil {
		return "", "", err
	}
	resumeText, err := s.resolve(r, "resume", fieldResumeText, fieldResumeFile, s.cfg.MaxResumeChars)
	if err != nil {
		return "", "", err
	}
	return jdText, resumeText, nil
}

func (s *Server) resolve(r *http.Request, label, textField, fileField string, maxChars int) (string, error) {
	upload, err := s.formUpload(r, fileField)
	if err != nil {
		return "", err
	}
	return s.cfg.Extractor.Resolve(ingestion.Source{
		Label: label,
		Text:  r.PostFormValue(textField),
		File:  upload,
	}, maxChars)
}

// formUpload reads a file part. A missing part, or an empty part without a filename as
// sent by browsers for an untouched file input, yields nil.
func (s *Server) formUpload(r *http.Request, field string) (*ingestion.Upload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	f, hdr, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindClient, apperr.CodeInvalidInput, fmt.Sprintf("could not read %s", field), err)
	}
	defer func(f multipart.File) { _ = f.Close() }(f)

	if hdr.Filename == "" && hdr.Size == 0 {
		return nil, nil
	}

	// One byte over the limit is enough for the extractor to reject it
	data, err := io.ReadAll(io.LimitReader(f, s.cfg.Extractor.MaxUploadBytes+1))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindClient, apperr.CodeInvalidInput, fmt.Sprintf("could not read %s", field), err)
	}
	return &ingestion.Upload{
		Filename:    hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
