package api

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/ergolab/human-factors-backend/internal/analysis"
	"github.com/ergolab/human-factors-backend/internal/ergo"
	"github.com/ergolab/human-factors-backend/internal/pose"
)

// memoryThreshold is how much of a multipart body is held in memory before
// spilling to disk. The request-level cap is enforced separately.
const memoryThreshold = 32 << 20

// ─── HEALTH ───────────────────────────────────────────────────────────────────

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]any{
		"service": "human-factors-backend",
		"version": "1.0.0",
		"endpoints": []string{
			"/health",
			"/analyze",
			"/batch-analyze",
			"/compare-postures",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// ─── SINGLE ANALYSIS ──────────────────────────────────────────────────────────

// analyzeResponse is the single-capture envelope.
type analyzeResponse struct {
	Success bool `json:"success"`
	*analysis.Result
}

// handleAnalyze runs the full pipeline on one uploaded image.
//
// Multipart fields:
//   - file                  image upload (required)
//   - image_context         free-text context embedded in the insight prompt
//   - generate_llm_insights "true"/"false", default true
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !s.parseUpload(w, r) {
		return
	}

	image, _, ok := s.formFile(w, r, "file")
	if !ok {
		return
	}

	contextText := r.FormValue("image_context")
	wantInsights := formBool(r, "generate_llm_insights", true)

	result, err := s.analysis.AnalyzeImage(r.Context(), image, contextText, wantInsights)
	if err != nil {
		switch {
		case errors.Is(err, pose.ErrNoDetection):
			// Not an error from the client's point of view: the image was
			// valid, it just contained nobody to analyze.
			respond(w, http.StatusOK, map[string]any{
				"success": false,
				"message": "No people detected in the image",
			})
		case isInvalidData(err):
			respondErr(w, http.StatusUnprocessableEntity, err.Error())
		default:
			s.respondInternalErr(w, r, err)
		}
		return
	}

	respond(w, http.StatusOK, analyzeResponse{Success: true, Result: result})
}

// ─── BATCH ANALYSIS ───────────────────────────────────────────────────────────

// batchResponse is the batch envelope.
type batchResponse struct {
	Success bool `json:"success"`
	*analysis.BatchResult
}

// handleBatchAnalyze scores every uploaded image and, when requested, a
// research summary over the successes.
//
// Multipart fields:
//   - files            image uploads (at least one required)
//   - image_context    free-text study context embedded in the summary prompt
//   - generate_summary "true"/"false", default true
func (s *Server) handleBatchAnalyze(w http.ResponseWriter, r *http.Request) {
	if !s.parseUpload(w, r) {
		return
	}

	captures, ok := s.formFiles(w, r, "files")
	if !ok {
		return
	}

	batch := s.analysis.AnalyzeBatch(r.Context(), captures, analysis.BatchOptions{
		StudyContext: r.FormValue("image_context"),
		WantSummary:  formBool(r, "generate_summary", true),
	})

	respond(w, http.StatusOK, batchResponse{Success: true, BatchResult: batch})
}

// ─── POSTURE COMPARISON ───────────────────────────────────────────────────────

// compareResponse is the longitudinal envelope.
type compareResponse struct {
	Success bool `json:"success"`
	*analysis.ComparisonResult
}

// handleComparePostures compares a current capture against previous ones.
//
// Multipart fields:
//   - current_file   current image upload (required)
//   - previous_files previous image uploads (at least one required)
//   - time_period    label for the interval, default "over the past week"
func (s *Server) handleComparePostures(w http.ResponseWriter, r *http.Request) {
	if !s.parseUpload(w, r) {
		return
	}

	currentImage, currentName, ok := s.formFile(w, r, "current_file")
	if !ok {
		return
	}
	previous, ok := s.formFiles(w, r, "previous_files")
	if !ok {
		return
	}

	timePeriod := r.FormValue("time_period")
	if strings.TrimSpace(timePeriod) == "" {
		timePeriod = "over the past week"
	}

	result, err := s.analysis.Compare(r.Context(),
		analysis.Capture{Name: currentName, Image: currentImage},
		previous,
		timePeriod,
	)
	if err != nil {
		switch {
		case errors.Is(err, pose.ErrNoDetection):
			respondErr(w, http.StatusBadRequest, "No people detected in current image")
		case isInvalidData(err):
			respondErr(w, http.StatusUnprocessableEntity, err.Error())
		default:
			s.respondInternalErr(w, r, err)
		}
		return
	}

	respond(w, http.StatusOK, compareResponse{Success: true, ComparisonResult: result})
}

// ─── UPLOAD HELPERS ───────────────────────────────────────────────────────────

// parseUpload enforces the request size cap and parses the multipart form.
// Returns false (with a 400 written) on malformed input.
func (s *Server) parseUpload(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(memoryThreshold); err != nil {
		respondErr(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return false
	}
	return true
}

// formFile reads one required upload field into memory. Returns ok=false with
// a 400 written when the field is missing or unreadable.
func (s *Server) formFile(w http.ResponseWriter, r *http.Request, field string) (data []byte, name string, ok bool) {
	file, header, err := r.FormFile(field)
	if err != nil {
		respondErr(w, http.StatusBadRequest, "missing upload field: "+field)
		return nil, "", false
	}
	defer file.Close()

	data, err = io.ReadAll(file)
	if err != nil {
		respondErr(w, http.StatusBadRequest, "reading upload "+field+": "+err.Error())
		return nil, "", false
	}
	return data, header.Filename, true
}

// formFiles reads a repeated upload field into captures, preserving
// submission order. Returns ok=false with a 400 written when the field is
// absent or any file is unreadable.
func (s *Server) formFiles(w http.ResponseWriter, r *http.Request, field string) ([]analysis.Capture, bool) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		respondErr(w, http.StatusBadRequest, "missing upload field: "+field)
		return nil, false
	}

	headers := r.MultipartForm.File[field]
	captures := make([]analysis.Capture, 0, len(headers))
	for _, header := range headers {
		data, err := readUpload(header)
		if err != nil {
			respondErr(w, http.StatusBadRequest, "reading upload "+header.Filename+": "+err.Error())
			return nil, false
		}
		captures = append(captures, analysis.Capture{Name: header.Filename, Image: data})
	}
	return captures, true
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// formBool parses an optional boolean form value, falling back to def when
// the field is absent or unparseable.
func formBool(r *http.Request, field string, def bool) bool {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func isInvalidData(err error) bool {
	var invalid *ergo.InvalidDataError
	return errors.As(err, &invalid)
}
