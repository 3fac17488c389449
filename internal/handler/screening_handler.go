package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dyscover/dyscover-backend/internal/config"
	"github.com/dyscover/dyscover-backend/internal/model"
	"github.com/dyscover/dyscover-backend/internal/response"
	"github.com/dyscover/dyscover-backend/internal/service"
	"github.com/dyscover/dyscover-backend/internal/session"
	"github.com/dyscover/dyscover-backend/internal/validator"
)

// ScreeningHandler handles the screening test endpoints.
type ScreeningHandler struct {
	screeningService *service.ScreeningService
	cfg              *config.Config
}

// NewScreeningHandler creates a new ScreeningHandler.
func NewScreeningHandler(screeningService *service.ScreeningService, cfg *config.Config) *ScreeningHandler {
	return &ScreeningHandler{screeningService: screeningService, cfg: cfg}
}

// StartSession godoc
// POST /api/v1/screening/sessions
// Starts a screening session and returns its key.
func (h *ScreeningHandler) StartSession(c *gin.Context) {
	var req model.StartSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	key := h.screeningService.StartSession(req.Username, req.ClassName)
	response.Success(c, http.StatusOK, gin.H{
		"session_id": key,
		"message":    "User " + req.Username + " started successfully",
	})
}

// IssuePrompt godoc
// GET /api/v1/screening/sessions/:session_id/questions/:number
// Issues the prompt for a question: an audio stream for listening questions,
// a word prompt for read-aloud questions.
func (h *ScreeningHandler) IssuePrompt(c *gin.Context) {
	q, ok := questionParam(c)
	if !ok {
		return
	}

	prompt, err := h.screeningService.IssuePrompt(c.Request.Context(), c.Param("session_id"), q)
	if err != nil {
		h.failFromError(c, err)
		return
	}

	if prompt.Audio != nil {
		c.Data(http.StatusOK, "audio/mpeg", prompt.Audio)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"word_prompt": prompt.Word})
}

// GradeQuestion godoc
// POST /api/v1/screening/sessions/:session_id/questions/:number
// Submits an answer: JSON for typed questions, an audio upload for spoken
// questions, an image upload for the handwriting question.
func (h *ScreeningHandler) GradeQuestion(c *gin.Context) {
	q, ok := questionParam(c)
	if !ok {
		return
	}
	key := c.Param("session_id")

	switch q {
	case model.QuestionTypedWord:
		var req model.TypedWordAnswerRequest
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
		h.respondGraded(c, q, h.screeningService.GradeTypedWord(key, req.Answer))

	case model.QuestionLetter:
		var req model.LetterAnswerRequest
		if fields := validator.Bind(c, &req); fields != nil {
			response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
			return
		}
		h.respondGraded(c, q, h.screeningService.GradeLetter(key, req.Answer))

	case model.QuestionSpokenWord:
		file, header, ok := h.formFile(c, "audio")
		if !ok {
			return
		}
		defer file.Close()
		h.respondGraded(c, q, h.screeningService.GradeSpokenWord(c.Request.Context(), key, file, header.Filename))

	case model.QuestionReadPassage:
		file, header, ok := h.formFile(c, "audio")
		if !ok {
			return
		}
		defer file.Close()
		h.respondGraded(c, q, h.screeningService.GradeReadPassage(c.Request.Context(), key, file, header.Filename))

	case model.QuestionHandwriting:
		h.gradeHandwriting(c, key)
	}
}

// gradeHandwriting reads the image upload and returns the vision service's
// raw verdict alongside the grading confirmation.
func (h *ScreeningHandler) gradeHandwriting(c *gin.Context, key string) {
	file, header, ok := h.formFile(c, "image")
	if !ok {
		return
	}
	defer file.Close()

	image := make([]byte, header.Size)
	if _, err := io.ReadFull(file, image); err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "image/png"
	}

	verdict, err := h.screeningService.GradeHandwriting(c.Request.Context(), key, image, mimeType)
	if err != nil {
		h.failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"response": verdict})
}

// Finish godoc
// POST /api/v1/screening/sessions/:session_id/finish
// Computes the composite score, persists the record and returns it. A failed
// save still returns the score, flagged with SAVE_FAILED.
func (h *ScreeningHandler) Finish(c *gin.Context) {
	rec, err := h.screeningService.Finish(c.Request.Context(), c.Param("session_id"))
	if err != nil {
		if errors.Is(err, service.ErrSaveFailed) {
			response.FailWithData(c, http.StatusInternalServerError, response.ErrSaveFailed, gin.H{
				"total_score": rec.TotalScore,
				"record":      rec,
			})
			return
		}
		h.failFromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message":     "Test graded successfully",
		"total_score": rec.TotalScore,
		"record":      rec,
	})
}

// History godoc
// GET /api/v1/screening/history?username=&class_name=
// Lists a student's persisted records within a class.
func (h *ScreeningHandler) History(c *gin.Context) {
	username := c.Query("username")
	className := c.Query("class_name")
	if username == "" || className == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrValidation)
		return
	}

	records, err := h.screeningService.History(c.Request.Context(), username, className)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"records": records})
}

// respondGraded converts a grading outcome into the uniform confirmation
// response.
func (h *ScreeningHandler) respondGraded(c *gin.Context, q model.QuestionID, err error) {
	if err != nil {
		h.failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"message": "Question " + strconv.Itoa(int(q)) + " graded successfully",
	})
}

// formFile fetches a required multipart upload and enforces the size limit.
func (h *ScreeningHandler) formFile(c *gin.Context, field string) (multipart.File, *multipart.FileHeader, bool) {
	file, header, err := c.Request.FormFile(field)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return nil, nil, false
	}
	if header.Size > h.cfg.MaxUploadBytes {
		file.Close()
		response.Fail(c, http.StatusBadRequest, response.ErrFileTooLarge)
		return nil, nil, false
	}
	return file, header, true
}

// failFromError maps service and session errors onto the API taxonomy.
func (h *ScreeningHandler) failFromError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, session.ErrNotStarted):
		response.Fail(c, http.StatusBadRequest, response.ErrSessionNotStarted)
	case errors.Is(err, session.ErrAnswerNotSet):
		response.Fail(c, http.StatusBadRequest, response.ErrAnswerNotSet)
	case errors.Is(err, session.ErrNoData):
		response.Fail(c, http.StatusBadRequest, response.ErrNoData)
	case errors.Is(err, service.ErrDownstream):
		response.Fail(c, http.StatusBadGateway, response.ErrDownstream)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}

// questionParam parses and validates the :number route parameter.
func questionParam(c *gin.Context) (model.QuestionID, bool) {
	n, err := strconv.Atoi(c.Param("number"))
	if err != nil || !model.QuestionID(n).Valid() {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidQuestion)
		return 0, false
	}
	return model.QuestionID(n), true
}
