package server

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Toulik-Das/get-meeting-minutes/internal/apperr"
	"github.com/Toulik-Das/get-meeting-minutes/internal/media"
	"github.com/Toulik-Das/get-meeting-minutes/internal/pipeline"
)

type apiError struct {
	Code    apperr.Kind `json:"code"`
	Message string      `json:"message"`
}

// handleMinutes accepts a meeting recording upload and streams generated
// minutes back as server-sent events. Credentials arrive in headers and
// live only for this request.
func (s *Server) handleMinutes(c *gin.Context) {
	ctx := c.Request.Context()
	reqID := uuid.NewString()

	fh, err := c.FormFile("file")
	if err != nil {
		writeError(c, apperr.E(apperr.KindInvalidArgument, "upload", "missing multipart field 'file'", err))
		return
	}

	// reject unsupported types before touching the payload
	if _, err := media.Classify(fh.Filename); err != nil {
		writeError(c, err)
		return
	}

	if err := os.MkdirAll(s.cfg.Paths.Temp, 0755); err != nil {
		writeError(c, apperr.E(apperr.KindInternal, "upload", "could not create temp directory", err))
		return
	}

	uploadPath := filepath.Join(s.cfg.Paths.Temp, reqID+"_"+filepath.Base(fh.Filename))
	if err := c.SaveUploadedFile(fh, uploadPath); err != nil {
		writeError(c, apperr.E(apperr.KindInternal, "upload", "failed to store upload", err))
		return
	}
	defer func() {
		if err := os.Remove(uploadPath); err != nil {
			s.logger.Warn(ctx, "[%s] Failed to cleanup upload %s: %v", reqID, uploadPath, err)
		}
	}()

	s.logger.Info(ctx, "[%s] Processing upload: %s (%d bytes)", reqID, fh.Filename, fh.Size)

	res := s.pipe.Run(ctx, pipeline.Request{
		InputPath:        uploadPath,
		TranscriptionKey: c.GetHeader("X-Transcription-Key"),
		GenerationKey:    c.GetHeader("X-Generation-Key"),
		RegistryToken:    c.GetHeader("X-Registry-Token"),
	})

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)

	for {
		select {
		case chunk, ok := <-res.Chunks:
			if !ok {
				s.finishStream(c, reqID, res)
				c.Writer.Flush()
				return
			}
			c.SSEvent("chunk", chunk)
			c.Writer.Flush()
		case <-ctx.Done():
			return
		}
	}
}

// finishStream emits the terminal event once the chunk channel closes.
func (s *Server) finishStream(c *gin.Context, reqID string, res *pipeline.Result) {
	ctx := c.Request.Context()

	if err := <-res.Errs; err != nil {
		s.logger.Error(ctx, "[%s] Pipeline failed: %v", reqID, err)
		c.SSEvent("error", apiError{
			Code:    apperr.KindOf(err),
			Message: apperr.UserMessage(err),
		})
		return
	}

	s.logger.Info(ctx, "[%s] Minutes stream complete", reqID)
	c.SSEvent("done", "")
}

func writeError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)

	var ae *apperr.Error
	if errors.As(err, &ae) {
		c.JSON(status, apiError{
			Code:    ae.Kind,
			Message: apperr.UserMessage(err),
		})
		return
	}

	c.JSON(status, apiError{
		Code:    apperr.KindInternal,
		Message: http.StatusText(status),
	})
}
