package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/lernix/lernix-web/internal/dto"
	"github.com/lernix/lernix-web/internal/observability"
)

var (
	// ErrUploadTooLarge indicates the payload exceeded the configured limit.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
	// ErrUploadTypeNotAllowed indicates the detected type is not a supported document.
	ErrUploadTypeNotAllowed = errors.New("file type not allowed. Allowed types: PDF, DOCX, DOC, TXT")
	// ErrUploadMissing indicates no file was attached.
	ErrUploadMissing = errors.New("file is required")
)

const (
	mimePDF  = "application/pdf"
	mimeDoc  = "application/msword"
	mimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeText = "text/plain"
)

// UploadService checks chapter documents locally before forwarding them to the backend.
type UploadService interface {
	Upload(ctx context.Context, src StudyBackend, courseID, chapterID int, file *multipart.FileHeader) (dto.UploadResponse, error)
}

type uploadService struct {
	logger  zerolog.Logger
	maxSize int64
	tracer  trace.Tracer
}

// NewUploadService constructs an upload service.
func NewUploadService(maxSizeMB int, logger zerolog.Logger) UploadService {
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	return &uploadService{
		logger:  logger.With().Str("component", "upload_service").Logger(),
		maxSize: int64(maxSizeMB) * 1024 * 1024,
		tracer:  otel.Tracer("github.com/lernix/lernix-web/internal/service/upload"),
	}
}

func (s *uploadService) Upload(ctx context.Context, src StudyBackend, courseID, chapterID int, file *multipart.FileHeader) (dto.UploadResponse, error) {
	ctx, span := s.tracer.Start(ctx, "upload.forward", trace.WithAttributes(
		attribute.Int("course.id", courseID),
		attribute.Int("chapter.id", chapterID),
		attribute.Int64("upload.max_bytes", s.maxSize),
	))
	defer span.End()

	if courseID <= 0 || chapterID <= 0 {
		span.SetStatus(codes.Error, "invalid identifier")
		return dto.UploadResponse{}, ErrInvalidID
	}
	if file == nil {
		span.RecordError(ErrUploadMissing)
		span.SetStatus(codes.Error, "validation failed")
		return dto.UploadResponse{}, ErrUploadMissing
	}
	span.SetAttributes(
		attribute.String("upload.original_name", strings.TrimSpace(file.Filename)),
		attribute.Int64("upload.request_size", file.Size),
	)

	if file.Size > s.maxSize {
		return dto.UploadResponse{}, s.reject(span, "size", ErrUploadTooLarge)
	}

	handle, err := file.Open()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "open failed")
		return dto.UploadResponse{}, err
	}
	defer handle.Close()

	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, io.LimitReader(handle, s.maxSize+1)); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "read failed")
		return dto.UploadResponse{}, err
	}
	if int64(buf.Len()) > s.maxSize {
		return dto.UploadResponse{}, s.reject(span, "size", ErrUploadTooLarge)
	}
	if buf.Len() == 0 {
		return dto.UploadResponse{}, s.reject(span, "empty", ErrUploadMissing)
	}

	name := sanitizeFileName(file.Filename)
	fileType := normalizeMime(mimetype.Detect(buf.Bytes()).String(), name)
	span.SetAttributes(attribute.String("upload.detected_mime", fileType))
	if !isAllowedType(fileType) {
		return dto.UploadResponse{}, s.reject(span, "type", ErrUploadTypeNotAllowed)
	}

	uploaded, err := src.UploadFile(ctx, courseID, chapterID, name, fileType, buf.Bytes())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "backend rejected upload")
		return dto.UploadResponse{}, err
	}

	span.SetStatus(codes.Ok, "forwarded")
	s.logger.Info().
		Int("course_id", courseID).
		Int("chapter_id", chapterID).
		Int("file_id", uploaded.FileID).
		Str("mime_type", fileType).
		Msg("chapter file uploaded")

	response := dto.UploadResponse{
		FileID:   uploaded.FileID,
		FileName: uploaded.FileName,
		FileSize: uploaded.FileSize,
		MimeType: fileType,
	}
	if response.FileName == "" {
		response.FileName = name
	}
	if response.FileSize == 0 {
		response.FileSize = int64(buf.Len())
	}
	return response, nil
}

func (s *uploadService) reject(span trace.Span, reason string, err error) error {
	observability.UploadRejected().WithLabelValues(reason).Inc()
	span.RecordError(err)
	span.SetStatus(codes.Error, "rejected: "+reason)
	return err
}

// sanitizeFileName keeps the user's name but drops directories and control characters.
func sanitizeFileName(name string) string {
	base := filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	base = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || r == '"' {
			return -1
		}
		return r
	}, base)
	if base == "" || base == "." || base == "/" {
		base = fmt.Sprintf("upload-%d", time.Now().Unix())
	}
	return base
}

func normalizeMime(detected, fileName string) string {
	lower := strings.ToLower(strings.TrimSpace(detected))
	if idx := strings.Index(lower, ";"); idx >= 0 {
		lower = strings.TrimSpace(lower[:idx])
	}
	// Legacy Word files are sometimes only recognised as a generic OLE container.
	if lower == "application/x-ole-storage" && strings.EqualFold(filepath.Ext(fileName), ".doc") {
		return mimeDoc
	}
	return lower
}

func isAllowedType(m string) bool {
	switch m {
	case mimePDF, mimeDoc, mimeDocx, mimeText:
		return true
	default:
		return false
	}
}
