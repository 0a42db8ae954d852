package dto

import (
	"strings"

	"github.com/lernix/lernix-web/internal/models"
)

// CourseRequest is the payload for creating or updating a course.
type CourseRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"max=1000"`
}

// Normalize trims user supplied text.
func (r CourseRequest) Normalize() CourseRequest {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	return r
}

// ChapterRequest is the payload for creating or updating a chapter.
type ChapterRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"max=1000"`
}

// Normalize trims user supplied text.
func (r ChapterRequest) Normalize() ChapterRequest {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	return r
}

// ChapterResponse is a chapter as presented to the browser.
type ChapterResponse struct {
	ID          int    `json:"id"`
	CourseID    int    `json:"course_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// NewChapterResponse flattens the backend chapter naming.
func NewChapterResponse(chapter models.Chapter) ChapterResponse {
	return ChapterResponse{
		ID:          chapter.ID,
		CourseID:    chapter.CourseID,
		Title:       chapter.Name(),
		Description: chapter.ChapterDescription,
	}
}
