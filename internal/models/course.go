package models

import "time"

// Course is a study course owned by the authenticated user.
type Course struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Chapter belongs to exactly one course.
type Chapter struct {
	ID                 int    `json:"id"`
	CourseID           int    `json:"course_id"`
	ChapterTitle       string `json:"chapter_title"`
	ChapterDescription string `json:"chapter_description"`
	Title              string `json:"title,omitempty"`
}

// Name returns the chapter title, accepting either field the backend emits.
func (c Chapter) Name() string {
	if c.ChapterTitle != "" {
		return c.ChapterTitle
	}
	return c.Title
}

// ChapterFile is a document uploaded to a chapter.
type ChapterFile struct {
	ID         int        `json:"id"`
	FileName   string     `json:"file_name"`
	FilePath   string     `json:"file_path,omitempty"`
	FileType   string     `json:"file_type,omitempty"`
	MimeType   string     `json:"mime_type,omitempty"`
	FileSize   int64      `json:"file_size"`
	ChapterID  int        `json:"chapter_id"`
	CourseID   int        `json:"course_id"`
	UploadedAt *time.Time `json:"uploaded_at,omitempty"`
}

// UploadedFile is the backend acknowledgement of a stored upload.
type UploadedFile struct {
	Message  string `json:"message"`
	FileID   int    `json:"file_id"`
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
	FilePath string `json:"file_path"`
}

// FileContent carries the extracted text of a chapter file.
type FileContent struct {
	FileID   int    `json:"file_id"`
	FileName string `json:"file_name"`
	Content  string `json:"content"`
}

// CourseTimeTotal is the backend's per-course accumulated study time.
type CourseTimeTotal struct {
	CourseID              int     `json:"course_id"`
	CourseTitle           string  `json:"course_title"`
	TotalTimeSpentSeconds float64 `json:"total_time_spent_seconds"`
}
