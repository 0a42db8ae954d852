package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/lernix/lernix-web/internal/dto"
	"github.com/lernix/lernix-web/internal/models"
)

func filesPath(courseID, chapterID int) string {
	return fmt.Sprintf("/courses/%d/chapter/%d/files", courseID, chapterID)
}

// ListFiles returns the files attached to a chapter.
func (c *Client) ListFiles(ctx context.Context, courseID, chapterID int) ([]models.ChapterFile, error) {
	var files []models.ChapterFile
	err := c.do(ctx, call{
		operation: "files.list",
		method:    http.MethodGet,
		path:      filesPath(courseID, chapterID) + "/",
	}, &files)
	if err != nil {
		return nil, err
	}
	if files == nil {
		files = []models.ChapterFile{}
	}
	return files, nil
}

// UploadFile sends a document as multipart form data under the "file" field.
func (c *Client) UploadFile(ctx context.Context, courseID, chapterID int, fileName, mimeType string, content []byte) (models.UploadedFile, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	header.Set("Content-Type", mimeType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return models.UploadedFile{}, fmt.Errorf("build upload: %w", err)
	}
	if _, err := part.Write(content); err != nil {
		return models.UploadedFile{}, fmt.Errorf("build upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return models.UploadedFile{}, fmt.Errorf("build upload: %w", err)
	}

	var uploaded models.UploadedFile
	err = c.do(ctx, call{
		operation:   "files.upload",
		method:      http.MethodPost,
		path:        filesPath(courseID, chapterID) + "/uploadFile",
		raw:         &buf,
		contentType: writer.FormDataContentType(),
	}, &uploaded)
	return uploaded, err
}

// FileContent returns the extracted text of a file.
func (c *Client) FileContent(ctx context.Context, courseID, chapterID, fileID int) (models.FileContent, error) {
	var content models.FileContent
	err := c.do(ctx, call{
		operation: "files.content",
		method:    http.MethodGet,
		path:      fmt.Sprintf("%s/%d/content", filesPath(courseID, chapterID), fileID),
	}, &content)
	return content, err
}

// RecordViewing reports how long a file was viewed.
func (c *Client) RecordViewing(ctx context.Context, courseID, chapterID, fileID int, req dto.RecordViewingRequest) error {
	return c.do(ctx, call{
		operation: "files.record_viewing",
		method:    http.MethodPost,
		path:      fmt.Sprintf("%s/%d/record-viewing", filesPath(courseID, chapterID), fileID),
		body:      req,
	}, nil)
}

// DeleteFile removes a file.
func (c *Client) DeleteFile(ctx context.Context, courseID, chapterID, fileID int) error {
	return c.do(ctx, call{
		operation: "files.delete",
		method:    http.MethodDelete,
		path:      fmt.Sprintf("%s/delete/%d", filesPath(courseID, chapterID), fileID),
	}, nil)
}

// Summarize asks the AI service for a summary of a file.
func (c *Client) Summarize(ctx context.Context, courseID, chapterID, fileID int, req dto.SummarizeRequest) (models.Summary, error) {
	var raw json.RawMessage
	err := c.do(ctx, call{
		operation: "ai.summarize",
		method:    http.MethodPost,
		path:      fmt.Sprintf("%s/%d/summarize/", filesPath(courseID, chapterID), fileID),
		body:      req,
	}, &raw)
	if err != nil {
		return models.Summary{}, err
	}

	// The summary is returned either wrapped in an object or as a bare string.
	var summary models.Summary
	if err := json.Unmarshal(raw, &summary); err == nil && summary.Summary != "" {
		return summary, nil
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return models.Summary{Summary: text}, nil
	}
	return models.Summary{}, nil
}

// AskQuestion asks the AI service a question about a file.
func (c *Client) AskQuestion(ctx context.Context, courseID, chapterID, fileID int, req dto.AskQuestionRequest) (models.Answer, error) {
	req.Question = strings.TrimSpace(req.Question)
	var answer models.Answer
	err := c.do(ctx, call{
		operation: "ai.ask",
		method:    http.MethodPost,
		path:      fmt.Sprintf("%s/%d/ask_question/", filesPath(courseID, chapterID), fileID),
		body:      req,
	}, &answer)
	if answer.Question == "" {
		answer.Question = req.Question
	}
	return answer, err
}

// CreateMCQ generates a quiz from a file.
func (c *Client) CreateMCQ(ctx context.Context, courseID, chapterID, fileID int) (models.MCQSet, error) {
	var set models.MCQSet
	err := c.do(ctx, call{
		operation: "ai.create_mcq",
		method:    http.MethodPost,
		path:      fmt.Sprintf("%s/%d/createMCQ/", filesPath(courseID, chapterID), fileID),
	}, &set)
	return set, err
}

type submitMCQBody struct {
	Answers          map[string]string `json:"answers"`
	TimeSpentSeconds int               `json:"time_spent_seconds"`
	FullQuestions    json.RawMessage   `json:"full_questions"`
}

// SubmitMCQ grades a quiz attempt.
func (c *Client) SubmitMCQ(ctx context.Context, courseID, chapterID, fileID int, req dto.SubmitMCQRequest) (models.MCQResult, error) {
	fullQuestions := req.FullQuestions
	if len(fullQuestions) == 0 {
		fullQuestions = json.RawMessage("null")
	}

	var result models.MCQResult
	err := c.do(ctx, call{
		operation: "ai.submit_mcq",
		method:    http.MethodPost,
		path:      fmt.Sprintf("%s/%d/createMCQ/submit", filesPath(courseID, chapterID), fileID),
		body: submitMCQBody{
			Answers:          req.Answers,
			TimeSpentSeconds: req.TimeSpentSeconds,
			FullQuestions:    fullQuestions,
		},
	}, &result)
	return result, err
}
