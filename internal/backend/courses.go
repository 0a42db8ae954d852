package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/lernix/lernix-web/internal/dto"
	"github.com/lernix/lernix-web/internal/models"
)

// ListCourses returns the courses owned by the session user.
func (c *Client) ListCourses(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	err := c.do(ctx, call{operation: "courses.list", method: http.MethodGet, path: "/courses/"}, &courses)
	if err != nil {
		return nil, err
	}
	if courses == nil {
		courses = []models.Course{}
	}
	return courses, nil
}

// CreateCourse creates a course.
func (c *Client) CreateCourse(ctx context.Context, req dto.CourseRequest) (models.Course, error) {
	var course models.Course
	err := c.do(ctx, call{
		operation: "courses.create",
		method:    http.MethodPost,
		path:      "/courses/createCourse",
		body:      req,
	}, &course)
	return course, err
}

// UpdateCourse replaces a course's title and description.
func (c *Client) UpdateCourse(ctx context.Context, courseID int, req dto.CourseRequest) (models.Course, error) {
	var course models.Course
	err := c.do(ctx, call{
		operation: "courses.update",
		method:    http.MethodPut,
		path:      fmt.Sprintf("/courses/updateCourse/%d", courseID),
		body:      req,
	}, &course)
	return course, err
}

// DeleteCourse deletes a course; the backend cascades to its chapters.
func (c *Client) DeleteCourse(ctx context.Context, courseID int) error {
	return c.do(ctx, call{
		operation: "courses.delete",
		method:    http.MethodDelete,
		path:      fmt.Sprintf("/courses/deleteCourse/%d", courseID),
	}, nil)
}

// ListChapters returns a course's chapters in backend order.
func (c *Client) ListChapters(ctx context.Context, courseID int) ([]models.Chapter, error) {
	var chapters []models.Chapter
	err := c.do(ctx, call{
		operation: "chapters.list",
		method:    http.MethodGet,
		path:      fmt.Sprintf("/courses/%d/chapter", courseID),
	}, &chapters)
	if err != nil {
		return nil, err
	}
	if chapters == nil {
		chapters = []models.Chapter{}
	}
	return chapters, nil
}

// GetChapter returns one chapter.
func (c *Client) GetChapter(ctx context.Context, courseID, chapterID int) (models.Chapter, error) {
	var chapter models.Chapter
	err := c.do(ctx, call{
		operation: "chapters.get",
		method:    http.MethodGet,
		path:      fmt.Sprintf("/courses/%d/chapter/%d", courseID, chapterID),
	}, &chapter)
	return chapter, err
}

// CreateChapter adds a chapter to a course.
func (c *Client) CreateChapter(ctx context.Context, courseID int, req dto.ChapterRequest) (models.Chapter, error) {
	var chapter models.Chapter
	err := c.do(ctx, call{
		operation: "chapters.create",
		method:    http.MethodPost,
		path:      fmt.Sprintf("/courses/%d/chapter/createChapter/", courseID),
		body:      req,
	}, &chapter)
	return chapter, err
}

// UpdateChapter replaces a chapter's title and description.
func (c *Client) UpdateChapter(ctx context.Context, courseID, chapterID int, req dto.ChapterRequest) (models.Chapter, error) {
	var chapter models.Chapter
	err := c.do(ctx, call{
		operation: "chapters.update",
		method:    http.MethodPut,
		path:      fmt.Sprintf("/courses/%d/chapter/updateChapter/%d", courseID, chapterID),
		body:      req,
	}, &chapter)
	return chapter, err
}

// DeleteChapter removes a chapter.
func (c *Client) DeleteChapter(ctx context.Context, courseID, chapterID int) error {
	return c.do(ctx, call{
		operation: "chapters.delete",
		method:    http.MethodDelete,
		path:      fmt.Sprintf("/courses/%d/chapter/deleteChapter/%d", courseID, chapterID),
	}, nil)
}
