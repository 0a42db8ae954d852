package backend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/lernix/lernix-web/internal/dto"
	"github.com/lernix/lernix-web/internal/models"
	"github.com/lernix/lernix-web/internal/observability"
)

type fakeSession struct {
	mu          sync.Mutex
	token       string
	invalidated int
}

func (f *fakeSession) Token() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.invalidated > 0 {
		return ""
	}
	return f.token
}

func (f *fakeSession) Invalidate(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated++
	return nil
}

func newTestClient(t *testing.T, handler http.HandlerFunc, session Session) (*Client, *int) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	hookCalls := 0
	client := New(Options{
		BaseURL: server.URL + "/",
		Logger:  zerolog.Nop(),
		OnUnauthorized: func(context.Context) {
			hookCalls++
		},
	}, session)
	return client, &hookCalls
}

func TestClientAttachesBearerToken(t *testing.T) {
	var gotAuth, gotPath string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"id":1,"title":"Go","description":"Systems"}]`)
	}, &fakeSession{token: "tok-123"})

	courses, err := client.ListCourses(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Bearer tok-123", gotAuth)
	require.Equal(t, "/courses/", gotPath)
	require.Equal(t, []models.Course{{ID: 1, Title: "Go", Description: "Systems"}}, courses)
}

func TestClientForwardsCorrelationID(t *testing.T) {
	var gotID string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get(observability.CorrelationHeader)
		_, _ = io.WriteString(w, `[]`)
	}, &fakeSession{token: "tok"})

	ctx := observability.ContextWithCorrelation(context.Background(), "req-42")
	_, err := client.ListCourses(ctx)
	require.NoError(t, err)
	require.Equal(t, "req-42", gotID)
}

func TestClientUnauthorizedTearsDownSession(t *testing.T) {
	session := &fakeSession{token: "expired"}
	client, hookCalls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"detail":"could not validate user"}`)
	}, session)

	_, err := client.ListChapters(context.Background(), 3)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnauthorized))
	require.Equal(t, 1, session.invalidated)
	require.Equal(t, 1, *hookCalls)
	require.Equal(t, "could not validate user", Message(err, "fallback"))
}

func TestClientWithoutTokenNeverCallsBackend(t *testing.T) {
	called := false
	client, hookCalls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	}, &fakeSession{})

	_, err := client.ListCourses(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
	require.False(t, called)
	require.Equal(t, 1, *hookCalls)
}

func TestClientErrorMessages(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		body     string
		expected string
		notFound bool
	}{
		{name: "string detail", status: http.StatusBadRequest, body: `{"detail":"Title already exists"}`, expected: "Title already exists"},
		{name: "validation list", status: http.StatusUnprocessableEntity, body: `{"detail":[{"msg":"field required"},{"msg":"too long"}]}`, expected: "field required; too long"},
		{name: "no body", status: http.StatusInternalServerError, body: ``, expected: "Failed to load courses"},
		{name: "not json", status: http.StatusBadGateway, body: `<html>bad gateway</html>`, expected: "Failed to load courses"},
		{name: "not found", status: http.StatusNotFound, body: `{"detail":"Course not found"}`, expected: "Course not found", notFound: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			session := &fakeSession{token: "tok"}
			client, hookCalls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			}, session)

			_, err := client.ListCourses(context.Background())
			require.Error(t, err)
			require.Equal(t, tc.expected, Message(err, "Failed to load courses"))
			require.Equal(t, tc.status, Status(err))
			require.Equal(t, tc.notFound, errors.Is(err, ErrNotFound))
			require.False(t, errors.Is(err, ErrUnauthorized))
			require.Zero(t, session.invalidated)
			require.Zero(t, *hookCalls)
		})
	}
}

func TestActivityTimeSendsQuery(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/insights/activity-time", r.URL.Path)
		require.Equal(t, "9", r.URL.Query().Get("course_id"))
		require.Equal(t, "ask", r.URL.Query().Get("activity_type"))
		_, _ = io.WriteString(w, `[{"chapter_id":1,"chapter_name":"Intro","time_spent_seconds":90}]`)
	}, &fakeSession{token: "tok"})

	records, err := client.ActivityTime(context.Background(), 9, models.ActivityAsk)
	require.NoError(t, err)
	require.Equal(t, []models.ActivityTimeRecord{{ChapterID: 1, ChapterName: "Intro", TimeSpentSeconds: 90}}, records)

	_, err = client.ActivityTime(context.Background(), 9, models.ActivityKind("reading"))
	require.Error(t, err)
}

func TestMCQAttemptsOptionalEndpoint(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		present bool
		wantErr bool
	}{
		{name: "available", status: http.StatusOK, body: `[{"chapter_id":1,"chapter_name":"Intro","attempts":4,"avg_score":75}]`, present: true},
		{name: "route missing", status: http.StatusNotFound, body: `{"detail":"Not Found"}`},
		{name: "not implemented", status: http.StatusNotImplemented, body: ``},
		{name: "method not allowed", status: http.StatusMethodNotAllowed, body: `{"detail":"Method Not Allowed"}`},
		{name: "course rejected", status: http.StatusNotFound, body: `{"detail":"Course not found"}`, wantErr: true},
		{name: "server failure", status: http.StatusInternalServerError, body: `{"detail":"boom"}`, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			}, &fakeSession{token: "tok"})

			result, err := client.MCQAttempts(context.Background(), 4)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.present, result.Present)
			if tc.present {
				require.Len(t, result.Value, 1)
				require.Equal(t, 4, result.Value[0].Attempts)
			}
		})
	}
}

func TestLoginUsesFormAndDoesNotTearDown(t *testing.T) {
	client, hookCalls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/token", r.URL.Path)
		require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("password") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"detail":"could not validate user"}`)
			return
		}
		_, _ = io.WriteString(w, `{"access_token":"jwt","token_type":"bearer"}`)
	}, nil)

	token, err := client.Login(context.Background(), dto.LoginRequest{Username: "ada", Password: "secret"})
	require.NoError(t, err)
	require.Equal(t, "jwt", token.AccessToken)

	_, err = client.Login(context.Background(), dto.LoginRequest{Username: "ada", Password: "wrong"})
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrUnauthorized))
	require.Equal(t, http.StatusUnauthorized, Status(err))
	require.Zero(t, *hookCalls)
}

func TestUploadFileSendsMultipart(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/courses/1/chapter/2/files/uploadFile", r.URL.Path)
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		payload, err := io.ReadAll(file)
		require.NoError(t, err)
		require.Equal(t, "notes.txt", header.Filename)
		require.Equal(t, "text/plain", header.Header.Get("Content-Type"))
		require.Equal(t, "hello", string(payload))
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"message":"File uploaded successfully","file_id":5,"file_name":"notes.txt","file_size":5}`)
	}, &fakeSession{token: "tok"})

	uploaded, err := client.UploadFile(context.Background(), 1, 2, "notes.txt", "text/plain", []byte("hello"))
	require.NoError(t, err)
	require.Equal(t, 5, uploaded.FileID)
}

func TestSummarizeAcceptsBareString(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `"plain summary"`)
	}, &fakeSession{token: "tok"})

	summary, err := client.Summarize(context.Background(), 1, 2, 3, dto.SummarizeRequest{DurationSeconds: 12})
	require.NoError(t, err)
	require.Equal(t, "plain summary", summary.Summary)
}

func TestSubmitMCQBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.JSONEq(t, `{"answers":{"1":"A"},"time_spent_seconds":30,"full_questions":[{"q":1}]}`, string(body))
		_, _ = io.WriteString(w, `{"score":{"correct":1,"total":1,"percentage":100},"results":[{"question_number":1,"is_correct":true}]}`)
	}, &fakeSession{token: "tok"})

	result, err := client.SubmitMCQ(context.Background(), 1, 2, 3, dto.SubmitMCQRequest{
		Answers:          map[string]string{"1": "A"},
		TimeSpentSeconds: 30,
		FullQuestions:    []byte(`[{"q":1}]`),
	})
	require.NoError(t, err)
	require.Equal(t, 100.0, result.Score.Percentage)
	require.True(t, result.Results[0].IsCorrect)
}
