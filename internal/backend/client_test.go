package backend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anamnesa/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{BaseURL: server.URL + "/"})
	require.NoError(t, err)
	return client
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{})
	assert.Error(t, err)
}

func TestStartInterview(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, defaultStartPath, r.URL.Path)
		assert.NotEmpty(t, r.Header.Get(requestIDHeader))
		writeJSON(w, http.StatusOK, `{"step":1,"total_steps":5,"question":{"text":"Apa keluhan utama Anda?"}}`)
	})

	info, err := client.StartInterview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StartInfo{Step: 1, TotalSteps: 5, Question: domain.Question{Text: "Apa keluhan utama Anda?"}}, info)
}

func TestStartInterviewFailures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{name: "error field", status: http.StatusInternalServerError, body: `{"error":"database down"}`, want: domain.ErrServer},
		{name: "error field on 200", status: http.StatusOK, body: `{"error":"quota"}`, want: domain.ErrServer},
		{name: "non json", status: http.StatusBadGateway, body: `<html>bad gateway</html>`, want: domain.ErrProtocol},
		{name: "status without error", status: http.StatusNotFound, body: `{}`, want: domain.ErrProtocol},
		{name: "missing question", status: http.StatusOK, body: `{"step":1,"total_steps":5}`, want: domain.ErrProtocol},
		{name: "zero total", status: http.StatusOK, body: `{"step":1,"total_steps":0,"question":{"text":"q"}}`, want: domain.ErrProtocol},
		{name: "array body", status: http.StatusOK, body: `[1,2]`, want: domain.ErrProtocol},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, tc.status, tc.body)
			})
			_, err := client.StartInterview(context.Background())
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestServerErrorCarriesMessage(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"error":"Audio too short"}`)
	})

	_, err := client.SubmitStep(context.Background(), domain.Artifact{Data: []byte("x"), Filename: "answer.webm", MIMEType: "audio/webm"}, 1)
	var serverErr *domain.ServerError
	require.True(t, errors.As(err, &serverErr))
	assert.Equal(t, "Audio too short", serverErr.Message)
	assert.Equal(t, "Audio too short", domain.ServerMessage(err))
	assert.Equal(t, domain.ErrorCodeServer, domain.CodeOf(err))
}

func TestNetworkFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := NewClient(Config{BaseURL: url})
	require.NoError(t, err)

	_, err = client.StartInterview(context.Background())
	assert.ErrorIs(t, err, domain.ErrNetwork)
	assert.Equal(t, domain.ErrorCodeNetwork, domain.CodeOf(err))
}

func TestSubmitStepSendsMultipartAnswer(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, defaultStepPath, r.URL.Path)
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, "3", r.FormValue("step_id"))

		file, header, err := r.FormFile("audio")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "answer.webm", header.Filename)
		assert.Equal(t, "audio/webm", header.Header.Get("Content-Type"))
		assert.Equal(t, []byte("opus-frames"), data)

		writeJSON(w, http.StatusOK, `{"answer_text":"batuk dua minggu","finished":false,"next_step":4,"next_question":{"text":"Q4"}}`)
	})

	result, err := client.SubmitStep(context.Background(), domain.Artifact{
		Data:     []byte("opus-frames"),
		MIMEType: "audio/webm",
		Filename: "answer.webm",
	}, 3)
	require.NoError(t, err)
	assert.Equal(t, "batuk dua minggu", result.AnswerText)
	assert.False(t, result.Finished)
	assert.Equal(t, 4, result.NextStep)
	require.NotNil(t, result.NextQuestion)
	assert.Equal(t, "Q4", result.NextQuestion.Text)
}

func TestSubmitStepFinishedIgnoresNextFields(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"answer_text":"selesai","finished":true,"next_step":null,"next_question":null}`)
	})

	result, err := client.SubmitStep(context.Background(), domain.Artifact{Data: []byte("x")}, 5)
	require.NoError(t, err)
	assert.True(t, result.Finished)
	assert.Zero(t, result.NextStep)
	assert.Nil(t, result.NextQuestion)
}

func TestSubmitStepFinishedIgnoresMalformedNextFields(t *testing.T) {
	t.Parallel()

	for _, body := range []string{
		`{"answer_text":"ok","finished":true,"next_step":"none","next_question":"n/a"}`,
		`{"answer_text":"ok","finished":true,"next_step":"x"}`,
		`{"answer_text":"ok","finished":true,"next_step":0,"next_question":{"text":7}}`,
	} {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, body)
		})
		result, err := client.SubmitStep(context.Background(), domain.Artifact{Data: []byte("x")}, 5)
		require.NoError(t, err, body)
		assert.True(t, result.Finished)
		assert.Equal(t, "ok", result.AnswerText)
		assert.Zero(t, result.NextStep)
		assert.Nil(t, result.NextQuestion)
	}
}

func TestSubmitStepRejectsIncompleteContinuation(t *testing.T) {
	t.Parallel()

	for _, body := range []string{
		`{"answer_text":"a","finished":false}`,
		`{"answer_text":"a","finished":false,"next_step":2}`,
		`{"answer_text":"a","finished":false,"next_step":null,"next_question":{"text":"q"}}`,
		`{"finished":false,"next_step":2,"next_question":{"text":"q"}}`,
		`{"answer_text":"a","finished":false,"next_step":"2","next_question":{"text":"q"}}`,
		`{"answer_text":"a","finished":false,"next_step":2,"next_question":"q"}`,
	} {
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, body)
		})
		_, err := client.SubmitStep(context.Background(), domain.Artifact{Data: []byte("x")}, 1)
		assert.ErrorIs(t, err, domain.ErrProtocol, body)
	}
}

func TestSessionCookieFollowsInterview(t *testing.T) {
	t.Parallel()

	var (
		mu   sync.Mutex
		seen []string
	)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		if cookie, err := r.Cookie("session_id"); err == nil {
			seen = append(seen, cookie.Value)
		} else {
			seen = append(seen, "")
		}
		mu.Unlock()

		switch r.URL.Path {
		case defaultStartPath:
			http.SetCookie(w, &http.Cookie{Name: "session_id", Value: "abc", Path: "/"})
			writeJSON(w, http.StatusOK, `{"step":1,"total_steps":2,"question":{"text":"q1"}}`)
		default:
			writeJSON(w, http.StatusOK, `{"answer_text":"a","finished":false,"next_step":2,"next_question":{"text":"q2"}}`)
		}
	})

	_, err := client.StartInterview(context.Background())
	require.NoError(t, err)
	_, err = client.SubmitStep(context.Background(), domain.Artifact{Data: []byte("x")}, 1)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"", "abc"}, seen)
}

func TestFinishInterview(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
		want domain.Summary
	}{
		{
			name: "object",
			body: `{"success":true,"data":{"gejala":["batuk"],"saran":"Periksa dahak"}}`,
			want: domain.Summary{"gejala": []any{"batuk"}, "saran": "Periksa dahak"},
		},
		{
			name: "fenced json string",
			body: `{"success":true,"data":"` + "```json\\n{\\\"keluhan_utama\\\":\\\"batuk\\\"}\\n```" + `"}`,
			want: domain.Summary{"keluhan_utama": "batuk"},
		},
		{
			name: "plain text",
			body: `{"success":true,"data":"Pasien mengeluh batuk."}`,
			want: domain.Summary{"ringkasan": "Pasien mengeluh batuk."},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, defaultFinishPath, r.URL.Path)
				writeJSON(w, http.StatusOK, tc.body)
			})
			summary, err := client.FinishInterview(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tc.want, summary)
		})
	}
}

func TestFinishInterviewFailures(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		body string
		want error
	}{
		{name: "success false", body: `{"success":false}`, want: domain.ErrServer},
		{name: "success false with error", body: `{"success":false,"error":"not all steps answered"}`, want: domain.ErrServer},
		{name: "analysis error object", body: `{"success":true,"data":{"error":"model unavailable"}}`, want: domain.ErrServer},
		{name: "missing data", body: `{"success":true}`, want: domain.ErrProtocol},
		{name: "numeric data", body: `{"success":true,"data":42}`, want: domain.ErrProtocol},
		{name: "missing success", body: `{"data":{}}`, want: domain.ErrProtocol},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, http.StatusOK, tc.body)
			})
			_, err := client.FinishInterview(context.Background())
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestCustomPaths(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		calls []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls = append(calls, r.URL.Path)
		mu.Unlock()
		writeJSON(w, http.StatusOK, `{"step":1,"total_steps":1,"question":{"text":"q"}}`)
	}))
	defer server.Close()

	client, err := NewClient(Config{BaseURL: server.URL, StartPath: "/v2/start"})
	require.NoError(t, err)
	_, err = client.StartInterview(context.Background())
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"/v2/start"}, calls)
}

func TestStripFences(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `{"a":1}`, stripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, "plain", stripFences("  plain "))
}
