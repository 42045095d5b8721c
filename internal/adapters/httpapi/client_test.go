package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/mexp/internal/domain"
)

const summaryJSON = `{
  "execution_info": {"start_time": "2019-09-04T10-12-01-004512", "author": {"name": "ada", "email": "ada@example.com"}, "notes": ["first", "second"]},
  "logs": ["starting", "done"],
  "results": {"start_time": "2019-09-04T10-12-01-004512", "end_time": "2019-09-04T10-20-00-000001", "metrics": {"loss": 0.1, "accuracy": 0.8, "epochs": 10}}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(Config{BaseURL: srv.URL + "/"})
	require.NoError(t, err)
	return c
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
	_, err = NewClient(Config{BaseURL: "ftp://example.com"})
	assert.Error(t, err)

	c, err := NewClient(Config{BaseURL: "http://localhost:45710"})
	require.NoError(t, err)
	assert.Equal(t, defaultTimeout, c.httpClient.Timeout)
}

func TestGetExperiment(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/getter/experiment", r.URL.Path)
		assert.Equal(t, "proj", r.URL.Query().Get("project_name"))
		assert.Equal(t, "exp-1", r.URL.Query().Get("experiment"))
		_, err := uuid.Parse(r.Header.Get(requestIDHeader))
		assert.NoError(t, err, "every request carries a request id")
		_, _ = io.WriteString(w, summaryJSON)
	})

	summary, err := c.GetExperiment(context.Background(), "proj", "exp-1")
	require.NoError(t, err)

	assert.Equal(t, "exp-1", summary.ID)
	assert.Equal(t, domain.StatusComplete, summary.Status())
	assert.Equal(t, "ada", summary.ExecutionInfo.Author.Name)
	assert.Equal(t, []string{"first", "second"}, summary.ExecutionInfo.Notes)
	assert.Equal(t, []string{"starting", "done"}, summary.Logs)
	assert.Equal(t, []string{"loss", "accuracy", "epochs"}, summary.Metrics().Names())
	v, _ := summary.Metrics().Get("epochs")
	assert.Equal(t, "10", v.String())
}

func TestGetExperiment_Running(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"execution_info": {"author": {"name": "bob"}, "notes": []}, "logs": [], "results": null}`)
	})

	summary, err := c.GetExperiment(context.Background(), "proj", "exp-2")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRunning, summary.Status())
	assert.Equal(t, domain.NotAvailable, summary.FinishTime())
	assert.Nil(t, summary.Metrics())
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		kind    domain.ErrorKind
		status  int
	}{
		{
			name:    "malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) { _, _ = io.WriteString(w, `{"execution_info": `) },
			kind:    domain.KindMalformedResponse,
		},
		{
			name:    "missing execution info",
			handler: func(w http.ResponseWriter, r *http.Request) { _, _ = io.WriteString(w, `{"logs": []}`) },
			kind:    domain.KindMalformedResponse,
		},
		{
			name:    "nested metric value",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{"execution_info": {"author": {"name": "a"}}, "results": {"end_time": "x", "metrics": {"m": {"a": 1}}}}`)
			},
			kind: domain.KindMalformedResponse,
		},
		{
			name:    "not found",
			handler: func(w http.ResponseWriter, r *http.Request) { http.Error(w, "experiment not found", http.StatusNotFound) },
			kind:    domain.KindServerRejected,
			status:  http.StatusNotFound,
		},
		{
			name:    "server error",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
			kind:    domain.KindServerRejected,
			status:  http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler)
			_, err := c.GetExperiment(context.Background(), "proj", "exp")
			require.Error(t, err)

			var reqErr *domain.RequestError
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, tt.kind, reqErr.Kind)
			assert.Equal(t, tt.status, reqErr.Status)
		})
	}
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewClient(Config{BaseURL: url})
	require.NoError(t, err)

	_, err = c.ListExperiments(context.Background(), "proj")
	assert.Equal(t, domain.KindNetworkFailure, domain.KindOf(err))
}

func TestNotesRoundTrip(t *testing.T) {
	stored := map[string][]string{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/notes", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			notes := stored[r.URL.Query().Get("experiment")]
			_, _ = io.WriteString(w, joinLines(notes))
		case http.MethodPost:
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			var body map[string]json.RawMessage
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.JSONEq(t, `"proj"`, string(body["projectName"]))
			var id string
			var notes []string
			assert.NoError(t, json.Unmarshal(body["experiment"], &id))
			assert.NoError(t, json.Unmarshal(body["notes"], &notes))
			stored[id] = notes
			_, _ = io.WriteString(w, `{"ok":true}`)
		}
	})
	ctx := context.Background()

	notes, err := c.GetNotes(ctx, "proj", "exp")
	require.NoError(t, err)
	assert.Nil(t, notes)

	require.NoError(t, c.SaveNotes(ctx, "proj", "exp", []string{"tuned lr", "", "retry"}))
	notes, err = c.GetNotes(ctx, "proj", "exp")
	require.NoError(t, err)
	assert.Equal(t, []string{"tuned lr", "", "retry"}, notes)
}

func TestGetNotes_LineFormat(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{name: "empty body is no notes", body: "", want: nil},
		{name: "one empty note is indistinguishable from none", body: joinLines([]string{""}), want: nil},
		{name: "embedded newline splits a note", body: joinLines([]string{"lr=0.1\nbatch=32"}), want: []string{"lr=0.1", "batch=32"}},
		{name: "blank notes between lines survive", body: "a\n\nb", want: []string{"a", "", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, tt.body)
			})
			notes, err := c.GetNotes(context.Background(), "proj", "exp")
			require.NoError(t, err)
			assert.Equal(t, tt.want, notes)
		})
	}
}

func TestSaveNotes_EmptyListIsSentAsArray(t *testing.T) {
	var raw bytes.Buffer
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(&raw, r.Body)
	})

	require.NoError(t, c.SaveNotes(context.Background(), "proj", "exp", nil))
	assert.JSONEq(t, `{"projectName":"proj","experiment":"exp","notes":[]}`, raw.String())
}

func TestDeleteExperiments(t *testing.T) {
	var got deleteRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/delete", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	})

	require.NoError(t, c.DeleteExperiments(context.Background(), "proj", []string{"a", "b"}))
	assert.Equal(t, deleteRequest{ProjectName: "proj", Experiments: []string{"a", "b"}}, got)
}

func TestDeleteExperiments_Rejected(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "missing experiments", http.StatusBadRequest)
	})

	err := c.DeleteExperiments(context.Background(), "proj", nil)
	var reqErr *domain.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusBadRequest, reqErr.Status)
	assert.ErrorContains(t, reqErr.Err, "missing experiments")
}

func TestListing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/getter/projects":
			_, _ = io.WriteString(w, `[{"project_name":"proj","project_description":"demo"}]`)
		case "/getter/experiments":
			assert.Equal(t, "proj", r.URL.Query().Get("project_name"))
			_, _ = io.WriteString(w, `["2019-09-05T00-00-00-000000","2019-09-04T00-00-00-000000"]`)
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	projects, err := c.ListProjects(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.Project{{Name: "proj", Description: "demo"}}, projects)

	ids, err := c.ListExperiments(ctx, "proj")
	require.NoError(t, err)
	assert.Equal(t, []string{"2019-09-05T00-00-00-000000", "2019-09-04T00-00-00-000000"}, ids)
}

func TestDownload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/download", r.URL.Path)
		w.Header().Set("Content-Type", "application/zip")
		_, _ = io.WriteString(w, "PK\x03\x04archive")
	})

	var buf bytes.Buffer
	n, err := c.Download(context.Background(), "proj", "exp", &buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)
	assert.Equal(t, "PK\x03\x04archive", buf.String())
}

func TestDownloadURL(t *testing.T) {
	c, err := NewClient(Config{BaseURL: "http://localhost:45710/base/"})
	require.NoError(t, err)
	assert.Equal(t,
		"http://localhost:45710/base/download?experiment=exp+1&project_name=proj",
		c.DownloadURL("proj", "exp 1"))
}

func joinLines(lines []string) string {
	var buf bytes.Buffer
	for i, l := range lines {
		if i > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(l)
	}
	return buf.String()
}
