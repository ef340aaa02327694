package gist

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aaexhub/laohu-todo/pkg/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient("test-token", nil)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	client.SetBaseURL(srv.URL)
	return client, srv
}

func TestNewClientRequiresToken(t *testing.T) {
	if _, err := NewClient("", nil); !errors.Is(err, ErrNoCredential) {
		t.Fatalf("expected ErrNoCredential, got %v", err)
	}
}

func TestCreateDocument(t *testing.T) {
	var gotAuth, gotAccept, gotMethod, gotPath string
	var gotBody map[string]json.RawMessage

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		gotMethod = r.Method
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": "gist123"}`))
	})

	env := model.Envelope{LastUpdate: "2024-03-05T10:00:00.000Z"}
	id, err := client.CreateDocument(context.Background(), env)
	if err != nil {
		t.Fatalf("CreateDocument failed: %v", err)
	}
	if id != "gist123" {
		t.Errorf("expected gist123, got %s", id)
	}
	if gotMethod != http.MethodPost || gotPath != "/gists" {
		t.Errorf("expected POST /gists, got %s %s", gotMethod, gotPath)
	}
	if gotAuth != "token test-token" {
		t.Errorf("expected 'token test-token' authorization, got %q", gotAuth)
	}
	if gotAccept != "application/vnd.github.v3+json" {
		t.Errorf("unexpected accept header %q", gotAccept)
	}
	if string(gotBody["public"]) != "false" {
		t.Errorf("document must be private, got public=%s", gotBody["public"])
	}

	var files map[string]struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(gotBody["files"], &files); err != nil {
		t.Fatalf("bad files payload: %v", err)
	}
	file, ok := files[FileName]
	if !ok {
		t.Fatalf("expected file %s in payload, got %v", FileName, files)
	}
	if !strings.Contains(file.Content, "2024-03-05T10:00:00.000Z") {
		t.Errorf("file content should carry the envelope, got %s", file.Content)
	}
}

func TestReadDocument(t *testing.T) {
	content := `{"tasks":[{"id":"t1","name":"Report","completed":false,"status":"未执行","createdAt":"2024-03-05T09:00:00.000Z"}],"archivedTasks":[],"lastUpdate":"2024-03-05T10:00:00.000Z"}`

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/gists/gist123" {
			t.Errorf("expected GET /gists/gist123, got %s %s", r.Method, r.URL.Path)
		}
		resp := map[string]interface{}{
			"id": "gist123",
			"files": map[string]interface{}{
				FileName: map[string]string{"content": content},
			},
		}
		json.NewEncoder(w).Encode(resp)
	})

	env, err := client.ReadDocument(context.Background(), "gist123")
	if err != nil {
		t.Fatalf("ReadDocument failed: %v", err)
	}
	if env.LastUpdate != "2024-03-05T10:00:00.000Z" {
		t.Errorf("unexpected lastUpdate %q", env.LastUpdate)
	}
	if len(env.Tasks) != 1 || env.Tasks[0].Name != "Report" {
		t.Errorf("tasks did not parse: %+v", env.Tasks)
	}
}

func TestWriteDocument(t *testing.T) {
	var gotMethod, gotPath string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.Write([]byte(`{"id": "gist123"}`))
	})

	err := client.WriteDocument(context.Background(), "gist123", model.Envelope{LastUpdate: "2024-03-05T10:00:00.000Z"})
	if err != nil {
		t.Fatalf("WriteDocument failed: %v", err)
	}
	if gotMethod != http.MethodPatch || gotPath != "/gists/gist123" {
		t.Errorf("expected PATCH /gists/gist123, got %s %s", gotMethod, gotPath)
	}
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		status int
		cause  string
	}{
		{http.StatusUnauthorized, "token invalid"},
		{http.StatusForbidden, "insufficient permission"},
		{http.StatusNotFound, "document not found"},
		{http.StatusInternalServerError, "unexpected response"},
	}

	for _, tc := range cases {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
		})

		_, err := client.ReadDocument(context.Background(), "gist123")
		var rerr *RemoteError
		if !errors.As(err, &rerr) {
			t.Fatalf("status %d: expected RemoteError, got %v", tc.status, err)
		}
		if rerr.Cause != tc.cause {
			t.Errorf("status %d: expected cause %q, got %q", tc.status, tc.cause, rerr.Cause)
		}
		if rerr.Status != tc.status {
			t.Errorf("expected status %d recorded, got %d", tc.status, rerr.Status)
		}
	}
}

func TestReadDocumentMissingFile(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"gist123","files":{"other.txt":{"content":"hi"}}}`))
	})

	_, err := client.ReadDocument(context.Background(), "gist123")
	var rerr *RemoteError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
}

func TestNetworkFailure(t *testing.T) {
	client, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.Close()

	err := client.WriteDocument(context.Background(), "gist123", model.Envelope{})
	var rerr *RemoteError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if rerr.Cause != "network unreachable" {
		t.Errorf("expected network cause, got %q", rerr.Cause)
	}
}
