package portalapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/igmoiiz/Project-Portal-AUMC/internal/projects/domain"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return NewClient(server.URL+"/api/faculty/", Options{Timeout: 2 * time.Second})
}

func TestClient_ProjectsByDepartment(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/faculty/projects", r.URL.Path)
		assert.Equal(t, "CS", r.URL.Query().Get("department"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"data":[
			{"id":"1","supervisor":"Dr. A","interested_area":"ML","project_idea":"Idea one","department":"CS"},
			{"id":"2","supervisor":"Dr. B","interested_area":"Web","project_idea":"Idea two","department":"CS"}
		]}`))
	})

	projects, err := client.ProjectsByDepartment(context.Background(), domain.DepartmentCS)
	require.NoError(t, err)
	require.Len(t, projects, 2)
	for _, p := range projects {
		assert.Equal(t, "CS", p.Department)
	}
	assert.Equal(t, "ML", projects[0].InterestedArea)
	assert.Equal(t, "Idea two", projects[1].ProjectIdea)
}

func TestClient_ProjectsByDepartment_NullData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":null}`))
	})

	projects, err := client.ProjectsByDepartment(context.Background(), domain.DepartmentAI)
	require.NoError(t, err)
	assert.NotNil(t, projects)
	assert.Empty(t, projects)
}

func TestClient_ProjectsByDepartment_Errors(t *testing.T) {
	t.Run("non-2xx is an HTTPError", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		_, err := client.ProjectsByDepartment(context.Background(), domain.DepartmentSE)

		var httpErr *HTTPError
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
		assert.Equal(t, "HTTP error! status: 500", UserMessage(err, ""))
	})

	t.Run("success false is an ApplicationError", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"success":false,"error":"department closed"}`))
		})
		_, err := client.ProjectsByDepartment(context.Background(), domain.DepartmentSE)

		var appErr *ApplicationError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "department closed", appErr.Message)
	})

	t.Run("success false without text gets a fallback", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"success":false}`))
		})
		_, err := client.ProjectsByDepartment(context.Background(), domain.DepartmentSE)
		assert.Equal(t, "Failed to fetch projects", UserMessage(err, ""))
	})

	t.Run("unreachable server is a NetworkError", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		server.Close()
		client := NewClient(server.URL, Options{Timeout: time.Second})

		_, err := client.ProjectsByDepartment(context.Background(), domain.DepartmentSE)
		var netErr *NetworkError
		require.True(t, errors.As(err, &netErr))
		assert.Equal(t, "Network error", UserMessage(err, ""))
	})
}

func TestClient_Login(t *testing.T) {
	t.Run("accepted", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/faculty/login", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			var req LoginRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "prof@uni.edu", req.Email)
			assert.Equal(t, "secret", req.Password)
			w.Write([]byte(`{"success":true,"token":"tok-1","user":{"name":"Prof","department":"EE"}}`))
		})

		resp, err := client.Login(context.Background(), "prof@uni.edu", "secret")
		require.NoError(t, err)
		assert.Equal(t, "tok-1", resp.Token)
		assert.JSONEq(t, `{"name":"Prof","department":"EE"}`, string(resp.User))
	})

	t.Run("rejected with envelope on 401", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"success":false,"message":"Invalid credentials"}`))
		})

		_, err := client.Login(context.Background(), "prof@uni.edu", "wrong")
		var appErr *ApplicationError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "Invalid credentials", appErr.Message)
	})

	t.Run("non-JSON error page", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`<html>bad gateway</html>`))
		})

		_, err := client.Login(context.Background(), "prof@uni.edu", "x")
		var httpErr *HTTPError
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, http.StatusBadGateway, httpErr.Status)
	})

	t.Run("success without token", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"success":true}`))
		})

		_, err := client.Login(context.Background(), "prof@uni.edu", "x")
		assert.Equal(t, "Login failed", UserMessage(err, ""))
	})
}

func TestClient_UploadFile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/faculty/upload", r.URL.Path)
		assert.Equal(t, "Bearer tok-9", r.Header.Get("Authorization"))

		file, header, err := r.FormFile(FileField)
		require.NoError(t, err)
		defer file.Close()
		content, _ := io.ReadAll(file)
		assert.Equal(t, "projects.csv", header.Filename)
		assert.Equal(t, "supervisor,interested_area,project_idea\n", string(content))

		w.Write([]byte(`{"success":true,"message":"Uploaded","count":4}`))
	})

	resp, err := client.UploadFile(context.Background(), "tok-9", "projects.csv",
		strings.NewReader("supervisor,interested_area,project_idea\n"))
	require.NoError(t, err)
	assert.Equal(t, "Uploaded", resp.Message)
	require.NotNil(t, resp.Count)
	assert.Equal(t, 4, *resp.Count)
}

func TestClient_UploadFile_Errors(t *testing.T) {
	t.Run("401 keeps server message", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"success":false,"message":"Token expired"}`))
		})
		_, err := client.UploadFile(context.Background(), "old", "a.xlsx", strings.NewReader("x"))

		var httpErr *HTTPError
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, http.StatusUnauthorized, httpErr.Status)
		assert.Equal(t, "Token expired", UserMessage(err, ""))
	})

	t.Run("success false", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"success":false,"message":"Missing column supervisor"}`))
		})
		_, err := client.UploadFile(context.Background(), "tok", "a.xlsx", strings.NewReader("x"))

		var appErr *ApplicationError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "Missing column supervisor", appErr.Message)
	})
}

func TestClient_RateLimitHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, Options{RequestsPerSecond: 0.001, Burst: 1})
	_, err := client.ProjectsByDepartment(context.Background(), domain.DepartmentDS)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = client.ProjectsByDepartment(ctx, domain.DepartmentDS)
	var netErr *NetworkError
	assert.True(t, errors.As(err, &netErr))
}

func TestClient_MalformedSuccessBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>maintenance</html>`))
	})

	_, err := client.UploadFile(context.Background(), "tok", "a.csv", strings.NewReader("x"))
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusOK, httpErr.Status)
	assert.Equal(t, "Invalid response from server", UserMessage(err, "Failed to upload file"))
	assert.Equal(t, outcomeDecode, outcomeOf(err))

	_, err = client.ProjectsByDepartment(context.Background(), domain.DepartmentCS)
	require.True(t, errors.As(err, &httpErr))

	_, err = client.Login(context.Background(), "a@b.co", "pw")
	require.True(t, errors.As(err, &httpErr))
}
