package upload

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/igmoiiz/Project-Portal-AUMC/internal/auth"
	"github.com/igmoiiz/Project-Portal-AUMC/internal/portalapi"
)

type uploadCall struct {
	token    string
	filename string
	content  string
}

type fakeUploader struct {
	mu    sync.Mutex
	calls []uploadCall
	gate  chan struct{}
	resp  *portalapi.UploadResponse
	err   error
	panic bool
}

func (f *fakeUploader) UploadFile(_ context.Context, token, filename string, content io.Reader) (*portalapi.UploadResponse, error) {
	body, _ := io.ReadAll(content)
	f.mu.Lock()
	f.calls = append(f.calls, uploadCall{token: token, filename: filename, content: string(body)})
	f.mu.Unlock()
	if f.gate != nil {
		<-f.gate
	}
	if f.panic {
		panic("transport exploded")
	}
	return f.resp, f.err
}

func (f *fakeUploader) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func loggedInStore(t *testing.T, department string) *auth.MemoryStore {
	t.Helper()
	store := auth.NewMemoryStore()
	require.NoError(t, store.Save(context.Background(), auth.Session{
		Token: "tok-1",
		User:  auth.User{Department: department},
	}))
	return store
}

func fastOptions() Options {
	return Options{
		ProgressInterval: 2 * time.Millisecond,
		MessageTTL:       time.Hour,
		Rand:             func() float64 { return 0.5 },
	}
}

func intPtr(n int) *int { return &n }

func TestNewController_Department(t *testing.T) {
	ctx := context.Background()

	c := NewController(ctx, &fakeUploader{}, auth.NewMemoryStore(), Options{})
	assert.Equal(t, "General", c.Snapshot().Department)
	assert.Equal(t, StateIdle, c.Snapshot().State)

	c = NewController(ctx, &fakeUploader{}, loggedInStore(t, "CYS"), Options{})
	assert.Equal(t, "CYS", c.Snapshot().Department)

	c = NewController(ctx, &fakeUploader{}, loggedInStore(t, ""), Options{})
	assert.Equal(t, "General", c.Snapshot().Department)
}

func TestReloadDepartment(t *testing.T) {
	ctx := context.Background()
	store := auth.NewMemoryStore()
	c := NewController(ctx, &fakeUploader{}, store, Options{})
	assert.Equal(t, "General", c.Snapshot().Department)

	require.NoError(t, store.Save(ctx, auth.Session{Token: "t", User: auth.User{Department: "SE"}}))
	assert.Equal(t, "SE", c.ReloadDepartment(ctx))
	assert.Equal(t, "SE", c.Snapshot().Department)

	require.NoError(t, store.Clear(ctx))
	assert.Equal(t, "General", c.ReloadDepartment(ctx))
}

func TestSelectFile(t *testing.T) {
	cases := []struct {
		name string
		ok   bool
	}{
		{"data.xlsx", true},
		{"data.csv", true},
		{"report.final.csv", true},
		{"data.docx", false},
		{"data.XLSX", false},
		{"data.xls", false},
		{"xlsx", false},
		{"data.csv.exe", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewController(context.Background(), &fakeUploader{}, auth.NewMemoryStore(), fastOptions())
			err := c.SelectFile(FileFromBytes(tc.name, []byte("x")))
			s := c.Snapshot()
			if tc.ok {
				require.NoError(t, err)
				require.NotNil(t, s.SelectedFile)
				assert.Equal(t, tc.name, s.SelectedFile.Name)
				assert.Equal(t, StateFileSelected, s.State)
				assert.Empty(t, s.Message)
			} else {
				require.ErrorIs(t, err, ErrInvalidFileType)
				assert.Nil(t, s.SelectedFile)
				assert.Equal(t, KindInvalidFileType, s.ErrorKind)
				assert.Equal(t, msgInvalidFileType, s.Message)
			}
		})
	}
}

func TestSelectFile_RejectionDropsPreviousChoice(t *testing.T) {
	c := NewController(context.Background(), &fakeUploader{}, auth.NewMemoryStore(), fastOptions())
	require.NoError(t, c.SelectFile(FileFromBytes("good.csv", nil)))
	require.Error(t, c.SelectFile(FileFromBytes("bad.pdf", nil)))
	assert.Nil(t, c.Snapshot().SelectedFile)

	require.NoError(t, c.SelectFile(FileFromBytes("again.xlsx", nil)))
	s := c.Snapshot()
	assert.Empty(t, s.Message, "a valid choice clears the earlier error")
	assert.Empty(t, s.ErrorKind)
}

func TestSubmitUpload_NoFileSelected(t *testing.T) {
	up := &fakeUploader{}
	var failures []string
	opts := fastOptions()
	opts.OnFailure = func(m string) { failures = append(failures, m) }
	c := NewController(context.Background(), up, loggedInStore(t, "CS"), opts)

	err := c.SubmitUpload(context.Background())
	require.ErrorIs(t, err, ErrNoFileSelected)

	s := c.Snapshot()
	assert.Equal(t, StateFailed, s.State)
	assert.Equal(t, KindNoFileSelected, s.ErrorKind)
	assert.Equal(t, 0, up.callCount())
	assert.Equal(t, []string{msgNoFileSelected}, failures)
}

func TestSubmitUpload_Unauthenticated(t *testing.T) {
	up := &fakeUploader{}
	c := NewController(context.Background(), up, auth.NewMemoryStore(), fastOptions())
	require.NoError(t, c.SelectFile(FileFromBytes("data.csv", []byte("a,b"))))

	err := c.SubmitUpload(context.Background())
	require.ErrorIs(t, err, ErrUnauthenticated)

	s := c.Snapshot()
	assert.Equal(t, StateFailed, s.State)
	assert.Equal(t, KindUnauthenticated, s.ErrorKind)
	assert.Equal(t, msgUnauthenticated, s.Message)
	assert.Equal(t, 0, up.callCount())
	require.NotNil(t, s.SelectedFile, "the file stays selected for a retry after login")
}

func TestSubmitUpload_Success(t *testing.T) {
	up := &fakeUploader{gate: make(chan struct{}), resp: &portalapi.UploadResponse{Success: true, Message: "ok", Count: intPtr(12)}}
	var successes []string
	opts := fastOptions()
	opts.OnSuccess = func(m string) { successes = append(successes, m) }
	c := NewController(context.Background(), up, loggedInStore(t, "SE"), opts)
	require.NoError(t, c.SelectFile(FileFromBytes("ideas.xlsx", []byte("sheet-bytes"))))

	errc := make(chan error, 1)
	go func() { errc <- c.SubmitUpload(context.Background()) }()

	// while the request is held the estimate moves but never completes
	require.Eventually(t, func() bool {
		s := c.Snapshot()
		return s.State == StateUploading && s.Progress > 0
	}, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return c.Snapshot().Progress >= progressSoftCap }, time.Second, time.Millisecond)
	assert.Less(t, c.Snapshot().Progress, 100.0)

	close(up.gate)
	require.NoError(t, <-errc)

	s := c.Snapshot()
	assert.Equal(t, StateSucceeded, s.State)
	assert.Equal(t, 100.0, s.Progress)
	assert.Equal(t, "Successfully uploaded 12 projects!", s.Message)
	assert.Nil(t, s.SelectedFile)
	assert.Equal(t, []string{"Successfully uploaded 12 projects!"}, successes)

	require.Equal(t, 1, up.callCount())
	assert.Equal(t, uploadCall{token: "tok-1", filename: "ideas.xlsx", content: "sheet-bytes"}, up.calls[0])
}

func TestSubmitUpload_StaticAfterSettlement(t *testing.T) {
	up := &fakeUploader{resp: &portalapi.UploadResponse{Success: true}}
	c := NewController(context.Background(), up, loggedInStore(t, "AI"), fastOptions())
	require.NoError(t, c.SelectFile(FileFromBytes("a.csv", []byte("x"))))

	var mu sync.Mutex
	changes := 0
	c.Subscribe(func(Snapshot) {
		mu.Lock()
		changes++
		mu.Unlock()
	})

	require.NoError(t, c.SubmitUpload(context.Background()))
	assert.Equal(t, int32(0), activeEstimators.Load())

	settled := c.Snapshot()
	mu.Lock()
	before := changes
	mu.Unlock()

	time.Sleep(25 * c.opts.ProgressInterval)

	assert.Equal(t, settled, c.Snapshot())
	mu.Lock()
	assert.Equal(t, before, changes, "no state mutation after settlement")
	mu.Unlock()
	assert.Equal(t, msgUploaded, settled.Message)
}

func TestSubmitUpload_Failures(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		kind    string
		message string
	}{
		{"server rejected", &portalapi.ApplicationError{Op: "upload_file", Message: "Missing column supervisor"}, KindServerRejected, "Missing column supervisor"},
		{"http", &portalapi.HTTPError{Op: "upload_file", Status: 413}, KindHTTP, "HTTP error! status: 413"},
		{"http with message", &portalapi.HTTPError{Op: "upload_file", Status: 401, Message: "Token expired"}, KindHTTP, "Token expired"},
		{"network", &portalapi.NetworkError{Op: "upload_file", Err: errors.New("connection reset")}, KindNetwork, "Network error"},
		{"malformed success body", &portalapi.HTTPError{Op: "upload_file", Status: 200, Message: "Invalid response from server", Err: errors.New("decode JSON: EOF")}, KindHTTP, "Invalid response from server"},
		{"other", errors.New("open a.xlsx: permission denied"), KindUnknown, msgUploadFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			up := &fakeUploader{err: tc.err}
			var failures []string
			opts := fastOptions()
			opts.OnFailure = func(m string) { failures = append(failures, m) }
			c := NewController(context.Background(), up, loggedInStore(t, "EE"), opts)
			require.NoError(t, c.SelectFile(FileFromBytes("a.xlsx", []byte("x"))))

			err := c.SubmitUpload(context.Background())
			require.Error(t, err)

			s := c.Snapshot()
			assert.Equal(t, StateFailed, s.State)
			assert.Equal(t, tc.kind, s.ErrorKind)
			assert.Equal(t, tc.message, s.Message)
			assert.Equal(t, 0.0, s.Progress)
			assert.NotNil(t, s.SelectedFile, "a failed upload keeps the file for an explicit retry")
			assert.Equal(t, []string{tc.message}, failures)
			assert.Equal(t, int32(0), activeEstimators.Load())
		})
	}
}

func TestSubmitUpload_RetryAfterFailure(t *testing.T) {
	up := &fakeUploader{err: &portalapi.NetworkError{Op: "upload_file", Err: errors.New("offline")}}
	c := NewController(context.Background(), up, loggedInStore(t, "DS"), fastOptions())
	require.NoError(t, c.SelectFile(FileFromBytes("a.csv", []byte("payload"))))

	require.Error(t, c.SubmitUpload(context.Background()))
	assert.Equal(t, 1, up.callCount(), "no automatic retry")

	up.err = nil
	up.resp = &portalapi.UploadResponse{Success: true}
	require.NoError(t, c.SubmitUpload(context.Background()))
	require.Equal(t, 2, up.callCount())
	assert.Equal(t, "payload", up.calls[1].content, "the file is re-read for the retry")
}

func TestSubmitUpload_PanicDegradesToFailure(t *testing.T) {
	up := &fakeUploader{panic: true}
	c := NewController(context.Background(), up, loggedInStore(t, "IT"), fastOptions())
	require.NoError(t, c.SelectFile(FileFromBytes("a.csv", nil)))

	err := c.SubmitUpload(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transport exploded")
	assert.Equal(t, StateFailed, c.Snapshot().State)
	assert.Equal(t, int32(0), activeEstimators.Load())
}

func TestSubmitUpload_RejectsConcurrentAttempt(t *testing.T) {
	up := &fakeUploader{gate: make(chan struct{}), resp: &portalapi.UploadResponse{Success: true}}
	c := NewController(context.Background(), up, loggedInStore(t, "CS"), fastOptions())
	require.NoError(t, c.SelectFile(FileFromBytes("a.csv", nil)))

	errc := make(chan error, 1)
	go func() { errc <- c.SubmitUpload(context.Background()) }()
	require.Eventually(t, func() bool { return c.Snapshot().State == StateUploading }, time.Second, time.Millisecond)

	assert.ErrorIs(t, c.SubmitUpload(context.Background()), ErrUploadInProgress)
	assert.ErrorIs(t, c.SelectFile(FileFromBytes("b.csv", nil)), ErrUploadInProgress)

	close(up.gate)
	require.NoError(t, <-errc)
	assert.Equal(t, 1, up.callCount())
}

func TestSuccessMessageAutoDismiss(t *testing.T) {
	up := &fakeUploader{resp: &portalapi.UploadResponse{Success: true}}
	opts := fastOptions()
	opts.MessageTTL = 20 * time.Millisecond
	c := NewController(context.Background(), up, loggedInStore(t, "BBA"), opts)
	require.NoError(t, c.SelectFile(FileFromBytes("a.csv", nil)))
	require.NoError(t, c.SubmitUpload(context.Background()))
	assert.Equal(t, msgUploaded, c.Snapshot().Message)

	require.Eventually(t, func() bool { return c.Snapshot().Message == "" }, time.Second, time.Millisecond)
	assert.Equal(t, StateSucceeded, c.Snapshot().State)
}

func TestSuccessMessageSurvivesWhenReplaced(t *testing.T) {
	up := &fakeUploader{resp: &portalapi.UploadResponse{Success: true}}
	opts := fastOptions()
	opts.MessageTTL = 20 * time.Millisecond
	c := NewController(context.Background(), up, loggedInStore(t, "BBA"), opts)
	require.NoError(t, c.SelectFile(FileFromBytes("a.csv", nil)))
	require.NoError(t, c.SubmitUpload(context.Background()))

	// a new attempt replaces the message; the old timer must not wipe it
	require.ErrorIs(t, c.SubmitUpload(context.Background()), ErrNoFileSelected)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, msgNoFileSelected, c.Snapshot().Message)
}

func TestFileFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ideas.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b,c\n"), 0o644))

	f, err := FileFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "ideas.csv", f.Name)
	assert.Equal(t, int64(6), f.Size)
	assert.Equal(t, FileInfo{Name: "ideas.csv", Size: 6, Extension: ".csv"}, f.Info())

	for i := 0; i < 2; i++ {
		rc, err := f.Open()
		require.NoError(t, err)
		data, _ := io.ReadAll(rc)
		rc.Close()
		assert.Equal(t, "a,b,c\n", string(data))
	}

	_, err = FileFromPath(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
	_, err = FileFromPath(t.TempDir())
	assert.Error(t, err)
}

func TestSubscribe_DeliveriesEndOnLatestSnapshot(t *testing.T) {
	c := NewController(context.Background(), &fakeUploader{}, auth.NewMemoryStore(), fastOptions())

	var mu sync.Mutex
	var last Snapshot
	c.Subscribe(func(s Snapshot) {
		mu.Lock()
		last = s
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_ = c.SelectFile(FileFromBytes("a.csv", []byte("x")))
			} else {
				c.ClearFile()
			}
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, c.Snapshot().State, last.State)
}
