package importer

import (
	"context"
	"errors"
	"io"
	"net/http"
	"slices"
	"sync"
	"testing"

	"github.com/martinsuchenak/campusctl/internal/apitest"
	"github.com/martinsuchenak/campusctl/internal/client"
	"github.com/martinsuchenak/campusctl/internal/filters"
	"github.com/martinsuchenak/campusctl/internal/model"
	"github.com/martinsuchenak/campusctl/internal/session"
)

const sampleCSV = "device_name,quantity,description,procurement_date,location,cost\n" +
	"Lathe,1,,2024-01-01,Bay1,250000\n" +
	"Drill,3,,2024-01-01,Bay1,4000\n" +
	",2,,2024-01-01,Bay2,100\n"

func backend(t *testing.T) (*apitest.Server, *client.Client) {
	t.Helper()
	srv := apitest.NewServer(t)
	c := client.New(srv.APIURL(), session.New(nil, nil))
	if _, err := c.Login(context.Background(), apitest.Email, apitest.Password); err != nil {
		t.Fatal(err)
	}
	return srv, c
}

// fakeUploader returns canned answers and records the import requests
type fakeUploader struct {
	mu         sync.Mutex
	validation *model.ValidationResult
	result     *model.ImportResult
	uploadErr  error
	importErrs []error
	imports    []model.ImportRequest
}

func (f *fakeUploader) Upload(ctx context.Context, filename string, content io.Reader, department string, progress client.ProgressFunc) (*model.ValidationResult, error) {
	data, _ := io.ReadAll(content)
	if progress != nil {
		progress(int64(len(data))/2, int64(len(data)))
		progress(int64(len(data)), int64(len(data)))
	}
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return f.validation, nil
}

func (f *fakeUploader) Import(ctx context.Context, req *model.ImportRequest) (*model.ImportResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imports = append(f.imports, *req)
	if len(f.importErrs) > 0 {
		err := f.importErrs[0]
		f.importErrs = f.importErrs[1:]
		return nil, err
	}
	return f.result, nil
}

func TestFullImport(t *testing.T) {
	srv, c := backend(t)
	cache := filters.NewCache(c)
	if _, err := cache.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	var states []State
	p := New(c, cache, func(pr Progress) {
		if len(states) == 0 || states[len(states)-1] != pr.State {
			states = append(states, pr.State)
		}
	})
	ctx := context.Background()

	if err := p.SelectFile(File{Name: "bay.csv", Content: []byte(sampleCSV)}); err != nil {
		t.Fatal(err)
	}
	if err := p.ConfigureTarget(model.CreateNew(" MECH ")); err != nil {
		t.Fatal(err)
	}

	loads := srv.Count(http.MethodGet, "/api/resources/filter-options")
	res, err := p.Upload(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Stats.TotalRows != 3 || len(res.Warnings) != 1 || !res.DepartmentCreated {
		t.Errorf("validation = %+v", res)
	}

	// Scenario C: the new department is in the cache before anything else renders
	if srv.Count(http.MethodGet, "/api/resources/filter-options") != loads+1 {
		t.Error("filter options were not refreshed")
	}
	if !slices.Contains(cache.Departments(), "MECH") {
		t.Errorf("departments = %v", cache.Departments())
	}

	out, err := p.Commit(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if out.ImportedCount != 2 || out.SkippedCount != 1 {
		t.Errorf("result = %+v", out)
	}

	want := []State{FileSelected, Uploading, Validated, Committing, Committed}
	if !slices.Equal(states, want) {
		t.Errorf("states = %v, want %v", states, want)
	}
	if st := p.Status(); st.State != Committed || st.Result != out || st.SessionID == "" {
		t.Errorf("status = %+v", st)
	}
}

// Scenario D
func TestCountsNeedNotSum(t *testing.T) {
	up := &fakeUploader{
		validation: &model.ValidationResult{FileID: "f-1", Stats: model.UploadStats{TotalRows: 11}},
		result:     &model.ImportResult{ImportedCount: 8, SkippedCount: 2},
	}
	p := New(up, nil, nil)
	ctx := context.Background()

	p.SelectFile(File{Name: "a.xlsx"})
	p.ConfigureTarget(model.Existing("CSE"))
	if _, err := p.Upload(ctx); err != nil {
		t.Fatal(err)
	}
	res, err := p.Commit(ctx)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if res.ImportedCount != 8 || res.SkippedCount != 2 {
		t.Errorf("result = %+v", res)
	}
	if p.Status().State != Committed {
		t.Errorf("state = %v", p.Status().State)
	}
}

func TestCommitRetryReusesFileID(t *testing.T) {
	up := &fakeUploader{
		validation: &model.ValidationResult{FileID: "f-42"},
		result:     &model.ImportResult{ImportedCount: 1},
		importErrs: []error{&client.APIError{StatusCode: 500, Message: "database down"}},
	}
	p := New(up, nil, nil)
	ctx := context.Background()

	p.SelectFile(File{Name: "a.csv"})
	p.ConfigureTarget(model.Existing("CSE"))
	p.Upload(ctx)

	if _, err := p.Commit(ctx); err == nil {
		t.Fatal("expected the first commit to fail")
	}
	st := p.Status()
	if st.State != Failed || st.Err == nil || st.Err.Error() != "database down" {
		t.Errorf("status = %+v", st)
	}
	if _, err := p.Upload(ctx); !errors.Is(err, ErrInvalidState) {
		t.Errorf("re-upload after validation: err = %v", err)
	}

	if _, err := p.Commit(ctx); err != nil {
		t.Fatal(err)
	}
	if len(up.imports) != 2 || up.imports[0].FileID != "f-42" || up.imports[1].FileID != "f-42" {
		t.Errorf("imports = %+v", up.imports)
	}
	if !up.imports[1].ProceedWithWarnings {
		t.Error("warnings must not block the commit")
	}
}

func TestUploadFailureCanRetry(t *testing.T) {
	up := &fakeUploader{uploadErr: errors.New("connection reset")}
	p := New(up, nil, nil)
	ctx := context.Background()

	p.SelectFile(File{Name: "a.csv"})
	p.ConfigureTarget(model.Existing("CSE"))
	if _, err := p.Upload(ctx); err == nil {
		t.Fatal("expected error")
	}
	if _, err := p.Commit(ctx); !errors.Is(err, ErrInvalidState) {
		t.Errorf("commit without validation: err = %v", err)
	}

	up.uploadErr = nil
	up.validation = &model.ValidationResult{FileID: "f-2"}
	if _, err := p.Upload(ctx); err != nil {
		t.Fatalf("retry: %v", err)
	}
}

func TestInvalidTransitions(t *testing.T) {
	ctx := context.Background()

	t.Run("commit from idle", func(t *testing.T) {
		p := New(&fakeUploader{}, nil, nil)
		if _, err := p.Commit(ctx); !errors.Is(err, ErrInvalidState) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("upload without file", func(t *testing.T) {
		p := New(&fakeUploader{}, nil, nil)
		p.ConfigureTarget(model.Existing("CSE"))
		if _, err := p.Upload(ctx); !errors.Is(err, ErrInvalidState) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("upload without target", func(t *testing.T) {
		p := New(&fakeUploader{}, nil, nil)
		p.SelectFile(File{Name: "a.csv"})
		if _, err := p.Upload(ctx); !errors.Is(err, ErrNoTarget) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("blank target", func(t *testing.T) {
		p := New(&fakeUploader{}, nil, nil)
		if err := p.ConfigureTarget(model.CreateNew("   ")); !errors.Is(err, ErrNoTarget) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("unsupported file", func(t *testing.T) {
		p := New(&fakeUploader{}, nil, nil)
		if err := p.SelectFile(File{Name: "notes.txt"}); !errors.Is(err, ErrUnsupportedFile) {
			t.Errorf("err = %v", err)
		}
		if p.Status().State != Idle {
			t.Errorf("state = %v", p.Status().State)
		}
	})
}

func TestNewFileDiscardsValidation(t *testing.T) {
	up := &fakeUploader{validation: &model.ValidationResult{FileID: "f-1"}}
	p := New(up, nil, nil)
	ctx := context.Background()

	p.SelectFile(File{Name: "a.csv"})
	p.ConfigureTarget(model.Existing("CSE"))
	p.Upload(ctx)
	first := p.Status().SessionID

	if err := p.SelectFile(File{Name: "b.csv"}); err != nil {
		t.Fatal(err)
	}
	st := p.Status()
	if st.Validation != nil || st.State != FileSelected || st.File != "b.csv" {
		t.Errorf("status = %+v", st)
	}
	if st.SessionID == first {
		t.Error("a new file should start a new session")
	}
	if _, err := p.Commit(ctx); !errors.Is(err, ErrInvalidState) {
		t.Errorf("err = %v", err)
	}
}

func TestChangingTargetRequiresUpload(t *testing.T) {
	up := &fakeUploader{validation: &model.ValidationResult{FileID: "f-1"}}
	p := New(up, nil, nil)
	ctx := context.Background()

	p.SelectFile(File{Name: "a.csv"})
	p.ConfigureTarget(model.Existing("CSE"))
	p.Upload(ctx)

	p.ConfigureTarget(model.Existing("ECE"))
	if st := p.Status(); st.State != FileSelected || st.Validation != nil {
		t.Errorf("status = %+v", st)
	}
}

func TestUploadProgressIsEstimated(t *testing.T) {
	up := &fakeUploader{validation: &model.ValidationResult{FileID: "f-1"}}
	var seen []Progress
	p := New(up, nil, func(pr Progress) { seen = append(seen, pr) })

	p.SelectFile(File{Name: "a.csv", Content: []byte(sampleCSV)})
	p.ConfigureTarget(model.Existing("CSE"))
	p.Upload(context.Background())

	var labels []string
	for _, pr := range seen {
		if pr.State == Uploading {
			if !pr.Estimated {
				t.Errorf("progress %+v not flagged as estimated", pr)
			}
			labels = append(labels, pr.Label)
		}
	}
	want := []string{"Uploading file...", "Analyzing structure...", "Finalizing..."}
	if !slices.Equal(labels, want) {
		t.Errorf("labels = %v, want %v", labels, want)
	}
}

func TestPhaseLabel(t *testing.T) {
	tests := []struct {
		pct  int
		want string
	}{
		{0, "Uploading file..."},
		{29, "Uploading file..."},
		{30, "Analyzing structure..."},
		{59, "Analyzing structure..."},
		{60, "Validating data..."},
		{89, "Validating data..."},
		{90, "Finalizing..."},
		{100, "Finalizing..."},
	}
	for _, tt := range tests {
		if got := PhaseLabel(tt.pct); got != tt.want {
			t.Errorf("PhaseLabel(%d) = %q, want %q", tt.pct, got, tt.want)
		}
	}
}
