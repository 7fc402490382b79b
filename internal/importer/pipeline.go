// Package importer drives a bulk import: a spreadsheet is uploaded for
// validation against a target department and then committed.
package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/martinsuchenak/campusctl/internal/client"
	"github.com/martinsuchenak/campusctl/internal/log"
	"github.com/martinsuchenak/campusctl/internal/model"
)

var (
	ErrInvalidState    = errors.New("operation not allowed in the current import state")
	ErrUnsupportedFile = errors.New("unsupported file type: use .csv, .xlsx or .xls")
	ErrNoTarget        = errors.New("a target department is required")
)

// Extensions accepted by SelectFile
var Extensions = []string{".csv", ".xlsx", ".xls"}

// State is a step of the import lifecycle
type State int

const (
	Idle State = iota
	FileSelected
	Uploading
	Validated
	Committing
	Committed
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case FileSelected:
		return "file_selected"
	case Uploading:
		return "uploading"
	case Validated:
		return "validated"
	case Committing:
		return "committing"
	case Committed:
		return "committed"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Uploader is the part of the API client the pipeline calls
type Uploader interface {
	Upload(ctx context.Context, filename string, content io.Reader, department string, progress client.ProgressFunc) (*model.ValidationResult, error)
	Import(ctx context.Context, req *model.ImportRequest) (*model.ImportResult, error)
}

// OptionsLoader refreshes the shared filter options
type OptionsLoader interface {
	Load(ctx context.Context) (*model.FilterOptions, error)
}

// File is a spreadsheet held in memory for upload
type File struct {
	Name    string
	Content []byte
}

// ReadFile loads path into a File
func ReadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("reading %s: %w", path, err)
	}
	return File{Name: filepath.Base(path), Content: data}, nil
}

// Ext returns the lower-cased extension
func (f File) Ext() string {
	return strings.ToLower(filepath.Ext(f.Name))
}

// Size returns the content length in bytes
func (f File) Size() int64 {
	return int64(len(f.Content))
}

// Progress is reported on every state change and upload progress event.
// Percent and Label are estimates for display.
type Progress struct {
	State     State
	Percent   int
	Label     string
	Estimated bool
}

// PhaseLabel names the upload phase for percent
func PhaseLabel(percent int) string {
	switch {
	case percent < 30:
		return "Uploading file..."
	case percent < 60:
		return "Analyzing structure..."
	case percent < 90:
		return "Validating data..."
	}
	return "Finalizing..."
}

// Status is a snapshot of the pipeline
type Status struct {
	SessionID  string
	State      State
	File       string
	Target     model.Choice
	Validation *model.ValidationResult
	Result     *model.ImportResult
	Err        error
}

// Pipeline is safe for concurrent use; operations that are not valid in the
// current state return ErrInvalidState.
type Pipeline struct {
	uploader Uploader
	options  OptionsLoader
	update   func(Progress)

	mu         sync.Mutex
	sessionID  string
	state      State
	file       *File
	target     model.Choice
	validation *model.ValidationResult
	result     *model.ImportResult
	err        error
}

// New creates an idle pipeline. options may be nil; update may be nil.
func New(uploader Uploader, options OptionsLoader, update func(Progress)) *Pipeline {
	return &Pipeline{uploader: uploader, options: options, update: update}
}

func (p *Pipeline) busy() bool {
	return p.state == Uploading || p.state == Committing
}

// SelectFile holds f for upload. Any earlier validation is discarded.
func (p *Pipeline) SelectFile(f File) error {
	if !supported(f.Ext()) {
		return fmt.Errorf("%w: %s", ErrUnsupportedFile, f.Name)
	}

	p.mu.Lock()
	if p.busy() {
		p.mu.Unlock()
		return ErrInvalidState
	}
	p.sessionID = uuid.NewString()
	p.file = &f
	p.validation = nil
	p.result = nil
	p.err = nil
	p.state = FileSelected
	p.mu.Unlock()

	log.Debug("Import file selected", "file", f.Name, "size", f.Size())
	p.notify(Progress{State: FileSelected})
	return nil
}

// ConfigureTarget sets the department rows are imported into. Changing the
// target after validation requires another upload.
func (p *Pipeline) ConfigureTarget(target model.Choice) error {
	if !target.IsSet() {
		return ErrNoTarget
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.busy() || p.state == Committed {
		return ErrInvalidState
	}
	if p.validation != nil && p.target.Name() != target.Name() {
		p.validation = nil
		p.err = nil
		p.state = FileSelected
	}
	p.target = target
	return nil
}

// Upload sends the selected file for validation. Allowed after SelectFile,
// and again after a failed upload.
func (p *Pipeline) Upload(ctx context.Context) (*model.ValidationResult, error) {
	p.mu.Lock()
	canUpload := p.file != nil && (p.state == FileSelected || (p.state == Failed && p.validation == nil))
	if !canUpload {
		p.mu.Unlock()
		return nil, ErrInvalidState
	}
	if !p.target.IsSet() {
		p.mu.Unlock()
		return nil, ErrNoTarget
	}
	file := *p.file
	department := p.target.Name()
	newDepartment := p.target.IsNew()
	p.state = Uploading
	p.err = nil
	p.mu.Unlock()

	p.notify(Progress{State: Uploading, Label: PhaseLabel(0), Estimated: true})
	log.Info("Uploading import file", "file", file.Name, "department", department, "new_department", newDepartment)

	progress := func(sent, total int64) {
		if total <= 0 {
			return
		}
		pct := int(sent * 100 / total)
		p.notify(Progress{State: Uploading, Percent: pct, Label: PhaseLabel(pct), Estimated: true})
	}
	res, err := p.uploader.Upload(ctx, file.Name, bytes.NewReader(file.Content), department, progress)

	p.mu.Lock()
	if err != nil {
		p.state = Failed
		p.err = err
		p.mu.Unlock()
		log.Error("Upload failed", "file", file.Name, "error", err)
		p.notify(Progress{State: Failed, Label: "Upload failed"})
		return nil, err
	}
	p.state = Validated
	p.validation = res
	p.mu.Unlock()

	log.Info("Upload validated", "file_id", res.FileID, "rows", res.Stats.TotalRows, "warnings", len(res.Warnings))
	p.notify(Progress{State: Validated, Percent: 100, Label: "Upload complete!"})

	if res.DepartmentCreated {
		log.Info("Department created by upload", "department", department)
		p.refreshOptions(ctx)
	}
	return res, nil
}

// Commit imports the validated file. Warnings never block the commit. After a
// failed commit it may be called again with the same file_id.
func (p *Pipeline) Commit(ctx context.Context) (*model.ImportResult, error) {
	p.mu.Lock()
	canCommit := p.validation != nil && (p.state == Validated || p.state == Failed)
	if !canCommit {
		p.mu.Unlock()
		return nil, ErrInvalidState
	}
	req := &model.ImportRequest{
		FileID:              p.validation.FileID,
		Department:          p.target.Name(),
		ProceedWithWarnings: true,
	}
	p.state = Committing
	p.err = nil
	p.mu.Unlock()

	p.notify(Progress{State: Committing, Label: "Processing import..."})
	log.Info("Committing import", "file_id", req.FileID, "department", req.Department)

	res, err := p.uploader.Import(ctx, req)

	p.mu.Lock()
	if err != nil {
		p.state = Failed
		p.err = err
		p.mu.Unlock()
		log.Error("Import failed", "file_id", req.FileID, "error", err)
		p.notify(Progress{State: Failed, Label: "Import failed"})
		return nil, err
	}
	p.state = Committed
	p.result = res
	p.mu.Unlock()

	log.Info("Import completed", "imported", res.ImportedCount, "skipped", res.SkippedCount)
	p.notify(Progress{State: Committed, Percent: 100, Label: "Import completed!"})

	if res.DepartmentCreated {
		p.refreshOptions(ctx)
	}
	return res, nil
}

// Reset returns the pipeline to Idle
func (p *Pipeline) Reset() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.busy() {
		return ErrInvalidState
	}
	p.sessionID = ""
	p.state = Idle
	p.file = nil
	p.target = model.Choice{}
	p.validation = nil
	p.result = nil
	p.err = nil
	return nil
}

// Status returns a snapshot of the pipeline
func (p *Pipeline) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := Status{
		SessionID:  p.sessionID,
		State:      p.state,
		Target:     p.target,
		Validation: p.validation,
		Result:     p.result,
		Err:        p.err,
	}
	if p.file != nil {
		s.File = p.file.Name
	}
	return s
}

func (p *Pipeline) refreshOptions(ctx context.Context) {
	if p.options == nil {
		return
	}
	if _, err := p.options.Load(ctx); err != nil {
		log.Warn("Failed to refresh departments", "error", err)
	}
}

func (p *Pipeline) notify(pr Progress) {
	if p.update != nil {
		p.update(pr)
	}
}

func supported(ext string) bool {
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}
