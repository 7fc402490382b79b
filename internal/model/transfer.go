package model

// UploadStats summarises an uploaded file
type UploadStats struct {
	TotalRows int `json:"total_rows" yaml:"total_rows"`
	ValidRows int `json:"valid_rows,omitempty" yaml:"valid_rows,omitempty"`
}

// ValidationResult is the response of POST /upload/upload
type ValidationResult struct {
	FileID            string      `json:"file_id" yaml:"file_id"`
	Stats             UploadStats `json:"stats" yaml:"stats"`
	Warnings          []string    `json:"warnings" yaml:"warnings"`
	DepartmentCreated bool        `json:"department_created,omitempty" yaml:"department_created,omitempty"`
}

// ImportRequest is the body of POST /upload/import
type ImportRequest struct {
	FileID              string `json:"file_id"`
	Department          string `json:"department"`
	ProceedWithWarnings bool   `json:"proceed_with_warnings"`
}

// ImportResult is the response of POST /upload/import. ImportedCount and
// SkippedCount need not add up to the uploaded row count.
type ImportResult struct {
	ImportedCount     int    `json:"imported_count" yaml:"imported_count"`
	SkippedCount      int    `json:"skipped_count" yaml:"skipped_count"`
	DepartmentCreated bool   `json:"department_created,omitempty" yaml:"department_created,omitempty"`
	Message           string `json:"message,omitempty" yaml:"message,omitempty"`
}
