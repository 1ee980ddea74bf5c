package backend

import "time"

// FileMetadata describes a spreadsheet the backend accepted.
type FileMetadata struct {
	FileID      string    `json:"file_id" yaml:"file_id"`
	SheetNames  []string  `json:"sheet_names" yaml:"sheet_names"`
	RowCount    int       `json:"row_count" yaml:"row_count"`
	ColumnCount int       `json:"column_count" yaml:"column_count"`
	Filename    string    `json:"filename,omitempty" yaml:"filename,omitempty"`
	FileSize    int64     `json:"file_size,omitempty" yaml:"file_size,omitempty"`
	UploadTime  time.Time `json:"upload_time,omitempty" yaml:"upload_time,omitempty"`
}

// TranslateRequest is the body of POST /api/v1/translate.
type TranslateRequest struct {
	FileID      string  `json:"file_id"`
	ColumnIndex int     `json:"column_index"`
	SourceLang  string  `json:"source_lang"`
	TargetLang  string  `json:"target_lang"`
	SheetName   *string `json:"sheet_name"`
}

// ResultRow is one original/translated pair.
type ResultRow struct {
	Original   string `json:"original" yaml:"original"`
	Translated string `json:"translated" yaml:"translated"`
	SourceLang string `json:"source_lang" yaml:"source_lang"`
	TargetLang string `json:"target_lang" yaml:"target_lang"`
	// Error is set by the backend for rows it failed to translate.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether the backend marked the row as failed.
func (r ResultRow) Failed() bool {
	return r.Error != ""
}

// TranslationResponse is the canonical translation result, whatever shape
// the backend used on the wire.
type TranslationResponse struct {
	Results        []ResultRow `json:"results" yaml:"results"`
	TotalRows      int         `json:"total_rows" yaml:"total_rows"`
	SuccessCount   int         `json:"success_count" yaml:"success_count"`
	ErrorCount     int         `json:"error_count" yaml:"error_count"`
	ProcessingTime float64     `json:"processing_time" yaml:"processing_time"`
}

// Languages is the response of GET /api/v1/translate/languages.
type Languages struct {
	Codes         []string `json:"languages"`
	DefaultSource string   `json:"default_source"`
	DefaultTarget string   `json:"default_target"`
}

// OneShotOptions selects the upload variant that translates in the same
// request, addressing the text column by header name.
type OneShotOptions struct {
	SourceLang string
	TargetLang string
	TextColumn string
}
