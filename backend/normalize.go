package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type wireMetadata struct {
	Success     *bool    `json:"success"`
	FileID      string   `json:"file_id"`
	Filename    string   `json:"filename"`
	FileSize    int64    `json:"file_size"`
	UploadTime  string   `json:"upload_time"`
	SheetNames  []string `json:"sheet_names"`
	RowCount    int      `json:"row_count"`
	ColumnCount int      `json:"column_count"`
}

type wireRow struct {
	Original   *string `json:"original"`
	Translated *string `json:"translated"`
	SourceLang *string `json:"source_lang"`
	TargetLang *string `json:"target_lang"`
	Error      *string `json:"error"`
}

type wireTranslation struct {
	Success        *bool           `json:"success"`
	Data           json.RawMessage `json:"data"`
	TotalCount     *int            `json:"total_count"`
	Results        []wireRow       `json:"results"`
	TotalRows      *int            `json:"total_rows"`
	SuccessCount   *int            `json:"success_count"`
	ErrorCount     *int            `json:"error_count"`
	ProcessingTime *float64        `json:"processing_time"`
}

// uploadTimeLayouts covers RFC 3339 and Python's isoformat() without zone.
var uploadTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

func parseUploadTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range uploadTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// decodeMetadata validates and converts an upload/info response body.
func decodeMetadata(body []byte) (*FileMetadata, error) {
	if err := checkSuccess(body); err != nil {
		return nil, err
	}
	if err := validateMetadataPayload(body); err != nil {
		return nil, err
	}

	var wire wireMetadata
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}

	sheets := wire.SheetNames
	if sheets == nil {
		sheets = []string{}
	}
	return &FileMetadata{
		FileID:      wire.FileID,
		SheetNames:  sheets,
		RowCount:    wire.RowCount,
		ColumnCount: wire.ColumnCount,
		Filename:    wire.Filename,
		FileSize:    wire.FileSize,
		UploadTime:  parseUploadTime(wire.UploadTime),
	}, nil
}

// checkSuccess reports a 2xx body carrying success=false before schema
// validation, since such bodies hold only the reason and none of the
// payload fields.
func checkSuccess(body []byte) error {
	var head struct {
		Success *bool `json:"success"`
	}
	if err := json.Unmarshal(body, &head); err != nil {
		return nil
	}
	if head.Success != nil && !*head.Success {
		return errUnsuccessful(errorDetail(body))
	}
	return nil
}

// errUnsuccessful is returned for 2xx bodies that carry success=false.
type errUnsuccessful string

func (e errUnsuccessful) Error() string {
	if e == "" {
		return "backend reported failure"
	}
	return string(e)
}

// decodeTranslation validates body against every known response shape and
// folds it into one TranslationResponse. Nothing outside this package sees
// the wire shapes.
func decodeTranslation(body []byte) (*TranslationResponse, error) {
	if err := checkSuccess(body); err != nil {
		return nil, err
	}
	if err := validateTranslationPayload(body); err != nil {
		return nil, err
	}

	var wire wireTranslation
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("unmarshal translation: %w", err)
	}

	data := bytes.TrimSpace(wire.Data)
	switch {
	case len(data) > 0 && data[0] == '{':
		var nested wireTranslation
		if err := json.Unmarshal(data, &nested); err != nil {
			return nil, fmt.Errorf("unmarshal nested translation: %w", err)
		}
		return foldTranslation(nested.Results, nested.TotalRows, nested.SuccessCount, nested.ErrorCount, nested.ProcessingTime), nil
	case len(data) > 0 && data[0] == '[':
		var rows []wireRow
		if err := json.Unmarshal(data, &rows); err != nil {
			return nil, fmt.Errorf("unmarshal translation rows: %w", err)
		}
		return foldTranslation(rows, wire.TotalCount, nil, nil, nil), nil
	default:
		return foldTranslation(wire.Results, wire.TotalRows, wire.SuccessCount, wire.ErrorCount, wire.ProcessingTime), nil
	}
}

func foldTranslation(rows []wireRow, total, success, failed *int, elapsed *float64) *TranslationResponse {
	resp := &TranslationResponse{
		Results: make([]ResultRow, 0, len(rows)),
	}

	derivedErrors := 0
	for _, r := range rows {
		row := ResultRow{
			Original:   deref(r.Original),
			Translated: deref(r.Translated),
			SourceLang: deref(r.SourceLang),
			TargetLang: deref(r.TargetLang),
			Error:      deref(r.Error),
		}
		if row.Failed() {
			derivedErrors++
		}
		resp.Results = append(resp.Results, row)
	}

	resp.ErrorCount = derivedErrors
	if failed != nil {
		resp.ErrorCount = *failed
	}
	resp.SuccessCount = len(resp.Results) - resp.ErrorCount
	if success != nil {
		resp.SuccessCount = *success
	}
	if resp.SuccessCount < 0 {
		resp.SuccessCount = 0
	}
	resp.TotalRows = resp.SuccessCount + resp.ErrorCount
	if total != nil {
		resp.TotalRows = *total
	}
	if elapsed != nil {
		resp.ProcessingTime = *elapsed
	}
	return resp
}

// fillLanguages sets blank row languages from the request.
func fillLanguages(resp *TranslationResponse, source, target string) {
	for i := range resp.Results {
		if resp.Results[i].SourceLang == "" {
			resp.Results[i].SourceLang = source
		}
		if resp.Results[i].TargetLang == "" {
			resp.Results[i].TargetLang = target
		}
	}
}

// errorDetail extracts the user-facing message from an error body. FastAPI
// sends {"detail": "..."} or, for request validation, a list of objects
// with a "msg" field.
func errorDetail(body []byte) string {
	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	detail := bytes.TrimSpace(payload.Detail)
	if len(detail) > 0 {
		var s string
		if err := json.Unmarshal(detail, &s); err == nil {
			return s
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if err := json.Unmarshal(detail, &items); err == nil {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				if it.Msg != "" {
					msgs = append(msgs, it.Msg)
				}
			}
			return strings.Join(msgs, "; ")
		}
	}
	return payload.Message
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
