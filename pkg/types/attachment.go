package types

import (
	"bytes"
	"encoding/json"
	"path"
	"strconv"
	"strings"
)

// Download states reported by the backend for fetched attachments
const (
	DownloadCompleted = "completed"
	DownloadPending   = "pending"
	DownloadFailed    = "failed"
	DownloadSkipped   = "skipped"
)

// Attachment is an attachment record as supplied by the backend.
//
// The backend does not guarantee any field. A record may also arrive as a
// bare JSON string, in which case it is a server-local path kept in Path.
// Decoding is lenient: a field holding an unexpected JSON type is treated as
// absent instead of failing the whole payload.
type Attachment struct {
	Path string `json:"-"`

	ID                string `json:"_id,omitempty"`
	Filename          string `json:"filename,omitempty"`
	Name              string `json:"name,omitempty"`
	ContentName       string `json:"contentName,omitempty"`
	ContentType       string `json:"contentType,omitempty"`
	MimeType          string `json:"mimeType,omitempty"`
	FileSize          int64  `json:"fileSize,omitempty"`
	Size              int64  `json:"size,omitempty"`
	IsImage           bool   `json:"isImage,omitempty"`
	IsVideo           bool   `json:"isVideo,omitempty"`
	IsAudio           bool   `json:"isAudio,omitempty"`
	IsDocument        bool   `json:"isDocument,omitempty"`
	MediaType         string `json:"mediaType,omitempty"`
	LocalPath         string `json:"localPath,omitempty"`
	ThumbnailPath     string `json:"thumbnailPath,omitempty"`
	DownloadURL       string `json:"downloadUrl,omitempty"`
	ThumbnailURL      string `json:"thumbnailUrl,omitempty"`
	DirectMediaURL    string `json:"directMediaUrl,omitempty"`
	DownloadStatus    string `json:"downloadStatus,omitempty"`
	EmployeeMonitored bool   `json:"employeeMonitored,omitempty"`
}

// IsBare reports whether the record arrived as a bare path string
func (a Attachment) IsBare() bool {
	return a.Path != ""
}

// DisplayName returns the best available human-readable file name
func (a Attachment) DisplayName() string {
	for _, s := range []string{a.Filename, a.Name, a.ContentName} {
		if s != "" {
			return s
		}
	}
	for _, p := range []string{a.Path, a.LocalPath} {
		if base := LastSegment(p); base != "" {
			return base
		}
	}
	return ""
}

// ContentMIME returns the declared MIME type, lower-cased
func (a Attachment) ContentMIME() string {
	if a.ContentType != "" {
		return strings.ToLower(a.ContentType)
	}
	return strings.ToLower(a.MimeType)
}

// Bytes returns the declared size in bytes, or 0 when unknown
func (a Attachment) Bytes() int64 {
	if a.FileSize > 0 {
		return a.FileSize
	}
	return a.Size
}

// LastSegment returns the final element of a slash- or backslash-separated path
func LastSegment(p string) string {
	p = strings.TrimRight(strings.ReplaceAll(p, "\\", "/"), "/")
	if p == "" {
		return ""
	}
	return path.Base(p)
}

// UnmarshalJSON accepts either a path string or a loosely typed object
func (a *Attachment) UnmarshalJSON(data []byte) error {
	*a = Attachment{}

	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		a.Path = s
		return nil
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	a.ID = stringField(raw, "_id")
	a.Filename = stringField(raw, "filename")
	a.Name = stringField(raw, "name")
	a.ContentName = stringField(raw, "contentName")
	a.ContentType = stringField(raw, "contentType")
	a.MimeType = stringField(raw, "mimeType")
	a.FileSize = intField(raw, "fileSize")
	a.Size = intField(raw, "size")
	a.IsImage = boolField(raw, "isImage")
	a.IsVideo = boolField(raw, "isVideo")
	a.IsAudio = boolField(raw, "isAudio")
	a.IsDocument = boolField(raw, "isDocument")
	a.MediaType = stringField(raw, "mediaType")
	a.LocalPath = stringField(raw, "localPath")
	a.ThumbnailPath = stringField(raw, "thumbnailPath")
	a.DownloadURL = stringField(raw, "downloadUrl")
	a.ThumbnailURL = stringField(raw, "thumbnailUrl")
	a.DirectMediaURL = stringField(raw, "directMediaUrl")
	a.DownloadStatus = stringField(raw, "downloadStatus")
	a.EmployeeMonitored = boolField(raw, "employeeMonitored")

	return nil
}

// MarshalJSON writes bare records back as strings
func (a Attachment) MarshalJSON() ([]byte, error) {
	if a.IsBare() {
		return json.Marshal(a.Path)
	}
	type plain Attachment
	return json.Marshal(plain(a))
}

func stringField(raw map[string]interface{}, key string) string {
	switch v := raw[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case map[string]interface{}:
		// Extended JSON object ids: {"$oid": "..."}
		if oid, ok := v["$oid"].(string); ok {
			return oid
		}
	}
	return ""
}

func intField(raw map[string]interface{}, key string) int64 {
	switch v := raw[key].(type) {
	case float64:
		if v < 0 {
			return 0
		}
		return int64(v)
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err == nil && n > 0 {
			return n
		}
	}
	return 0
}

func boolField(raw map[string]interface{}, key string) bool {
	switch v := raw[key].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && b
	}
	return false
}
