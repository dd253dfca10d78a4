package media

import (
	"path"
	"strings"

	"github.com/brandon/mail-admin/pkg/types"
)

// Kind is the primary rendering category of an attachment
type Kind string

const (
	KindImage       Kind = "image"
	KindVideo       Kind = "video"
	KindAudio       Kind = "audio"
	KindDocument    Kind = "document"
	KindUnavailable Kind = "unavailable"
)

// SubKind refines documents for icon and preview selection only
type SubKind string

const (
	SubKindNone         SubKind = ""
	SubKindPDF          SubKind = "pdf"
	SubKindWord         SubKind = "word"
	SubKindSpreadsheet  SubKind = "spreadsheet"
	SubKindPresentation SubKind = "presentation"
	SubKindArchive      SubKind = "archive"
	SubKindText         SubKind = "text"
	SubKindOther        SubKind = "other"
)

var (
	imageExtensions = extSet("jpg", "jpeg", "png", "gif", "webp", "bmp")
	videoExtensions = extSet("mp4", "webm", "avi", "mov", "wmv", "mkv", "flv")
	audioExtensions = extSet("mp3", "wav", "ogg", "m4a", "aac")

	wordExtensions         = extSet("doc", "docx", "odt", "rtf")
	spreadsheetExtensions  = extSet("xls", "xlsx", "ods", "csv")
	presentationExtensions = extSet("ppt", "pptx", "odp")
	archiveExtensions      = extSet("zip", "rar", "7z", "tar", "gz", "tgz", "bz2")
	textExtensions         = extSet("txt", "md", "log", "json", "xml", "html", "htm")
)

func extSet(exts ...string) map[string]bool {
	m := make(map[string]bool, len(exts))
	for _, e := range exts {
		m[e] = true
	}
	return m
}

// Extension returns the lower-cased extension of the attachment's name, without the dot
func Extension(att types.Attachment) string {
	ext := path.Ext(att.DisplayName())
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// ResolveKind classifies an attachment. Each media kind is matched by an
// explicit boolean hint, the mediaType hint, a MIME substring or the file
// extension; anything else is a document.
func ResolveKind(att types.Attachment) Kind {
	mime := att.ContentMIME()
	mediaType := strings.ToLower(att.MediaType)
	ext := Extension(att)

	switch {
	case att.IsImage || mediaType == "image" || strings.Contains(mime, "image/") || imageExtensions[ext]:
		return KindImage
	case att.IsVideo || mediaType == "video" || strings.Contains(mime, "video/") || videoExtensions[ext]:
		return KindVideo
	case att.IsAudio || mediaType == "audio" || strings.Contains(mime, "audio/") || audioExtensions[ext]:
		return KindAudio
	}
	return KindDocument
}

// ResolveSubKind returns the document sub-kind, or SubKindNone for media kinds
func ResolveSubKind(att types.Attachment) SubKind {
	if ResolveKind(att) != KindDocument {
		return SubKindNone
	}

	mime := att.ContentMIME()
	ext := Extension(att)

	switch {
	case ext == "pdf" || strings.Contains(mime, "pdf"):
		return SubKindPDF
	case wordExtensions[ext] || strings.Contains(mime, "msword") || strings.Contains(mime, "wordprocessing"):
		return SubKindWord
	case spreadsheetExtensions[ext] || strings.Contains(mime, "spreadsheet") || strings.Contains(mime, "excel") || strings.Contains(mime, "csv"):
		return SubKindSpreadsheet
	case presentationExtensions[ext] || strings.Contains(mime, "presentation") || strings.Contains(mime, "powerpoint"):
		return SubKindPresentation
	case strings.EqualFold(att.MediaType, "archive") || archiveExtensions[ext] ||
		strings.Contains(mime, "zip") || strings.Contains(mime, "compressed") || strings.Contains(mime, "x-tar"):
		return SubKindArchive
	case textExtensions[ext] || strings.HasPrefix(mime, "text/"):
		return SubKindText
	}
	return SubKindOther
}
