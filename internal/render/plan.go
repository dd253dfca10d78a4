// Package render decides how attachments and message bodies are presented
// and draws them as terminal text.
package render

import (
	"fmt"
	"strings"

	"github.com/brandon/mail-admin/internal/media"
	"github.com/brandon/mail-admin/pkg/types"
)

// Branch is the presentation chosen for an attachment
type Branch string

const (
	BranchImage       Branch = "image"
	BranchVideo       Branch = "video"
	BranchAudio       Branch = "audio"
	BranchPDF         Branch = "pdf"
	BranchFile        Branch = "file"
	BranchUnavailable Branch = "unavailable"
)

// Plan is everything a front end needs to draw one attachment
type Plan struct {
	Branch   Branch        `json:"branch"`
	Kind     media.Kind    `json:"kind"`
	SubKind  media.SubKind `json:"sub_kind,omitempty"`
	Name     string        `json:"name"`
	Icon     string        `json:"icon"`
	URL      string        `json:"url,omitempty"`
	Poster   string        `json:"poster,omitempty"`
	Download string        `json:"download,omitempty"`
	Size     string        `json:"size,omitempty"`
	Status   string        `json:"status,omitempty"`
}

// PlanAttachment resolves att and picks its presentation
func PlanAttachment(r *media.Resolver, att types.Attachment) Plan {
	res := r.Resolve(att)

	p := Plan{
		Kind:    res.Kind,
		SubKind: media.ResolveSubKind(att),
		Name:    att.DisplayName(),
		URL:     res.URL,
		Status:  StatusNote(att.DownloadStatus),
	}
	if p.Name == "" {
		p.Name = "attachment"
	}
	if n := att.Bytes(); n > 0 {
		p.Size = FormatSize(n)
	}

	localPath := att.LocalPath
	if att.IsBare() {
		localPath = att.Path
	}
	if link, ok := r.ResolveDownloadLink(localPath, p.Name); ok {
		p.Download = link
	}

	switch {
	case res.URL == "":
		p.Branch = BranchFile
	case res.Kind == media.KindImage:
		p.Branch = BranchImage
		p.Poster, _ = r.ResolveThumbnail(att)
	case res.Kind == media.KindVideo:
		p.Branch = BranchVideo
		p.Poster, _ = r.ResolveThumbnail(att)
	case res.Kind == media.KindAudio:
		p.Branch = BranchAudio
	case p.SubKind == media.SubKindPDF:
		p.Branch = BranchPDF
	default:
		p.Branch = BranchFile
	}
	p.Icon = icon(media.ResolveKind(att), p.SubKind)

	return p
}

// Fail degrades a plan whose media failed to load. Only that element
// changes; file cards load nothing and are returned as is.
func (p Plan) Fail() Plan {
	if p.Branch == BranchFile || p.Branch == BranchUnavailable {
		return p
	}
	p.Branch = BranchUnavailable
	p.Poster = ""
	return p
}

// Previewable reports whether the plan opens a full-screen preview
func (p Plan) Previewable() bool {
	return p.Branch == BranchImage
}

func icon(kind media.Kind, sub media.SubKind) string {
	switch kind {
	case media.KindImage:
		return "IMG"
	case media.KindVideo:
		return "VID"
	case media.KindAudio:
		return "AUD"
	}
	switch sub {
	case media.SubKindPDF:
		return "PDF"
	case media.SubKindWord:
		return "DOC"
	case media.SubKindSpreadsheet:
		return "XLS"
	case media.SubKindPresentation:
		return "PPT"
	case media.SubKindArchive:
		return "ZIP"
	case media.SubKindText:
		return "TXT"
	default:
		return "FILE"
	}
}

// FormatSize renders a byte count for humans: bytes below 1 KiB, whole
// kilobytes below 1 MiB and megabytes with one decimal above that.
func FormatSize(n int64) string {
	switch {
	case n < 0:
		return "0 B"
	case n < 1024:
		return fmt.Sprintf("%d B", n)
	case n < 1024*1024:
		return fmt.Sprintf("%d KB", (n+512)/1024)
	default:
		return fmt.Sprintf("%.1f MB", float64(n)/(1024*1024))
	}
}

// StatusNote annotates attachments whose download did not complete
func StatusNote(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case types.DownloadFailed:
		return "Download failed"
	case types.DownloadSkipped:
		return "File too large"
	case types.DownloadPending:
		return "Processing"
	default:
		return ""
	}
}
