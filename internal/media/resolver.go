// Package media resolves displayable URLs and rendering kinds for
// attachment records served by the backend.
package media

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/brandon/mail-admin/pkg/types"
)

// Media endpoint prefixes on the backend
const (
	filesPath      = "/api/media/files/"
	thumbnailsPath = "/api/media/thumbnails/"
	gmailProxyPath = "/api/media/gmail/media/"
	monitoringPath = "/api/media/monitoring/"
)

// Result is the outcome of resolving one attachment
type Result struct {
	URL  string `json:"url,omitempty"`
	Rule string `json:"rule,omitempty"`
	Kind Kind   `json:"kind"`
}

// Rule is one entry of the URL resolution priority list. Match decides
// whether the rule applies; Build produces the URL.
type Rule struct {
	Name  string
	Match func(att types.Attachment) bool
	Build func(r *Resolver, att types.Attachment) string
}

// Resolver builds media URLs against a configured backend origin
type Resolver struct {
	baseURL string
	rules   []Rule

	// Now supplies the identifier of last resort for proxied provider media
	Now func() time.Time
}

// NewResolver creates a resolver for the given media base URL
func NewResolver(baseURL string) *Resolver {
	return &Resolver{
		baseURL: strings.TrimRight(baseURL, "/"),
		rules:   defaultRules(),
		Now:     time.Now,
	}
}

// BaseURL returns the media origin URLs are built against
func (r *Resolver) BaseURL() string {
	return r.baseURL
}

// Rules returns the resolution rules in priority order
func (r *Resolver) Rules() []Rule {
	out := make([]Rule, len(r.rules))
	copy(out, r.rules)
	return out
}

// defaultRules is the priority list; the first matching rule wins.
//
// employee-monitoring can never fire: any record carrying localPath is
// claimed by local-path first. The order is kept as the backend contract
// describes it until the intended precedence is confirmed.
func defaultRules() []Rule {
	return []Rule{
		{
			Name:  "bare-path",
			Match: func(att types.Attachment) bool { return att.IsBare() },
			Build: func(r *Resolver, att types.Attachment) string {
				return r.fileURL(types.LastSegment(att.Path))
			},
		},
		{
			Name:  "local-path",
			Match: func(att types.Attachment) bool { return att.LocalPath != "" },
			Build: func(r *Resolver, att types.Attachment) string {
				return r.fileURL(types.LastSegment(att.LocalPath))
			},
		},
		{
			Name:  "provider-proxy",
			Match: func(att types.Attachment) bool { return att.DownloadURL != "" || att.ThumbnailURL != "" },
			Build: func(r *Resolver, att types.Attachment) string {
				return r.baseURL + gmailProxyPath + url.PathEscape(r.proxyID(att))
			},
		},
		{
			Name:  "employee-monitoring",
			Match: func(att types.Attachment) bool { return att.EmployeeMonitored && att.LocalPath != "" },
			Build: func(r *Resolver, att types.Attachment) string {
				return r.baseURL + monitoringPath + strings.TrimLeft(att.LocalPath, "/")
			},
		},
		{
			Name:  "filename",
			Match: func(att types.Attachment) bool { return att.Filename != "" || att.ContentName != "" },
			Build: func(r *Resolver, att types.Attachment) string {
				name := att.Filename
				if name == "" {
					name = att.ContentName
				}
				return r.fileURL(name)
			},
		},
	}
}

// ResolveMedia returns the displayable URL for an attachment and whether one exists
func (r *Resolver) ResolveMedia(att types.Attachment) (string, bool) {
	u, _ := r.resolve(att)
	return u, u != ""
}

// Resolve returns the URL together with the rendering kind. The kind is
// unavailable whenever no URL could be built.
func (r *Resolver) Resolve(att types.Attachment) Result {
	u, rule := r.resolve(att)
	if u == "" {
		return Result{Kind: KindUnavailable}
	}
	return Result{URL: u, Rule: rule, Kind: ResolveKind(att)}
}

func (r *Resolver) resolve(att types.Attachment) (string, string) {
	for _, rule := range r.rules {
		if !rule.Match(att) {
			continue
		}
		if u := rule.Build(r, att); u != "" {
			return u, rule.Name
		}
		// A matching rule that cannot build a URL ends the search
		return "", rule.Name
	}
	return "", ""
}

// ResolveThumbnail prefers an external thumbnail, then a local thumbnail
// file, then the media URL itself for images.
func (r *Resolver) ResolveThumbnail(att types.Attachment) (string, bool) {
	if att.ThumbnailURL != "" {
		return att.ThumbnailURL, true
	}
	if name := types.LastSegment(att.ThumbnailPath); name != "" {
		return r.baseURL + thumbnailsPath + url.PathEscape(name), true
	}
	if ResolveKind(att) == KindImage {
		return r.ResolveMedia(att)
	}
	return "", false
}

// ResolveDownloadLink builds a direct download link from a server-local
// path. Provider-only attachments have no download link.
func (r *Resolver) ResolveDownloadLink(localPath, filename string) (string, bool) {
	name := types.LastSegment(localPath)
	if name == "" {
		return "", false
	}
	if filename == "" {
		filename = name
	}
	return r.fileURL(name) + "?download=" + url.QueryEscape(filename), true
}

func (r *Resolver) fileURL(name string) string {
	if name == "" {
		return ""
	}
	return r.baseURL + filesPath + url.PathEscape(name)
}

func (r *Resolver) proxyID(att types.Attachment) string {
	if att.ID != "" {
		return att.ID
	}
	if seg := types.LastSegment(att.Name); seg != "" {
		return seg
	}
	return strconv.FormatInt(r.Now().UnixMilli(), 10)
}
