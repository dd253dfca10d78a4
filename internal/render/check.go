package render

import (
	"context"
	"net/http"
)

// Check asks the media server whether the plan's media can be loaded and
// degrades the plan when it cannot. File cards load nothing and are
// returned unchanged.
func Check(ctx context.Context, client *http.Client, p Plan) Plan {
	if p.Branch == BranchFile || p.Branch == BranchUnavailable || p.URL == "" {
		return p
	}
	if !reachable(ctx, client, p.URL) {
		return p.Fail()
	}
	return p
}

func reachable(ctx context.Context, client *http.Client, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < http.StatusBadRequest
}
