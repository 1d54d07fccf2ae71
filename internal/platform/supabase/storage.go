package supabase

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// Upload stores data at path inside bucket. With upsert=false an existing
// object at the same path is reported as an error instead of being overwritten.
func (c *Client) Upload(ctx context.Context, bucket, path string, data []byte, contentType string, upsert bool) error {
	u := fmt.Sprintf("%s/storage/v1/object/%s/%s", c.cfg.baseURL(), bucket, escapePath(path))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return err
	}
	c.authorize(req)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Cache-Control", "max-age=3600")
	req.Header.Set("x-upsert", strconv.FormatBool(upsert))

	return c.do(req, nil)
}

// PublicURL resolves the public download URL of an object. It does not check
// that the object exists.
func (c *Client) PublicURL(bucket, path string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", c.cfg.baseURL(), bucket, escapePath(strings.TrimLeft(path, "/")))
}

// escapePath escapes each segment of an object path, keeping the separators.
func escapePath(path string) string {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = pathSegmentEscaper.Replace(s)
	}
	return strings.Join(segments, "/")
}

var pathSegmentEscaper = strings.NewReplacer(
	"%", "%25",
	" ", "%20",
	"?", "%3F",
	"#", "%23",
)
