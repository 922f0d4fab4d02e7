package cli

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
)

// DownloadImage fetches the image at rawURL and saves it into a temporary
// file, so the reference driver can accept a URL wherever it accepts a
// path.
func DownloadImage(rawURL string) (*os.File, error) {
	res, err := http.Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", rawURL, err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading %s: status %s", rawURL, res.Status)
	}

	tmpfile, err := os.CreateTemp("", "carve-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := io.Copy(tmpfile, res.Body); err != nil {
		tmpfile.Close()
		return nil, fmt.Errorf("saving %s: %w", rawURL, err)
	}
	return tmpfile, nil
}

// IsValidURL reports whether rawURL parses as an absolute URL with a
// scheme and host, the test the driver uses to decide whether -in names a
// local path or a remote image to fetch first.
func IsValidURL(rawURL string) bool {
	u, err := url.ParseRequestURI(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}
	return true
}
