package asset

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// The Resource type wraps a local file or a remote (http/https) document.
type Resource struct {
	io.ReadCloser
	url *url.URL
}

// Returns the path to this resource.
func (r *Resource) Path() string {
	return r.url.String()
}

// Returns true if the Resource is streamed over http/https.
func (r *Resource) IsRemote() bool {
	return r.url.Scheme != ""
}

// Open a resource. Paths with an http or https scheme are fetched with the
// net/http package; anything else is treated as a local file. The caller
// must close the returned resource.
func NewResource(pathToResource string) (*Resource, error) {
	u, err := url.Parse(strings.Replace(pathToResource, `\`, `/`, -1))
	if err != nil {
		return nil, errors.Wrapf(err, "resource: could not parse %q", pathToResource)
	}

	// Windows drive letters parse as a single letter scheme.
	if len(u.Scheme) == 1 {
		u = &url.URL{Path: pathToResource}
	}

	var reader io.ReadCloser
	switch u.Scheme {
	case "":
		reader, err = os.Open(filepath.Clean(u.Path))
		if err != nil {
			return nil, errors.Wrap(err, "resource")
		}
	case "http", "https":
		resp, err := http.Get(u.String())
		if err != nil {
			return nil, errors.Wrapf(err, "resource: could not fetch '%s'", u.String())
		}
		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return nil, errors.Errorf("resource: could not fetch '%s': status %d", u.String(), resp.StatusCode)
		}
		reader = resp.Body
	default:
		return nil, errors.Errorf("resource: unsupported scheme '%s'", u.Scheme)
	}

	return &Resource{
		ReadCloser: reader,
		url:        u,
	}, nil
}

// Create a resource from a reader.
func NewResourceFromStream(name string, source io.Reader) *Resource {
	u, err := url.Parse(name)
	if err != nil {
		u = &url.URL{Path: name}
	}
	return &Resource{
		ReadCloser: io.NopCloser(source),
		url:        u,
	}
}

// Open a resource, read its full contents and close it.
func ReadAll(pathToResource string) ([]byte, error) {
	res, err := NewResource(pathToResource)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	var buf bytes.Buffer
	if _, err = io.Copy(&buf, res); err != nil {
		return nil, errors.Wrapf(err, "resource: could not read '%s'", res.Path())
	}
	return buf.Bytes(), nil
}
