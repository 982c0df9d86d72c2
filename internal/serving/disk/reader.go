package disk

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"gitlab.com/gitlab-org/pages-fallback/internal/httperrors"
	"gitlab.com/gitlab-org/pages-fallback/internal/logging"
)

// Reader is a disk access driver serving files that were resolved to a
// canonical path beforehand
type Reader struct {
	maxAge         time.Duration
	fileSizeMetric prometheus.Histogram
	now            func() time.Time
}

// New returns a Reader. A positive maxAge allows clients to cache the files
// for that long, otherwise they must revalidate on every request.
func New(maxAge time.Duration, fileSizeMetric prometheus.Histogram) *Reader {
	return &Reader{
		maxAge:         maxAge,
		fileSizeMetric: fileSizeMetric,
		now:            time.Now,
	}
}

// ServeFile serves the regular file at fullPath. The file may have vanished
// since it was resolved, in which case a 404 page is served.
func (reader *Reader) ServeFile(w http.ResponseWriter, r *http.Request, fullPath string) {
	reader.handleError(w, r, reader.serveFile(w, r, fullPath))
}

// ServeFileWithStatus serves the content of the file at fullPath with the
// given status code, without conditional or range handling
func (reader *Reader) ServeFileWithStatus(w http.ResponseWriter, r *http.Request, code int, fullPath string) {
	reader.handleError(w, r, reader.serveFileWithStatus(w, r, code, fullPath))
}

func (reader *Reader) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	if isNotFound(err) {
		logging.LogRequest(r).WithError(err).Debug("resolved file is no longer available")
		httperrors.Serve404(w)
		return
	}

	httperrors.Serve500WithRequest(w, r, "could not serve file", err)
}

func (reader *Reader) serveFileWithStatus(w http.ResponseWriter, r *http.Request, code int, fullPath string) error {
	file, fi, err := openRegular(fullPath)
	if err != nil {
		return err
	}
	defer file.Close()

	contentType, err := detectContentType(fullPath, file)
	if err != nil {
		return err
	}

	reader.fileSizeMetric.Observe(float64(fi.Size()))

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(fi.Size(), 10))
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(code)

	if r.Method != http.MethodHead {
		// the status line is out, a failed copy can only be logged
		if _, err := io.CopyN(w, file, fi.Size()); err != nil {
			logging.LogRequest(r).WithError(err).Debug("could not write file")
		}
	}

	return nil
}

func (reader *Reader) serveFile(w http.ResponseWriter, r *http.Request, fullPath string) error {
	file, fi, err := openRegular(fullPath)
	if err != nil {
		return err
	}
	defer file.Close()

	contentType, err := detectContentType(fullPath, file)
	if err != nil {
		return err
	}

	reader.setCacheHeaders(w)
	reader.fileSizeMetric.Observe(float64(fi.Size()))

	w.Header().Set("Content-Type", contentType)
	http.ServeContent(w, r, fullPath, fi.ModTime(), file)

	return nil
}

func (reader *Reader) setCacheHeaders(w http.ResponseWriter) {
	if reader.maxAge <= 0 {
		w.Header().Set("Cache-Control", "no-cache")
		return
	}

	w.Header().Set("Cache-Control", "max-age="+strconv.Itoa(int(reader.maxAge.Seconds())))
	w.Header().Set("Expires", reader.now().Add(reader.maxAge).UTC().Format(http.TimeFormat))
}

func openRegular(fullPath string) (*os.File, os.FileInfo, error) {
	file, err := openNoFollow(fullPath)
	if err != nil {
		return nil, nil, err
	}

	fi, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, nil, err
	}

	// The file may have been replaced by something else since it was resolved
	if !fi.Mode().IsRegular() {
		file.Close()
		return nil, nil, &notRegularError{fullPath: fullPath}
	}

	return file, fi, nil
}

type notRegularError struct {
	fullPath string
}

func (e *notRegularError) Error() string {
	return fmt.Sprintf("%s: is not a regular file", e.fullPath)
}

func isNotFound(err error) bool {
	var notRegular *notRegularError

	return errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, syscall.ELOOP) ||
		errors.As(err, &notRegular)
}
