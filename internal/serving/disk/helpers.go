package disk

import (
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

func openNoFollow(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_RDONLY|unix.O_NOFOLLOW, 0)
}

// Detect file's content-type either by extension or mime-sniffing.
// Implementation is adapted from Golang's `http.serveContent()`
// See https://github.com/golang/go/blob/902fc114272978a40d2e65c2510a18e870077559/src/net/http/fs.go#L194
func detectContentType(path string, file io.ReadSeeker) (string, error) {
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType != "" {
		return contentType, nil
	}

	var buf [512]byte

	// Using `io.ReadFull()` because `file.Read()` may be chunked.
	// Ignoring errors because we don't care if the 512 bytes cannot be read.
	n, _ := io.ReadFull(file, buf[:])
	contentType = http.DetectContentType(buf[:n])

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}

	return contentType, nil
}
