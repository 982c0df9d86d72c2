package main

import (
	"mime"

	log "github.com/sirupsen/logrus"
	"gitlab.com/gitlab-org/go-mimedb"
)

// extraMIMETypes are types missing from the system and mimedb tables
var extraMIMETypes = map[string]string{
	".avif":        "image/avif",
	".webmanifest": "application/manifest+json",
	".wasm":        "application/wasm",
	".mjs":         "text/javascript; charset=utf-8",
}

// loadMIMETypes extends the extension table used to set Content-Type on
// static files
func loadMIMETypes() error {
	if err := mimedb.LoadTypes(); err != nil {
		return err
	}

	for ext, mimeType := range extraMIMETypes {
		if err := mime.AddExtensionType(ext, mimeType); err != nil {
			log.WithError(err).Errorf("failed to add extension: %q with MIME type: %q", ext, mimeType)
		}
	}

	return nil
}
