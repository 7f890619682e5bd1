package deliver

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// FilePrefix is the basename prefix for written report files.
const FilePrefix = "AsanaMailer"

// WriteFiles writes the rendered report to <FilePrefix>_<YYYY-MM-DD>.html
// and <FilePrefix>_<YYYY-MM-DD>.markdown inside dir. Each file is attempted
// independently so a failure on one does not block the other; the first
// error is returned after both attempts.
func WriteFiles(dir string, date time.Time, htmlBody, textBody string, log *slog.Logger) error {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	stem := fmt.Sprintf("%s_%s", FilePrefix, date.Format("2006-01-02"))
	var firstErr error
	for _, f := range []struct {
		ext, body string
	}{
		{"html", htmlBody},
		{"markdown", textBody},
	} {
		path := filepath.Join(dir, stem+"."+f.ext)
		if err := os.WriteFile(path, []byte(f.body), 0644); err != nil {
			log.Error("writing report file", "path", path, "error", err)
			if firstErr == nil {
				firstErr = fmt.Errorf("write %s: %w", path, err)
			}
			continue
		}
		log.Info("wrote report file", "path", path)
	}
	return firstErr
}
