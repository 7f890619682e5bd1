package deliver

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWriteFiles(t *testing.T) {
	dir := t.TempDir()
	date := time.Date(2026, 8, 29, 15, 30, 0, 0, time.UTC)

	if err := WriteFiles(dir, date, "<html>report</html>", "# report", nil); err != nil {
		t.Fatalf("write files: %v", err)
	}

	tests := []struct {
		name string
		want string
	}{
		{"AsanaMailer_2026-08-29.html", "<html>report</html>"},
		{"AsanaMailer_2026-08-29.markdown", "# report"},
	}
	for _, tt := range tests {
		data, err := os.ReadFile(filepath.Join(dir, tt.name))
		if err != nil {
			t.Fatalf("read %s: %v", tt.name, err)
		}
		if string(data) != tt.want {
			t.Errorf("%s = %q, want %q", tt.name, data, tt.want)
		}
	}
}

func TestWriteFilesBadDir(t *testing.T) {
	err := WriteFiles(filepath.Join(t.TempDir(), "missing"), time.Now(), "h", "t", nil)
	if err == nil {
		t.Fatal("expected error writing into a nonexistent directory")
	}
}
