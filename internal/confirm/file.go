package confirm

import (
	"os"
	"path/filepath"
	"strings"
)

// FileMailbox reads single-token files named sottod-confirm-<request id>
// under $XDG_RUNTIME_DIR (falling back to the system temp dir). A helper
// invoked from a desktop notification writes "yes" or "no" there.
type FileMailbox struct {
	dir string
}

func NewFileMailbox() *FileMailbox {
	dir := os.Getenv("XDG_RUNTIME_DIR")
	if dir == "" {
		dir = os.TempDir()
	}
	return &FileMailbox{dir: dir}
}

func (m *FileMailbox) path(requestID string) string {
	return filepath.Join(m.dir, "sottod-confirm-"+requestID)
}

// TryReceive consumes the token file if present. The file is removed before
// the token is returned so a reply is only ever delivered once.
func (m *FileMailbox) TryReceive(requestID string) (string, bool) {
	path := m.path(requestID)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	_ = os.Remove(path)

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", false
	}
	return token, true
}

func (m *FileMailbox) Clear(requestID string) {
	_ = os.Remove(m.path(requestID))
}
