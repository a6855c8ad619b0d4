package render

import (
	"github.com/alnah/go-trustforge/internal/fileutil"
)

// Artifact is one rendered output plus the files that travel with it.
type Artifact struct {
	Path     string
	Data     []byte
	Warnings []error
	Sidecars []Sidecar
}

// Sidecar is an extra file written next to an artifact: either Data, or a
// copy of the file at From.
type Sidecar struct {
	Path string
	From string
	Data []byte
}

// Write stores the artifact and its sidecars. Each file is written
// atomically; parent directories are created. Existing files are replaced.
func Write(a *Artifact) error {
	for _, s := range a.Sidecars {
		var err error
		if s.From != "" {
			err = fileutil.CopyFile(s.From, s.Path)
		} else {
			err = fileutil.WriteFileAtomic(s.Path, s.Data, 0o644)
		}
		if err != nil {
			return err
		}
	}
	return fileutil.WriteFileAtomic(a.Path, a.Data, 0o644)
}
