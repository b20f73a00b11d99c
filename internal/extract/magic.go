package extract

import (
	"bytes"
	"os"

	"github.com/twinlift/twinlift/internal/model"
)

// ZIP local-file-header magic; empty archives start with the
// end-of-central-directory record instead.
var (
	zipMagic      = []byte{0x50, 0x4b, 0x03, 0x04}
	zipEmptyMagic = []byte{0x50, 0x4b, 0x05, 0x06}
)

// ValidateArchive checks that path exists and carries ZIP magic bytes.
// Returns FileNotFound or InvalidArchive as *model.PipelineError.
func ValidateArchive(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return model.NewError(model.ErrFileNotFound, path, err)
	}
	if info.IsDir() {
		return model.NewError(model.ErrFileNotFound, path+" is a directory", nil)
	}

	f, err := os.Open(path)
	if err != nil {
		return model.NewError(model.ErrFileNotFound, path, err)
	}
	defer f.Close()

	header := make([]byte, 4)
	n, err := f.Read(header)
	if err != nil || n < 4 {
		return model.NewError(model.ErrInvalidArchive, path+" is too short to be an archive", err)
	}
	if !bytes.Equal(header, zipMagic) && !bytes.Equal(header, zipEmptyMagic) {
		return model.NewError(model.ErrInvalidArchive, path+" does not start with ZIP magic bytes", nil)
	}
	return nil
}
