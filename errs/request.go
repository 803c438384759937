package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Upload errors
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrInvalidFilename     = errors.New("invalid filename")
	ErrMissingFile         = errors.New("missing file")
)

// NewUnsupportedFileTypeError is returned when an upload's extension is not on the allow-list.
func NewUnsupportedFileTypeError(filename string, allowed []string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnsupportedMediaType,
		err:        ErrUnsupportedFileType,
		Details:    fmt.Sprintf("File %q is not allowed. Allowed types: %s", filename, strings.Join(allowed, ", ")),
		Field:      "file",
	}
}

func NewInvalidFilenameError(filename string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrInvalidFilename,
		Details:    fmt.Sprintf("File name %q cannot be stored", filename),
		Field:      "file",
	}
}

func NewMissingFileError(field, details string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        ErrMissingFile,
		Details:    details,
		Field:      field,
	}
}

func IsUnsupportedFileTypeError(err error) bool {
	return errors.Is(err, ErrUnsupportedFileType)
}

func IsInvalidFilenameError(err error) bool {
	return errors.Is(err, ErrInvalidFilename)
}

func IsMissingFileError(err error) bool {
	return errors.Is(err, ErrMissingFile)
}
