package documents

import "errors"

var (
	ErrForbidden       = errors.New("document belongs to another user")
	ErrFileTooLarge    = errors.New("file exceeds the upload size limit")
	ErrUnsupportedType = errors.New("file type is not supported")
	ErrEmptyFile       = errors.New("file is empty")
	ErrStorage         = errors.New("file storage unavailable")
	ErrPersistence     = errors.New("document could not be saved")
)
