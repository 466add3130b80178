package document

import "errors"

var (
	// ErrUnsupportedType is returned for file extensions no loader handles.
	ErrUnsupportedType = errors.New("unsupported file type")

	// ErrNoDocuments indicates loading or splitting produced nothing to work with.
	ErrNoDocuments = errors.New("no documents")
)
