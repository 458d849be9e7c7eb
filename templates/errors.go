package templates

import "github.com/pkg/errors"

var (
	// ErrInvalidTemplateDocument is returned when a serialized template is
	// missing required keys at any nesting level
	ErrInvalidTemplateDocument = errors.New("invalid template document")

	// ErrInvalidOverwriteData is returned when an overwrite flag value is
	// outside the allow/deny/unset domain
	ErrInvalidOverwriteData = errors.New("invalid overwrite data")
)
