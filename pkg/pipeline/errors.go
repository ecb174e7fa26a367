// pkg/pipeline/errors.go
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/David-Botos/chembl-prep/pkg/model"
)

// ErrorCategory classifies a pipeline failure for logging and exit handling
type ErrorCategory int

const (
	ErrorCategoryNone ErrorCategory = iota
	ErrorCategorySchema
	ErrorCategoryTypeConversion
	ErrorCategoryParse
	ErrorCategoryStorage
	ErrorCategoryFetch
	ErrorCategoryVerification
	ErrorCategoryCanceled
	ErrorCategoryUnknown
)

// String returns a string representation of the error category
func (ec ErrorCategory) String() string {
	switch ec {
	case ErrorCategoryNone:
		return "None"
	case ErrorCategorySchema:
		return "Schema"
	case ErrorCategoryTypeConversion:
		return "TypeConversion"
	case ErrorCategoryParse:
		return "Parse"
	case ErrorCategoryStorage:
		return "Storage"
	case ErrorCategoryFetch:
		return "Fetch"
	case ErrorCategoryVerification:
		return "Verification"
	case ErrorCategoryCanceled:
		return "Canceled"
	default:
		return fmt.Sprintf("Unknown(%d)", int(ec))
	}
}

// Categorize maps an error to its category by walking the wrap chain.
// Verification failures are checked first since they wrap nothing.
func Categorize(err error) ErrorCategory {
	if err == nil {
		return ErrorCategoryNone
	}

	var (
		verifyErr  *VerificationError
		fetchErr   *model.FetchError
		schemaErr  *model.SchemaError
		convErr    *model.TypeConversionError
		parseErr   *model.ParseError
		storageErr *model.StorageError
	)

	switch {
	case errors.As(err, &verifyErr):
		return ErrorCategoryVerification
	case errors.As(err, &fetchErr):
		// A fetch aborted by the caller is a cancellation, not a remote failure
		if errors.Is(err, context.Canceled) {
			return ErrorCategoryCanceled
		}
		return ErrorCategoryFetch
	case errors.As(err, &schemaErr):
		return ErrorCategorySchema
	case errors.As(err, &convErr):
		return ErrorCategoryTypeConversion
	case errors.As(err, &parseErr):
		return ErrorCategoryParse
	case errors.As(err, &storageErr):
		return ErrorCategoryStorage
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ErrorCategoryCanceled
	default:
		return ErrorCategoryUnknown
	}
}

// DatasetError attaches the stage and dataset to a failure
type DatasetError struct {
	Dataset string
	Stage   string
	Err     error
}

func (e *DatasetError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Dataset, e.Err)
}

func (e *DatasetError) Unwrap() error { return e.Err }
