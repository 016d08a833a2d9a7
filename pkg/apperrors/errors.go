package apperrors

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrInvalidInput      = errors.New("invalid input")
	ErrTranslationFailed = errors.New("translation failed")
	ErrNoSearchCriteria  = errors.New("no search criteria")
	ErrNoCandidates      = errors.New("no candidates")
	ErrPersistenceFailed = errors.New("persistence failed")
)

// Category names are stable and safe to return to callers.
const (
	CategoryInvalidInput      = "invalid_input"
	CategoryTranslationFailed = "translation_failed"
	CategoryNoSearchCriteria  = "no_search_criteria"
	CategoryNoCandidates      = "no_candidates"
	CategoryPersistenceFailed = "persistence_failed"
	CategoryNotFound          = "not_found"
	CategoryConflict          = "conflict"
	CategoryInternal          = "internal"
)

// Category returns the stable category for err. Pipeline categories are
// checked before the generic ones so a wrapped chain resolves to the most
// specific outcome.
func Category(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return CategoryInvalidInput
	case errors.Is(err, ErrTranslationFailed):
		return CategoryTranslationFailed
	case errors.Is(err, ErrNoSearchCriteria):
		return CategoryNoSearchCriteria
	case errors.Is(err, ErrNoCandidates):
		return CategoryNoCandidates
	case errors.Is(err, ErrPersistenceFailed):
		return CategoryPersistenceFailed
	case errors.Is(err, ErrNotFound):
		return CategoryNotFound
	case errors.Is(err, ErrConflict):
		return CategoryConflict
	default:
		return CategoryInternal
	}
}
