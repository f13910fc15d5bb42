package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrMissingImage is returned when the request carries no image
	ErrMissingImage = errors.New("image_base64 is required")

	// ErrClassificationFailed is returned when the vision model call fails
	ErrClassificationFailed = errors.New("food classification failed")

	// ErrMalformedClassifierOutput is returned when the model response is not the expected JSON shape
	ErrMalformedClassifierOutput = errors.New("malformed classifier output")

	// ErrNoItemsFound is returned when the model reported no food items
	ErrNoItemsFound = errors.New("no items found")

	// ErrFallbackUnavailable is returned by the fallback classifier when no secondary path exists
	ErrFallbackUnavailable = errors.New("fallback classifier unavailable")

	// ErrAnalysisFailed is returned for unexpected failures inside the pipeline
	ErrAnalysisFailed = errors.New("food analysis failed")

	// ErrProductNotFound is returned when a product cannot be found in the composition database
	ErrProductNotFound = errors.New("product not found in composition database")

	// ErrCompositionAPIFailure is returned when a composition database request fails
	ErrCompositionAPIFailure = errors.New("composition database request failed")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrEntryNotFound is returned when a meal entry row does not exist
	ErrEntryNotFound = errors.New("meal entry not found")

	// ErrBucketNotFound is returned when the storage bucket does not exist
	ErrBucketNotFound = errors.New("storage bucket not found")

	// ErrStorageFailure is returned when an image upload fails
	ErrStorageFailure = errors.New("image upload failed")
)
