package req

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/gorilla/schema"
	an "github.com/sergii/activity-notification"
)

// A queryParamDecoder translates the errors a *schema.Decoder returns
// into standardized ones.
type queryParamDecoder struct {
	dec *schema.Decoder
}

func newQueryParamDecoder() queryParamDecoder {
	dec := schema.NewDecoder()
	dec.IgnoreUnknownKeys(true)

	return queryParamDecoder{dec}
}

// decode maps params onto structPtr using "schema" struct tags.
func (q queryParamDecoder) decode(structPtr any, params url.Values) error {
	err := q.dec.Decode(structPtr, params)
	if err == nil {
		return nil
	}

	if strings.Contains(err.Error(), "schema: interface must be a pointer to struct") {
		return fmt.Errorf("%w: ParseQueryParams called with non-pointer: %s", an.ErrBadAny, err)
	}

	return translateDecoderError(err)
}

// translateDecoderError converts an error returned by *schema.Decoder into standardized errors.
// Some *schema.Decoder errors are issues with calling code;
// some errors are unexpected issues;
// still some are issues with mismatches between a request's query params and the expected shape.
func translateDecoderError(err error) error {
	var pkgErrs schema.MultiError
	// NOTE: outside errors handled before this point,
	// the schema package wraps everything else in a MultiError.
	// This is the "happy path".
	if !errors.As(err, &pkgErrs) {
		return fmt.Errorf("%w: %s", an.ErrBadFormat, err)
	}

	var validErrs ValidationErrors
	for _, pkgErr := range pkgErrs {
		switch err := pkgErr.(type) {
		case schema.ConversionError:
			ve := ValidationError{
				Field: err.Key,
				// NOTE: for non-slice values, err.Index is -1.
				// Having such a subtle difference is confusing.
				Got:  fmt.Sprintf("bad value at index %d", max(0, err.Index)),
				Rule: fmt.Sprintf("must be %s", err.Type),
			}

			validErrs = append(validErrs, ve)

		case schema.EmptyFieldError:
			return fmt.Errorf(`%w: use validate pkg to set "required" fields, not schema`, an.ErrNotImplemented)

		case schema.UnknownKeyError:
			// NOTE: the default decoder configuration accepts unknown keys.
			// Handle the case gracefully should that configuration change.
			ve := ValidationError{
				Field: err.Key,
				Got:   "value is set",
				Rule:  "unexpected key should not be set",
			}

			validErrs = append(validErrs, ve)

		default:
			// NOTE: a field whose type requires a schema.Converter,
			// but that has none registered,
			// raises no error until a url.Values actually sets the key.
			if strings.Contains(err.Error(), "schema: converter not found for") {
				return fmt.Errorf("%w: cannot convert values into unsupported type", an.ErrNotImplemented)
			}

			// NOTE: the above covers the known struct-backed errors schema returns.
			// Anything else is likely a programming error, so surface it immediately.
			return fmt.Errorf("%w: %s", an.ErrUnexpected, err)
		}
	}

	return validErrs
}
