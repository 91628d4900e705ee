// Package bind decodes a JSON request body into a struct and validates it.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/shashiranjanraj/ayoo/config"
	"github.com/shashiranjanraj/ayoo/pkg/validate"
)

var (
	// ErrEmptyBody means a JSON body was expected but none was sent.
	ErrEmptyBody = errors.New("request body is empty")
	// ErrBodyTooLarge means the body exceeded MAX_BODY_BYTES.
	ErrBodyTooLarge = errors.New("request body too large")
)

const defaultMaxBody = 4 << 20

// JSON decodes exactly one JSON value from r.Body into dest, then runs
// validate.Struct. Decoding problems come back as err; field failures come
// back as errs with a nil err.
func JSON(r *http.Request, dest any) (errs map[string]string, err error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, ErrEmptyBody
	}
	limit := int64(config.Int("MAX_BODY_BYTES", defaultMaxBody))
	if limit <= 0 {
		limit = defaultMaxBody
	}

	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, limit))
	if err := dec.Decode(dest); err != nil {
		return nil, decodeErr(err)
	}
	if dec.More() {
		return nil, errors.New("invalid JSON: unexpected data after the body")
	}

	if errs := validate.Struct(dest); validate.HasErrors(errs) {
		return errs, nil
	}
	return nil, nil
}

func decodeErr(err error) error {
	var tooBig *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		return ErrEmptyBody
	case errors.As(err, &tooBig):
		return fmt.Errorf("%w (max %d bytes)", ErrBodyTooLarge, tooBig.Limit)
	}
	return fmt.Errorf("invalid JSON: %w", err)
}
