package conf

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

var ErrInvalidConfigFile = errors.New("invalid config file")

// validationError lists the schema violations of a config file.
type validationError struct {
	file   string
	result *gojsonschema.Result
}

func (e *validationError) Error() string {
	msgs := make([]string, 0, len(e.result.Errors()))
	for _, desc := range e.result.Errors() {
		msgs = append(msgs, desc.String())
	}

	return fmt.Sprintf("%s: %s: %s", ErrInvalidConfigFile, e.file, strings.Join(msgs, "; "))
}

func (e *validationError) Unwrap() error {
	return ErrInvalidConfigFile
}

// validate validates a json document against a json schema.
func validate(file string, schema, data []byte) error {
	schemaLoader := gojsonschema.NewBytesLoader(schema)
	dataLoader := gojsonschema.NewBytesLoader(data)

	res, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidConfigFile, file, err)
	}

	if res.Valid() {
		return nil
	}

	return &validationError{file: file, result: res}
}
