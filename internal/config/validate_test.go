package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TEST PLAN: Validate
//
// 1. Default() passes validation untouched.
// 2. Each individual invalid field is caught.
// 3. Multiple invalid fields join into one error listing both.

func TestValidate_DefaultIsValid(t *testing.T) {
	t.Parallel()
	assert.NoError(t, Validate(Default()))
}

func TestValidate_RejectsEmptyModel(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.Embedding.Model = "  "
	assert.ErrorIs(t, Validate(cfg), ErrEmptyModel)
}

func TestValidate_RejectsNonPositiveDimensions(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.Embedding.Dimensions = 0
	assert.ErrorIs(t, Validate(cfg), ErrInvalidDimensions)
}

func TestValidate_RejectsNonPositiveBatchSize(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.Batch.Size = -1
	assert.ErrorIs(t, Validate(cfg), ErrInvalidBatchSize)
}

func TestValidate_JoinsMultipleErrors(t *testing.T) {
	t.Parallel()
	cfg := Default()
	cfg.Embedding.Model = ""
	cfg.Batch.Size = 0

	err := Validate(cfg)
	assert.ErrorContains(t, err, "empty embedding model")
	assert.ErrorContains(t, err, "invalid batch size")
}
