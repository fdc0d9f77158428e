package loaders

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcline-labs/askdoc/internal/core/domain"
)

func TestForExtension(t *testing.T) {
	r := DefaultRegistry()

	l, err := r.ForExtension(".txt")
	require.NoError(t, err)
	assert.IsType(t, &Plaintext{}, l)

	l, err = r.ForExtension(".docx")
	require.NoError(t, err)
	assert.IsType(t, &Docx{}, l)

	l, err = r.ForExtension(".pdf")
	require.NoError(t, err)
	assert.IsType(t, &PDF{}, l)
}

func TestForExtensionIsCaseInsensitive(t *testing.T) {
	r := DefaultRegistry()

	l, err := r.ForExtension(".PDF")
	require.NoError(t, err)
	assert.IsType(t, &PDF{}, l)
}

func TestForExtensionUnsupported(t *testing.T) {
	r := DefaultRegistry()

	_, err := r.ForExtension(".exe")
	assert.True(t, errors.Is(err, domain.ErrUnsupportedType))
}
