package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Locale
	}{
		{"", English},
		{"en", English},
		{"EN", English},
		{"sp", Spanish},
		{" sp ", Spanish},
		{"es", Spanish},
		{"es-MX", Spanish},
		{"en-GB", English},
		{"es-ES,es;q=0.9,en;q=0.5", Spanish},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse("!!not a tag")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported locale")
}

func TestLocaleHeaderAndTag(t *testing.T) {
	assert.Equal(t, "sp", Spanish.Header())
	assert.Equal(t, "en", Locale("").Header())
	assert.Equal(t, language.Spanish, Spanish.Tag())
	assert.Equal(t, English, Spanish.Next())
	assert.Equal(t, Spanish, English.Next())
}
