package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/docparse/constants"
	"github.com/joseph-ayodele/docparse/internal/common"
)

func TestParseDoclingDocument(t *testing.T) {
	info, err := parseDoclingDocument([]byte(sampleDoclingJSON))
	require.NoError(t, err)
	assert.Equal(t, constants.PDF, info.Format)
	assert.Equal(t, []Page{{Number: 1}, {Number: 2}}, info.Pages)

	// no origin and no page collection
	info, err = parseDoclingDocument([]byte(`{"schema_name":"DoclingDocument","name":"notes"}`))
	require.NoError(t, err)
	assert.Empty(t, info.Format)
	assert.Nil(t, info.Pages)

	info, err = parseDoclingDocument([]byte(`{"schema_name":"DoclingDocument","origin":{"mimetype":"image/png"},"pages":{}}`))
	require.NoError(t, err)
	assert.Equal(t, constants.IMAGE, info.Format)
	assert.NotNil(t, info.Pages)
	assert.Empty(t, info.Pages)
}

func TestParseDoclingDocument_Invalid(t *testing.T) {
	for name, raw := range map[string]string{
		"not json":      `{`,
		"wrong schema":  `{"schema_name":"Other"}`,
		"bad page":      `{"schema_name":"DoclingDocument","pages":{"1":{"page_no":0}}}`,
		"missing field": `{"name":"x"}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := parseDoclingDocument([]byte(raw))
			require.Error(t, err)
			assert.Equal(t, common.CodeInvalidOutput, common.ErrorType(err))
		})
	}
}
