package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rosterDataset() Dataset {
	return Dataset{
		Title:   "Accounts",
		Headers: []string{"email", "status"},
		Rows: []map[string]string{
			{"email": "chef@bistro.test", "status": "approved"},
			{"email": "cook, junior@diner.test", "status": "pending"},
		},
	}
}

func TestCSVRender(t *testing.T) {
	out, err := NewCSVExporter().Render(rosterDataset())
	require.NoError(t, err)
	assert.Equal(t, "email,status\nchef@bistro.test,approved\n\"cook, junior@diner.test\",pending\n", string(out))
}

func TestPDFRender(t *testing.T) {
	out, err := NewPDFExporter().Render(rosterDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)
	assert.Equal(t, "application/pdf", For(f).ContentType())

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 100))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnopqrstuvwxyz", 16))
}
