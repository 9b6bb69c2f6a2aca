package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadJSONFile_Captions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "captions.json")
	payload := `[{"text":"voltage equals current times resistance","start":10,"end":14,"confidence":0.95}]`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0644))

	var captions []CaptionInput
	require.NoError(t, readJSONFile(path, &captions))
	require.Len(t, captions, 1)
	assert.Equal(t, 10.0, captions[0].Start)
	assert.Equal(t, 0.95, captions[0].Confidence)
}

func TestReadJSONFile_MissingFile(t *testing.T) {
	var captions []CaptionInput
	err := readJSONFile(filepath.Join(t.TempDir(), "missing.json"), &captions)
	assert.Error(t, err)
}

func TestIngestCmd_RequiresInputFile(t *testing.T) {
	cmd := IngestCmd()
	cmd.SetArgs([]string{"lecture-01"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one of --captions or --frames")
}
