package tool_readfile

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/cadenzr/turnpike/src/aisdk"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, fs afero.Fs, args string) *aisdk.ToolResponse {
	t.Helper()
	tool, err := Tool(fs)
	require.NoError(t, err)

	resp, err := tool.Execute(context.Background(), &aisdk.ToolCall{
		ID:       "call_1",
		Type:     "function",
		Function: aisdk.FunctionCall{Name: Name, Arguments: []byte(args)},
	})
	require.NoError(t, err)
	return resp
}

func TestReadFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/notes.txt", []byte("alpha\nbeta\n"), 0644))

	resp := execute(t, fs, `{"path":"/notes.txt"}`)
	require.False(t, resp.IsError)

	var out ReadFileOutput
	require.NoError(t, json.Unmarshal(resp.Content, &out))
	assert.Equal(t, "alpha\nbeta\n", out.Content)
	assert.Equal(t, int64(11), out.Size)
}

func TestReadFileWithLineNumbers(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/notes.txt", []byte("alpha\nbeta"), 0644))

	resp := execute(t, fs, `{"path":"/notes.txt","line_numbers":true}`)
	require.False(t, resp.IsError)

	var out ReadFileOutput
	require.NoError(t, json.Unmarshal(resp.Content, &out))
	assert.Equal(t, "1: alpha\n2: beta", out.Content)
}

func TestReadFileNotFound(t *testing.T) {
	resp := execute(t, afero.NewMemMapFs(), `{"path":"/missing.txt"}`)
	assert.True(t, resp.IsError)
	assert.Contains(t, string(resp.Content), "file not found")
}

func TestReadFileRejectsBinary(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/blob.bin", []byte{0xff, 0xfe, 0x00, 0x01}, 0644))

	resp := execute(t, fs, `{"path":"/blob.bin"}`)
	assert.True(t, resp.IsError)
	assert.Contains(t, string(resp.Content), "not a text file")
}

func TestReadFileRejectsDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/dir", 0755))

	resp := execute(t, fs, `{"path":"/dir"}`)
	assert.True(t, resp.IsError)
}

func TestReadFileMissingPath(t *testing.T) {
	resp := execute(t, afero.NewMemMapFs(), `{}`)
	assert.True(t, resp.IsError)
	assert.Contains(t, string(resp.Content), "path parameter is required")
}
