// Package tool_readfile exposes local file contents to the model.
package tool_readfile

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/cadenzr/turnpike/src/toolkit"
	"github.com/spf13/afero"
)

const Name = "read_file"

const description = `Reads a file from the local filesystem and returns its contents.

Usage:
- The path parameter can be absolute or relative to the working directory
- Optionally set line_numbers: true to prefix each line with its number
- Binary files are rejected; only text content is returned
- Files larger than 1MB are rejected`

const maxFileSize = 1 << 20

// ReadFileInput are the parameters for read_file.
type ReadFileInput struct {
	Path        string `json:"path" required:"true" description:"The file path to read"`
	LineNumbers bool   `json:"line_numbers,omitempty" description:"Prefix each line with its number"`
}

// ReadFileOutput is the response from read_file.
type ReadFileOutput struct {
	Content string `json:"content" description:"The file contents"`
	Path    string `json:"path" description:"The file path that was read"`
	Size    int64  `json:"size" description:"File size in bytes"`
}

// Tool builds the read_file tool over the given filesystem.
func Tool(fs afero.Fs) (toolkit.Tool, error) {
	return toolkit.NewFuncTool(Name, description, makeHandler(fs))
}

func makeHandler(fs afero.Fs) func(ctx context.Context, input ReadFileInput) (ReadFileOutput, error) {
	return func(ctx context.Context, input ReadFileInput) (ReadFileOutput, error) {
		if input.Path == "" {
			return ReadFileOutput{}, fmt.Errorf("path parameter is required")
		}
		if err := ctx.Err(); err != nil {
			return ReadFileOutput{}, err
		}

		info, err := fs.Stat(input.Path)
		if err != nil {
			return ReadFileOutput{}, fmt.Errorf("file not found: %s", input.Path)
		}
		if info.IsDir() {
			return ReadFileOutput{}, fmt.Errorf("%s is a directory", input.Path)
		}
		if info.Size() > maxFileSize {
			return ReadFileOutput{}, fmt.Errorf("file too large: %d bytes (limit %d)", info.Size(), maxFileSize)
		}

		content, err := afero.ReadFile(fs, input.Path)
		if err != nil {
			return ReadFileOutput{}, fmt.Errorf("failed to read file: %w", err)
		}
		if !utf8.Valid(content) {
			return ReadFileOutput{}, fmt.Errorf("%s is not a text file", input.Path)
		}

		text := string(content)
		if input.LineNumbers {
			text = addLineNumbers(text)
		}

		return ReadFileOutput{
			Content: text,
			Path:    input.Path,
			Size:    info.Size(),
		}, nil
	}
}

func addLineNumbers(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = fmt.Sprintf("%d: %s", i+1, line)
	}
	return strings.Join(lines, "\n")
}
