package builtin

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
)

type trailingWhitespaceOptions struct {
	MarkdownLinebreakExt string `long:"markdown-linebreak-ext" description:"Comma separated extensions where two trailing spaces are a hard line break"`
	Chars                string `long:"chars" description:"Characters to strip instead of whitespace"`
}

// trailingWhitespace strips whitespace at the end of every line and fails if
// it changed anything
func trailingWhitespace(ctx context.Context, req Request, out io.Writer) (int, error) {
	var opts trailingWhitespaceOptions
	if _, err := parseArgs(&opts, req.Args); err != nil {
		return 1, err
	}

	cutset := " \t\f\v"
	if opts.Chars != "" {
		cutset = opts.Chars
	}

	var markdownExts []string
	for ext := range strings.SplitSeq(opts.MarkdownLinebreakExt, ",") {
		ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
		if ext != "" {
			markdownExts = append(markdownExts, "."+ext)
		}
	}

	status := 0
	for _, file := range req.Files {
		if err := ctx.Err(); err != nil {
			return 1, err
		}

		data, err := readFile(req.Root, file)
		if err != nil {
			return 1, err
		}

		keepBreaks := slices.Contains(markdownExts, strings.ToLower(filepath.Ext(file)))
		fixed := stripTrailing(data, cutset, keepBreaks)
		if bytes.Equal(fixed, data) {
			continue
		}

		fmt.Fprintf(out, "Fixing %s\n", file)
		if err := writeFile(req.Root, file, fixed); err != nil {
			return 1, err
		}
		status = 1
	}

	return status, nil
}

func stripTrailing(data []byte, cutset string, keepBreaks bool) []byte {
	var buf bytes.Buffer
	for len(data) > 0 {
		line := data
		ending := []byte(nil)
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			line, data = data[:i], data[i+1:]
			ending = []byte{'\n'}
			if bytes.HasSuffix(line, []byte{'\r'}) {
				line = line[:len(line)-1]
				ending = []byte("\r\n")
			}
		} else {
			data = nil
		}

		trimmed := bytes.TrimRight(line, cutset)
		if keepBreaks && len(bytes.TrimSpace(line)) > 0 && bytes.HasSuffix(line, []byte("  ")) {
			trimmed = append(append([]byte{}, trimmed...), ' ', ' ')
		}
		buf.Write(trimmed)
		buf.Write(ending)
	}
	return buf.Bytes()
}

// endOfFileFixer makes every non-empty file end in exactly one newline
func endOfFileFixer(ctx context.Context, req Request, out io.Writer) (int, error) {
	status := 0
	for _, file := range req.Files {
		if err := ctx.Err(); err != nil {
			return 1, err
		}

		data, err := readFile(req.Root, file)
		if err != nil {
			return 1, err
		}

		fixed := fixEndOfFile(data)
		if bytes.Equal(fixed, data) {
			continue
		}

		fmt.Fprintf(out, "Fixing %s\n", file)
		if err := writeFile(req.Root, file, fixed); err != nil {
			return 1, err
		}
		status = 1
	}
	return status, nil
}

func fixEndOfFile(data []byte) []byte {
	body := bytes.TrimRight(data, "\r\n")
	if len(body) == 0 {
		return []byte{}
	}

	ending := "\n"
	if bytes.Contains(data[len(body):], []byte("\r\n")) {
		ending = "\r\n"
	}
	return append(append([]byte{}, body...), ending...)
}
