package builtin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultMaxKB is the size limit of check-added-large-files
const DefaultMaxKB = 500

type checkYAMLOptions struct {
	AllowMultipleDocuments bool `short:"m" long:"allow-multiple-documents" description:"Allow YAML streams with more than one document"`
	Unsafe                 bool `long:"unsafe" description:"Only check syntax"`
}

// checkYAML fails for files that are not valid YAML
func checkYAML(ctx context.Context, req Request, out io.Writer) (int, error) {
	var opts checkYAMLOptions
	if _, err := parseArgs(&opts, req.Args); err != nil {
		return 1, err
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

		if err := validateYAML(data, opts.AllowMultipleDocuments); err != nil {
			fmt.Fprintf(out, "%s: %v\n", file, err)
			status = 1
		}
	}
	return status, nil
}

func validateYAML(data []byte, allowMultiple bool) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	for documents := 0; ; documents++ {
		var node yaml.Node
		err := decoder.Decode(&node)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if documents == 1 && !allowMultiple {
			return errors.New("expected a single document in the stream, found more (use --allow-multiple-documents)")
		}
	}
}

// checkTOML fails for files that are not valid TOML
func checkTOML(ctx context.Context, req Request, out io.Writer) (int, error) {
	status := 0
	for _, file := range req.Files {
		if err := ctx.Err(); err != nil {
			return 1, err
		}

		data, err := readFile(req.Root, file)
		if err != nil {
			return 1, err
		}

		var doc map[string]any
		if err := toml.Unmarshal(data, &doc); err != nil {
			var decodeErr *toml.DecodeError
			if errors.As(err, &decodeErr) {
				row, column := decodeErr.Position()
				fmt.Fprintf(out, "%s:%d:%d: %s\n", file, row, column, decodeErr.Error())
			} else {
				fmt.Fprintf(out, "%s: %v\n", file, err)
			}
			status = 1
		}
	}
	return status, nil
}

type largeFilesOptions struct {
	MaxKB      int  `long:"maxkb" default:"500" description:"Maximum allowable KB for new files"`
	EnforceAll bool `long:"enforce-all" description:"Check every file instead of only newly added ones"`
}

// checkAddedLargeFiles fails when a newly added file is larger than --maxkb
func checkAddedLargeFiles(ctx context.Context, req Request, out io.Writer) (int, error) {
	opts := largeFilesOptions{MaxKB: DefaultMaxKB}
	if _, err := parseArgs(&opts, req.Args); err != nil {
		return 1, err
	}

	status := 0
	for _, file := range req.Files {
		if err := ctx.Err(); err != nil {
			return 1, err
		}
		if !opts.EnforceAll && !slices.Contains(req.AddedFiles, file) {
			continue
		}

		info, err := os.Stat(filepath.Join(req.Root, file))
		if err != nil {
			return 1, err
		}

		// round up like the upstream hook
		kb := (info.Size() + 1023) / 1024
		if kb > int64(opts.MaxKB) {
			fmt.Fprintf(out, "%s (%d KB) exceeds %d KB.\n", file, kb, opts.MaxKB)
			status = 1
		}
	}
	return status, nil
}
