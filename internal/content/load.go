package content

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadDir loads every YAML content file under dir (recursively) into a
// Package. Files may hold multiple documents.
//
// Every document is validated against the CUE schema, then the whole
// record set gets the semantic checks. Validation problems are collected,
// not fail-fast; the Package is still returned when only semantic
// problems were found, so callers can choose between strict (reject) and
// best-effort (load and let the evaluator skip) handling.
//
// A hard error (unreadable file, broken YAML, schema violation) means no
// usable Package.
func LoadDir(dir string) (*Package, []ValidationError, error) {
	validator, err := newSchemaValidator()
	if err != nil {
		return nil, nil, err
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("walk content dir %s: %w", dir, err)
	}
	// WalkDir is lexical, but be explicit: record order must not depend
	// on filesystem iteration quirks.
	slices.Sort(files)

	var records []*Record
	var schemaErrs []ValidationError
	for _, path := range files {
		recs, errs, err := loadFile(validator, path)
		if err != nil {
			return nil, nil, err
		}
		schemaErrs = append(schemaErrs, errs...)
		records = append(records, recs...)
	}
	if len(schemaErrs) > 0 {
		return nil, schemaErrs, fmt.Errorf("content failed schema validation: %d problem(s)", len(schemaErrs))
	}

	semanticErrs := ValidateRecords(records)
	return NewPackage(records), semanticErrs, nil
}

// loadFile decodes one YAML file's documents into records.
func loadFile(validator *schemaValidator, path string) ([]*Record, []ValidationError, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var records []*Record
	var verrs []ValidationError

	dec := yaml.NewDecoder(f)
	for {
		var node yaml.Node
		if err := dec.Decode(&node); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, nil, fmt.Errorf("decode %s: %w", path, err)
		}

		// Schema validation runs against the generic decoding so bad
		// documents report CUE paths, not Go decode panics.
		var doc any
		if err := node.Decode(&doc); err != nil {
			return nil, nil, fmt.Errorf("decode %s: %w", path, err)
		}
		if doc == nil {
			continue // empty document separator
		}
		if errs := validator.validateDocument(filepath.Base(path), doc); len(errs) > 0 {
			verrs = append(verrs, errs...)
			continue
		}

		var rec Record
		if err := node.Decode(&rec); err != nil {
			return nil, nil, fmt.Errorf("decode %s: %w", path, err)
		}
		records = append(records, &rec)
	}

	return records, verrs, nil
}
