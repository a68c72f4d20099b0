// Package testutil provides deterministic helpers shared by engine
// tests: inline content packages, canned characters, and token
// sequences that keep pass output reproducible.
package testutil

import (
	"bytes"
	"fmt"
	"io"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/wanderers-guide/wanderers-guide-sub000/internal/content"
	"github.com/wanderers-guide/wanderers-guide-sub000/internal/entity"
)

// PackageFromYAML decodes a multi-document YAML string into a content
// package. Schema validation is skipped - tests author records directly
// and the decoder's leniency is itself under test elsewhere.
func PackageFromYAML(t *testing.T, src string) *content.Package {
	t.Helper()

	var records []*content.Record
	dec := yaml.NewDecoder(bytes.NewReader([]byte(src)))
	for {
		var rec content.Record
		err := dec.Decode(&rec)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("decode test content: %v", err)
		}
		records = append(records, &rec)
	}
	return content.NewPackage(records)
}

// Character builds a minimal character for tests. Callers mutate the
// returned record to add feats, items, and selections.
func Character(id string, level int) *entity.Character {
	return &entity.Character{
		ID:    id,
		Name:  fmt.Sprintf("test-%s", id),
		Level: level,
	}
}

// Tokens produces n deterministic pass tokens with a shared prefix.
func Tokens(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s-%d", prefix, i+1)
	}
	return out
}
