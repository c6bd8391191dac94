// Package results persists measurement outcomes: one YAML counts file per
// named run, and a SQLite history of every run.
package results

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"qteleport/internal/sim"
)

// ErrInvalidName is returned for run names that cannot form a file name.
var ErrInvalidName = errors.New("invalid result name")

// FileName returns the counts file name for a run name.
func FileName(name string) string {
	return "res_" + name + ".yaml"
}

// Save writes counts to dir/res_<name>.yaml as a mapping with keys in
// ascending order and returns the written path. The directory is created
// if needed.
func Save(counts sim.Counts, name, dir string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	data, err := EncodeCounts(counts)
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "create results directory")
	}
	path := filepath.Join(dir, FileName(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrap(err, "write results file")
	}
	return path, nil
}

// Load reads a counts file written by Save.
func Load(path string) (sim.Counts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read results file")
	}
	return DecodeCounts(data)
}

// EncodeCounts renders counts as a YAML mapping of quoted bitstrings to
// integers, sorted by key.
func EncodeCounts(counts sim.Counts) ([]byte, error) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range keys {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k, Style: yaml.DoubleQuotedStyle},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(counts[k])},
		)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, errors.Wrap(err, "encode counts")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "encode counts")
	}
	return buf.Bytes(), nil
}

// DecodeCounts parses the output of EncodeCounts.
func DecodeCounts(data []byte) (sim.Counts, error) {
	counts := make(sim.Counts)
	if err := yaml.Unmarshal(data, &counts); err != nil {
		return nil, errors.Wrap(err, "decode counts")
	}
	for k, v := range counts {
		if strings.Trim(k, "01") != "" {
			return nil, errors.Errorf("decode counts: key %q is not a bitstring", k)
		}
		if v < 0 {
			return nil, errors.Errorf("decode counts: negative count for %q", k)
		}
	}
	return counts, nil
}

func checkName(name string) error {
	if name == "" {
		return errors.Wrap(ErrInvalidName, "empty name")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return errors.Wrapf(ErrInvalidName, "%q", name)
	}
	return nil
}
