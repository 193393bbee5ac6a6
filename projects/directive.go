package projects

import (
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vinayprograms/resumekit/errors"
)

// ImportMode selects which projects survive the merge.
type ImportMode string

// Import modes.
const (
	ModeCombine   ImportMode = "combine"
	ModeWhitelist ImportMode = "whitelist"
)

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *ImportMode) UnmarshalYAML(node *yaml.Node) error {
	switch v := ImportMode(node.Value); v {
	case ModeCombine, ModeWhitelist:
		*m = v
		return nil
	}
	return errors.Newf(errors.ErrCodeBadDirective, "line %d: unknown import_mode %q", node.Line, node.Value)
}

// SortPolicy orders the final project list.
type SortPolicy string

// Sort policies. PolicyNone keeps store order.
const (
	PolicyNone           SortPolicy = ""
	PolicyStars          SortPolicy = "stars"
	PolicyForks          SortPolicy = "forks"
	PolicyStarsThenForks SortPolicy = "stars_then_forks"
	PolicyForksThenStars SortPolicy = "forks_then_stars"
	PolicyManual         SortPolicy = "manual"
)

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *SortPolicy) UnmarshalYAML(node *yaml.Node) error {
	switch v := SortPolicy(node.Value); v {
	case PolicyStars, PolicyForks, PolicyStarsThenForks, PolicyForksThenStars, PolicyManual:
		*p = v
		return nil
	}
	return errors.Newf(errors.ErrCodeBadDirective, "line %d: unknown order_by %q", node.Line, node.Value)
}

// Directive is one entry of the project section.
type Directive interface {
	isDirective()
}

// Import fetches projects from a named source. With Repos nil the
// account's own repositories are listed; otherwise exactly the named
// owner/repo entries are fetched.
type Import struct {
	From        string   `yaml:"from"`
	IgnoreForks bool     `yaml:"ignore_forks,omitempty"`
	Repos       []string `yaml:"repos,omitempty"`
	Token       string   `yaml:"token,omitempty"`
}

// SetSortOrder sets the sort policy. The last one wins.
type SetSortOrder struct {
	Policy SortPolicy `yaml:"order_by"`
}

// SetImportMode sets the import mode. The last one wins.
type SetImportMode struct {
	Mode ImportMode `yaml:"import_mode"`
}

// Manual is a hand-written project record.
type Manual struct {
	Project `yaml:",inline"`
}

func (Import) isDirective()        {}
func (SetSortOrder) isDirective()  {}
func (SetImportMode) isDirective() {}
func (Manual) isDirective()        {}

var importKeys = map[string]bool{"from": true, "ignore_forks": true, "repos": true, "token": true}

// Directives is the ordered project section.
type Directives []Directive

// UnmarshalYAML implements yaml.Unmarshaler. Each entry's form is chosen by
// its keys: from (Import), order_by, import_mode, or name (Manual).
func (d *Directives) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return errors.Newf(errors.ErrCodeInvalidInput, "line %d: projects must be a list", node.Line)
	}
	out := make(Directives, 0, len(node.Content))
	for _, item := range node.Content {
		dir, err := decodeDirective(item)
		if err != nil {
			return err
		}
		out = append(out, dir)
	}
	*d = out
	return nil
}

func decodeDirective(node *yaml.Node) (Directive, error) {
	if node.Kind != yaml.MappingNode {
		return nil, errors.Newf(errors.ErrCodeBadDirective, "line %d: project entry must be a mapping", node.Line)
	}
	keys := make(map[string]bool, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keys[node.Content[i].Value] = true
	}

	switch {
	case keys["from"]:
		if err := onlyKeys(node, keys, importKeys); err != nil {
			return nil, err
		}
		var v Import
		if err := node.Decode(&v); err != nil {
			return nil, decodeError(err)
		}
		return v, nil

	case keys["order_by"]:
		if err := onlyKeys(node, keys, map[string]bool{"order_by": true}); err != nil {
			return nil, err
		}
		var v SetSortOrder
		if err := node.Decode(&v); err != nil {
			return nil, decodeError(err)
		}
		return v, nil

	case keys["import_mode"]:
		if err := onlyKeys(node, keys, map[string]bool{"import_mode": true}); err != nil {
			return nil, err
		}
		var v SetImportMode
		if err := node.Decode(&v); err != nil {
			return nil, decodeError(err)
		}
		return v, nil

	case keys["name"]:
		if err := onlyKeys(node, keys, projectKeys); err != nil {
			return nil, err
		}
		var v Manual
		if err := node.Decode(&v); err != nil {
			return nil, decodeError(err)
		}
		if strings.TrimSpace(v.Name) == "" {
			return nil, errors.Newf(errors.ErrCodeInvalidInput, "line %d: project name is empty", node.Line)
		}
		return v, nil
	}
	return nil, errors.Newf(errors.ErrCodeBadDirective,
		"line %d: project entry needs one of from, order_by, import_mode or name", node.Line)
}

func onlyKeys(node *yaml.Node, keys, allowed map[string]bool) error {
	var extra []string
	for k := range keys {
		if !allowed[k] {
			extra = append(extra, k)
		}
	}
	if len(extra) == 0 {
		return nil
	}
	sort.Strings(extra)
	return errors.Newf(errors.ErrCodeBadDirective, "line %d: unexpected keys %s", node.Line, strings.Join(extra, ", "))
}

// decodeError keeps codes raised by field unmarshalers and classifies the
// rest as malformed input.
func decodeError(err error) error {
	if code := errors.Code(err); code != "" {
		return err
	}
	return errors.WrapWithCode(err, errors.ErrCodeInvalidInput, "decoding project entry")
}
