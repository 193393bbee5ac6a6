package citation

import (
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vinayprograms/resumekit/errors"
)

// Decode reads a citation from YAML. A scalar is PlainText; a mapping is
// chosen by its key: text, url, doi or bibtex_string.
func Decode(node *yaml.Node) (Citation, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return PlainText(node.Value), nil
	case yaml.MappingNode:
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidInput, "line %d: citation must be a string or a mapping", node.Line)
	}

	keys := make(map[string]bool, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keys[node.Content[i].Value] = true
	}

	var (
		c   Citation
		err error
	)
	switch {
	case keys["text"]:
		var v PlainTextWithYear
		err = node.Decode(&v)
		c = v
	case keys["url"]:
		var v URLSource
		err = node.Decode(&v)
		c = v
	case keys["doi"]:
		var v DOISource
		err = node.Decode(&v)
		c = v
	case keys["bibtex_string"]:
		var v BibtexSource
		err = node.Decode(&v)
		c = v
	default:
		names := make([]string, 0, len(keys))
		for i := 0; i+1 < len(node.Content); i += 2 {
			names = append(names, node.Content[i].Value)
		}
		return nil, errors.Newf(errors.ErrCodeInvalidInput, "line %d: unrecognised citation keys: %s",
			node.Line, strings.Join(names, ", "))
	}
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCodeInvalidInput, "decoding citation")
	}
	return c, nil
}

// List is an ordered sequence of citations.
type List []Citation

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *List) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return errors.Newf(errors.ErrCodeInvalidInput, "line %d: expected a list of citations", node.Line)
	}
	out := make(List, 0, len(node.Content))
	for _, item := range node.Content {
		c, err := Decode(item)
		if err != nil {
			return err
		}
		out = append(out, c)
	}
	*l = out
	return nil
}

// Keyed is a citation referenced from the body by key.
type Keyed struct {
	Key      string
	Citation Citation
}

// KeyedList is a key to citation mapping that keeps declaration order.
type KeyedList []Keyed

// UnmarshalYAML implements yaml.Unmarshaler. Duplicate keys keep the
// first slot and the last value.
func (l *KeyedList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return errors.Newf(errors.ErrCodeInvalidInput, "line %d: expected a mapping of citations", node.Line)
	}
	out := make(KeyedList, 0, len(node.Content)/2)
	index := make(map[string]int)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		c, err := Decode(node.Content[i+1])
		if err != nil {
			return errors.Wrap(err, "reference "+key)
		}
		if j, ok := index[key]; ok {
			out[j].Citation = c
			continue
		}
		index[key] = len(out)
		out = append(out, Keyed{Key: key, Citation: c})
	}
	*l = out
	return nil
}

// MarshalYAML implements yaml.Marshaler, writing a mapping in list order.
func (l KeyedList) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range l {
		var value yaml.Node
		if err := value.Encode(k.Citation); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k.Key},
			&value)
	}
	return node, nil
}

// Get returns the citation for key.
func (l KeyedList) Get(key string) (Citation, bool) {
	for _, k := range l {
		if k.Key == key {
			return k.Citation, true
		}
	}
	return nil, false
}
