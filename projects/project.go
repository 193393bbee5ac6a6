package projects

import (
	"math"
	"slices"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/vinayprograms/resumekit/errors"
)

// Role is the person's relationship to a project.
type Role string

// Roles.
const (
	RoleOwner       Role = "owner"
	RoleMaintainer  Role = "maintainer"
	RoleContributor Role = "contributor"
)

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *Role) UnmarshalYAML(node *yaml.Node) error {
	switch v := Role(node.Value); v {
	case RoleOwner, RoleMaintainer, RoleContributor:
		*r = v
		return nil
	}
	return errors.Newf(errors.ErrCodeInvalidInput, "line %d: unknown role %q", node.Line, node.Value)
}

// Decimal1 is a non-negative number with one decimal digit, stored in
// tenths.
type Decimal1 uint64

// FromFloat truncates f to one decimal digit.
func FromFloat(f float64) Decimal1 {
	if f <= 0 || math.IsNaN(f) {
		return 0
	}
	return Decimal1(math.Floor(f*10 + 1e-9))
}

// Float returns d as a float64.
func (d Decimal1) Float() float64 {
	return float64(d) / 10
}

func (d Decimal1) String() string {
	return strconv.FormatFloat(d.Float(), 'f', -1, 64)
}

// MarshalYAML implements yaml.Marshaler.
func (d Decimal1) MarshalYAML() (interface{}, error) {
	return d.Float(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Decimal1) UnmarshalYAML(node *yaml.Node) error {
	var f float64
	if err := node.Decode(&f); err != nil {
		return errors.Newf(errors.ErrCodeInvalidInput, "line %d: percentage must be a number", node.Line)
	}
	*d = FromFloat(f)
	return nil
}

// LanguageStat is one language's share of a project's code.
type LanguageStat struct {
	Language   string   `yaml:"language"`
	Percentage Decimal1 `yaml:"percentage"`
}

// SortLanguages orders stats by descending percentage, keeping the
// existing order of equal shares.
func SortLanguages(stats []LanguageStat) {
	slices.SortStableFunc(stats, func(a, b LanguageStat) int {
		switch {
		case a.Percentage > b.Percentage:
			return -1
		case a.Percentage < b.Percentage:
			return 1
		}
		return 0
	})
}

// Project is one entry of the project section. Nil fields are unset.
type Project struct {
	Name          string         `yaml:"name"`
	Description   *string        `yaml:"description,omitempty"`
	Contributions *string        `yaml:"contributions,omitempty"`
	URL           *string        `yaml:"url,omitempty"`
	Stars         *uint64        `yaml:"stars,omitempty"`
	Forks         *uint64        `yaml:"forks,omitempty"`
	Active        *bool          `yaml:"active,omitempty"`
	Owner         *string        `yaml:"owner,omitempty"`
	Commits       *uint64        `yaml:"commits,omitempty"`
	Additions     *uint64        `yaml:"additions,omitempty"`
	Deletions     *uint64        `yaml:"deletions,omitempty"`
	Languages     []LanguageStat `yaml:"languages,omitempty"`
	Tags          []string       `yaml:"tags,omitempty"`
	Role          *Role          `yaml:"role,omitempty"`
}

// projectKeys are the YAML keys a manual record may carry.
var projectKeys = map[string]bool{
	"name": true, "description": true, "contributions": true, "url": true,
	"stars": true, "forks": true, "active": true, "owner": true,
	"commits": true, "additions": true, "deletions": true,
	"languages": true, "tags": true, "role": true,
}

// clone returns a copy that shares no slices with p.
func (p Project) clone() Project {
	p.Languages = slices.Clone(p.Languages)
	p.Tags = slices.Clone(p.Tags)
	return p
}

// Ptr returns a pointer to v. It keeps literal construction of optional
// fields short.
func Ptr[T any](v T) *T {
	return &v
}
