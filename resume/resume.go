package resume

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/vinayprograms/resumekit/citation"
	"github.com/vinayprograms/resumekit/errors"
	"github.com/vinayprograms/resumekit/projects"
)

// Person is the root of the input document.
type Person struct {
	Name         string              `yaml:"name"`
	ResumeURL    string              `yaml:"resume_url,omitempty"`
	Contacts     []Contact           `yaml:"contacts"`
	Educations   []Education         `yaml:"educations"`
	Experiences  []Experience        `yaml:"experiences"`
	Projects     projects.Directives `yaml:"projects"`
	Skills       []Skill             `yaml:"skills,omitempty"`
	References   citation.KeyedList  `yaml:"references,omitempty"`
	Publications citation.List       `yaml:"publications,omitempty"`
}

// Contact is one way to reach the person.
type Contact struct {
	Type  string `yaml:"type"`
	Value string `yaml:"value"`
}

// Link returns the href for known contact types.
func (c Contact) Link() (string, bool) {
	switch c.Type {
	case "github":
		return "https://github.com/" + c.Value, true
	case "email":
		return "mailto:" + c.Value, true
	case "blog":
		return c.Value, true
	}
	return "", false
}

// Icon returns the icon path for known contact types.
func (c Contact) Icon() (string, bool) {
	switch c.Type {
	case "github":
		return "icons/github.svg", true
	case "email":
		return "icons/mail.svg", true
	case "blog":
		return "icons/blog.svg", true
	}
	return "", false
}

// Degree is an academic degree.
type Degree string

// Degrees.
const (
	DegreeBS  Degree = "BS"
	DegreeMS  Degree = "MS"
	DegreePhD Degree = "PhD"
)

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Degree) UnmarshalYAML(node *yaml.Node) error {
	switch v := Degree(node.Value); v {
	case DegreeBS, DegreeMS, DegreePhD:
		*d = v
		return nil
	}
	return errors.Newf(errors.ErrCodeInvalidInput, "line %d: unknown degree %q (use BS, MS or PhD)", node.Line, node.Value)
}

// DisplayName returns the degree as printed.
func (d Degree) DisplayName() string {
	switch d {
	case DegreeBS:
		return "Bachelor of Science"
	case DegreeMS:
		return "Master of Science"
	}
	return string(d)
}

// Education is one degree program.
type Education struct {
	Institution string    `yaml:"institution"`
	Degree      Degree    `yaml:"degree"`
	Major       string    `yaml:"major"`
	Duration    DateRange `yaml:"duration"`
	Location    string    `yaml:"location,omitempty"`
	GPA         *float64  `yaml:"gpa,omitempty"`
	Courses     []string  `yaml:"courses,omitempty"`
}

// Experience is one position held.
type Experience struct {
	Company     string    `yaml:"company"`
	Position    string    `yaml:"position"`
	Duration    DateRange `yaml:"duration"`
	Description string    `yaml:"description"`
	Location    string    `yaml:"location,omitempty"`
	Tags        []string  `yaml:"tags,omitempty"`
}

// Skill is a skill category with an optional markdown description.
type Skill struct {
	Category    string `yaml:"category"`
	Description string `yaml:"description,omitempty"`
}

// Parse decodes a person record. Unknown top-level or nested struct keys
// are rejected.
func Parse(data []byte) (*Person, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var p Person
	if err := dec.Decode(&p); err != nil {
		if errors.Code(err) != "" {
			return nil, err
		}
		return nil, errors.WrapWithCode(err, errors.ErrCodeInvalidInput, "decoding person record")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks fields the YAML schema cannot.
func (p *Person) Validate() error {
	if p.Name == "" {
		return errors.New(errors.ErrCodeInvalidInput, "name is required")
	}
	for i, c := range p.Contacts {
		if c.Type == "" || c.Value == "" {
			return errors.Newf(errors.ErrCodeInvalidInput, "contacts[%d]: type and value are required", i)
		}
	}
	return nil
}

// Marshal encodes the record as YAML.
func (p *Person) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return nil, errors.Wrap(err, "encoding person record")
	}
	if err := enc.Close(); err != nil {
		return nil, errors.Wrap(err, "encoding person record")
	}
	return buf.Bytes(), nil
}

// Viewer returns the person's GitHub account from the contacts, or "".
func (p *Person) Viewer() string {
	for _, c := range p.Contacts {
		if c.Type == "github" {
			return c.Value
		}
	}
	return ""
}
