package render

import (
	"github.com/vinayprograms/resumekit/citation"
	"github.com/vinayprograms/resumekit/footnote"
	"github.com/vinayprograms/resumekit/projects"
	"github.com/vinayprograms/resumekit/resume"
)

// Input is a resolved record ready to render.
type Input struct {
	Person   *resume.Person
	Projects []projects.Project
}

// View is the data handed to the template.
type View struct {
	Name         string
	ResumeURL    string
	Contacts     []ContactView
	Educations   []resume.Education
	Experiences  []resume.Experience
	Projects     []projects.Project
	Skills       []resume.Skill
	References   []Reference
	Publications []Publication
}

// ContactView is a contact with its optional link and icon.
type ContactView struct {
	Value string
	Link  string
	Icon  string
}

// Reference is one entry of the numbered reference list.
type Reference struct {
	Key    string
	Number int
	Text   string
}

// Publication is one entry of the publication list.
type Publication struct {
	Text string
	Year *int
}

// buildView prepares the template data. With a nil table every resolved
// reference is listed in declaration order; otherwise only cited ones, in
// citation order.
func buildView(in Input, table footnote.Table) View {
	p := in.Person
	v := View{
		Name:        p.Name,
		ResumeURL:   p.ResumeURL,
		Educations:  p.Educations,
		Experiences: p.Experiences,
		Projects:    in.Projects,
		Skills:      p.Skills,
	}
	for _, c := range p.Contacts {
		link, _ := c.Link()
		icon, _ := c.Icon()
		v.Contacts = append(v.Contacts, ContactView{Value: c.Value, Link: link, Icon: icon})
	}

	var refs []Reference
	for _, k := range p.References {
		text, ok := citation.Text(k.Citation)
		if !ok {
			continue
		}
		refs = append(refs, Reference{Key: k.Key, Text: text.Text})
	}
	refs = footnote.Filter(refs, func(r Reference) string { return r.Key }, table)
	for i := range refs {
		if n, ok := table.Ordinal(refs[i].Key); ok {
			refs[i].Number = n + 1
		} else {
			refs[i].Number = i + 1
		}
	}
	v.References = refs

	for _, c := range p.Publications {
		if text, ok := citation.Text(c); ok {
			v.Publications = append(v.Publications, Publication{Text: text.Text, Year: text.Year})
		}
	}
	return v
}
