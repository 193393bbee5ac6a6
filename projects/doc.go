// Package projects reconciles imported project metadata with manually
// authored records.
//
// A résumé declares a list of directives: imports from a project source,
// manual records, an import mode and a sort policy. The Interpreter
// consumes them in order. Imports run sequentially and fill a Store keyed
// by project name; a later import overwrites an earlier one. Manual records
// are merged last: only their explicitly set fields override fetched data.
// The Store is then filtered by the import mode and ordered by the sort
// policy.
//
// Import modes:
//
//   - combine: every fetched and manual project, in first-seen order
//   - whitelist: only manually named projects, in declaration order
//
// Sort policies: stars, forks, stars_then_forks, forks_then_stars (all
// descending, unset values lowest) and manual (manual declaration order,
// the default for whitelist).
//
// # Usage
//
//	in := &projects.Interpreter{
//	    Sources: map[string]projects.Source{"github": github.New(httpClient, logger)},
//	    Tokens:  creds,
//	}
//	res, err := in.Run(ctx, person.Projects, "octocat")
package projects
