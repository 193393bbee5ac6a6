// Package github is the project source backed by the GitHub REST API.
//
// ListOwned pages through the viewer's repositories (or the authenticated
// account's when the viewer is unknown). ListByNames fetches explicit
// owner/repo entries concurrently and returns them in request order,
// including the viewer's commit, addition and deletion totals when GitHub
// has them ready. Language shares are converted to percentages and sorted
// descending.
package github
