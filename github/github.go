package github

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strings"

	gh "github.com/google/go-github/v66/github"
	"golang.org/x/sync/errgroup"

	"github.com/vinayprograms/resumekit/errors"
	"github.com/vinayprograms/resumekit/logging"
	"github.com/vinayprograms/resumekit/projects"
)

// SourceName is the directive value selecting this source.
const SourceName = "github"

// defaultConcurrency caps parallel repository requests.
const defaultConcurrency = 4

// Client implements projects.Source.
type Client struct {
	httpClient  *http.Client
	baseURL     *url.URL
	logger      *logging.Logger
	concurrency int
}

// New creates a Client on httpClient. A nil httpClient uses
// http.DefaultClient.
func New(httpClient *http.Client, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Client{
		httpClient:  httpClient,
		logger:      logger.WithComponent("github"),
		concurrency: defaultConcurrency,
	}
}

// WithBaseURL points the client at another API root, such as a GitHub
// Enterprise server.
func (c *Client) WithBaseURL(raw string) (*Client, error) {
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCodeBadConfig, "github base url")
	}
	cp := *c
	cp.baseURL = u
	return &cp, nil
}

func (c *Client) api(auth projects.Auth) *gh.Client {
	client := gh.NewClient(c.httpClient)
	if auth.Token != "" {
		client = client.WithAuthToken(auth.Token)
	}
	if c.baseURL != nil {
		client.BaseURL = c.baseURL
	}
	return client
}

// ListOwned implements projects.Source.
func (c *Client) ListOwned(ctx context.Context, ignoreForks bool, auth projects.Auth) ([]projects.Project, error) {
	api := c.api(auth)

	var repos []*gh.Repository
	page := 1
	for page != 0 {
		var (
			batch []*gh.Repository
			resp  *gh.Response
			err   error
		)
		list := gh.ListOptions{Page: page, PerPage: 100}
		if auth.Viewer != "" {
			batch, resp, err = api.Repositories.ListByUser(ctx, auth.Viewer,
				&gh.RepositoryListByUserOptions{Type: "all", ListOptions: list})
		} else {
			batch, resp, err = api.Repositories.ListByAuthenticatedUser(ctx,
				&gh.RepositoryListByAuthenticatedUserOptions{Affiliation: "owner", ListOptions: list})
		}
		if err != nil {
			return nil, apiError(err, "listing repositories")
		}
		for _, r := range batch {
			if ignoreForks && r.GetFork() {
				continue
			}
			repos = append(repos, r)
		}
		page = resp.NextPage
	}

	out := make([]projects.Project, len(repos))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, r := range repos {
		g.Go(func() error {
			owner := r.GetOwner().GetLogin()
			langs, _, err := api.Repositories.ListLanguages(gctx, owner, r.GetName())
			if err != nil {
				return apiError(err, "languages of "+owner+"/"+r.GetName())
			}
			p := project(r, langs)
			p.Role = projects.Ptr(projects.RoleOwner)
			out[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	c.logger.Debug("listed owned repositories", map[string]interface{}{
		"viewer": auth.Viewer,
		"count":  len(out),
	})
	return out, nil
}

// ListByNames implements projects.Source. Malformed names are skipped with
// a warning.
func (c *Client) ListByNames(ctx context.Context, names []string, auth projects.Auth) ([]projects.Project, error) {
	api := c.api(auth)

	slots := make([]*projects.Project, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, name := range names {
		owner, repo, ok := splitName(name)
		if !ok {
			c.logger.Warn("skipping malformed repository name", map[string]interface{}{"repo": name})
			continue
		}
		g.Go(func() error {
			p, err := c.named(gctx, api, owner, repo, auth.Viewer)
			if err != nil {
				return err
			}
			slots[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]projects.Project, 0, len(slots))
	for _, p := range slots {
		if p != nil {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (c *Client) named(ctx context.Context, api *gh.Client, owner, repo, viewer string) (*projects.Project, error) {
	r, _, err := api.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, apiError(err, "repository "+owner+"/"+repo)
	}
	// Redirects may rename the repository.
	owner, repo = r.GetOwner().GetLogin(), r.GetName()

	langs, _, err := api.Repositories.ListLanguages(ctx, owner, repo)
	if err != nil {
		return nil, apiError(err, "languages of "+owner+"/"+repo)
	}
	p := project(r, langs)

	role := projects.RoleContributor
	if viewer != "" && strings.EqualFold(owner, viewer) {
		role = projects.RoleOwner
	}
	p.Role = projects.Ptr(role)

	if viewer != "" {
		if err := c.contributions(ctx, api, owner, repo, viewer, &p); err != nil {
			return nil, err
		}
	}
	return &p, nil
}

// contributions fills in the viewer's totals. GitHub answers 202 while it
// computes statistics; the project then has none.
func (c *Client) contributions(ctx context.Context, api *gh.Client, owner, repo, viewer string, p *projects.Project) error {
	stats, _, err := api.Repositories.ListContributorsStats(ctx, owner, repo)
	if err != nil {
		var accepted *gh.AcceptedError
		if stderrors.As(err, &accepted) {
			c.logger.Info("contributor statistics not ready", map[string]interface{}{"repo": owner + "/" + repo})
			return nil
		}
		return apiError(err, "contributor statistics of "+owner+"/"+repo)
	}

	var commits, additions, deletions uint64
	found := false
	for _, s := range stats {
		if !strings.EqualFold(s.GetAuthor().GetLogin(), viewer) {
			continue
		}
		found = true
		for _, w := range s.Weeks {
			commits += uint64(w.GetCommits())
			additions += uint64(w.GetAdditions())
			deletions += uint64(w.GetDeletions())
		}
	}
	if found {
		p.Commits = projects.Ptr(commits)
		p.Additions = projects.Ptr(additions)
		p.Deletions = projects.Ptr(deletions)
	}
	return nil
}

func project(r *gh.Repository, langs map[string]int) projects.Project {
	p := projects.Project{
		Name:      r.GetName(),
		Stars:     projects.Ptr(uint64(r.GetStargazersCount())),
		Forks:     projects.Ptr(uint64(r.GetForksCount())),
		Active:    projects.Ptr(!r.GetArchived()),
		Languages: languageStats(langs),
		Tags:      slices.Clone(r.Topics),
	}
	if r.Description != nil {
		p.Description = projects.Ptr(r.GetDescription())
	}
	if u := r.GetHTMLURL(); u != "" {
		p.URL = projects.Ptr(u)
	}
	if login := r.GetOwner().GetLogin(); login != "" {
		p.Owner = projects.Ptr(login)
	}
	return p
}

// languageStats converts byte counts to percentages, largest first. Equal
// shares are ordered by name.
func languageStats(langs map[string]int) []projects.LanguageStat {
	total := 0
	for _, n := range langs {
		total += n
	}
	if total == 0 {
		return nil
	}
	out := make([]projects.LanguageStat, 0, len(langs))
	for name, n := range langs {
		out = append(out, projects.LanguageStat{
			Language:   name,
			Percentage: projects.FromFloat(float64(n) / float64(total) * 100),
		})
	}
	slices.SortFunc(out, func(a, b projects.LanguageStat) int {
		return strings.Compare(a.Language, b.Language)
	})
	projects.SortLanguages(out)
	return out
}

func splitName(name string) (owner, repo string, ok bool) {
	owner, repo, ok = strings.Cut(strings.TrimSpace(name), "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", false
	}
	return owner, repo, true
}

func apiError(err error, what string) error {
	var resp *gh.ErrorResponse
	if stderrors.As(err, &resp) && resp.Response != nil {
		return errors.New(errors.ErrCodeHTTPStatus,
			fmt.Sprintf("%s: %s", what, resp.Response.Status),
			errors.WithCause(err),
			errors.WithMetadata("status", fmt.Sprint(resp.Response.StatusCode)))
	}
	var rate *gh.RateLimitError
	if stderrors.As(err, &rate) {
		return errors.WrapWithCode(err, errors.ErrCodeHTTPStatus, what+": rate limited")
	}
	return errors.WrapWithCode(err, errors.ErrCodeNetwork, what)
}
