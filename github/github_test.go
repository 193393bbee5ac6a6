package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/vinayprograms/resumekit/errors"
	"github.com/vinayprograms/resumekit/logging"
	"github.com/vinayprograms/resumekit/projects"
)

func repoJSON(owner, name string, stars, forks int, fork bool) string {
	return fmt.Sprintf(`{"name":%q,"description":"about %s","html_url":"https://github.com/%s/%s",
		"stargazers_count":%d,"forks_count":%d,"fork":%t,"archived":false,
		"topics":["cli"],"owner":{"login":%q}}`, name, name, owner, name, stars, forks, fork, owner)
}

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	c, err := New(srv.Client(), logging.Nop()).WithBaseURL(srv.URL)
	if err != nil {
		t.Fatalf("WithBaseURL() error = %v", err)
	}
	return c
}

func TestListOwned(t *testing.T) {
	var auth atomic.Value
	mux := http.NewServeMux()
	mux.HandleFunc("/users/octo/repos", func(w http.ResponseWriter, r *http.Request) {
		auth.Store(r.Header.Get("Authorization"))
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprintf(w, "[%s]", repoJSON("octo", "second", 1, 0, false))
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<http://%s/users/octo/repos?page=2>; rel="next"`, r.Host))
		fmt.Fprintf(w, "[%s,%s]", repoJSON("octo", "tool", 10, 2, false), repoJSON("octo", "forked", 0, 0, true))
	})
	mux.HandleFunc("/repos/octo/tool/languages", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"Shell":250,"Go":750}`)
	})
	mux.HandleFunc("/repos/octo/second/languages", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})

	c := newTestClient(t, mux)
	got, err := c.ListOwned(context.Background(), true, projects.Auth{Token: "tkn", Viewer: "octo"})
	if err != nil {
		t.Fatalf("ListOwned() error = %v", err)
	}
	if len(got) != 2 || got[0].Name != "tool" || got[1].Name != "second" {
		t.Fatalf("projects = %+v", got)
	}
	if auth.Load() != "Bearer tkn" {
		t.Errorf("Authorization = %v", auth.Load())
	}

	tool := got[0]
	if *tool.Stars != 10 || *tool.Forks != 2 || !*tool.Active || *tool.Owner != "octo" {
		t.Errorf("tool = %+v", tool)
	}
	if *tool.Role != projects.RoleOwner {
		t.Errorf("Role = %v", *tool.Role)
	}
	if *tool.URL != "https://github.com/octo/tool" || *tool.Description != "about tool" {
		t.Errorf("tool = %+v", tool)
	}
	if len(tool.Languages) != 2 || tool.Languages[0].Language != "Go" || tool.Languages[0].Percentage != 750 {
		t.Errorf("languages = %+v", tool.Languages)
	}
	if len(tool.Tags) != 1 || tool.Tags[0] != "cli" {
		t.Errorf("tags = %v", tool.Tags)
	}
	if got[1].Languages != nil {
		t.Errorf("empty language map should give no stats, got %+v", got[1].Languages)
	}
}

func TestListOwned_KeepsForks(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/octo/repos", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "[%s]", repoJSON("octo", "forked", 0, 0, true))
	})
	mux.HandleFunc("/repos/octo/forked/languages", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})
	got, err := newTestClient(t, mux).ListOwned(context.Background(), false, projects.Auth{Viewer: "octo"})
	if err != nil || len(got) != 1 {
		t.Fatalf("ListOwned() = %+v, %v", got, err)
	}
}

func TestListOwned_AuthenticatedUser(t *testing.T) {
	var hit atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/user/repos", func(w http.ResponseWriter, r *http.Request) {
		hit.Store(true)
		fmt.Fprint(w, "[]")
	})
	got, err := newTestClient(t, mux).ListOwned(context.Background(), false, projects.Auth{Token: "t"})
	if err != nil {
		t.Fatalf("ListOwned() error = %v", err)
	}
	if !hit.Load() || len(got) != 0 {
		t.Errorf("hit = %v, got = %v", hit.Load(), got)
	}
}

func TestListOwned_Error(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/octo/repos", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"Bad credentials"}`)
	})
	_, err := newTestClient(t, mux).ListOwned(context.Background(), false, projects.Auth{Viewer: "octo"})
	if !errors.Is(err, errors.ErrCodeHTTPStatus) {
		t.Errorf("expected HTTP_STATUS, got %v", err)
	}
}

func TestListByNames(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/other/lib", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, repoJSON("other", "lib", 40, 4, false))
	})
	mux.HandleFunc("/repos/octo/tool", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, repoJSON("octo", "tool", 5, 1, false))
	})
	for _, repo := range []string{"other/lib", "octo/tool"} {
		mux.HandleFunc("/repos/"+repo+"/languages", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"Go":1}`)
		})
	}
	mux.HandleFunc("/repos/other/lib/stats/contributors", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"author":{"login":"someone"},"total":9,"weeks":[{"w":1,"a":100,"d":100,"c":9}]},
			{"author":{"login":"Octo"},"total":3,"weeks":[{"w":1,"a":10,"d":2,"c":1},{"w":2,"a":5,"d":1,"c":2}]}
		]`)
	})
	mux.HandleFunc("/repos/octo/tool/stats/contributors", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		fmt.Fprint(w, `{}`)
	})

	c := newTestClient(t, mux)
	got, err := c.ListByNames(context.Background(),
		[]string{"other/lib", "not-a-repo", "octo/tool", "/x"},
		projects.Auth{Viewer: "octo"})
	if err != nil {
		t.Fatalf("ListByNames() error = %v", err)
	}
	if len(got) != 2 || got[0].Name != "lib" || got[1].Name != "tool" {
		t.Fatalf("projects = %+v", got)
	}

	lib := got[0]
	if *lib.Role != projects.RoleContributor {
		t.Errorf("lib role = %v", *lib.Role)
	}
	if lib.Commits == nil || *lib.Commits != 3 || *lib.Additions != 15 || *lib.Deletions != 3 {
		t.Errorf("lib stats = %v/%v/%v", lib.Commits, lib.Additions, lib.Deletions)
	}

	tool := got[1]
	if *tool.Role != projects.RoleOwner {
		t.Errorf("tool role = %v", *tool.Role)
	}
	if tool.Commits != nil {
		t.Error("202 statistics should leave stats unset")
	}
}

func TestListByNames_NoViewerSkipsStats(t *testing.T) {
	var statsHit atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/a/b", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, repoJSON("a", "b", 0, 0, false))
	})
	mux.HandleFunc("/repos/a/b/languages", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	})
	mux.HandleFunc("/repos/a/b/stats/contributors", func(w http.ResponseWriter, r *http.Request) {
		statsHit.Store(true)
		fmt.Fprint(w, `[]`)
	})
	got, err := newTestClient(t, mux).ListByNames(context.Background(), []string{"a/b"}, projects.Auth{})
	if err != nil || len(got) != 1 {
		t.Fatalf("ListByNames() = %v, %v", got, err)
	}
	if statsHit.Load() {
		t.Error("statistics should not be requested without a viewer")
	}
	if *got[0].Role != projects.RoleContributor {
		t.Errorf("Role = %v", *got[0].Role)
	}
}

func TestListByNames_NotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/a/missing", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	})
	_, err := newTestClient(t, mux).ListByNames(context.Background(), []string{"a/missing"}, projects.Auth{})
	if !errors.Is(err, errors.ErrCodeHTTPStatus) {
		t.Errorf("expected HTTP_STATUS, got %v", err)
	}
	if !strings.Contains(err.Error(), "a/missing") {
		t.Errorf("error should name the repository: %v", err)
	}
}

func TestLanguageStats(t *testing.T) {
	got := languageStats(map[string]int{"B": 1, "A": 1, "C": 2})
	want := []projects.LanguageStat{{Language: "C", Percentage: 500}, {Language: "A", Percentage: 250}, {Language: "B", Percentage: 250}}
	if len(got) != len(want) {
		t.Fatalf("got %+v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSplitName(t *testing.T) {
	tests := []struct {
		in    string
		owner string
		ok    bool
	}{
		{"a/b", "a", true},
		{" a/b ", "a", true},
		{"ab", "", false},
		{"a/", "", false},
		{"/b", "", false},
		{"a/b/c", "", false},
	}
	for _, tt := range tests {
		owner, _, ok := splitName(tt.in)
		if owner != tt.owner || ok != tt.ok {
			t.Errorf("splitName(%q) = %q, %v", tt.in, owner, ok)
		}
	}
}
