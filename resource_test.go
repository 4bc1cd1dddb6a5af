package arbor

import (
	"testing"
)

func TestResourceTree_Pattern(t *testing.T) {
	api := NewRoot("api")
	users := api.Static("users")
	user := users.Dynamic("id")
	posts := user.Static("posts")

	cases := []struct {
		resource *Resource
		want     string
	}{
		{api, "/api"},
		{users, "/api/users"},
		{user, "/api/users/{id}"},
		{posts, "/api/users/{id}/posts"},
	}
	for _, tc := range cases {
		if got := tc.resource.Pattern(); got != tc.want {
			t.Errorf("Pattern() = %q, want %q", got, tc.want)
		}
	}
}

func TestResourceTree_ParentsAndChildren(t *testing.T) {
	api := NewRoot("api")
	users := api.Static("users")

	if api.Parent() != nil {
		t.Error("root must have no parent")
	}
	if users.Parent() != api {
		t.Error("expected users.Parent() == api")
	}
	children := api.Children()
	if len(children) != 1 || children[0] != users {
		t.Errorf("unexpected children: %v", children)
	}
	if users.IsDynamic() {
		t.Error("static resource reported dynamic")
	}
	if !users.Dynamic("id").IsDynamic() {
		t.Error("dynamic resource reported static")
	}
}

func TestResourceTree_DuplicateAncestorSlug(t *testing.T) {
	api := NewRoot("api")
	users := api.Static("users")

	assertPanics(t, "reuse of direct parent slug", func() {
		users.Static("users")
	})
	assertPanics(t, "reuse of root slug two levels down", func() {
		users.Static("api")
	})

	// A sibling may reuse a slug from a different branch.
	groups := api.Static("groups")
	groups.Static("users")
}

func TestResourceTree_InvalidSlug(t *testing.T) {
	assertPanics(t, "empty root slug", func() { NewRoot("") })
	assertPanics(t, "slug with separator", func() { NewRoot("a/b") })

	api := NewRoot("api")
	assertPanics(t, "empty child slug", func() { api.Static("") })
	assertPanics(t, "dynamic name with separator", func() { api.Dynamic("a/b") })
}

func TestResourceTree_Freeze(t *testing.T) {
	api := NewRoot("api")
	users := api.Static("users")
	api.Freeze()

	assertPanics(t, "child declaration after freeze", func() {
		users.Static("posts")
	})
	assertPanics(t, "endpoint declaration after freeze", func() {
		Get[Empty, Empty, None](users)
	})

	// Freeze is idempotent and reaches the whole tree from any node.
	users.Freeze()
}

func TestResource_DuplicateEndpoint(t *testing.T) {
	api := NewRoot("api")
	users := api.Static("users")

	Get[Empty, Empty, None](users)
	Get[Empty, Empty, None](users, "search")

	assertPanics(t, "same method and no sub-path", func() {
		Get[Empty, Empty, None](users)
	})
	assertPanics(t, "same method and sub-path", func() {
		Get[Empty, Empty, None](users, "search")
	})

	// Different method on the same path is fine.
	Post[Empty, Empty, None](users)
}

func TestResource_Endpoints(t *testing.T) {
	api := NewRoot("api")
	users := api.Static("users")

	Get[Empty, Empty, None](users)
	Post[Empty, Empty, None](users)

	eps := users.Endpoints()
	if len(eps) != 2 {
		t.Fatalf("expected 2 endpoints, got %d", len(eps))
	}
	if eps[0].Method != "GET" || eps[1].Method != "POST" {
		t.Errorf("unexpected endpoint order: %s, %s", eps[0].Method, eps[1].Method)
	}
	if eps[0].Pattern != "/api/users" {
		t.Errorf("unexpected pattern: %s", eps[0].Pattern)
	}
}

func assertPanics(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	fn()
}
