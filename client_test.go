package arbor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestClient_EndToEnd_ListUsers(t *testing.T) {
	api := NewRoot("api")
	users := api.Static("users")
	list := Get[Empty, []userDTO, listUsersParams](users)

	b := NewBinder()
	var lastQuery url.Values
	Bind(b, list, func(ctx context.Context, req *Request[Empty, listUsersParams]) ([]userDTO, error) {
		lastQuery = RequestFromContext(ctx).URL.Query()
		if req.Params.Archived {
			return []userDTO{}, nil
		}
		return []userDTO{{ID: "1", Name: "ada"}}, nil
	})
	srv := httptest.NewServer(b.Handler())
	defer srv.Close()

	client := NewClient(srv.URL)

	re, err := list.At(api.Resolve().Static(users))
	if err != nil {
		t.Fatalf("At: %v", err)
	}
	if got := re.Path().String(); got != "/api/users" {
		t.Errorf("request path = %q, want /api/users", got)
	}

	// No explicit parameters: the default is materialized on the wire.
	res, err := Call(context.Background(), client, re, Empty(nil), listUsersParams{})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if len(res) != 1 || res[0].Name != "ada" {
		t.Errorf("res = %+v", res)
	}
	if got := lastQuery.Get("archived"); got != "false" {
		t.Errorf("archived on the wire = %q, want false", got)
	}

	// Setting archived=true changes the query string, not the path.
	res, err = Call(context.Background(), client, re, Empty(nil), listUsersParams{Archived: true})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if len(res) != 0 {
		t.Errorf("res = %+v, want empty", res)
	}
	if got := lastQuery.Get("archived"); got != "true" {
		t.Errorf("archived on the wire = %q, want true", got)
	}
}

func TestClient_EndToEnd_DynamicSegment(t *testing.T) {
	api := NewRoot("api")
	users := api.Static("users")
	user := users.Dynamic("id")
	get := Get[Empty, userDTO, None](user).
		Fails(Failure[notFoundPayload](404))

	b := NewBinder()
	Bind(b, get, func(ctx context.Context, req *Request[Empty, None]) (userDTO, error) {
		id := req.PathValue("id")
		if id != "42" {
			return userDTO{}, Fail(404, notFoundPayload{Resource: "user"})
		}
		return userDTO{ID: id, Name: "ada"}, nil
	})
	srv := httptest.NewServer(b.Handler())
	defer srv.Close()

	client := NewClient(srv.URL)

	re, err := get.At(api.Resolve().Static(users).Bind(user, "42"))
	if err != nil {
		t.Fatalf("At: %v", err)
	}
	res, err := Call(context.Background(), client, re, Empty(nil), None{})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if res.ID != "42" || res.Name != "ada" {
		t.Errorf("res = %+v", res)
	}

	// A declared failure decodes into its typed payload.
	re, err = get.At(api.Resolve().Static(users).Bind(user, "missing"))
	if err != nil {
		t.Fatalf("At: %v", err)
	}
	_, err = Call(context.Background(), client, re, Empty(nil), None{})
	var fe *FailureError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FailureError, got %v", err)
	}
	if fe.Status != 404 {
		t.Errorf("Status = %d, want 404", fe.Status)
	}
	payload, ok := AsFailure[notFoundPayload](err)
	if !ok || payload.Resource != "user" {
		t.Errorf("payload = %+v, ok = %v", payload, ok)
	}
}

func TestClient_UnexpectedStatus(t *testing.T) {
	api := NewRoot("api")
	users := api.Static("users")
	get := Get[Empty, userDTO, None](users).
		Fails(Failure[notFoundPayload](404))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "kaput", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL)
	re, err := get.At(api.Resolve().Static(users))
	if err != nil {
		t.Fatalf("At: %v", err)
	}

	// 500 is not declared: it must not be coerced into the 404 branch.
	_, err = Call(context.Background(), client, re, Empty(nil), None{})
	var ue *UnexpectedStatusError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UnexpectedStatusError, got %v", err)
	}
	if ue.Status != http.StatusInternalServerError {
		t.Errorf("Status = %d", ue.Status)
	}
	var fe *FailureError
	if errors.As(err, &fe) {
		t.Error("unexpected status matched FailureError")
	}
}

func TestClient_PostBody(t *testing.T) {
	api := NewRoot("api")
	users := api.Static("users")
	create := Post[createUserRequest, userDTO, None](users)

	b := NewBinder()
	Bind(b, create, func(ctx context.Context, req *Request[createUserRequest, None]) (userDTO, error) {
		return userDTO{ID: "7", Name: req.Body.Name}, nil
	})
	srv := httptest.NewServer(b.Handler())
	defer srv.Close()

	client := NewClient(srv.URL)
	re, err := create.At(api.Resolve().Static(users))
	if err != nil {
		t.Fatalf("At: %v", err)
	}

	res, err := Call(context.Background(), client, re, createUserRequest{Name: "grace"}, None{})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if res.ID != "7" || res.Name != "grace" {
		t.Errorf("res = %+v", res)
	}
}

func TestClient_ResolutionErrorBeforeNetwork(t *testing.T) {
	api := NewRoot("api")
	users := api.Static("users")
	user := users.Dynamic("id")
	get := Get[Empty, userDTO, None](user)

	// At fails on a bad binding; no server is needed because no request
	// may be issued.
	if _, err := get.At(api.Resolve().Static(users).Bind(user, "a/b")); err == nil {
		t.Fatal("expected resolution error")
	}
	if _, err := get.At(api.Resolve().Static(users).Bind(user, "")); err == nil {
		t.Fatal("expected resolution error for empty id")
	}
}

func TestClient_BaseURLTrimming(t *testing.T) {
	c := NewClient("http://example.test/")
	if c.baseURL != "http://example.test" {
		t.Errorf("baseURL = %q", c.baseURL)
	}
}
