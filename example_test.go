package arbor_test

import (
	"context"
	"fmt"
	"net/http/httptest"

	"github.com/arborhq/arbor"
)

type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type UserNotFound struct {
	ID string `json:"id"`
}

type ListUsersParams struct {
	Archived bool `schema:"archived" default:"false"`
}

// One declaration tree shared by both sides keeps client and server in sync
// at compile time.
func Example() {
	api := arbor.NewRoot("api")
	users := api.Static("users")
	user := users.Dynamic("id")

	listUsers := arbor.Get[arbor.Empty, []User, ListUsersParams](users)
	getUser := arbor.Get[arbor.Empty, User, arbor.None](user).
		Fails(arbor.Failure[UserNotFound](404))

	// Server side: bind handlers to the declarations.
	b := arbor.NewBinder()
	arbor.Bind(b, listUsers, func(ctx context.Context, req *arbor.Request[arbor.Empty, ListUsersParams]) ([]User, error) {
		if req.Params.Archived {
			return []User{}, nil
		}
		return []User{{ID: "1", Name: "ada"}}, nil
	})
	arbor.Bind(b, getUser, func(ctx context.Context, req *arbor.Request[arbor.Empty, arbor.None]) (User, error) {
		id := req.PathValue("id")
		if id != "1" {
			return User{}, arbor.Fail(404, UserNotFound{ID: id})
		}
		return User{ID: "1", Name: "ada"}, nil
	})

	srv := httptest.NewServer(b.Handler())
	defer srv.Close()

	// Client side: resolve the same tree into concrete paths and call.
	client := arbor.NewClient(srv.URL)

	re, _ := listUsers.At(api.Resolve().Static(users))
	all, _ := arbor.Call(context.Background(), client, re, arbor.Empty(nil), ListUsersParams{})
	fmt.Println(len(all), all[0].Name)

	re2, _ := getUser.At(api.Resolve().Static(users).Bind(user, "2"))
	_, err := arbor.Call(context.Background(), client, re2, arbor.Empty(nil), arbor.None{})
	missing, _ := arbor.AsFailure[UserNotFound](err)
	fmt.Println(missing.ID)

	// Output:
	// 1 ada
	// 2
}
