// Package userservice is the HTTP client for the remote user service.
package userservice

// User is a user record as served by the user service. The client never
// mutates one; new users only appear through creation and a refetch.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Active   bool   `json:"active"`
}

// CreateUserRequest is the body of a user creation call.
type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// listUsersResponse mirrors `{"status": ..., "data": {"users": [...]}}`.
// Pointers distinguish a missing envelope field from an empty one.
type listUsersResponse struct {
	Status string `json:"status"`
	Data   *struct {
		Users *[]User `json:"users"`
	} `json:"data"`
}

// statusResponse is the `{"status", "message"}` body used by ping, create,
// and error replies.
type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
