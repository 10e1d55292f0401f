// Package routepath names the userclient HTTP routes.
package routepath

const (
	Root          = "/"
	Users         = "/users"
	UserFormField = "/users/form"
	Health        = "/up"
	StaticPrefix  = "/static/"
)
