package userclient

import (
	"net/http"

	"github.com/louisbranch/userclient/internal/services/userclient/routepath"
	userclientstatic "github.com/louisbranch/userclient/internal/services/userclient/static"
)

func (h *Handler) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc(http.MethodGet+" "+routepath.Root+"{$}", h.handleHome)
	mux.HandleFunc(http.MethodGet+" "+routepath.Users, h.handleUserList)
	mux.HandleFunc(http.MethodPost+" "+routepath.Users, h.handleSubmit)
	mux.HandleFunc(http.MethodPost+" "+routepath.UserFormField, h.handleFieldChange)
	mux.HandleFunc(http.MethodGet+" "+routepath.Health, h.handleHealth)
	mux.Handle(routepath.StaticPrefix, http.StripPrefix(routepath.StaticPrefix, http.FileServer(http.FS(userclientstatic.FS))))
}
