package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
	"github.com/louisbranch/userclient/internal/services/userclient/routepath"
	"github.com/louisbranch/userclient/internal/services/userclient/shell"
)

// FormID is the DOM id of the create form.
const FormID = "add-user-form"

type formField struct {
	name        string
	inputType   string
	labelKey    string
	placeholder string
}

var formFields = []formField{
	{name: shell.FieldUsername, inputType: "text", labelKey: "form.username.label", placeholder: "form.username.placeholder"},
	{name: shell.FieldEmail, inputType: "email", labelKey: "form.email.label", placeholder: "form.email.placeholder"},
}

// AddUserForm renders the create form with the current pending values.
// Each input reports its value to the field-change route as it is typed;
// the form itself posts to the create route.
func AddUserForm(form shell.PendingForm, loc Localizer) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw("<form")
		h.attr("id", FormID)
		h.attr("method", "post")
		h.attr("action", routepath.Users)
		h.raw(">")
		for _, field := range formFields {
			inputID := "input-" + field.name
			h.raw(`<div class="field"><label`)
			h.attr("for", inputID)
			h.raw(">")
			h.text(T(loc, field.labelKey))
			h.raw("</label><input")
			h.attr("id", inputID)
			h.attr("type", field.inputType)
			h.attr("name", field.name)
			h.attr("value", form.Value(field.name))
			h.attr("placeholder", T(loc, field.placeholder))
			h.raw(" required")
			h.attr("hx-post", routepath.UserFormField)
			h.attr("hx-trigger", "input changed")
			h.attr("hx-swap", "none")
			h.attr("hx-vals", `{"field":"`+field.name+`"}`)
			h.raw("></div>")
		}
		h.raw(`<button type="submit" class="submit">`)
		h.text(T(loc, "form.submit"))
		h.raw("</button></form>")
		return h.err
	})
}

// Notice renders the feedback line for the last submission, or nothing.
func Notice(notice shell.Notice, loc Localizer) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		switch notice.Kind {
		case shell.NoticeCreated:
			h.raw(`<p class="notice notice-success" role="status">`)
			h.text(T(loc, "notice.created", notice.Username))
			h.raw("</p>")
		case shell.NoticeError:
			h.raw(`<p class="notice notice-error" role="alert">`)
			h.text(errorCopy(notice, loc))
			h.raw("</p>")
		}
		return h.err
	})
}

// errorCopy is the localized failure text followed by the user service's
// own message when it sent one.
func errorCopy(notice shell.Notice, loc Localizer) string {
	key := notice.Code.LocalizationKey()
	if key == "" {
		key = "error.page_title"
	}
	text := T(loc, key)
	if notice.Detail == "" {
		return text
	}
	return text + " " + notice.Detail
}
