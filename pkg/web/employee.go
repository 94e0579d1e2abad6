package web

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/wadjakorntonsri/paylinks/pkg/client"
	"github.com/wadjakorntonsri/paylinks/pkg/core/domain"
)

const maxUploadMemory = 10 << 20

func (s *Server) employeeLoginPage(w http.ResponseWriter, r *http.Request) {
	if id, ok := sessionFrom(r).Identity(domain.RoleEmployee); ok {
		if _, err := s.api.EmployeeCheck(r.Context(), id.Token); err == nil {
			redirect(w, r, client.DashboardRoute(domain.RoleEmployee))
			return
		}
	}
	s.render(w, "employee_login", pageData{Title: "Employee sign in", Error: r.URL.Query().Get("error")})
}

// employeeLogin handles both sign-in and registration from the same page
func (s *Server) employeeLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirect(w, r, "/employee/login?error=Invalid+form+submission")
		return
	}
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")

	var (
		id  client.Identity
		err error
	)
	if r.FormValue("action") == "register" {
		id, err = s.api.EmployeeRegister(r.Context(), strings.TrimSpace(r.FormValue("name")), email, password)
	} else {
		id, err = s.api.EmployeeLogin(r.Context(), email, password)
	}
	if err != nil {
		s.render(w, "employee_login", pageData{Title: "Employee sign in", Error: client.Message(err, "Unable to sign in.")})
		return
	}

	_ = sessionFrom(r).SignIn(domain.RoleEmployee, id)
	redirect(w, r, client.DashboardRoute(domain.RoleEmployee))
}

func (s *Server) employeeDashboard(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r)
	data := pageData{Title: "My links", Identity: id}

	links, err := s.api.MyLinks(r.Context(), id.Token)
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		s.expire(w, r, domain.RoleEmployee)
		return
	case err != nil:
		data.LinksError = linksLoadFailed
	default:
		data.Links = links
	}
	s.render(w, "employee_dashboard", data)
}

func (s *Server) entriesPaginator(id client.Identity) *client.Paginator[*client.EntryPage] {
	return client.NewPaginator(func(ctx context.Context, linkID string, page, size int) (*client.EntryPage, error) {
		return s.api.MyEntries(ctx, id.Token, linkID, id.ID, page, size)
	}, client.EmployeePageSize)
}

func (s *Server) employeeLink(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r)
	linkID := chi.URLParam(r, "id")

	entries := s.entriesPaginator(id)
	err := entries.Restore(r.Context(), linkID, parsePositiveInt(r.URL.Query().Get("page"), 1))
	if errors.Is(err, client.ErrUnauthorized) {
		s.expire(w, r, domain.RoleEmployee)
		return
	}

	form := client.NewEntryForm(s.api, id.Token, id.ID, entries, s.cfg.AttachmentEnabled)
	data := s.linkPage(r, id, linkID, entries, form)
	data.Notice = r.URL.Query().Get("notice")
	data.FormOpen = form.Offered() && r.URL.Query().Get("form") == "open"
	s.render(w, "employee_link", data)
}

func (s *Server) submitEntry(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r)
	linkID := chi.URLParam(r, "id")

	if s.cfg.AttachmentEnabled && strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
			redirect(w, r, "/employee/links/"+url.PathEscape(linkID)+"?error=Invalid+form+submission")
			return
		}
	} else if err := r.ParseForm(); err != nil {
		redirect(w, r, "/employee/links/"+url.PathEscape(linkID)+"?error=Invalid+form+submission")
		return
	}
	page := parsePositiveInt(r.FormValue("page"), 1)

	entries := s.entriesPaginator(id)
	if err := entries.Restore(r.Context(), linkID, page); errors.Is(err, client.ErrUnauthorized) {
		s.expire(w, r, domain.RoleEmployee)
		return
	}

	form := client.NewEntryForm(s.api, id.Token, id.ID, entries, s.cfg.AttachmentEnabled)
	if !form.Offered() {
		redirect(w, r, "/employee/links/"+url.PathEscape(linkID)+"?page="+itoa(entries.Page())+"&error=This+link+is+no+longer+accepting+entries.")
		return
	}
	form.Open()
	form.Set(r.FormValue("name"), r.FormValue("upiId"), r.FormValue("amount"))
	if s.cfg.AttachmentEnabled {
		if file, header, err := r.FormFile("image"); err == nil {
			defer file.Close()
			form.Attach(&client.Attachment{Filename: header.Filename, Content: file})
		}
	}

	if !form.Ready() {
		data := s.linkPage(r, id, linkID, entries, form)
		data.FormOpen = form.Offered()
		data.FormError = "Name, UPI ID and amount are required."
		data.FormName, data.FormUpiID, data.FormAmount = form.Values()
		s.render(w, "employee_link", data)
		return
	}

	name, upi, amount := form.Values()
	err := form.Submit(r.Context())
	if errors.Is(err, client.ErrUnauthorized) {
		s.expire(w, r, domain.RoleEmployee)
		return
	}
	if err != nil {
		data := s.linkPage(r, id, linkID, entries, form)
		data.FormOpen = true
		data.FormError = form.Message()
		data.FormName, data.FormUpiID, data.FormAmount = name, upi, amount
		s.render(w, "employee_link", data)
		return
	}

	// The form reloaded the page it was submitted from
	redirect(w, r, "/employee/links/"+url.PathEscape(linkID)+"?page="+itoa(entries.Page())+"&notice=Entry+added")
}

func (s *Server) linkPage(r *http.Request, id client.Identity, linkID string, entries *client.Paginator[*client.EntryPage], form *client.EntryForm) pageData {
	data := pageData{
		Title:             "Entries",
		Identity:          id,
		Error:             r.URL.Query().Get("error"),
		Entries:           entryPagerView(entries, entriesLoadFailed),
		FormOffered:       form.Offered(),
		AttachmentEnabled: form.AttachmentEnabled,
	}
	if links, err := s.api.MyLinks(r.Context(), id.Token); err == nil {
		for i := range links {
			if links[i].ID == linkID {
				data.Link = &links[i]
				data.Title = links[i].Title
			}
		}
	}
	if data.Link == nil {
		data.Link = &domain.Link{ID: linkID}
	}
	return data
}
