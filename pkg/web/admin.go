package web

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/wadjakorntonsri/paylinks/pkg/client"
	"github.com/wadjakorntonsri/paylinks/pkg/core/domain"
	"go.uber.org/zap"
)

const (
	linksLoadFailed   = "Failed to load links."
	entriesLoadFailed = "Failed to load entries."
	summaryLoadFailed = "Failed to load summary."
)

func itoa(n int) string { return strconv.Itoa(n) }

func (s *Server) adminLoginPage(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r)
	if id, ok := session.Identity(domain.RoleAdmin); ok {
		if _, err := s.api.AdminCheck(r.Context(), id.Token); err == nil {
			redirect(w, r, client.DashboardRoute(domain.RoleAdmin))
			return
		}
	}
	s.render(w, "admin_login", pageData{
		Title:          "Admin sign in",
		Error:          r.URL.Query().Get("error"),
		GoogleLoginURL: s.cfg.GoogleLoginURL,
	})
}

func (s *Server) adminLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirect(w, r, "/admin/login?error=Invalid+form+submission")
		return
	}
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	if email == "" || password == "" {
		s.render(w, "admin_login", pageData{Title: "Admin sign in", Error: "Email and password are required.", GoogleLoginURL: s.cfg.GoogleLoginURL})
		return
	}

	id, err := s.api.AdminLogin(r.Context(), email, password)
	if err != nil {
		s.render(w, "admin_login", pageData{Title: "Admin sign in", Error: client.Message(err, "Unable to sign in."), GoogleLoginURL: s.cfg.GoogleLoginURL})
		return
	}
	if err := sessionFrom(r).SignIn(domain.RoleAdmin, id); err != nil {
		s.logger.Error("store session", zap.Error(err))
	}
	redirect(w, r, client.DashboardRoute(domain.RoleAdmin))
}

// adminSSO finishes Google sign-in: the API hands over a token, the dashboard checks and stores it
func (s *Server) adminSSO(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	id, err := s.api.AdminCheck(r.Context(), token)
	if err != nil || token == "" {
		redirect(w, r, "/admin/login?error=Sign-in+failed")
		return
	}
	_ = sessionFrom(r).SignIn(domain.RoleAdmin, id)
	redirect(w, r, client.DashboardRoute(domain.RoleAdmin))
}

func (s *Server) logout(role domain.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = sessionFrom(r).Logout()
		redirect(w, r, client.LoginRoute(role))
	}
}

func (s *Server) adminDashboard(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r)
	q := r.URL.Query()
	data := pageData{Title: "Dashboard", Identity: id, Search: q.Get("q")}

	// Employees: loaded once per render, filtered locally
	employees := client.NewFilterList(func(e domain.Employee) []string { return []string{e.Name, e.Email} }, client.EmployeesLoadFailed)
	if err := employees.Load(r.Context(), func(ctx context.Context) ([]domain.Employee, error) {
		return s.api.Employees(ctx, id.Token)
	}); err != nil {
		s.expire(w, r, domain.RoleAdmin)
		return
	}
	data.Employees = employees.Filter(data.Search)
	data.EmployeesError = employees.Message()

	if created := q.Get("created"); created != "" {
		data.CreatedLink = &client.CreatedLink{ID: created, Link: q.Get("share")}
	}

	d := client.NewDrilldown(s.api, id.Token, client.AdminPageSize)
	drill := &drillView{Search: data.Search}
	if emp := q.Get("emp"); emp != "" {
		err := d.RestoreEmployee(r.Context(), emp, parsePositiveInt(q.Get("lpage"), 1))
		if errors.Is(err, client.ErrUnauthorized) {
			s.expire(w, r, domain.RoleAdmin)
			return
		}
		drill.Employee = emp
		for _, e := range data.Employees {
			if e.Code == emp {
				drill.EmployeeName = e.Name
			}
		}

		if link := q.Get("link"); link != "" && err == nil {
			err = d.RestoreLink(r.Context(), link, parsePositiveInt(q.Get("spage"), 1))
			if errors.Is(err, client.ErrUnauthorized) {
				s.expire(w, r, domain.RoleAdmin)
				return
			}
			drill.Link = link
			if page, ok := d.Links.Current(); ok {
				for _, l := range page.Links {
					if l.ID == link {
						drill.LinkTitle = l.Title
					}
				}
			}
		}
	}
	drill.Links = linkPagerView(d.Links, linksLoadFailed)
	drill.Entries = entryPagerView(d.Entries, entriesLoadFailed)
	data.Drill = drill

	data.Error = q.Get("error")
	s.render(w, "admin_dashboard", data)
}

func (s *Server) createLink(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r)
	if err := r.ParseForm(); err != nil {
		redirect(w, r, "/admin/dashboard?error=Invalid+form+submission")
		return
	}
	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		redirect(w, r, "/admin/dashboard?error=Title+is+required")
		return
	}

	created, err := s.api.CreateLink(r.Context(), id.Token, title, id.ID)
	if errors.Is(err, client.ErrUnauthorized) {
		s.expire(w, r, domain.RoleAdmin)
		return
	}
	if err != nil {
		redirect(w, r, "/admin/dashboard?error="+url.QueryEscape(client.Message(err, "Failed to create link.")))
		return
	}
	redirect(w, r, "/admin/dashboard?created="+url.QueryEscape(created.ID)+"&share="+url.QueryEscape(created.Link))
}

func (s *Server) linkHistory(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r)
	data := pageData{Title: "Link history", Identity: id, Search: r.URL.Query().Get("q")}

	links := client.NewFilterList(func(l domain.Link) []string { return []string{l.Title} }, client.LinkHistoryLoadFailed)
	if err := links.Load(r.Context(), func(ctx context.Context) ([]domain.Link, error) {
		return s.api.LinkHistory(ctx, id.Token)
	}); err != nil {
		s.expire(w, r, domain.RoleAdmin)
		return
	}
	data.Links = links.Filter(data.Search)
	data.LinksError = links.Message()
	s.render(w, "link_history", data)
}

func (s *Server) linkSummary(w http.ResponseWriter, r *http.Request) {
	id := identityFrom(r)
	linkID := r.URL.Query().Get("id")
	data := pageData{Title: "Summary", Identity: id, SummaryID: linkID}

	summary, err := s.api.Summary(r.Context(), id.Token, linkID)
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		s.expire(w, r, domain.RoleAdmin)
		return
	case err != nil:
		data.SummaryError = client.Message(err, summaryLoadFailed)
	default:
		data.Summary = summary
	}
	s.render(w, "link_summary", data)
}

func (s *Server) exportSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := s.api.Export(r.Context(), identityFrom(r).Token, q.Get("id"), q.Get("format"))
	s.proxy(w, r, domain.RoleAdmin, resp, err)
}

func (s *Server) linkQR(w http.ResponseWriter, r *http.Request) {
	resp, err := s.api.QRCode(r.Context(), identityFrom(r).Token, r.URL.Query().Get("id"))
	s.proxy(w, r, domain.RoleAdmin, resp, err)
}
