package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"time"

	authdomain "dashboard/backend/internal/domain/auth"
	invoicedomain "dashboard/backend/internal/domain/invoice"
	authusecase "dashboard/backend/internal/usecase/auth"
	invoiceusecase "dashboard/backend/internal/usecase/invoice"
	"dashboard/backend/internal/validate"

	"github.com/go-chi/chi/v5"
)

const (
	maxFormBytes       = 1 << 20
	invoicesPath       = "/dashboard/invoices"
	msgInvoiceNotFound = "The invoice you are looking for does not exist."
)

func (s *Server) registerRoutes() {
	r := s.router
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/health", s.handleHealth)
	r.Get("/", s.handleHome)
	r.Get(s.cfg.SignInPath, s.handleSignInPage)
	r.Post(s.cfg.SignInPath, s.handleLogin)
	r.Post(s.cfg.SignOutPath, s.handleSignOut)
	r.Get(s.cfg.ErrorPath, s.handleErrorPage)
	r.Get("/profile", s.handleProfile)

	r.Route("/dashboard", func(r chi.Router) {
		r.Get("/", s.handleDashboard)
		r.Get("/customers", s.handleCustomers)
		r.Route("/invoices", func(r chi.Router) {
			r.Get("/", s.handleListInvoices)
			r.Post("/", s.handleCreateInvoice)
			r.Get("/{id}", s.handleGetInvoice)
			r.Put("/{id}", s.handleUpdateInvoice)
			r.Post("/{id}", s.handleUpdateInvoice)
			r.Delete("/{id}", s.handleDeleteInvoice)
			r.Post("/{id}/delete", s.handleDeleteInvoice)
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.health.Ping(ctx); err != nil {
			s.log.Warn(r.Context(), "health check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"page":   "home",
		"signIn": s.cfg.SignInPath,
	})
}

func (s *Server) handleSignInPage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"page":        "login",
		"action":      s.cfg.SignInPath,
		"fields":      []string{"email", "password"},
		"callbackUrl": r.URL.Query().Get("callbackUrl"),
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	form, err := readForm(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid form payload")
		return
	}

	res := s.auth.Login(r.Context(), authdomain.Credentials{
		Email:    form.Get("email"),
		Password: form.Get("password"),
	})
	if !res.OK() {
		if authusecase.IsCredentialFailure(res.Err) {
			writeFieldErrors(w, http.StatusUnauthorized, res.Message, res.FieldErrors)
			return
		}
		writeError(w, http.StatusInternalServerError, res.Message)
		return
	}

	s.setSessionCookie(w, res.Token, res.ExpiresAt)
	redirect(w, r, res.RedirectTo)
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	s.clearSessionCookie(w)
	redirect(w, r, s.cfg.SignInPath)
}

func (s *Server) handleErrorPage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"page":    "error",
		"error":   r.URL.Query().Get("error"),
		"message": "Something went wrong.",
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	session := sessionFromContext(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"user":      session.Identity,
		"expiresAt": session.ExpiresAt,
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := s.invoices.Summary(r.Context())
	if err != nil {
		s.storeError(w, r, "Database Error: Failed to Fetch Card Data.", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user":    sessionFromContext(r.Context()).Identity,
		"summary": summary,
	})
}

func (s *Server) handleCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := s.invoices.Customers(r.Context())
	if err != nil {
		s.storeError(w, r, "Database Error: Failed to Fetch Customers.", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"customers": customers})
}

func (s *Server) handleListInvoices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))

	result, err := s.invoices.List(r.Context(), q.Get("query"), page)
	if err != nil {
		s.storeError(w, r, "Database Error: Failed to Fetch Invoices.", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	form, err := readForm(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid form payload")
		return
	}

	inv, err := s.invoices.Create(r.Context(), invoiceInput(form))
	if err != nil {
		s.invoiceWriteError(w, r, "Create", err)
		return
	}
	s.log.Info(r.Context(), "invoice created", "invoice_id", inv.ID, "user_id", sessionFromContext(r.Context()).Identity.ID)
	redirect(w, r, invoicesPath)
}

func (s *Server) handleGetInvoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	inv, err := s.invoices.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, invoicedomain.ErrNotFound) {
			writeError(w, http.StatusNotFound, msgInvoiceNotFound)
			return
		}
		s.storeError(w, r, "Database Error: Failed to Fetch Invoice.", err)
		return
	}
	customers, err := s.invoices.Customers(ctx)
	if err != nil {
		s.storeError(w, r, "Database Error: Failed to Fetch Customers.", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"invoice":   inv,
		"customers": customers,
	})
}

func (s *Server) handleUpdateInvoice(w http.ResponseWriter, r *http.Request) {
	form, err := readForm(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid form payload")
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.invoices.Update(r.Context(), id, invoiceInput(form)); err != nil {
		s.invoiceWriteError(w, r, "Update", err)
		return
	}
	s.log.Info(r.Context(), "invoice updated", "invoice_id", id, "user_id", sessionFromContext(r.Context()).Identity.ID)
	redirect(w, r, invoicesPath)
}

func (s *Server) handleDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.invoices.Delete(r.Context(), id); err != nil {
		s.invoiceWriteError(w, r, "Delete", err)
		return
	}
	s.log.Info(r.Context(), "invoice deleted", "invoice_id", id, "user_id", sessionFromContext(r.Context()).Identity.ID)
	redirect(w, r, invoicesPath)
}

func (s *Server) invoiceWriteError(w http.ResponseWriter, r *http.Request, action string, err error) {
	switch {
	case errors.Is(err, validate.ErrInvalid):
		writeFieldErrors(w, http.StatusUnprocessableEntity, "Missing Fields. Failed to "+action+" Invoice.", validate.Fields(err))
	case errors.Is(err, invoicedomain.ErrNotFound):
		writeError(w, http.StatusNotFound, msgInvoiceNotFound)
	default:
		s.storeError(w, r, "Database Error: Failed to "+action+" Invoice.", err)
	}
}

// storeError logs the cause and answers with a generic message.
func (s *Server) storeError(w http.ResponseWriter, r *http.Request, message string, err error) {
	s.log.Error(r.Context(), message, "error", err, "path", r.URL.Path)
	writeError(w, http.StatusInternalServerError, message)
}

func invoiceInput(form url.Values) invoiceusecase.Input {
	return invoiceusecase.Input{
		CustomerID: form.Get("customerId"),
		Amount:     form.Get("amount"),
		Status:     form.Get("status"),
	}
}

// readForm accepts url-encoded or multipart forms, and flat JSON objects.
func readForm(w http.ResponseWriter, r *http.Request) (url.Values, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			return nil, err
		}
		values := url.Values{}
		for k, v := range payload {
			switch tv := v.(type) {
			case string:
				values.Set(k, tv)
			case float64:
				values.Set(k, strconv.FormatFloat(tv, 'f', -1, 64))
			}
		}
		return values, nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxFormBytes); err != nil {
			return nil, err
		}
		return r.PostForm, nil
	default:
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		return r.PostForm, nil
	}
}
