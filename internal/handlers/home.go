package handlers

import (
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"
)

const publicSession = "public-session"

// Board is one entry of the public catalog.
type Board struct {
	Name        string
	Description string
}

var catalog = []Board{
	{Name: "Eucalipto listón fino", Description: "Tablero alistonado con vetas suaves y tonalidad uniforme. Medida estándar: 1,20x3m. Disponible en 18, 20 y 30 mm de espesor."},
	{Name: "Multicolor", Description: "Tablero alistonado con mezcla de vetas y colores propios de especies nativas. Medida estándar: 1,20x3m. Disponible en 20 y 30 mm de espesor."},
	{Name: "Guayubira", Description: "Tablero alistonado con contraste natural de vetas y tonos intensos. Medida estándar: 1,20x3m. Disponible en 20 y 30 mm de espesor."},
	{Name: "Eucalipto listón grueso", Description: "Tablero finger joint con listones anchos y textura homogénea. Medida estándar: 1,20x3m. Disponible en 18, 20 y 30 mm de espesor."},
}

var emailRegex = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

func isValidEmail(email string) bool {
	return emailRegex.MatchString(strings.ToLower(email))
}

// RegisterSiteFuncs adds the helpers the site templates call. It must run
// before Load.
func RegisterSiteFuncs(tc *TemplateCache) {
	tc.AddFunc("year", func() string { return strconv.Itoa(time.Now().Year()) })
}

type HomeHandler struct {
	Templates    *TemplateCache
	SessionStore sessions.Store
}

func (h *HomeHandler) Index(w http.ResponseWriter, r *http.Request) {
	tmpl := h.Templates.Get("home.html")
	if tmpl == nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}
	session, _ := h.SessionStore.Get(r, publicSession)

	data := map[string]interface{}{
		"Boards":    catalog,
		"CsrfField": csrf.TemplateField(r),
		"Flashes":   GetFlash(session),
	}
	if err := session.Save(r, w); err != nil {
		slog.Error("Failed to save session", "error", err)
	}
	if err := tmpl.Execute(w, data); err != nil {
		slog.Error("Failed to render template", "template", "home.html", "error", err)
	}
}

// Contact validates the contact form and hands the message to the mail
// outbox, which for now is the log.
func (h *HomeHandler) Contact(w http.ResponseWriter, r *http.Request) {
	session, _ := h.SessionStore.Get(r, publicSession)
	defer func() {
		if err := session.Save(r, w); err != nil {
			slog.Error("Failed to save session", "error", err)
		}
		http.Redirect(w, r, "/#contacto", http.StatusSeeOther)
	}()

	if err := r.ParseForm(); err != nil {
		session.AddFlash(FlashMessage{Type: "error", Message: "Datos del formulario inválidos."})
		return
	}

	name := strings.TrimSpace(r.FormValue("nombre"))
	phone := strings.TrimSpace(r.FormValue("telefono"))
	email := strings.TrimSpace(r.FormValue("email"))
	message := strings.TrimSpace(r.FormValue("mensaje"))

	// Validation
	errors := make([]string, 0, 3)
	if name == "" {
		errors = append(errors, "Tu nombre es obligatorio.")
	}
	if email == "" {
		errors = append(errors, "El email es obligatorio.")
	} else if !isValidEmail(email) {
		errors = append(errors, "Ingresá un email válido.")
	}
	if message == "" {
		errors = append(errors, "El mensaje es obligatorio.")
	}
	if len(errors) > 0 {
		for _, msg := range errors {
			session.AddFlash(FlashMessage{Type: "error", Message: msg})
		}
		return
	}

	// MOCK EMAIL
	slog.Info("Contact request received",
		"name", name,
		"phone", phone,
		"email", email,
		"message", message,
		"request_id", RequestID(r.Context()),
	)
	session.AddFlash(FlashMessage{Type: "success", Message: "¡Gracias por tu consulta! Nos pondremos en contacto pronto."})
}
