package handlers

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yakubikk/railway-registry/internal/transport/http/middleware"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Title}} — Railway Registry</title></head>
<body>
<h1>{{.Title}}</h1>
<p>{{.Body}}</p>
{{if .Email}}<p>Signed in as {{.Email}}</p>{{end}}
</body>
</html>
`))

type pageData struct {
	Title string
	Body  string
	Email string
}

// PagesHandler serves the navigable pages. Access control happens in the
// page gate; these handlers only render.
type PagesHandler struct{}

// NewPagesHandler builds a PagesHandler.
func NewPagesHandler() *PagesHandler {
	return &PagesHandler{}
}

// Home renders the landing page for any authenticated visitor.
func (h *PagesHandler) Home(c *gin.Context) {
	h.render(c, pageData{
		Title: "Home",
		Body:  "Wagon and manufacturer registries.",
		Email: middleware.PrincipalFrom(c).Email,
	})
}

// Admin renders the administration console entry page.
func (h *PagesHandler) Admin(c *gin.Context) {
	h.render(c, pageData{
		Title: "Administration",
		Body:  "Registry administration console.",
		Email: middleware.PrincipalFrom(c).Email,
	})
}

// Moderator renders the moderation queue page.
func (h *PagesHandler) Moderator(c *gin.Context) {
	h.render(c, pageData{
		Title: "Moderation",
		Body:  "Registry moderation queue.",
		Email: middleware.PrincipalFrom(c).Email,
	})
}

// Login renders the sign-in page.
func (h *PagesHandler) Login(c *gin.Context) {
	h.render(c, pageData{
		Title: "Sign in",
		Body:  "Sign in to the railway registry.",
	})
}

// Register renders the account registration page.
func (h *PagesHandler) Register(c *gin.Context) {
	h.render(c, pageData{
		Title: "Register",
		Body:  "Create a railway registry account.",
	})
}

// Unauthorized renders the access denied page. Deliberately identical for
// missing records and missing roles.
func (h *PagesHandler) Unauthorized(c *gin.Context) {
	h.render(c, pageData{
		Title: "Access denied",
		Body:  "You do not have access to this page.",
		Email: middleware.PrincipalFrom(c).Email,
	})
}

func (h *PagesHandler) render(c *gin.Context, data pageData) {
	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(c.Writer, data); err != nil {
		_ = c.Error(err)
	}
}
