package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"

	"github.com/Joseda-hg/kitchencheck/internal/auth"
	"github.com/Joseda-hg/kitchencheck/internal/checklist"
	"github.com/Joseda-hg/kitchencheck/internal/db"
	"github.com/Joseda-hg/kitchencheck/internal/model"
	"github.com/Joseda-hg/kitchencheck/internal/report"
	"github.com/Joseda-hg/kitchencheck/internal/schedule"
	"github.com/Joseda-hg/kitchencheck/internal/submission"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const (
	sessionCookie = "session"
	sessionKey    = "session"
)

// Store is the part of the database the web layer uses directly.
type Store interface {
	Authenticate(ctx context.Context, email, password string) (model.User, error)
	GetTask(ctx context.Context, session auth.Session, taskID string) (model.Task, error)
	ListTasks(ctx context.Context, session auth.Session, includeInactive bool) ([]model.Task, error)
	CreateTask(ctx context.Context, session auth.Session, input db.TaskInput) (model.Task, error)
	UpdateTask(ctx context.Context, session auth.Session, taskID string, input db.TaskInput) (model.Task, error)
	SetTaskActive(ctx context.Context, session auth.Session, taskID string, active bool) (model.Task, error)
	SeedTasks(ctx context.Context, session auth.Session) ([]model.Task, error)
	ListTaskEvents(ctx context.Context, session auth.Session, taskID string) ([]model.TaskEvent, error)
}

type Server struct {
	service *checklist.Service
	store   Store
	tokens  *auth.Tokens
	loc     *time.Location
	secure  bool
	router  *gin.Engine
}

type Option func(*Server)

// WithLocation sets the zone dates in filters are read in.
func WithLocation(loc *time.Location) Option {
	return func(s *Server) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithSecureCookies marks the session cookie Secure, for HTTPS deployments.
func WithSecureCookies(secure bool) Option {
	return func(s *Server) {
		s.secure = secure
	}
}

func NewServer(service *checklist.Service, store Store, tokens *auth.Tokens, opts ...Option) *Server {
	s := &Server{service: service, store: store, tokens: tokens, loc: time.Local}
	for _, opt := range opts {
		opt(s)
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), s.loadSession)
	router.SetHTMLTemplate(template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.tmpl")))

	router.GET("/login", s.handleLoginPage)
	router.POST("/login", s.handleLogin)
	router.POST("/logout", s.handleLogout)

	pages := router.Group("/", s.requirePage)
	{
		pages.GET("/", s.handleBoard)
		pages.POST("/tasks/:id/records", s.handleSubmit)
	}

	manage := router.Group("/manage", s.requirePage, s.requireManager)
	{
		manage.GET("/tasks", s.handleTasks)
		manage.POST("/tasks", s.handleCreateTask)
		manage.GET("/tasks/:id", s.handleEditTask)
		manage.POST("/tasks/:id", s.handleUpdateTask)
		manage.POST("/tasks/:id/deactivate", s.handleSetActive(false))
		manage.POST("/tasks/:id/activate", s.handleSetActive(true))
		manage.POST("/seed", s.handleSeed)
		manage.GET("/log", s.handleLog)
		manage.GET("/log/export.xlsx", s.handleExportXLSX)
		manage.GET("/log/export.pdf", s.handleExportPDF)
	}

	api := router.Group("/api", s.requireAPI)
	{
		api.GET("/board", s.handleAPIBoard)
		api.POST("/tasks/:id/records", s.handleAPISubmit)
		api.POST("/tasks/:id/check", s.handleAPICheck)
		api.GET("/tasks", s.handleAPITasks)
		api.GET("/tasks/:id", s.handleAPITask)
		api.POST("/tasks", s.handleAPICreateTask)
		api.PUT("/tasks/:id", s.handleAPIUpdateTask)
		api.DELETE("/tasks/:id", s.handleAPIDeactivateTask)
		api.GET("/records", s.handleAPIRecords)
	}

	s.router = router
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// loadSession attaches the session from a valid cookie, if any.
func (s *Server) loadSession(c *gin.Context) {
	raw, err := c.Cookie(sessionCookie)
	if err != nil || raw == "" {
		c.Next()
		return
	}
	session, err := s.tokens.Verify(raw)
	if err != nil {
		s.clearCookie(c)
		c.Next()
		return
	}
	c.Set(sessionKey, session)
	c.Next()
}

func (s *Server) requirePage(c *gin.Context) {
	if _, ok := sessionFrom(c); !ok {
		c.Redirect(http.StatusSeeOther, "/login")
		c.Abort()
		return
	}
	c.Next()
}

func (s *Server) requireAPI(c *gin.Context) {
	if _, ok := sessionFrom(c); !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": auth.ErrNoSession.Error()})
		return
	}
	c.Next()
}

func (s *Server) requireManager(c *gin.Context) {
	session, _ := sessionFrom(c)
	if err := auth.RequireRole(session, model.RoleManager); err != nil {
		s.renderError(c, err)
		c.Abort()
		return
	}
	c.Next()
}

func sessionFrom(c *gin.Context) (auth.Session, bool) {
	value, ok := c.Get(sessionKey)
	if !ok {
		return auth.Session{}, false
	}
	session, ok := value.(auth.Session)
	return session, ok
}

func (s *Server) setCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, int(s.tokens.TTL().Seconds()), "/", "", s.secure, true)
}

func (s *Server) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, "", -1, "/", "", s.secure, true)
}

func statusFor(err error) int {
	var subErr *checklist.SubmissionError
	switch {
	case errors.As(err, &subErr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, auth.ErrNoSession), errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, checklist.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, checklist.ErrInactiveTask):
		return http.StatusConflict
	case errors.Is(err, db.ErrInvalidTask), errors.Is(err, errBadForm):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage hides internal failures from the response body.
func publicMessage(status int, err error) string {
	if status == http.StatusInternalServerError {
		return "Something went wrong"
	}
	var subErr *checklist.SubmissionError
	if errors.As(err, &subErr) {
		return subErr.Message()
	}
	return err.Error()
}

func (s *Server) renderError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("web: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	session, _ := sessionFrom(c)
	c.HTML(status, "error.tmpl", gin.H{
		"Session": session,
		"Status":  status,
		"Message": publicMessage(status, err),
	})
}

func (s *Server) apiError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Printf("api: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	body := gin.H{"error": publicMessage(status, err)}
	var subErr *checklist.SubmissionError
	if errors.As(err, &subErr) {
		body["is_valid"] = subErr.Result.IsValid
		body["should_flag"] = subErr.Result.ShouldFlag
	}
	c.JSON(status, body)
}

var templateFuncs = template.FuncMap{
	"ago": func(t time.Time) string {
		return humanize.Time(t)
	},
	"clock": func(t time.Time) string {
		return t.Format("15:04")
	},
	"date": formatDate,
	"stamp": func(t time.Time) string {
		return t.Format("2006-01-02 15:04")
	},
	"value":    report.FormatValue,
	"schedule": schedule.Describe,
	"dayName":  schedule.DayName,
	"hasDay": func(days []int, day int) bool {
		for _, d := range days {
			if d == day {
				return true
			}
		}
		return false
	},
	"number": func(v *float64) string {
		if v == nil {
			return ""
		}
		return submission.FormatNumber(*v)
	},
	"deref": func(v *string) string {
		if v == nil {
			return ""
		}
		return *v
	},
	"weekdays": func() []int {
		return []int{1, 2, 3, 4, 5, 6, 0}
	},
	"dict": func(pairs ...any) (map[string]any, error) {
		if len(pairs)%2 != 0 {
			return nil, errors.New("dict needs key/value pairs")
		}
		m := make(map[string]any, len(pairs)/2)
		for i := 0; i < len(pairs); i += 2 {
			key, ok := pairs[i].(string)
			if !ok {
				return nil, errors.New("dict keys must be strings")
			}
			m[key] = pairs[i+1]
		}
		return m, nil
	},
}
