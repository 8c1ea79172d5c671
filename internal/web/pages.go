package web

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Joseda-hg/kitchencheck/internal/auth"
	"github.com/Joseda-hg/kitchencheck/internal/checklist"
	"github.com/Joseda-hg/kitchencheck/internal/db"
	"github.com/Joseda-hg/kitchencheck/internal/model"
	"github.com/Joseda-hg/kitchencheck/internal/report"
	"github.com/Joseda-hg/kitchencheck/internal/submission"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	pdfContentType  = "application/pdf"
)

func (s *Server) handleLoginPage(c *gin.Context) {
	if _, ok := sessionFrom(c); ok {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	c.HTML(http.StatusOK, "login.tmpl", gin.H{"Session": auth.Session{}})
}

func (s *Server) handleLogin(c *gin.Context) {
	email := c.PostForm("email")
	user, err := s.store.Authenticate(c.Request.Context(), email, c.PostForm("password"))
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			log.Printf("login %s: %v", email, err)
		}
		c.HTML(status, "login.tmpl", gin.H{
			"Session": auth.Session{},
			"Email":   email,
			"Error":   publicMessage(status, err),
		})
		return
	}

	token, err := s.tokens.Issue(auth.SessionFor(user))
	if err != nil {
		s.renderError(c, err)
		return
	}
	s.setCookie(c, token)
	c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) handleLogout(c *gin.Context) {
	s.clearCookie(c)
	c.Redirect(http.StatusSeeOther, "/login")
}

// submitForm keeps a rejected submission so it can be shown again.
type submitForm struct {
	TaskID  string
	Value   string
	Comment string
	Message string
	Flag    bool
}

func (s *Server) handleBoard(c *gin.Context) {
	s.renderBoard(c, http.StatusOK, submitForm{})
}

func (s *Server) renderBoard(c *gin.Context, status int, form submitForm) {
	session, _ := sessionFrom(c)
	now := s.service.Now()
	board, err := s.service.Board(c.Request.Context(), session, now)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.HTML(status, "board.tmpl", gin.H{
		"Session": session,
		"Board":   board,
		"Now":     now,
		"Form":    form,
	})
}

func (s *Server) handleSubmit(c *gin.Context) {
	session, _ := sessionFrom(c)
	taskID := c.Param("id")

	task, err := s.store.GetTask(c.Request.Context(), session, taskID)
	if err != nil {
		s.renderError(c, err)
		return
	}

	form := submitForm{TaskID: taskID, Value: c.PostForm("value"), Comment: c.PostForm("comment")}
	answer := submission.ParseAnswer(task.InputType, form.Value)
	if _, err := s.service.Submit(c.Request.Context(), session, taskID, answer, form.Comment); err != nil {
		var subErr *checklist.SubmissionError
		if errors.As(err, &subErr) {
			form.Message = subErr.Message()
			form.Flag = subErr.Result.ShouldFlag
			s.renderBoard(c, http.StatusUnprocessableEntity, form)
			return
		}
		s.renderError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func newTaskForm() db.TaskInput {
	return db.TaskInput{
		InputType:    model.InputBoolean,
		ScheduleType: "daily",
		Time:         "09:00",
		AssignedRole: model.RoleStaff,
	}
}

func (s *Server) handleTasks(c *gin.Context) {
	s.renderTasks(c, http.StatusOK, newTaskForm(), "")
}

func (s *Server) renderTasks(c *gin.Context, status int, form db.TaskInput, message string) {
	session, _ := sessionFrom(c)
	tasks, err := s.store.ListTasks(c.Request.Context(), session, true)
	if err != nil {
		s.renderError(c, err)
		return
	}
	seeded, _ := strconv.Atoi(c.Query("seeded"))
	c.HTML(status, "tasks.tmpl", gin.H{
		"Session": session,
		"Tasks":   tasks,
		"Form":    form,
		"Error":   message,
		"Seeded":  c.Query("seeded") != "",
		"Count":   seeded,
	})
}

func (s *Server) handleCreateTask(c *gin.Context) {
	session, _ := sessionFrom(c)
	input, err := taskInputFromForm(c)
	if err == nil {
		_, err = s.store.CreateTask(c.Request.Context(), session, input)
	}
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.renderError(c, err)
			return
		}
		s.renderTasks(c, status, input, publicMessage(status, err))
		return
	}
	c.Redirect(http.StatusSeeOther, "/manage/tasks")
}

func (s *Server) handleEditTask(c *gin.Context) {
	session, _ := sessionFrom(c)
	task, err := s.store.GetTask(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		s.renderError(c, err)
		return
	}
	s.renderTask(c, http.StatusOK, task, db.TaskInputFrom(task), "")
}

func (s *Server) renderTask(c *gin.Context, status int, task model.Task, form db.TaskInput, message string) {
	session, _ := sessionFrom(c)
	events, err := s.store.ListTaskEvents(c.Request.Context(), session, task.ID)
	if err != nil {
		s.renderError(c, err)
		return
	}
	c.HTML(status, "task.tmpl", gin.H{
		"Session": session,
		"Task":    task,
		"Form":    form,
		"Events":  events,
		"Error":   message,
	})
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	session, _ := sessionFrom(c)
	taskID := c.Param("id")
	task, err := s.store.GetTask(c.Request.Context(), session, taskID)
	if err != nil {
		s.renderError(c, err)
		return
	}

	input, err := taskInputFromForm(c)
	if err == nil {
		_, err = s.store.UpdateTask(c.Request.Context(), session, taskID, input)
	}
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.renderError(c, err)
			return
		}
		s.renderTask(c, status, task, input, publicMessage(status, err))
		return
	}
	c.Redirect(http.StatusSeeOther, "/manage/tasks/"+taskID)
}

func (s *Server) handleSetActive(active bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, _ := sessionFrom(c)
		if _, err := s.store.SetTaskActive(c.Request.Context(), session, c.Param("id"), active); err != nil {
			s.renderError(c, err)
			return
		}
		c.Redirect(http.StatusSeeOther, "/manage/tasks")
	}
}

func (s *Server) handleSeed(c *gin.Context) {
	session, _ := sessionFrom(c)
	created, err := s.store.SeedTasks(c.Request.Context(), session)
	if err != nil {
		s.renderError(c, err)
		return
	}
	log.Printf("seed: %s added %d default tasks", session.FullName, len(created))
	c.Redirect(http.StatusSeeOther, fmt.Sprintf("/manage/tasks?seeded=%d", len(created)))
}

func (s *Server) handleLog(c *gin.Context) {
	session, _ := sessionFrom(c)
	filter, records, err := s.filteredLog(c)
	if err != nil {
		s.renderError(c, err)
		return
	}
	tasks, err := s.store.ListTasks(c.Request.Context(), session, true)
	if err != nil {
		s.renderError(c, err)
		return
	}

	flagged := 0
	for _, record := range records {
		if record.Flagged {
			flagged++
		}
	}
	c.HTML(http.StatusOK, "log.tmpl", gin.H{
		"Session": session,
		"Records": records,
		"Tasks":   tasks,
		"Start":   formatDate(filter.Start),
		"End":     inclusiveEnd(filter.End),
		"TaskID":  filter.TaskID,
		"Flagged": filter.FlaggedOnly,
		"XLSX":    exportLink("xlsx", c.Request.URL.Query()),
		"PDF":     exportLink("pdf", c.Request.URL.Query()),
		"Total":   len(records),
		"Alerts":  flagged,
	})
}

func (s *Server) filteredLog(c *gin.Context) (model.LogFilter, []model.RecordWithTask, error) {
	session, _ := sessionFrom(c)
	filter, err := logFilterFromQuery(c, s.loc)
	if err != nil {
		return filter, nil, err
	}
	records, err := s.service.Log(c.Request.Context(), session, filter)
	return filter, records, err
}

func (s *Server) handleExportXLSX(c *gin.Context) {
	_, records, err := s.filteredLog(c)
	if err != nil {
		s.renderError(c, err)
		return
	}
	var buf bytes.Buffer
	if err := report.WriteXLSX(&buf, records); err != nil {
		s.renderError(c, err)
		return
	}
	s.sendFile(c, xlsxContentType, report.Filename(s.service.Now(), "xlsx"), buf.Bytes())
}

func (s *Server) handleExportPDF(c *gin.Context) {
	session, _ := sessionFrom(c)
	filter, records, err := s.filteredLog(c)
	if err != nil {
		s.renderError(c, err)
		return
	}

	taskTitle := ""
	if filter.TaskID != "" {
		if task, err := s.store.GetTask(c.Request.Context(), session, filter.TaskID); err == nil {
			taskTitle = task.Title
		}
	}

	var buf bytes.Buffer
	if err := report.WritePDF(&buf, "Compliance log", report.DescribeFilter(filter, taskTitle), records); err != nil {
		s.renderError(c, err)
		return
	}
	s.sendFile(c, pdfContentType, report.Filename(s.service.Now(), "pdf"), buf.Bytes())
}

func exportLink(ext string, query url.Values) template.URL {
	link := "/manage/log/export." + ext
	if encoded := query.Encode(); encoded != "" {
		link += "?" + encoded
	}
	return template.URL(link)
}

func (s *Server) sendFile(c *gin.Context, contentType, filename string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}
