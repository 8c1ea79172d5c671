package web

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Joseda-hg/kitchencheck/internal/checklist"
	"github.com/Joseda-hg/kitchencheck/internal/db"
	"github.com/Joseda-hg/kitchencheck/internal/model"
	"github.com/Joseda-hg/kitchencheck/internal/submission"
)

// answerRequest is one of text, number or boolean, matched to the task's
// input type, and an optional comment.
type answerRequest struct {
	submission.Answer
	Comment string `json:"comment"`
}

func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadForm, err)
	}
	return nil
}

func (s *Server) handleAPIBoard(c *gin.Context) {
	session, _ := sessionFrom(c)
	board, err := s.service.Board(c.Request.Context(), session, s.service.Now())
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, board)
}

func (s *Server) handleAPICheck(c *gin.Context) {
	session, _ := sessionFrom(c)
	var req answerRequest
	if err := bindJSON(c, &req); err != nil {
		s.apiError(c, err)
		return
	}
	result, err := s.service.Check(c.Request.Context(), session, c.Param("id"), req.Answer)
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"is_valid":    result.IsValid,
		"should_flag": result.ShouldFlag,
		"message":     result.Message,
	})
}

func (s *Server) handleAPISubmit(c *gin.Context) {
	session, _ := sessionFrom(c)
	var req answerRequest
	if err := bindJSON(c, &req); err != nil {
		s.apiError(c, err)
		return
	}
	record, err := s.service.Submit(c.Request.Context(), session, c.Param("id"), req.Answer, req.Comment)
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (s *Server) handleAPITasks(c *gin.Context) {
	session, _ := sessionFrom(c)
	tasks, err := s.store.ListTasks(c.Request.Context(), session, truthy(c.Query("include_inactive")))
	if err != nil {
		s.apiError(c, err)
		return
	}
	visible := make([]model.Task, 0, len(tasks))
	for _, task := range tasks {
		if checklist.VisibleTo(session, task) {
			visible = append(visible, task)
		}
	}
	c.JSON(http.StatusOK, gin.H{"tasks": visible, "count": len(visible)})
}

func (s *Server) handleAPITask(c *gin.Context) {
	session, _ := sessionFrom(c)
	task, err := s.store.GetTask(c.Request.Context(), session, c.Param("id"))
	if err == nil && !checklist.VisibleTo(session, task) {
		err = checklist.ErrNotFound
	}
	if err != nil {
		s.apiError(c, err)
		return
	}
	payload := gin.H{"task": task}
	if session.IsManager() {
		events, err := s.store.ListTaskEvents(c.Request.Context(), session, task.ID)
		if err != nil {
			s.apiError(c, err)
			return
		}
		payload["events"] = events
	}
	c.JSON(http.StatusOK, payload)
}

func (s *Server) handleAPICreateTask(c *gin.Context) {
	session, _ := sessionFrom(c)
	var input db.TaskInput
	if err := bindJSON(c, &input); err != nil {
		s.apiError(c, err)
		return
	}
	task, err := s.store.CreateTask(c.Request.Context(), session, input)
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (s *Server) handleAPIUpdateTask(c *gin.Context) {
	session, _ := sessionFrom(c)
	var input db.TaskInput
	if err := bindJSON(c, &input); err != nil {
		s.apiError(c, err)
		return
	}
	task, err := s.store.UpdateTask(c.Request.Context(), session, c.Param("id"), input)
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// handleAPIDeactivateTask hides the task. Its records are kept.
func (s *Server) handleAPIDeactivateTask(c *gin.Context) {
	session, _ := sessionFrom(c)
	task, err := s.store.SetTaskActive(c.Request.Context(), session, c.Param("id"), false)
	if err != nil {
		s.apiError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) handleAPIRecords(c *gin.Context) {
	session, _ := sessionFrom(c)
	filter, err := logFilterFromQuery(c, s.loc)
	if err != nil {
		s.apiError(c, err)
		return
	}
	records, err := s.service.Log(c.Request.Context(), session, filter)
	if err != nil {
		s.apiError(c, err)
		return
	}
	if records == nil {
		records = []model.RecordWithTask{}
	}
	c.JSON(http.StatusOK, gin.H{
		"records": records,
		"count":   len(records),
		"filter":  filter,
	})
}
