package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tiwariParth/taskboard/internal/app"
	"github.com/tiwariParth/taskboard/internal/models"
)

const maxBodySize = 64 << 10 // 64KB

func (s *Server) handleHealth(c *gin.Context) {
	if err := s.session.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	status := gin.H{"status": "ok"}
	if err := s.session.LastPersistError(); err != nil {
		status["warning"] = err.Error()
	}
	c.JSON(http.StatusOK, status)
}

func (s *Server) handleList(c *gin.Context) {
	filter, err := models.ParseFilter(c.Query("filter"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, s.session.Board(filter))
}

func (s *Server) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.session.Stats())
}

func (s *Server) handleGet(c *gin.Context) {
	id := c.Param("id")
	t, ok := s.session.Store().Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": app.ErrTaskNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) handleCreate(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)

	var in models.TaskInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	t, errs := s.session.AddTask(c.Request.Context(), in)
	if errs != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": errs})
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (s *Server) handleUpdate(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)

	var u models.Update
	if err := c.ShouldBindJSON(&u); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	t, err := s.session.Edit(c.Request.Context(), c.Param("id"), u)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) handleToggle(c *gin.Context) {
	t, err := s.session.Toggle(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) handleDelete(c *gin.Context) {
	if err := s.session.Delete(c.Request.Context(), c.Param("id")); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) writeError(c *gin.Context, err error) {
	var fieldErrs models.FieldErrors
	switch {
	case errors.As(err, &fieldErrs):
		c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrs})
	case errors.Is(err, app.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": app.ErrTaskNotFound.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
