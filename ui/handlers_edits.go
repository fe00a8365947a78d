package ui

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"goeda/domain/table"
	"goeda/internal/errors"
	"goeda/internal/imputation"
	"goeda/internal/session"
)

type renameRequest struct {
	From string `json:"from" binding:"required"`
	To   string `json:"to" binding:"required"`
}

func (s *Server) handleRename(c *gin.Context) {
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	to := strings.TrimSpace(req.To)
	if to == "" {
		s.badRequest(c, fmt.Errorf("new column name must not be blank"))
		return
	}
	s.withSession(c, func(st *session.State, _ session.Info) error {
		if err := st.RenameColumn(req.From, to); err != nil {
			return err
		}
		c.JSON(http.StatusOK, gin.H{"state": stateView(st)})
		return nil
	})
}

func (s *Server) handleDeleteColumn(c *gin.Context) {
	name := c.Param("name")
	s.withSession(c, func(st *session.State, _ session.Info) error {
		if err := st.DeleteColumn(name); err != nil {
			return err
		}
		c.JSON(http.StatusOK, gin.H{"state": stateView(st)})
		return nil
	})
}

type coerceRequest struct {
	Column string `json:"column" binding:"required"`
	Type   string `json:"type" binding:"required"`
}

func (s *Server) handleCoerce(c *gin.Context) {
	var req coerceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	to, ok := table.ParseDataType(req.Type)
	if !ok {
		s.respondError(c, errors.UnknownType(req.Column, req.Type))
		return
	}
	s.withSession(c, func(st *session.State, _ session.Info) error {
		if err := st.CoerceColumn(req.Column, to); err != nil {
			return err
		}
		c.JSON(http.StatusOK, gin.H{"state": stateView(st)})
		return nil
	})
}

// handleImpute applies one strategy. A 200 response always means every
// null in the column (or every row holding one) is gone, except for
// interpolation at the edges.
func (s *Server) handleImpute(c *gin.Context) {
	var req imputation.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	if req.Column == "" || req.Strategy == "" {
		s.badRequest(c, fmt.Errorf("column and strategy are required"))
		return
	}
	s.withSession(c, func(st *session.State, _ session.Info) error {
		res, err := st.ApplyImputation(req)
		if err != nil {
			return err
		}
		c.JSON(http.StatusOK, gin.H{"result": res, "state": stateView(st)})
		return nil
	})
}

type resetRequest struct {
	Confirm bool `json:"confirm"`
}

// handleReset discards imputations. The client must confirm explicitly.
func (s *Server) handleReset(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	if !req.Confirm {
		s.badRequest(c, fmt.Errorf("reset discards every imputation; send {\"confirm\": true}"))
		return
	}
	s.withSession(c, func(st *session.State, _ session.Info) error {
		if err := st.Reset(); err != nil {
			return err
		}
		c.JSON(http.StatusOK, gin.H{"state": stateView(st)})
		return nil
	})
}
