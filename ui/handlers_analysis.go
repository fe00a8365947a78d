package ui

import (
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"goeda/domain/core"
	"goeda/internal/classifier"
	"goeda/internal/session"
	"goeda/internal/summary"
)

const (
	formatCSV  = "csv"
	formatXLSX = "xlsx"
)

var contentTypes = map[string]string{
	formatCSV:  "text/csv; charset=utf-8",
	formatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// splitList accepts both repeated and comma separated query values.
func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func exportFilename(name, format string) string {
	ext := "." + format
	if strings.EqualFold(filepath.Ext(name), ext) {
		return name
	}
	return strings.TrimSuffix(name, filepath.Ext(name)) + ext
}

// handleExport streams the current table. The ETag changes with every
// committed transition.
func (s *Server) handleExport(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", formatCSV))
	name := c.Query("filename")
	if name == "" {
		name = s.opts.Data.ExportFilename
	}
	if name == "" {
		name = "data.csv"
	}
	name = exportFilename(filepath.Base(name), format)
	columns := splitList(c.QueryArray("columns"))

	s.withSession(c, func(st *session.State, _ session.Info) error {
		b, err := st.Export(format, columns)
		if err != nil {
			return err
		}
		etag := fmt.Sprintf("%q", core.NewHash(b).Short(16))
		if c.GetHeader("If-None-Match") == etag {
			c.Status(http.StatusNotModified)
			return nil
		}
		c.Header("ETag", etag)
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		c.Data(http.StatusOK, contentTypes[format], b)
		return nil
	})
}

type summaryRequest struct {
	Columns []string `json:"columns"`
	Select  string   `json:"select"`
}

func (s *Server) bindSummaryRequest(c *gin.Context) (summaryRequest, error) {
	var req summaryRequest
	if c.Request.Method == http.MethodPost {
		if err := c.ShouldBindJSON(&req); err != nil {
			return req, err
		}
		return req, nil
	}
	req.Columns = splitList(c.QueryArray("columns"))
	req.Select = c.Query("select")
	return req, nil
}

// resolveColumns turns an explicit list or a type selector into column
// names. Both empty means every column.
func resolveColumns(st *session.State, req summaryRequest) ([]string, error) {
	if len(req.Columns) > 0 || req.Select == "" {
		return req.Columns, nil
	}
	sel, err := classifier.ParseSelector(req.Select)
	if err != nil {
		return nil, err
	}
	names, err := classifier.Select(st.Current(), sel)
	if err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

func (s *Server) summarize(c *gin.Context, fn func(sum *summary.Summary) error) {
	req, err := s.bindSummaryRequest(c)
	if err != nil {
		s.badRequest(c, err)
		return
	}
	s.withSession(c, func(st *session.State, _ session.Info) error {
		cols, err := resolveColumns(st, req)
		if err != nil {
			return err
		}
		if cols != nil && len(cols) == 0 {
			return fn(&summary.Summary{Records: []summary.Record{}})
		}
		sum, err := s.summarizer.Summarize(st.Current(), cols)
		if err != nil {
			return err
		}
		return fn(sum)
	})
}

func (s *Server) handleSummary(c *gin.Context) {
	s.summarize(c, func(sum *summary.Summary) error {
		c.JSON(http.StatusOK, sum)
		return nil
	})
}

func (s *Server) handleSummaryCSV(c *gin.Context) {
	s.summarize(c, func(sum *summary.Summary) error {
		var buf bytes.Buffer
		if err := summary.WriteRecordsCSV(&buf, sum.Records); err != nil {
			return err
		}
		c.Header("Content-Disposition", `attachment; filename="summary.csv"`)
		c.Data(http.StatusOK, contentTypes[formatCSV], buf.Bytes())
		return nil
	})
}

// handlePairwise runs the test implied by the semantic types of a and b.
func (s *Server) handlePairwise(c *gin.Context) {
	a, b := c.Query("a"), c.Query("b")
	if a == "" || b == "" {
		s.badRequest(c, fmt.Errorf("query parameters a and b are required"))
		return
	}
	s.withSession(c, func(st *session.State, _ session.Info) error {
		res, err := s.summarizer.SummarizePairwise(st.Current(), a, b)
		if err != nil {
			return err
		}
		c.JSON(http.StatusOK, res)
		return nil
	})
}

// handleReport renders every column's statistics, the missing-value
// table and any requested pairs (pair=a,b) as an HTML page.
func (s *Server) handleReport(c *gin.Context) {
	var pairs []summary.Pair
	for _, raw := range c.QueryArray("pair") {
		a, b, ok := strings.Cut(raw, ",")
		if !ok {
			s.badRequest(c, fmt.Errorf("pair must be two column names separated by a comma"))
			return
		}
		pairs = append(pairs, summary.Pair{A: strings.TrimSpace(a), B: strings.TrimSpace(b)})
	}
	s.withSession(c, func(st *session.State, info session.Info) error {
		report, err := s.summarizer.Report(st.Current(), info.Source, pairs)
		if err != nil {
			return err
		}
		if c.Query("format") == "md" {
			c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(report.Markdown()))
			return nil
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", report.HTML())
		return nil
	})
}
