package ui

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"goeda/adapters/delimited"
	"goeda/adapters/excel"
	"goeda/domain/core"
	"goeda/domain/table"
	"goeda/internal/classifier"
	"goeda/internal/errors"
	"goeda/internal/session"
)

// uploadOptions are the read settings for one uploaded file.
type uploadOptions struct {
	filename   string
	sep        rune
	parser     table.Parser
	sheet      string
	timestamps bool
	plan       table.Plan
}

func isSpreadsheet(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}

func (s *Server) parseUploadOptions(c *gin.Context, filename string) (uploadOptions, error) {
	opts := uploadOptions{filename: filename, sheet: c.PostForm("sheet")}

	sepRaw, sepGiven := c.GetPostForm("separator")
	if !sepGiven {
		sepRaw = s.opts.Data.Separator
	}
	sep, err := delimited.ParseSeparator(sepRaw)
	if err != nil {
		return opts, err
	}
	if !sepGiven {
		sep = delimited.SeparatorFor(filename, sep)
	}
	opts.sep = sep

	dec := c.PostForm("decimal")
	if dec == "" {
		dec = s.opts.Data.Decimal
	}
	if dec == "" {
		dec = "."
	}
	decRune, size := utf8.DecodeRuneInString(dec)
	if size != len(dec) {
		return opts, errors.InvalidInput(fmt.Sprintf("decimal marker %q must be a single character", dec))
	}
	if decRune == sep {
		return opts, errors.InvalidInput("decimal marker and separator must differ")
	}
	opts.parser = table.Parser{
		Decimal:     decRune,
		TimeLayouts: s.opts.Data.TimeLayouts,
		NullTokens:  s.opts.Data.NullTokens,
	}

	opts.timestamps = s.opts.Data.InferTimestamps
	if raw := c.PostForm("infer_timestamps"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, errors.InvalidInput("infer_timestamps must be true or false")
		}
		opts.timestamps = b
	}

	if raw := c.PostForm("types"); raw != "" {
		var types map[string]string
		if err := json.Unmarshal([]byte(raw), &types); err != nil {
			return opts, errors.InvalidInput("types must be a JSON object of column to type")
		}
		opts.plan = make(table.Plan, len(types))
		for col, typ := range types {
			coercion, err := table.ParseCoercion(typ)
			if err != nil {
				return opts, errors.UnknownType(col, typ)
			}
			opts.plan[col] = coercion
		}
	}
	return opts, nil
}

// readUpload parses the multipart "file" field into a raw table. At most
// MaxConcurrentUploads files are parsed at once.
func (s *Server) readUpload(c *gin.Context) (*table.Raw, uploadOptions, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, int64(s.maxUploadBytes())+1<<20)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, uploadOptions{}, err
		}
		return nil, uploadOptions{}, errors.InvalidInput("a multipart file field named \"file\" is required")
	}
	opts, err := s.parseUploadOptions(c, fh.Filename)
	if err != nil {
		return nil, opts, err
	}

	if err := s.uploads.Acquire(c.Request.Context(), 1); err != nil {
		return nil, opts, errors.Cancelled("upload cancelled while waiting for a parser slot", err)
	}
	defer s.uploads.Release(1)

	f, err := fh.Open()
	if err != nil {
		return nil, opts, errors.LoadError("failed to open upload", err)
	}
	defer f.Close()

	var src io.Reader = f
	if isSpreadsheet(fh.Filename) {
		raw, err := excel.NewReader(opts.sheet).Read(src)
		return raw, opts, err
	}
	raw, err := delimited.Read(src, opts.sep)
	return raw, opts, err
}

type columnPreview struct {
	Name         string         `json:"name"`
	InferredType table.DataType `json:"inferred_type"`
}

func typeOptions() []string {
	out := make([]string, 0, len(table.DataTypes)+1)
	for _, t := range table.DataTypes {
		out = append(out, string(t))
	}
	return append(out, string(table.Delete))
}

// handlePreview parses an upload without creating a session so the client
// can choose per-column types first.
func (s *Server) handlePreview(c *gin.Context) {
	raw, opts, err := s.readUpload(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	inferred := raw.Infer(opts.parser, opts.timestamps)
	cols := make([]columnPreview, len(raw.Header))
	for i, name := range raw.Header {
		cols[i] = columnPreview{Name: name, InferredType: inferred[i]}
	}
	n := s.previewRows()
	if n > len(raw.Records) {
		n = len(raw.Records)
	}
	c.JSON(http.StatusOK, gin.H{
		"filename":     opts.filename,
		"columns":      cols,
		"rows":         raw.Records[:n],
		"total_rows":   len(raw.Records),
		"type_options": typeOptions(),
	})
}

func (s *Server) handleTypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"types": typeOptions()})
}

// handleCreateSession builds the baseline from an upload and its coercion
// plan.
func (s *Server) handleCreateSession(c *gin.Context) {
	raw, opts, err := s.readUpload(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	t, err := raw.Build(opts.parser, opts.plan, opts.timestamps)
	if err != nil {
		s.respondError(c, err)
		return
	}
	st := s.newState(opts.sep, opts.parser)
	info, err := s.store.Create(st, t, opts.filename)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"session": info,
		"state":   stateView(st),
	})
}

func stateView(st *session.State) gin.H {
	cur := st.Current()
	missing := st.MissingReport()
	if missing == nil {
		missing = []session.MissingEntry{}
	}
	return gin.H{
		"version":   st.Version(),
		"is_edited": st.IsEdited(),
		"rows":      cur.NumRows(),
		"columns":   cur.Names(),
		"missing":   missing,
	}
}

func (s *Server) handleSessionInfo(c *gin.Context) {
	s.withSession(c, func(st *session.State, info session.Info) error {
		c.JSON(http.StatusOK, gin.H{"session": info, "state": stateView(st)})
		return nil
	})
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	id, err := core.ParseSessionID(c.Param("id"))
	if err != nil || !s.store.Delete(id) {
		s.respondError(c, errors.NotFound("session"))
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) previewRows() int {
	if s.opts.Limits.PreviewRows > 0 {
		return s.opts.Limits.PreviewRows
	}
	return 20
}

type columnHeader struct {
	Name string         `json:"name"`
	Type table.DataType `json:"type"`
}

// handleTable returns the head of the current table; rows=all returns
// everything.
func (s *Server) handleTable(c *gin.Context) {
	n := s.previewRows()
	switch raw := c.Query("rows"); raw {
	case "":
	case "all":
		n = -1
	default:
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			s.badRequest(c, fmt.Errorf("rows must be a non-negative integer or \"all\""))
			return
		}
		n = v
	}

	s.withSession(c, func(st *session.State, _ session.Info) error {
		cur := st.Current()
		head := cur.Head(n)
		cols := head.Columns()
		headers := make([]columnHeader, len(cols))
		for i, col := range cols {
			headers[i] = columnHeader{Name: col.Name, Type: col.Type}
		}
		rows := make([][]table.Value, head.NumRows())
		for r := range rows {
			rows[r] = head.Row(r)
		}
		c.JSON(http.StatusOK, gin.H{
			"version":    st.Version(),
			"is_edited":  st.IsEdited(),
			"columns":    headers,
			"rows":       rows,
			"total_rows": cur.NumRows(),
		})
		return nil
	})
}

type strategyView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CrossColumn bool   `json:"cross_column"`
	NeedsValue  bool   `json:"needs_value"`
}

type columnView struct {
	Name       string             `json:"name"`
	Type       table.DataType     `json:"type"`
	Semantic   table.SemanticType `json:"semantic"`
	Nulls      int                `json:"nulls"`
	Strategies []strategyView     `json:"strategies"`
}

func (s *Server) handleColumns(c *gin.Context) {
	s.withSession(c, func(st *session.State, _ session.Info) error {
		ds, err := st.Descriptors()
		if err != nil {
			return err
		}
		out := make([]columnView, len(ds))
		for i, d := range ds {
			strategies := make([]strategyView, len(d.Strategies))
			for j, sg := range d.Strategies {
				strategies[j] = strategyView{
					ID:          string(sg),
					Name:        sg.DisplayName(),
					CrossColumn: sg.CrossColumn(),
					NeedsValue:  sg.NeedsValue(),
				}
			}
			out[i] = columnView{Name: d.Name, Type: d.Type, Semantic: d.Semantic, Nulls: d.Nulls, Strategies: strategies}
		}
		c.JSON(http.StatusOK, gin.H{"columns": out})
		return nil
	})
}

func (s *Server) handleSelect(c *gin.Context) {
	sel, err := classifier.ParseSelector(c.Param("kind"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.withSession(c, func(st *session.State, _ session.Info) error {
		names, err := classifier.Select(st.Current(), sel)
		if err != nil {
			return err
		}
		if names == nil {
			names = []string{}
		}
		c.JSON(http.StatusOK, gin.H{"selection": sel, "columns": names})
		return nil
	})
}

func (s *Server) handleMissing(c *gin.Context) {
	s.withSession(c, func(st *session.State, _ session.Info) error {
		report := st.MissingReport()
		if report == nil {
			report = []session.MissingEntry{}
		}
		c.JSON(http.StatusOK, gin.H{"missing": report, "rows": st.Current().NumRows()})
		return nil
	})
}
