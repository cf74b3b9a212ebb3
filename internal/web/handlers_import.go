package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/qubit/internal/core"
	"github.com/JonMunkholm/qubit/internal/importer"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to a temp file.
const multipartMemory = 8 << 20

type failureResponse struct {
	Line  int    `json:"line"`
	Name  string `json:"name"`
	Error string `json:"error"`
	Code  string `json:"code"`
}

type importResponse struct {
	RunID    string            `json:"run_id"`
	File     string            `json:"file"`
	Imported int               `json:"imported"`
	Failed   int               `json:"failed"`
	Failures []failureResponse `json:"failures,omitempty"`
	Duration string            `json:"duration"`
}

// handleImport runs a repository spreadsheet import from the multipart
// field "file". Optional form fields: from, to, user, lang, parent_id,
// continue_on_error.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	maxSize := s.opts.Import.MaxFileSize
	if maxSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartMemory)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file provided")
		return
	}
	defer file.Close()
	if maxSize > 0 && header.Size > maxSize {
		writeError(w, http.StatusRequestEntityTooLarge, "file too large")
		return
	}

	opts, err := importOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := withRequestMetadata(r.Context(), r)
	if s.opts.Import.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Import.Timeout)
		defer cancel()
	}

	res, err := s.service.Import(ctx, file, header.Size, opts)
	if err != nil {
		respondError(w, r, err)
		return
	}

	resp := importResponse{
		RunID:    res.RunID,
		File:     header.Filename,
		Imported: res.Imported,
		Failed:   res.Failed,
		Duration: res.Duration.String(),
	}
	for _, f := range res.Failures {
		msg := core.MapError(f.Err)
		resp.Failures = append(resp.Failures, failureResponse{
			Line:  f.Line,
			Name:  f.Name,
			Error: msg.Message,
			Code:  msg.Code,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleImportStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.ImportStatus())
}

// importOptions reads the optional form fields. Zero values are filled
// from the service defaults.
func importOptions(r *http.Request) (importer.Options, error) {
	var opts importer.Options
	var err error

	if opts.From, err = formInt(r, "from"); err != nil {
		return opts, err
	}
	if opts.To, err = formInt(r, "to"); err != nil {
		return opts, err
	}
	parent, err := formInt(r, "parent_id")
	if err != nil {
		return opts, err
	}
	opts.ParentID = int64(parent)
	opts.User = r.FormValue("user")
	opts.Lang = r.FormValue("lang")

	if v := r.FormValue("continue_on_error"); v != "" {
		if opts.ContinueOnError, err = strconv.ParseBool(v); err != nil {
			return opts, errors.New("continue_on_error must be a boolean")
		}
	}
	return opts, nil
}

func formInt(r *http.Request, name string) (int, error) {
	v := r.FormValue(name)
	if v == "" {
		return 0, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil || i < 0 {
		return 0, errors.New(name + " must be a non-negative integer")
	}
	return i, nil
}
