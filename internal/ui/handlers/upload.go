package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/constella-app/constella-web/internal/logger"
	"github.com/constella-app/constella-web/internal/skills"
	"github.com/constella-app/constella-web/internal/ui/client"
	"github.com/constella-app/constella-web/internal/wizard"
)

const (
	msgNoFile          = "Please choose a file to upload."
	msgUnsupportedFile = "Unsupported file type. Please upload a PDF, DOC, DOCX or TXT file."
	msgNoSkillsFound   = "No skills were found in %s. You can add them manually."
	msgSkillsExtracted = "Skills extracted from %s."
	msgExtractFailed   = "We couldn't extract skills from your CV. Please add them manually."
)

// handleUpload attaches a CV to the wizard and merges the skills found in it.
//
// For visitors with a session token the remote extraction and the local keyword scan run concurrently
// outside the store lock; anonymous visitors get the keyword scan only.
// Their results are unioned into the current state, so skills added while the upload was
// in flight are kept.
func (h *HandlerService) handleUpload(w http.ResponseWriter, r *http.Request, id string) {
	reqLogger := logger.ContextRequestLogger(r.Context())

	inputs := inputReducer(r.PostForm)
	fail := func(msg string) {
		state, err := h.Store.Update(r.Context(), id, func(s wizard.State) wizard.State {
			return wizard.ShowMessage(inputs(s), true, msg)
		})
		if err != nil {
			reqLogger.Error("Failed to update wizard state", slog.String("error", err.Error()))
			h.RenderError(w, r, msgInternalError)
			return
		}
		h.renderSignup(w, r, state)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		fail(msgNoFile)
		return
	}
	defer file.Close()

	if !skills.AllowedFile(header.Filename) {
		fail(msgUnsupportedFile)
		return
	}
	if h.MaxUploadBytes > 0 && header.Size > h.MaxUploadBytes {
		fail(fmt.Sprintf("File is too large. Maximum size is %s.", formatUploadLimit(h.MaxUploadBytes)))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		reqLogger.Error("Failed to read uploaded file", slog.String("error", err.Error()))
		fail(msgNoFile)
		return
	}

	ref := wizard.FileRef{Name: header.Filename, Size: int64(len(data))}
	if _, err := h.Store.Update(r.Context(), id, func(s wizard.State) wizard.State {
		return wizard.AttachFile(inputs(s), ref)
	}); err != nil {
		reqLogger.Error("Failed to update wizard state", slog.String("error", err.Error()))
		h.RenderError(w, r, msgInternalError)
		return
	}

	logger.ContextWithLogAttrs(r.Context(),
		slog.String("upload_name", header.Filename),
		slog.Int("upload_bytes", len(data)),
	)

	// the extraction API needs a bearer token, visitors without a session get the local scan only
	var extractor skills.Extractor
	if _, ok := client.ContextAccessToken(r.Context()); ok {
		extractor = h.ApiClient
	}

	extraction, err := skills.Extract(r.Context(), extractor, skills.Document{Name: header.Filename, Data: data})
	if err != nil {
		// the request was cancelled, nobody is waiting for the response
		reqLogger.Warn("Skill extraction abandoned", slog.String("error", err.Error()))
		return
	}

	if extraction.LocalErr != nil && !errors.Is(extraction.LocalErr, skills.ErrUnsupportedDocument) {
		reqLogger.Debug("Local keyword scan failed", slog.String("error", extraction.LocalErr.Error()))
	}

	found := extraction.Set()
	isError := false
	var msg string
	switch {
	case extraction.RemoteErr != nil:
		isError = true
		msg = userMessage(r, extraction.RemoteErr, msgExtractFailed, "CV extraction")
	case found.Len() == 0:
		msg = fmt.Sprintf(msgNoSkillsFound, header.Filename)
	default:
		msg = fmt.Sprintf(msgSkillsExtracted, header.Filename)
	}

	state, err := h.Store.Update(r.Context(), id, func(s wizard.State) wizard.State {
		s = wizard.MergeSkills(s, found)
		return wizard.ShowMessage(s, isError, msg)
	})
	if err != nil {
		reqLogger.Error("Failed to update wizard state", slog.String("error", err.Error()))
		h.RenderError(w, r, msgInternalError)
		return
	}

	h.renderSignup(w, r, state)
}
