package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/debemdeboas/campaign-editor/internal/config"
	"github.com/debemdeboas/campaign-editor/internal/editor"
	"github.com/debemdeboas/campaign-editor/internal/gallery"
	"github.com/debemdeboas/campaign-editor/internal/model"
	"github.com/debemdeboas/campaign-editor/internal/render"
	"github.com/debemdeboas/campaign-editor/internal/repository"
	"github.com/debemdeboas/campaign-editor/internal/routes"
	"github.com/debemdeboas/campaign-editor/internal/surface"
	"github.com/debemdeboas/campaign-editor/internal/util"
)

type campaignResponse struct {
	ID           model.CampaignID `json:"id"`
	Content      model.Content    `json:"content"`
	ContentHash  string           `json:"contentHash"`
	CreatedDate  time.Time        `json:"createdDate"`
	ModifiedDate time.Time        `json:"modifiedDate"`
}

type renameRequest struct {
	Name string `json:"name"`
}

func campaignID(r *http.Request) model.CampaignID {
	return model.CampaignID(chi.URLParam(r, routes.ParamCampaignID))
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(config.HCType, config.CTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (s *Server) serveHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) serveCampaignList(w http.ResponseWriter, r *http.Request) {
	campaigns, err := s.repo.ListCampaigns(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list campaigns")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if campaigns == nil {
		campaigns = []model.CampaignSummary{}
	}
	s.writeJSON(w, http.StatusOK, campaigns)
}

// loadCampaign writes the error response itself and returns nil when the
// campaign cannot be served.
func (s *Server) loadCampaign(w http.ResponseWriter, r *http.Request) *model.StoredCampaign {
	id := campaignID(r)
	stored, err := s.repo.GetContent(r.Context(), id)
	if errors.Is(err, repository.ErrCampaignNotFound) {
		http.Error(w, config.HTTPErrCampaignNotFound, http.StatusNotFound)
		return nil
	}
	if err != nil {
		s.log.Error().Err(err).Str("campaign_id", string(id)).Msg("Failed to load campaign")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return nil
	}
	return stored
}

func (s *Server) serveCampaign(w http.ResponseWriter, r *http.Request) {
	stored := s.loadCampaign(w, r)
	if stored == nil {
		return
	}

	w.Header().Set(config.HETag, strconv.Quote(stored.ContentHash))
	s.writeJSON(w, http.StatusOK, campaignResponse{
		ID:           stored.ID,
		Content:      stored.Content,
		ContentHash:  stored.ContentHash,
		CreatedDate:  stored.CreatedDate,
		ModifiedDate: stored.ModifiedDate,
	})
}

func (s *Server) serveCampaignDelete(w http.ResponseWriter, r *http.Request) {
	id := campaignID(r)
	err := s.repo.DeleteCampaign(r.Context(), id)
	if errors.Is(err, repository.ErrCampaignNotFound) {
		http.Error(w, config.HTTPErrCampaignNotFound, http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error().Err(err).Str("campaign_id", string(id)).Msg("Failed to delete campaign")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) style(r *http.Request) string {
	if style := r.URL.Query().Get(routes.QueryStyle); render.IsStyle(style) {
		return style
	}
	return s.sourceStyle
}

func (s *Server) serveCampaignSource(w http.ResponseWriter, r *http.Request) {
	stored := s.loadCampaign(w, r)
	if stored == nil {
		return
	}

	markup := ""
	if stored.Content != nil {
		markup = stored.Content.HTML()
	}

	source, err := render.HighlightMarkupCached(markup, stored.ContentHash, s.style(r))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set(config.HCType, config.CTypeHTML)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(source))
}

func (s *Server) serveStyleCSS(w http.ResponseWriter, r *http.Request) {
	style := chi.URLParam(r, routes.ParamStyle)
	if !render.IsStyle(style) {
		http.NotFound(w, r)
		return
	}

	css := []byte(render.StyleCSS(style))
	w.Header().Set(config.HCType, config.CTypeCSS)
	w.Header().Set(config.HCacheControl, "public, max-age=3600")
	w.Header().Set(config.HETag, util.ContentHash(css))
	w.WriteHeader(http.StatusOK)
	w.Write(css)
}

// session writes a 404 and returns nil when no editor is open on the campaign.
func (s *Server) session(w http.ResponseWriter, r *http.Request) *editor.Session {
	sess, ok := s.sessions.Get(campaignID(r))
	if !ok {
		http.Error(w, config.HTTPErrSessionNotOpen, http.StatusNotFound)
		return nil
	}
	return sess
}

func (s *Server) serveCampaignRename(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sess := s.session(w, r)
	if sess == nil {
		return
	}
	sess.SetName(req.Name)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) serveSave(w http.ResponseWriter, r *http.Request) {
	force := false
	if v := r.URL.Query().Get(routes.QueryForce); v != "" {
		var err error
		if force, err = strconv.ParseBool(v); err != nil {
			http.Error(w, "Invalid force parameter", http.StatusBadRequest)
			return
		}
	}

	sess := s.session(w, r)
	if sess == nil {
		return
	}

	if force {
		sess.Orchestrator.ForceSave()
	} else {
		sess.Orchestrator.SmartSave()
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) serveExport(w http.ResponseWriter, r *http.Request) {
	sess := s.session(w, r)
	if sess == nil {
		return
	}

	ctx := r.Context()
	if s.exportTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.exportTimeout)
		defer cancel()
	}

	content, err := sess.Orchestrator.ExportContent(ctx)
	if err != nil {
		s.log.Warn().Err(err).Str("campaign_id", string(sess.ID)).Msg("Export failed")
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	if content == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.writeJSON(w, http.StatusOK, content)
}

func (s *Server) serveExportReply(w http.ResponseWriter, r *http.Request) {
	var reply surface.Reply
	if err := json.NewDecoder(r.Body).Decode(&reply); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sess := s.session(w, r)
	if sess == nil {
		return
	}

	err := sess.Resolve(chi.URLParam(r, routes.ParamRequestID), reply)
	if errors.Is(err, surface.ErrUnknownRequest) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) serveImageList(w http.ResponseWriter, r *http.Request) {
	if s.gallery == nil {
		http.Error(w, "Gallery not configured", http.StatusServiceUnavailable)
		return
	}

	q := gallery.Query{
		SearchTerm:   r.URL.Query().Get(routes.QuerySearchTerm),
		Continuation: r.URL.Query().Get(routes.QueryContinuation),
	}
	page, err := s.gallery.List(r.Context(), q)
	if err != nil {
		s.log.Warn().Err(err).Msg("Gallery listing failed")
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	if page.Items == nil {
		page.Items = []model.ImageItem{}
	}
	s.writeJSON(w, http.StatusOK, page)
}

func (s *Server) serveImageUpload(w http.ResponseWriter, r *http.Request) {
	if s.gallery == nil {
		http.Error(w, "Gallery not configured", http.StatusServiceUnavailable)
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		http.Error(w, "Invalid upload", http.StatusBadRequest)
		return
	}
	file, hdr, err := r.FormFile(routes.FormFieldImage)
	if err != nil {
		http.Error(w, "Missing image file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if err := s.gallery.Upload(r.Context(), hdr.Filename, file, hdr.Size); err != nil {
		s.log.Warn().Err(err).Str("name", hdr.Filename).Msg("Image upload failed")
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	s.log.Info().Str("name", hdr.Filename).Int64("size", hdr.Size).Msg("Image uploaded")
	w.WriteHeader(http.StatusCreated)
}

func (s *Server) serveSettings(w http.ResponseWriter, r *http.Request) {
	if s.settings == nil {
		http.Error(w, "Editor settings not configured", http.StatusServiceUnavailable)
		return
	}

	settings, err := s.settings.Get(r.Context())
	if err != nil {
		s.log.Warn().Err(err).Msg("Editor settings unavailable")
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	s.writeJSON(w, http.StatusOK, settings)
}
