package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/natalchart/pkg/buildinfo"
	apperr "github.com/matzehuels/natalchart/pkg/errors"
	"github.com/matzehuels/natalchart/pkg/integrations/natalcharts"
	"github.com/matzehuels/natalchart/pkg/pipeline"
	"github.com/matzehuels/natalchart/pkg/store"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 << 10

// Response headers set by the render endpoints.
const (
	HeaderRenderID = "X-Render-ID"
	HeaderCache    = "X-Cache"
	HeaderSunSign  = "X-Sun-Sign"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
	})
}

func (s *Server) handleLocate(w http.ResponseWriter, r *http.Request) {
	loc, _, err := s.runner.Resolve(r.Context(), r.URL.Query().Get("q"), nil, false)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if err := decodeBody(w, r, &opts); err != nil {
		s.writeError(w, r, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" && len(opts.Formats) > 0 {
		format = opts.Formats[0]
	}
	if format == "" {
		format = pipeline.FormatSVG
	}
	opts.Formats = []string{format}
	opts.Compact = compactFor(r, opts.Compact)

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	rec := newRecord(res, opts)
	if err := s.store.Save(r.Context(), &rec); err != nil {
		s.log.Warn("could not save render", "err", err, "request_id", RequestID(r.Context()))
	} else {
		w.Header().Set(HeaderRenderID, rec.ID)
	}
	s.writeArtifact(w, res, format)
}

func (s *Server) handleOdds(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.OddsOptions
	if err := decodeBody(w, r, &opts); err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.runner.Odds(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleListRenders(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	recs, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

func (s *Server) handleGetRender(w http.ResponseWriter, r *http.Request) {
	rec, err := s.loadRecord(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleRerender(w http.ResponseWriter, r *http.Request) {
	rec, err := s.loadRecord(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.FormatSVG
	}
	opts := pipeline.Options{
		Name: rec.Name,
		Location: &natalcharts.Location{
			Name:      rec.Place,
			Lat:       rec.Lat,
			Lon:       rec.Lon,
			UTCOffset: rec.UTCOffset,
		},
		Year:    rec.Time.Year(),
		Month:   int(rec.Time.Month()),
		Day:     rec.Time.Day(),
		Hour:    rec.Time.Hour(),
		Minute:  rec.Time.Minute(),
		Formats: []string{format},
		Compact: compactFor(r, rec.Compact),
	}
	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set(HeaderRenderID, rec.ID)
	s.writeArtifact(w, res, format)
}

func (s *Server) loadRecord(r *http.Request) (*store.Record, error) {
	id := chi.URLParam(r, "id")
	if err := store.ValidateID(id); err != nil {
		return nil, err
	}
	return s.store.Get(r.Context(), id)
}

func (s *Server) writeArtifact(w http.ResponseWriter, res *pipeline.Result, format string) {
	cacheState := "MISS"
	if res.CacheInfo.RenderHit {
		cacheState = "HIT"
	}
	w.Header().Set("Content-Type", pipeline.ContentType(format))
	w.Header().Set(HeaderCache, cacheState)
	if sign := res.Response.SunSign(); sign != "" {
		w.Header().Set(HeaderSunSign, sign)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.New(apperr.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return apperr.Wrap(apperr.ErrCodeInvalidInput, err, "invalid JSON body: %v", err)
	}
	return nil
}

func newRecord(res *pipeline.Result, opts pipeline.Options) store.Record {
	loc := res.Request.Location
	return store.Record{
		Name:      res.Request.Name,
		Place:     loc.Name,
		Lat:       loc.Lat,
		Lon:       loc.Lon,
		UTCOffset: loc.UTCOffset,
		Time:      res.Request.Time,
		Compact:   opts.Compact,
		Formats:   opts.Formats,
		ChartHash: res.ChartHash,
		SunSign:   res.Response.SunSign(),
		Planets:   res.Stats.Planets,
		Aspects:   res.Stats.Aspects,
		Empty:     res.Empty(),
	}
}
