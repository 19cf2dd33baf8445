package main

import (
	"math"
	"net/http"

	"github.com/Simplici0/tenderhub/internal/markup"
	"github.com/Simplici0/tenderhub/internal/store"
)

type tacticResponse struct {
	ID int64 `json:"id"`
	markup.Document
}

func (s *server) handleListTactics(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.ListTactics(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []store.TacticSummary{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *server) handleGetTactic(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	t, err := s.store.GetTactic(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tacticResponse{ID: t.ID, Document: t.Document()})
}

func (s *server) saveTactic(w http.ResponseWriter, r *http.Request, t markup.Tactic, status int) {
	id, err := s.store.SaveTactic(r.Context(), t)
	if err != nil {
		writeError(w, err)
		return
	}
	saved, err := s.store.GetTactic(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, tacticResponse{ID: saved.ID, Document: saved.Document()})
}

func (s *server) handleCreateTactic(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	t, err := markup.DecodeTactic(raw)
	if err != nil {
		writeError(w, unprocessable(err))
		return
	}
	t.ID = 0
	s.saveTactic(w, r, t, http.StatusCreated)
}

func (s *server) handleImportTactic(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	t, err := markup.DecodeTacticYAML(raw)
	if err != nil {
		writeError(w, unprocessable(err))
		return
	}
	t.ID = 0
	s.saveTactic(w, r, t, http.StatusCreated)
}

func (s *server) handleUpdateTactic(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	raw, err := readBody(r)
	if err != nil {
		writeError(w, err)
		return
	}
	t, err := markup.DecodeTactic(raw)
	if err != nil {
		writeError(w, unprocessable(err))
		return
	}
	t.ID = id
	s.saveTactic(w, r, t, http.StatusOK)
}

type previewRequest struct {
	Category   string             `json:"category"`
	BaseAmount *float64           `json:"base_amount,omitempty"`
	TenderID   int64              `json:"tender_id,omitempty"`
	Markups    map[string]float64 `json:"markups,omitempty"`
}

type previewStep struct {
	Index   int     `json:"index"`
	Name    string  `json:"name,omitempty"`
	Formula string  `json:"formula"`
	Result  float64 `json:"result"`
}

type previewResponse struct {
	Category       markup.Category `json:"category"`
	BaseAmount     float64         `json:"base_amount"`
	Steps          []previewStep   `json:"steps"`
	FinalValue     float64         `json:"final_value"`
	Coefficient    float64         `json:"coefficient"`
	MissingMarkups []string        `json:"missing_markups,omitempty"`
}

// handlePreviewTactic shows every intermediate result of one category's sequence.
// Percentages come from the tender (or the global defaults) overlaid with the
// request's markups.
func (s *server) handlePreviewTactic(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req previewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	category, err := markup.ParseCategory(req.Category)
	if err != nil {
		writeError(w, unprocessable(err))
		return
	}
	for k, v := range req.Markups {
		if err := markup.ValidatePercentage(k, v); err != nil {
			writeError(w, unprocessable(err))
			return
		}
	}

	t, err := s.store.GetTactic(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	var markups markup.PercentageSet
	if req.TenderID != 0 {
		markups, err = s.store.PercentageSet(r.Context(), req.TenderID)
	} else {
		markups, err = s.store.DefaultPercentageSet(r.Context())
	}
	if err != nil {
		writeError(w, err)
		return
	}
	for k, v := range req.Markups {
		markups[k] = v
	}

	base := t.BaseCosts[category]
	if req.BaseAmount != nil {
		base = *req.BaseAmount
	}

	res, err := t.Evaluate(category, base, markups)
	if err != nil {
		writeError(w, err)
		return
	}

	labels, err := s.store.MarkupLabels(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	seq := t.Sequence(category)
	resp := previewResponse{
		Category:       category,
		BaseAmount:     base,
		Steps:          make([]previewStep, 0, len(seq)),
		FinalValue:     finiteOrZero(res.FinalValue),
		Coefficient:    finiteOrZero(res.Coefficient),
		MissingMarkups: res.MissingMarkups,
	}
	for i, step := range seq {
		resp.Steps = append(resp.Steps, previewStep{
			Index:   i + 1,
			Name:    step.Name,
			Formula: markup.FormatStep(step, labels),
			Result:  finiteOrZero(res.StepResults[i]),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// finiteOrZero keeps NaN and Inf out of JSON, which cannot encode them.
func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
