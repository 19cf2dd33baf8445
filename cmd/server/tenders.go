package main

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Simplici0/tenderhub/internal/export"
	"github.com/Simplici0/tenderhub/internal/markup"
	"github.com/Simplici0/tenderhub/internal/store"
)

func (s *server) handleListMarkupParameters(w http.ResponseWriter, r *http.Request) {
	params, err := s.store.ListMarkupParameters(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if params == nil {
		params = []store.MarkupParameter{}
	}
	writeJSON(w, http.StatusOK, params)
}

func (s *server) handleUpsertMarkupParameter(w http.ResponseWriter, r *http.Request) {
	var p store.MarkupParameter
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, err)
		return
	}

	inserted, err := s.store.UpsertMarkupParameter(r.Context(), p)
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusOK
	if inserted {
		status = http.StatusCreated
	}
	writeJSON(w, status, p)
}

type createTenderRequest struct {
	Title    string `json:"title"`
	TacticID int64  `json:"tactic_id,omitempty"`
}

func (s *server) handleCreateTender(w http.ResponseWriter, r *http.Request) {
	var req createTenderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var tender store.Tender
	err := s.store.InTx(r.Context(), func(tx *store.Store) error {
		t, err := tx.CreateTender(r.Context(), req.Title)
		if err != nil {
			return err
		}
		if req.TacticID != 0 {
			if err := tx.SetTenderTactic(r.Context(), t.ID, req.TacticID); err != nil {
				return err
			}
			t.TacticID = req.TacticID
		}
		tender = t
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tender)
}

type tenderResponse struct {
	store.Tender
	LatestRun *store.Run `json:"latest_run,omitempty"`
}

func (s *server) handleGetTender(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	tender, err := s.store.GetTender(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := tenderResponse{Tender: tender}
	run, err := s.store.LatestRun(r.Context(), id)
	switch {
	case err == nil:
		resp.LatestRun = &run
	case !store.IsNotFound(err):
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

type setTacticRequest struct {
	TacticID int64 `json:"tactic_id"`
}

func (s *server) handleSetTenderTactic(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req setTacticRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.TacticID <= 0 {
		writeError(w, badRequest("tactic_id is required"))
		return
	}

	if err := s.store.SetTenderTactic(r.Context(), id, req.TacticID); err != nil {
		writeError(w, err)
		return
	}
	tender, err := s.store.GetTender(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tender)
}

func (s *server) handleGetTenderMarkups(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	set, err := s.store.PercentageSet(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *server) handleSetTenderMarkups(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var values map[string]float64
	if err := decodeJSON(r, &values); err != nil {
		writeError(w, err)
		return
	}

	if err := s.store.SetTenderPercentages(r.Context(), id, values); err != nil {
		writeError(w, err)
		return
	}
	set, err := s.store.PercentageSet(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

type itemRequest struct {
	Category    string  `json:"category"`
	Description string  `json:"description"`
	DirectCost  float64 `json:"direct_cost"`
}

// parseItems accepts canonical category names and BOQ item-type labels.
func parseItems(reqs []itemRequest) ([]store.BOQItem, error) {
	if len(reqs) == 0 {
		return nil, badRequest("at least one item is required")
	}
	items := make([]store.BOQItem, 0, len(reqs))
	for i, req := range reqs {
		c, err := markup.ParseCategory(req.Category)
		if err != nil {
			return nil, unprocessable(fmt.Errorf("item %d: %w", i, err))
		}
		items = append(items, store.BOQItem{Category: c, Description: req.Description, DirectCost: req.DirectCost})
	}
	return items, nil
}

func (s *server) handleAddItems(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var reqs []itemRequest
	if err := decodeJSON(r, &reqs); err != nil {
		writeError(w, err)
		return
	}
	items, err := parseItems(reqs)
	if err != nil {
		writeError(w, err)
		return
	}

	added, err := s.store.AddItems(r.Context(), id, items)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, added)
}

func (s *server) handleListItems(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	items, err := s.store.ListItems(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if items == nil {
		items = []store.BOQItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *server) handleRecalculate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	dryRun, _ := strconv.ParseBool(r.URL.Query().Get("dry_run"))

	run := s.recalc.Run
	if dryRun {
		run = s.recalc.DryRun
	}
	report, err := run(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *server) handleExportCommercial(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	tender, err := s.store.GetTender(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	items, err := s.store.ListItems(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	raw, err := export.CommercialWorkbook(tender, items)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="tender-%d-commercial.xlsx"`, id))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}
