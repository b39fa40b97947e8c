/*
seed.go - Demo data seeding

PURPOSE:
  Loads a small set of sample launches so a fresh instance has
  something to show: a picker paid by tiered productivity, a forklift
  operator paid per valid task, and a duplicated date that exercises
  the reconciliation path (original + admin edit).

  Seeding calculates through the real assembler against the current
  catalog snapshot - the demo records are genuine engine output, not
  canned JSON.
*/
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/comp-engine/engine"
)

// Seed loads the demo data set.
// POST /api/seed
func (h *Handler) Seed(w http.ResponseWriter, r *http.Request) {
	created, err := h.seed(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to seed demo data", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"created": created,
	})
}

func (h *Handler) seed(ctx context.Context) (int, error) {
	asm := h.assembler()
	monday := time.Now().UTC().AddDate(0, 0, -7).Truncate(24 * time.Hour)

	inputs := []struct {
		worker string
		in     engine.ShiftInput
	}{
		{
			worker: "w-separador-01",
			in: engine.ShiftInput{
				Function: "separador",
				Shift:    "manha",
				Date:     monday,
				Activity: &engine.ActivityEntry{
					Name:     "separacao",
					Quantity: decimal.NewFromInt(100),
					Hours:    decimal.NewFromInt(8),
				},
				ClaimedKPIs: []string{"assiduidade", "qualidade"},
			},
		},
		{
			worker: "w-separador-01",
			in: engine.ShiftInput{
				Function: "separador",
				Shift:    "manha",
				Date:     monday.AddDate(0, 0, 1),
				Activities: []engine.ActivityEntry{
					{Name: "separacao", Quantity: decimal.NewFromInt(60), Hours: decimal.NewFromInt(4)},
					{Name: "conferencia", Quantity: decimal.NewFromInt(180), Hours: decimal.NewFromInt(4)},
				},
				ClaimedKPIs: []string{"assiduidade"},
			},
		},
		{
			worker: "w-empilhadeira-07",
			in: engine.ShiftInput{
				Function:     "operador_empilhadeira",
				Shift:        "noturno",
				Date:         monday,
				OperatorName: "JOAO SILVA",
				TaskCount:    intPtr(42),
				ClaimedKPIs:  []string{"assiduidade", "avarias"},
			},
		},
	}

	created := 0
	for _, s := range inputs {
		bd, err := asm.Assemble(s.in)
		if err != nil {
			return created, err
		}
		rec := engine.LaunchRecord{
			WorkerID:  engine.WorkerID(s.worker),
			Date:      s.in.Date,
			Input:     s.in,
			Breakdown: *bd,
		}
		if err := h.Store.Create(ctx, &rec); err != nil {
			return created, err
		}
		created++
	}

	// Duplicate the first date and admin-edit the copy so the history
	// endpoint demonstrates reconciliation picking the edit.
	dup := inputs[0].in
	bd, err := asm.Assemble(dup)
	if err != nil {
		return created, err
	}
	rec := engine.LaunchRecord{
		WorkerID:  engine.WorkerID(inputs[0].worker),
		Date:      dup.Date,
		Input:     dup,
		Breakdown: *bd,
	}
	if err := h.Store.Create(ctx, &rec); err != nil {
		return created, err
	}
	created++

	edited := dup
	edited.ManualExtra = decimal.NewFromFloat(5.00)
	ebd, err := asm.Assemble(edited)
	if err != nil {
		return created, err
	}
	if err := h.Store.ApplyEdit(ctx, rec.ID, edited, *ebd, "admin-demo", time.Now()); err != nil {
		return created, err
	}

	return created, nil
}

func intPtr(n int) *int { return &n }
