package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/tenderhub/internal/db"
	"github.com/Simplici0/tenderhub/internal/markup"
	"github.com/Simplici0/tenderhub/internal/migrations"
	"github.com/Simplici0/tenderhub/internal/seed"
	"github.com/Simplici0/tenderhub/internal/store"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func defaultTacticFile(t *testing.T) string {
	t.Helper()
	raw, err := markup.EncodeTacticYAML(seed.DefaultTactic())
	require.NoError(t, err)
	return writeFile(t, "default.yaml", raw)
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "validate", defaultTacticFile(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Default: ok")
	assert.Contains(t, out, "materials")

	broken := writeFile(t, "broken.json", []byte(`{
	  "name": "Broken",
	  "sequences": {"works": [{"baseIndex": 0, "operations": [{"action": "add", "operandType": "number", "operandLiteral": 1}]}]}
	}`))
	_, err = execute(t, "validate", broken)
	require.Error(t, err)
	assert.ErrorIs(t, err, markup.ErrConfiguration)
}

func TestEvalCommand(t *testing.T) {
	markups := writeFile(t, "markups.json", []byte(`{"material_cost_growth": 10, "contingency_costs": 3, `+
		`"overhead_own_forces": 10, "general_costs_without_subcontract": 20, "profit_own_forces": 10}`))

	out, err := execute(t, "eval", "--tactic", defaultTacticFile(t), "--markups", markups, "--category", "мат")
	require.NoError(t, err)
	assert.Contains(t, out, "step 1 + step 2 − base amount")
	assert.Contains(t, out, "final: 164.08")
	assert.Contains(t, out, "coefficient: 1.64076")
	assert.NotContains(t, out, "missing markups")

	out, err = execute(t, "eval", "--tactic", defaultTacticFile(t), "--category", "works", "--base", "2000")
	require.NoError(t, err)
	assert.Contains(t, out, "final: 2,000")
	assert.Contains(t, out, "missing markups (treated as 0): contingency_costs")

	bad := writeFile(t, "bad.yaml", []byte("profit_own_forces: 1000\n"))
	_, err = execute(t, "eval", "--tactic", defaultTacticFile(t), "--markups", bad, "--category", "works")
	assert.Error(t, err)
}

func TestRecalcAndExportCommands(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "cli.db")

	database, err := db.Open(ctx, dbPath)
	require.NoError(t, err)
	require.NoError(t, migrations.Up(ctx, database))
	_, err = seed.Run(ctx, database, seed.Config{})
	require.NoError(t, err)

	st := store.New(database)
	tender, err := st.CreateTender(ctx, "Warehouse")
	require.NoError(t, err)
	_, err = st.AddItems(ctx, tender.ID, []store.BOQItem{
		{Category: markup.CategoryMaterials, Description: "Steel", DirectCost: 1000},
		{Category: markup.CategoryWorks, Description: "Assembly", DirectCost: 500},
	})
	require.NoError(t, err)
	require.NoError(t, database.Close())

	out, err := execute(t, "--db", dbPath, "recalc", "--tender", "1", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "(dry run)")
	assert.Contains(t, out, "1,640.76")

	out, err = execute(t, "--db", dbPath, "recalc", "--tender", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "(committed)")

	xlsx := filepath.Join(t.TempDir(), "out.xlsx")
	out, err = execute(t, "--db", dbPath, "export", "--tender", "1", "--out", xlsx)
	require.NoError(t, err)
	assert.Contains(t, out, "2 items")
	info, err := os.Stat(xlsx)
	require.NoError(t, err)
	assert.NotZero(t, info.Size())

	_, err = execute(t, "--db", dbPath, "recalc", "--tender", "42")
	assert.ErrorIs(t, err, store.ErrNotFound)
}
