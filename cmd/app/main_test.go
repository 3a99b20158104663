package main

import (
	"bytes"
	"context"
	"errors"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/kfcain/CMMC-L2-Assessment-Tool-sub004/internal/application"
	"github.com/kfcain/CMMC-L2-Assessment-Tool-sub004/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, dbPath string, args ...string) error {
	t.Helper()
	full := append([]string{"cmmc", "--db-path", dbPath}, args...)
	return newRootCommand().Run(context.Background(), full)
}

func exportDocument(t *testing.T, dbPath string) domain.Document {
	t.Helper()
	out := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, run(t, dbPath, "export", "--out", out))
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	var doc domain.Document
	require.NoError(t, json.Unmarshal(b, &doc))
	return doc
}

func TestCLIInventoryAcrossInvocations(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cmmc.db")

	require.NoError(t, run(t, dbPath, "apps", "add", "--name", "  <b>Payroll</b> ", "--category", "cui", "--tag", "hr"))
	require.NoError(t, run(t, dbPath, "apps", "add", "--name", "Ledger"))

	doc := exportDocument(t, dbPath)
	require.Len(t, doc.Applications, 2)
	payroll, ledger := doc.Applications[0], doc.Applications[1]
	assert.Equal(t, "Payroll", payroll.Name)
	assert.Equal(t, domain.CategoryCUI, payroll.AssetCategory)
	assert.Equal(t, []string{"hr"}, payroll.Tags)

	require.NoError(t, run(t, dbPath, "connections", "add", "--from-app", payroll.ID, "--to-app", ledger.ID))
	require.NoError(t, run(t, dbPath, "zones", "add", "--name", "Enclave", "--type", "enclave", "--app", payroll.ID))
	require.NoError(t, run(t, dbPath, "diagrams", "add", "--name", "Flow", "--app", payroll.ID, "--source", "mermaid"))

	doc = exportDocument(t, dbPath)
	require.Len(t, doc.Connections, 1)
	assert.True(t, doc.Connections[0].Encrypted)
	require.Len(t, doc.Zones, 1)
	assert.Equal(t, []string{payroll.ID}, doc.Zones[0].ApplicationIDs)
	require.Len(t, doc.Diagrams, 1)

	require.NoError(t, run(t, dbPath, "apps", "remove", "--id", payroll.ID))

	doc = exportDocument(t, dbPath)
	require.Len(t, doc.Applications, 1)
	assert.Empty(t, doc.Connections)
	assert.Empty(t, doc.Diagrams)
	assert.Empty(t, doc.Zones[0].ApplicationIDs)
}

func TestCLIRejectsInvalidInput(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cmmc.db")

	err := run(t, dbPath, "apps", "add", "--name", "Mail", "--owner", "not@valid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "owner")

	err = run(t, dbPath, "assets", "add", "--name", "Box", "--ip", "999.1.1.1")
	require.Error(t, err)

	err = run(t, dbPath, "diagrams", "add", "--name", "Board", "--source", "figma", "--url", "https://evil.example/file/x")
	require.Error(t, err)

	err = run(t, dbPath, "apps", "remove", "--id", "app-missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	doc := exportDocument(t, dbPath)
	assert.Empty(t, doc.Applications)
	assert.Empty(t, doc.Assets)
	assert.Empty(t, doc.Diagrams)
}

func TestCLIReportAndMetrics(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "cmmc.db")
	metrics := filepath.Join(dir, "cmmc.prom")

	require.NoError(t, run(t, dbPath, "org", "set-name", "--name", "Acme <Defense>"))
	require.NoError(t, run(t, dbPath, "--metrics-textfile", metrics, "apps", "add", "--name", "Portal"))

	out := filepath.Join(dir, "report.html")
	require.NoError(t, run(t, dbPath, "report", "--out", out))
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	html := string(b)
	assert.Contains(t, html, "Portal")
	assert.NotContains(t, html, "<Defense>")

	m, err := os.ReadFile(metrics)
	require.NoError(t, err)
	assert.Contains(t, string(m), `cmmc_storage_writes_total{result="ok"}`)
	assert.Contains(t, string(m), "cmmc_storage_usage_bytes")
}

func TestCLIEphemeralDoesNotTouchDisk(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cmmc.db")

	require.NoError(t, run(t, dbPath, "--ephemeral", "apps", "add", "--name", "Scratch"))

	_, err := os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err))
}

func TestCLIRefusedWriteFails(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "cmmc.db")
	image := filepath.Join(dir, "network.png")
	require.NoError(t, os.WriteFile(image, bytes.Repeat([]byte{0x89}, 600<<10), 0o600))

	err := run(t, dbPath, "diagrams", "add", "--name", "Network", "--file", image)
	require.Error(t, err)
	assert.True(t, errors.Is(err, application.ErrNotPersisted))
	assert.Contains(t, err.Error(), "storage guard refused write")

	doc := exportDocument(t, dbPath)
	assert.Empty(t, doc.Diagrams)

	require.NoError(t, run(t, dbPath, "apps", "add", "--name", "Still writable"))
	assert.Len(t, exportDocument(t, dbPath).Applications, 1)
}

func TestCLIEnumFlagsNormalized(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cmmc.db")

	require.NoError(t, run(t, dbPath, "apps", "add", "--name", "Billing", "--category", " SPA ", "--environment", "Staging"))
	require.NoError(t, run(t, dbPath, "assets", "add", "--name", "Edge", "--type", "Firewall", "--scope", "CRMA"))

	doc := exportDocument(t, dbPath)
	require.Len(t, doc.Applications, 1)
	assert.Equal(t, domain.CategorySPA, doc.Applications[0].AssetCategory)
	assert.Equal(t, domain.EnvStaging, doc.Applications[0].Environment)
	require.Len(t, doc.Assets, 1)
	assert.Equal(t, domain.AssetFirewall, doc.Assets[0].AssetType)
	assert.Equal(t, domain.CategoryCRMA, doc.Assets[0].ScopeCategory)

	require.NoError(t, run(t, dbPath, "apps", "update", "--id", doc.Applications[0].ID, "--category", "OOS"))
	assert.Equal(t, domain.CategoryOOS, exportDocument(t, dbPath).Applications[0].AssetCategory)
}
