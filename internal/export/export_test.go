package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/raphaelgruber/rastreador/internal/models"
	"github.com/raphaelgruber/rastreador/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePair() models.ProximityPair {
	return models.ProximityPair{
		EntityID:   "310100123456",
		EntityName: "Constructora Vial",
		Donation: models.DonationRecord{
			Party:  "PLN",
			Amount: decimal.NewFromInt(1_000_000),
			Date:   time.Date(2020, 1, 10, 0, 0, 0, 0, time.UTC),
		},
		Contract: models.ContractRecord{
			Agency:         "MOPT",
			ContractNumber: "2020LN-000001",
			Amount:         decimal.NewFromInt(5_000_000),
			AwardDate:      time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC),
		},
		DeltaDays: 22,
		Direction: models.DonationFirst,
		Flagged:   true,
		Severity:  0.853333,
	}
}

func TestWriteAlertsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAlertsCSV(&buf, []models.ProximityPair{samplePair()}, Options{Mask: true}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(alertHeader, ","), lines[0])
	assert.Equal(t,
		"1,310***,Constructora Vial,PLN,2020-01-10,1000000,MOPT,2020LN-000001,2020-02-01,5000000,22,donation_first,true,0.8533",
		lines[1])
}

func TestWriteRejectionsCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteRejectionsCSV(&buf, []models.Rejection{
		{Dataset: "donations", Row: 4, Field: "amount", Reason: `negative amount "-5"`},
	})
	require.NoError(t, err)
	assert.Equal(t, "dataset,row_index,field,reason\ndonations,4,amount,\"negative amount \"\"-5\"\"\"\n", buf.String())
}

func TestDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	report := &service.Report{
		RunID:  "run-1",
		Alerts: []models.ProximityPair{samplePair()},
	}

	paths, err := Dir(dir, report, Options{})
	require.NoError(t, err)
	assert.Len(t, paths, 6)

	raw, err := os.ReadFile(filepath.Join(dir, FileReport))
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "run-1", decoded["run_id"])

	alerts, err := os.ReadFile(filepath.Join(dir, FileAlerts))
	require.NoError(t, err)
	assert.Contains(t, string(alerts), "310100123456")
}

func TestDir_MaskHidesIdentifiersEverywhere(t *testing.T) {
	const id = "310100123456"
	pair := samplePair()
	pair.Donation.DonorID, pair.Donation.RawDonorID = id, "3-101-00123456"
	pair.Contract.ContractorID, pair.Contract.RawContractorID = id, "3-101-00123456"
	audit := pair
	audit.Flagged = false

	report := &service.Report{
		RunID:       "run-1",
		Alerts:      []models.ProximityPair{pair},
		Audit:       []models.ProximityPair{audit},
		Truncations: []models.Truncation{{EntityID: id, DonationsTotal: 400, DonationsKept: 250}},
		Risks:       []models.EntityRisk{{EntityID: id, FlaggedContracts: 1, TotalContracts: 1}},
		Warnings:    []string{"capacity exceeded: 1 entities truncated (" + id + ")"},
	}
	report.Summary.Entities = []models.EntitySummary{{EntityID: id, DonationCount: 1}}

	dir := t.TempDir()
	paths, err := Dir(dir, report, Options{Mask: true})
	require.NoError(t, err)

	for _, p := range paths {
		raw, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "00123456", "%s leaks an identifier", filepath.Base(p))
	}

	raw, err := os.ReadFile(filepath.Join(dir, FileReport))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"entity_id": "310***"`)
	assert.Contains(t, string(raw), `"raw_donor_id": "3-1***"`)

	assert.Equal(t, id, report.Alerts[0].EntityID, "source report is left untouched")
	assert.Equal(t, id, report.Summary.Entities[0].EntityID)
}
