package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/raphaelgruber/rastreador/internal/config"
	"github.com/raphaelgruber/rastreador/internal/models"
	"github.com/raphaelgruber/rastreador/internal/ranking"
	"github.com/raphaelgruber/rastreador/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPrintSummary_AlertStats(t *testing.T) {
	report := &service.Report{
		RunID:      "run-1",
		Config:     config.DefaultRunConfig(),
		AlertStats: ranking.AlertStats{Flagged: 4, DonationFirst: 3, MinAbsDelta: 2, MeanAbsDelta: 31.5},
	}

	var buf bytes.Buffer
	printSummary(newRenderer(&buf, false), report, false)
	out := buf.String()

	assert.Contains(t, out, "4 flagged")
	assert.Contains(t, out, "Closest:    2 days, 31.5 days on average")
	assert.Contains(t, out, "3/4 donations made before the award")
}

func TestPrintSummary_NoAlertsSkipsStats(t *testing.T) {
	report := &service.Report{RunID: "run-1", Config: config.DefaultRunConfig()}

	var buf bytes.Buffer
	printSummary(newRenderer(&buf, false), report, false)
	assert.NotContains(t, buf.String(), "Closest")
}

func TestPrintPeriods_PartyOrder(t *testing.T) {
	report := &service.Report{Config: config.DefaultRunConfig()}
	report.Summary.Parties = []models.PartySummary{
		{Party: "PLN", TotalAmount: decimal.NewFromInt(9000), DonationCount: 1},
		{Party: "PAC", TotalAmount: decimal.NewFromInt(300), DonationCount: 3},
	}

	partyRows := func(order string) []string {
		var buf bytes.Buffer
		printPeriods(newRenderer(&buf, false), report, "party", order, false)
		var parties []string
		for _, line := range strings.Split(buf.String(), "\n") {
			if f := strings.Fields(line); len(f) > 0 && (f[0] == "PLN" || f[0] == "PAC") {
				parties = append(parties, f[0])
			}
		}
		return parties
	}

	assert.Equal(t, []string{"PLN", "PAC"}, partyRows("amount"))
	assert.Equal(t, []string{"PAC", "PLN"}, partyRows("count"))
}

func TestPrintAudit_PartyFilter(t *testing.T) {
	pair := func(id, party string) models.ProximityPair {
		return models.ProximityPair{
			EntityID:  id,
			DeltaDays: -120,
			Direction: models.AwardFirst,
			Donation:  models.DonationRecord{Party: party},
		}
	}
	audit := []models.ProximityPair{pair("PLN-ENTITY", "PLN"), pair("PAC-ENTITY", "PAC")}

	var buf bytes.Buffer
	printAudit(newRenderer(&buf, false), audit, "pac")
	out := buf.String()
	assert.Contains(t, out, "Audit trail (1)")
	assert.Contains(t, out, "PAC-ENTITY")
	assert.NotContains(t, out, "PLN-ENTITY")

	buf.Reset()
	printAudit(newRenderer(&buf, false), audit, "PUSC")
	assert.Contains(t, buf.String(), "No unflagged pairs recorded.")
}
