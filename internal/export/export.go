// Package export writes run outputs as plain JSON and CSV files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/raphaelgruber/rastreador/internal/models"
	"github.com/raphaelgruber/rastreador/internal/service"
)

// DateLayout formats dates in CSV output.
const DateLayout = "2006-01-02"

// Options controls what identifying data is written.
type Options struct {
	// Mask replaces identifiers with MaskID output.
	Mask bool
}

// WriteJSON writes the whole report as indented JSON. Callers that need
// masked identifiers pass report.Masked().
func WriteJSON(w io.Writer, report *service.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

var alertHeader = []string{
	"rank", "entity_id", "entity_name", "party", "donation_date", "donation_amount",
	"agency", "contract_number", "award_date", "contract_amount",
	"delta_days", "direction", "flagged", "severity",
}

// WriteAlertsCSV writes pairs in the given order, one row per pair.
func WriteAlertsCSV(w io.Writer, pairs []models.ProximityPair, opts Options) error {
	return writeCSV(w, alertHeader, len(pairs), func(i int) []string {
		p := pairs[i]
		id := p.EntityID
		if opts.Mask {
			id = models.MaskID(id)
		}
		return []string{
			strconv.Itoa(i + 1),
			id,
			p.EntityName,
			p.Donation.Party,
			p.Donation.Date.Format(DateLayout),
			p.Donation.Amount.String(),
			p.Contract.Agency,
			p.Contract.ContractNumber,
			p.Contract.AwardDate.Format(DateLayout),
			p.Contract.Amount.String(),
			strconv.Itoa(p.DeltaDays),
			string(p.Direction),
			strconv.FormatBool(p.Flagged),
			strconv.FormatFloat(p.Severity, 'f', 4, 64),
		}
	})
}

// WriteRejectionsCSV writes the rejection report.
func WriteRejectionsCSV(w io.Writer, rejections []models.Rejection) error {
	header := []string{"dataset", "row_index", "field", "reason"}
	return writeCSV(w, header, len(rejections), func(i int) []string {
		r := rejections[i]
		return []string{r.Dataset, strconv.Itoa(r.Row), r.Field, r.Reason}
	})
}

// WritePeriodsCSV writes the period/party donation summary.
func WritePeriodsCSV(w io.Writer, periods []models.PeriodSummary) error {
	header := []string{"period", "party", "total_amount", "donation_count", "donor_count"}
	return writeCSV(w, header, len(periods), func(i int) []string {
		p := periods[i]
		return []string{p.Period, p.Party, p.TotalAmount.String(), strconv.Itoa(p.DonationCount), strconv.Itoa(p.DonorCount)}
	})
}

// WriteEntitiesCSV writes entity-level donor and contractor totals.
func WriteEntitiesCSV(w io.Writer, entities []models.EntitySummary, opts Options) error {
	header := []string{"entity_id", "name", "donation_count", "total_donated", "contract_count", "total_contracted"}
	return writeCSV(w, header, len(entities), func(i int) []string {
		e := entities[i]
		id := e.EntityID
		if opts.Mask {
			id = models.MaskID(id)
		}
		return []string{
			id, e.Name,
			strconv.Itoa(e.DonationCount), e.TotalDonated.String(),
			strconv.Itoa(e.ContractCount), e.TotalContracted.String(),
		}
	})
}

func writeCSV(w io.Writer, header []string, n int, record func(int) []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for i := range n {
		if err := cw.Write(record(i)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Files written by Dir.
const (
	FileReport     = "report.json"
	FileAlerts     = "alerts.csv"
	FileAudit      = "audit.csv"
	FileRejections = "rejections.csv"
	FilePeriods    = "periods.csv"
	FileEntities   = "entities.csv"
)

// Dir writes every export of a report into dir, creating it if needed.
// It returns the paths written.
func Dir(dir string, report *service.Report, opts Options) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}

	view := report
	if opts.Mask {
		view = report.Masked()
	}

	writers := []struct {
		name  string
		write func(io.Writer) error
	}{
		{FileReport, func(w io.Writer) error { return WriteJSON(w, view) }},
		{FileAlerts, func(w io.Writer) error { return WriteAlertsCSV(w, report.Alerts, opts) }},
		{FileAudit, func(w io.Writer) error { return WriteAlertsCSV(w, report.Audit, opts) }},
		{FileRejections, func(w io.Writer) error { return WriteRejectionsCSV(w, report.Rejections) }},
		{FilePeriods, func(w io.Writer) error { return WritePeriodsCSV(w, report.Summary.Periods) }},
		{FileEntities, func(w io.Writer) error { return WriteEntitiesCSV(w, report.Summary.Entities, opts) }},
	}

	var written []string
	for _, wr := range writers {
		path := filepath.Join(dir, wr.name)
		if err := writeFile(path, wr.write); err != nil {
			return written, fmt.Errorf("write %s: %w", wr.name, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}
