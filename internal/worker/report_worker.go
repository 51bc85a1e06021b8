package worker

// report_worker.go
// Processes traceability report export jobs from QueueReport: renders the
// backward trace of a consolidation or expedition into an XLSX file and
// optionally mails it.

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"agrotrace/internal/infra"
	"agrotrace/internal/service"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

// ReportJobPayload is the job envelope sent to QueueReport.
type ReportJobPayload struct {
	Kind    string `json:"kind"` // consolidation | expedition
	ID      string `json:"id"`
	ToEmail string `json:"to_email,omitempty"`
}

type ReportWorker struct {
	trace       service.TraceabilityService
	mailer      *infra.Mailer
	storagePath string
}

func NewReportWorker(trace service.TraceabilityService, mailer *infra.Mailer, storagePath string) *ReportWorker {
	return &ReportWorker{trace: trace, mailer: mailer, storagePath: storagePath}
}

// Process renders the XLSX and, when to_email is set, sends it as attachment.
func (w *ReportWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReportJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("report_worker: invalid payload")
		return nil // malformed payloads never succeed, don't retry
	}

	id, err := uuid.Parse(payload.ID)
	if err != nil {
		log.Error().Str("id", payload.ID).Msg("report_worker: invalid id")
		return nil
	}

	// Exports are audit artifacts, so reversed operations resolve too.
	trace, err := w.trace.TraceBackward(ctx, payload.Kind, id, true)
	if err != nil {
		return fmt.Errorf("report_worker: resolve trace: %w", err)
	}

	f := excelize.NewFile()
	sheet := "Sheet1"

	f.SetCellValue(sheet, "A1", "Code")
	f.SetCellValue(sheet, "B1", "ReceptionCode")
	f.SetCellValue(sheet, "C1", "Producer")
	f.SetCellValue(sheet, "D1", "GGN")
	f.SetCellValue(sheet, "E1", "ProductType")
	f.SetCellValue(sheet, "F1", "QuantityKg")
	f.SetCellValue(sheet, "G1", "HarvestDate")
	f.SetCellValue(sheet, "H1", "CertificateExpiry")

	for i, origin := range trace.Origins {
		row := i + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), trace.Code)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), origin.ReceptionCode)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), origin.ProducerName)
		if origin.GGN != nil {
			f.SetCellValue(sheet, fmt.Sprintf("D%d", row), *origin.GGN)
		}
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), origin.ProductType)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), origin.QuantityKg.String())
		if origin.HarvestDate != nil {
			f.SetCellValue(sheet, fmt.Sprintf("G%d", row), *origin.HarvestDate)
		}
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), origin.CertificateExpiry)
	}

	if err := os.MkdirAll(w.storagePath, 0o755); err != nil {
		return fmt.Errorf("report_worker: create storage dir: %w", err)
	}
	path := filepath.Join(w.storagePath, fmt.Sprintf("trace_%s.xlsx", trace.Code))
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("report_worker: save xlsx: %w", err)
	}

	log.Info().Str("path", path).Str("code", trace.Code).Msg("report_worker: trace report written")

	if payload.ToEmail != "" {
		subject := fmt.Sprintf("Traceability report %s", trace.Code)
		body := fmt.Sprintf("Attached: traceability report for %s %s.", payload.Kind, trace.Code)
		if err := w.mailer.Send(payload.ToEmail, subject, body, path); err != nil {
			return fmt.Errorf("report_worker: send mail: %w", err)
		}
		log.Info().Str("to", payload.ToEmail).Msg("report_worker: report mailed")
	}
	return nil
}
