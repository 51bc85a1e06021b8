package worker

// alert_worker.go
// Processes certificate-expiry alert jobs from QueueAlert.

import (
	"context"
	"encoding/json"
	"fmt"

	"agrotrace/internal/infra"

	"github.com/rs/zerolog/log"
)

// AlertJobPayload is the job envelope sent to QueueAlert.
type AlertJobPayload struct {
	ProducerID        string `json:"producer_id"`
	ProducerName      string `json:"producer_name"`
	CertificateExpiry string `json:"certificate_expiry"` // YYYY-MM-DD
	ToEmail           string `json:"to_email"`
}

type AlertWorker struct {
	mailer *infra.Mailer
}

func NewAlertWorker(mailer *infra.Mailer) *AlertWorker {
	return &AlertWorker{mailer: mailer}
}

func (w *AlertWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload AlertJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("alert_worker: invalid payload")
		return nil
	}
	if payload.ToEmail == "" {
		log.Warn().Msg("alert_worker: empty to_email — skipping")
		return nil
	}

	subject := fmt.Sprintf("Certificate expiring: %s", payload.ProducerName)
	body := fmt.Sprintf(
		"The GLOBALG.A.P. certificate of producer %s expires on %s.\n"+
			"Lots from this producer will be blocked from certified allocations after that date.",
		payload.ProducerName, payload.CertificateExpiry)

	if err := w.mailer.Send(payload.ToEmail, subject, body, ""); err != nil {
		return fmt.Errorf("alert_worker: send mail: %w", err)
	}
	log.Info().Str("producer", payload.ProducerName).Msg("alert_worker: expiry alert sent")
	return nil
}
