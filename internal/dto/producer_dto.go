package dto

type CreateProducerRequest struct {
	Name              string  `json:"name" validate:"required,min=2"`
	FarmName          *string `json:"farm_name"`
	CertificateNumber *string `json:"certificate_number"`
	CertificateExpiry string  `json:"certificate_expiry" validate:"required"` // YYYY-MM-DD
	GGN               *string `json:"ggn"`
	Email             *string `json:"email" validate:"omitempty,email"`
	Phone             *string `json:"phone"`
	Address           *string `json:"address"`
	FruitVarieties    *string `json:"fruit_varieties"`
}

type ProducerResponse struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	FarmName          *string `json:"farm_name"`
	CertificateNumber *string `json:"certificate_number"`
	CertificateExpiry string  `json:"certificate_expiry"`
	GGN               *string `json:"ggn"`
	Email             *string `json:"email"`
	CertificateValid  bool    `json:"certificate_valid"`
}

// VerifyGGNResponse carries the advisory registry lookup result.
type VerifyGGNResponse struct {
	GGN             string `json:"ggn"`
	Valid           bool   `json:"valid"`
	ProducerName    string `json:"producer_name,omitempty"`
	CertificateBody string `json:"certificate_body,omitempty"`
	ValidUntil      string `json:"valid_until,omitempty"`
}
