package clients

import "time"

// Client is the master-data record keyed by NIT. The email columns feed the
// dispatch recipient lists and are read-only from the cartera core's
// perspective.
type Client struct {
	NIT                       string     `json:"nit"`
	Name                      *string    `json:"client_name"`
	ExecutiveEmail            *string    `json:"executive_email"`
	DispatchConfirmationEmail *string    `json:"email"`
	PortfolioContactEmail     *string    `json:"portfolio_contact_email"`
	CreatedAt                 time.Time  `json:"created_at"`
	UpdatedAt                 time.Time  `json:"updated_at"`
}

// UpsertInput carries the writable client fields.
type UpsertInput struct {
	NIT                       string  `json:"nit" validate:"required"`
	Name                      string  `json:"client_name" validate:"required"`
	ExecutiveEmail            string  `json:"executive_email"`
	DispatchConfirmationEmail string  `json:"email"`
	PortfolioContactEmail     string  `json:"portfolio_contact_email"`
}
