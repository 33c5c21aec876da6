package http

import "github.com/Vsirotkin/SMS/internal/sms_relay/domain"

// SendSMSRequest DTO for POST /send_sms
type SendSMSRequest struct {
	Recipient string `json:"recipient" validate:"required"`
	Text      string `json:"text"`
	Password  string `json:"password"`
}

// SendSMSResponse DTO
type SendSMSResponse struct {
	Message string `json:"message"`
	EntryID int64  `json:"entry_id"`
}

// CreateConfigRequest DTO for POST /config
type CreateConfigRequest struct {
	MainGatewayURL      string         `json:"main_gateway_url" validate:"required,url"`
	BackupGatewayURL    string         `json:"backup_gateway_url" validate:"required,url"`
	MainGatewayPassword string         `json:"main_gateway_password"`
	BackupGatewayAPIID  string         `json:"backup_gateway_api_id"`
	Regions             map[string]any `json:"regions"`
}

func (r CreateConfigRequest) toDomain() domain.GatewayConfig {
	return domain.GatewayConfig{
		PrimaryURL:        r.MainGatewayURL,
		BackupURL:         r.BackupGatewayURL,
		PrimaryCredential: r.MainGatewayPassword,
		BackupAccountID:   r.BackupGatewayAPIID,
		RegionRules:       r.Regions,
	}
}

// CreateTemplateTextRequest DTO for POST /textsms
type CreateTemplateTextRequest struct {
	Text string `json:"text" validate:"required"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
}
