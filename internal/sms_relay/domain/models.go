package domain

import "time"

// GatewayConfig holds the endpoints and credentials of the two upstream gateways.
// Only the first stored configuration is ever active.
type GatewayConfig struct {
	ID                int64          `json:"id"`
	PrimaryURL        string         `json:"main_gateway_url"`
	BackupURL         string         `json:"backup_gateway_url"`
	PrimaryCredential string         `json:"main_gateway_password"`
	BackupAccountID   string         `json:"backup_gateway_api_id"`
	RegionRules       map[string]any `json:"regions"`
}

// TemplateText is a canned prefix prepended to verification codes.
type TemplateText struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

// BufferEntry is a message awaiting delivery. It is removed from the buffer
// once a gateway confirms delivery and never otherwise.
type BufferEntry struct {
	ID         int64     `json:"id"`
	Recipient  string    `json:"recipient"`
	Text       string    `json:"text"`
	Credential string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

// DefaultTemplateTexts are seeded into an empty template table on startup.
var DefaultTemplateTexts = []string{
	"Никому не сообщайте код",
	"Сообщите продавцу код",
	"Для вас код",
	"Код для списания бонусов",
	"Сообщение от Мозаики",
	"Сообщение от Mosaic.",
	"Вам пришел код",
	"Для вас код списания",
	"Примите код списания",
	"Для списания бонусов код",
	"Сеть Мозаика, код",
	"Код списания",
}
