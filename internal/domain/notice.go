package domain

import "time"

// MessageNotice - задача для очереди уведомлений. Ставится, когда получатель
// оффлайн; почтовый сервис-потребитель живет за пределами чата.
type MessageNotice struct {
	TenantID      string    `json:"tenantId"`
	TenderID      string    `json:"tenderId"`
	DealershipID  string    `json:"dealershipId"`
	RecipientType string    `json:"recipientType"`
	SenderName    string    `json:"senderName"`
	Preview       string    `json:"preview"`
	SentAt        time.Time `json:"sentAt"`
}
