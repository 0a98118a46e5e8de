package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tender и Dealership принадлежат порталу, чат читает их только для проверки
// существования и отображаемых имен.
type Tender struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Title     string             `bson:"title" json:"title"`
	Status    string             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

type Dealership struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Name      string             `bson:"name" json:"name"`
	CompanyID string             `bson:"company_id" json:"companyId"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// Tenant - строка реестра тенантов в control plane (Postgres)
type Tenant struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	MongoDatabase string    `json:"mongo_database"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
}

// AdminUser - учетка сотрудника компании в control plane
type AdminUser struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}
