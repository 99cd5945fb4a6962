package models

// Customer is a CRM contact, either a business partner or a retail buyer.
type Customer struct {
	ID       string `bson:"_id" json:"id"`
	Name     string `bson:"name" json:"name"`
	Contact  string `bson:"contact" json:"contact"`
	Email    string `bson:"email" json:"email"`
	Address  string `bson:"address" json:"address"`
	Type     string `bson:"type" json:"type"`
	Status   string `bson:"status" json:"status"`
	Notes    string `bson:"notes,omitempty" json:"notes,omitempty"`
	JoinDate string `bson:"joinDate" json:"joinDate"`
}

// CustomerStats summarises one customer's purchase history.
type CustomerStats struct {
	TotalSpent    float64       `json:"totalSpent"`
	OrderCount    int           `json:"orderCount"`
	LastOrderDate string        `json:"lastOrderDate"`
	SalesHistory  []SalesRecord `json:"salesHistory"`
}

// UserRole maps an authenticated user to a dashboard role.
type UserRole struct {
	UID  string `bson:"_id" json:"uid"`
	Role string `bson:"role" json:"role"`
}

// RoleGuest is assigned when no role is stored for a user.
const RoleGuest = "GUEST"

// OutreachKind selects a CRM WhatsApp message template.
type OutreachKind string

const (
	OutreachPromo  OutreachKind = "PROMO"
	OutreachUpdate OutreachKind = "UPDATE"
)

// CustomerPatch carries the fields of a merge update; nil fields are left unchanged.
type CustomerPatch struct {
	Name    *string `json:"name,omitempty"`
	Contact *string `json:"contact,omitempty"`
	Email   *string `json:"email,omitempty"`
	Address *string `json:"address,omitempty"`
	Type    *string `json:"type,omitempty"`
	Status  *string `json:"status,omitempty"`
	Notes   *string `json:"notes,omitempty"`
}

// OutreachRequest selects the template sent to a customer.
type OutreachRequest struct {
	Kind OutreachKind `json:"kind" binding:"required,oneof=PROMO UPDATE"`
}
