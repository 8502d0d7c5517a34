package models

import "github.com/google/uuid"

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// All lists every persisted model, parents first.
func All() []any {
	return []any{
		&Customer{},
		&AdminUser{},
		&Product{},
		&ProductImage{},
		&Variation{},
		&Order{},
		&OrderItem{},
		&Appointment{},
		&Review{},
		&Service{},
		&ServicePost{},
		&ServicePostMedia{},
		&SiteSetting{},
	}
}
