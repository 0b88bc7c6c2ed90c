// Copyright (c) 2026 Medora. All rights reserved.
// Author: kieu.tran.dev@gmail.com

package schema

// BillingPaymentTable represents the 'billing.payment' table
type BillingPaymentTable struct {
	Table         string
	ID            string
	AppointmentID string
	PatientID     string
	AmountCents   string
	Currency      string
	Status        string
	GatewayOrder  string
	CreatedAt     string
	UpdatedAt     string
}

// BillingPayment is the schema definition for billing.payment
var BillingPayment = BillingPaymentTable{
	Table:         "billing.payment",
	ID:            "id",
	AppointmentID: "appointmentid",
	PatientID:     "patientid",
	AmountCents:   "amountcents",
	Currency:      "currency",
	Status:        "status",
	GatewayOrder:  "gatewayorderid",
	CreatedAt:     "createdat",
	UpdatedAt:     "updatedat",
}
