package core

import "strings"

// Category is shared reference data for classifying expenses.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Bill is an upcoming or recurring charge. Bills are listed, never posted.
type Bill struct {
	ID             int64  `json:"id"`
	OwnerID        int64  `json:"-"`
	DueDate        Date   `json:"due_date"`
	LogoURL        string `json:"logo_url,omitempty"`
	Description    string `json:"description"`
	LastChargeDate Date   `json:"last_charge_date"`
	Amount         Money  `json:"amount"`
}

// BillInput is one bill in an import file.
type BillInput struct {
	DueDate        Date   `json:"due_date"`
	LogoURL        string `json:"logo_url"`
	Description    string `json:"description"`
	LastChargeDate Date   `json:"last_charge_date"`
	Amount         Money  `json:"amount"`
}

func (in BillInput) Validate() error {
	if strings.TrimSpace(in.Description) == "" {
		return Validationf("bill description is required")
	}
	if in.DueDate.IsZero() {
		return Validationf("bill due date is required")
	}
	if !in.Amount.IsPositive() {
		return Validationf("bill amount must be greater than zero")
	}
	return nil
}

func (in BillInput) Bill(ownerID int64) Bill {
	return Bill{
		OwnerID:        ownerID,
		DueDate:        in.DueDate,
		LogoURL:        strings.TrimSpace(in.LogoURL),
		Description:    strings.TrimSpace(in.Description),
		LastChargeDate: in.LastChargeDate,
		Amount:         in.Amount,
	}
}
