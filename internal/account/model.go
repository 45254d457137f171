package account

import (
	"github.com/taka-pay/taka_pay/internal/ledger"
)

// Account is a registered wallet holder. The phone number is the unique key
// used for lookup, login and transfer addressing; everything else is display
// or profile data. The PIN is stored and compared verbatim.
type Account struct {
	Username    string `json:"username"`
	PhoneNumber string `json:"phone_number"`
	PIN         string `json:"pin"`

	FullName         string `json:"full_name,omitempty"`
	Email            string `json:"email,omitempty"`
	DOB              string `json:"dob,omitempty"`
	Gender           string `json:"gender,omitempty"`
	MotherName       string `json:"mother_name,omitempty"`
	FatherName       string `json:"father_name,omitempty"`
	NationalID       string `json:"national_id,omitempty"`
	BirthCertificate string `json:"birth_certificate,omitempty"`
	PermanentAddress string `json:"permanent_address,omitempty"`
	PresentAddress   string `json:"present_address,omitempty"`

	Balance      float64              `json:"balance"`
	Transactions []ledger.Transaction `json:"transactions"`
}

// Append records a transaction at the end of the account's history.
func (a *Account) Append(t ledger.Transaction) {
	a.Transactions = append(a.Transactions, t)
}
