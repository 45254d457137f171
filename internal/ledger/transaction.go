package ledger

import (
	"fmt"
	"time"
)

// Kind labels a transaction record. The set is closed: snapshots written by
// older versions of the service only ever contain these values.
type Kind string

const (
	KindDeposit     Kind = "Deposit"
	KindWithdraw    Kind = "Withdraw"
	KindTransferOut Kind = "Transfer Out"
	KindTransferIn  Kind = "Transfer In"
	KindConvocation Kind = "Convocation Payment"
	KindBillPayment Kind = "Bill Payment"
)

// Transaction is one immutable entry in an account's history. Records are
// appended in operation order and never mutated or deleted afterwards; they
// live exactly as long as the account that owns them.
type Transaction struct {
	Kind        Kind      `json:"kind"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// New builds a record stamped with the current time.
func New(kind Kind, amount float64, description string) Transaction {
	return Transaction{
		Kind:        kind,
		Amount:      amount,
		Description: description,
		Timestamp:   time.Now().UTC(),
	}
}

// String renders the record the way statements display it.
func (t Transaction) String() string {
	return fmt.Sprintf("[%s] %-19s BDT %.2f  |  %s",
		t.Timestamp.Format("2006-01-02 15:04:05"), t.Kind, t.Amount, t.Description)
}
