// Package wallet implements the validated state transitions of the account
// ledger: registration, authentication, deposits, withdrawals, transfers,
// fee and bill payments, profile maintenance and account deletion. Every
// mutation is followed by a whole-state snapshot write.
package wallet

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/taka-pay/taka_pay/internal/account"
	"github.com/taka-pay/taka_pay/internal/audit"
	"github.com/taka-pay/taka_pay/internal/ledger"
	"github.com/taka-pay/taka_pay/internal/snapshot"
)

// MinBalance is the floor no balance may drop below after a debit. Deposits
// and transfer credits are exempt.
const MinBalance = 100.0

// MinPINLength applies at registration and PIN change.
const MinPINLength = 4

// Service owns all ledger operations. A single mutex serializes them: the
// paired debit/credit of a transfer and its two history appends commit as
// one unit, and no concurrent withdrawal can slip between them.
type Service struct {
	mu        sync.Mutex
	store     *account.Store
	snapshots *snapshot.Store
	trail     audit.Trail
	logger    *slog.Logger
}

// NewService wires the service with its store, snapshot gateway and audit
// trail.
func NewService(store *account.Store, snapshots *snapshot.Store, trail audit.Trail, logger *slog.Logger) *Service {
	return &Service{store: store, snapshots: snapshots, trail: trail, logger: logger}
}

// Store exposes the underlying account store for read-only lookups.
func (s *Service) Store() *account.Store {
	return s.store
}

// RegisterInput carries the required and optional registration fields.
type RegisterInput struct {
	Username   string
	Phone      string
	PIN        string
	Email      string
	NationalID string
}

// Register creates an account with a zero balance and empty history.
func (s *Service) Register(in RegisterInput) (*account.Account, error) {
	if in.Username == "" || in.Phone == "" || in.PIN == "" {
		return nil, fmt.Errorf("%w: username, phone and PIN are required", ErrValidation)
	}
	if len(in.PIN) < MinPINLength {
		return nil, fmt.Errorf("%w: PIN must be at least %d characters", ErrValidation, MinPINLength)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a := &account.Account{
		Username:    in.Username,
		PhoneNumber: in.Phone,
		PIN:         in.PIN,
		Email:       in.Email,
		NationalID:  in.NationalID,
	}
	if err := s.store.Add(a); err != nil {
		return nil, err
	}

	s.record("New account created: " + a.Username)
	return a, s.persist()
}

// Authenticate looks the account up by phone and compares the PIN verbatim.
// The two failure modes are indistinguishable to the caller.
func (s *Service) Authenticate(phone, pin string) (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.store.FindByPhone(phone)
	if err != nil || a.PIN != pin {
		return nil, ErrInvalidCredentials
	}

	s.record("User logged in: " + a.Username)
	return a, nil
}

// Deposit credits the account. No floor check applies to credits.
func (s *Service) Deposit(phone string, amount float64) (*account.Account, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.store.FindByPhone(phone)
	if err != nil {
		return nil, err
	}

	a.Balance += amount
	a.Append(ledger.New(ledger.KindDeposit, amount, "Cash deposit"))

	s.record(fmt.Sprintf("%s deposited BDT %.2f", a.Username, amount))
	return a, s.persist()
}

// Withdraw debits the account after confirming the PIN and the floor.
func (s *Service) Withdraw(phone, pin string, amount float64) (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.confirm(phone, pin)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if a.Balance-amount < MinBalance {
		return nil, ErrInsufficientFunds
	}

	a.Balance -= amount
	a.Append(ledger.New(ledger.KindWithdraw, amount, "Cash withdrawal"))

	s.record(fmt.Sprintf("%s withdrew BDT %.2f", a.Username, amount))
	return a, s.persist()
}

// TransferResult reports both post-transfer balances.
type TransferResult struct {
	SenderBalance    float64
	RecipientBalance float64
	CompletedAt      time.Time
}

// Transfer moves amount from the sender to the recipient. Both balance
// changes and both history records commit under one lock acquisition, so the
// total across the pair is conserved at every observable point.
func (s *Service) Transfer(phone, pin, recipientPhone string, amount float64) (TransferResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sender, err := s.confirm(phone, pin)
	if err != nil {
		return TransferResult{}, err
	}
	if amount <= 0 {
		return TransferResult{}, ErrInvalidAmount
	}
	recipient, err := s.store.FindByPhone(recipientPhone)
	if err != nil {
		return TransferResult{}, ErrRecipientNotFound
	}
	if recipient.PhoneNumber == sender.PhoneNumber {
		return TransferResult{}, ErrSelfTransfer
	}
	if sender.Balance-amount < MinBalance {
		return TransferResult{}, ErrInsufficientFunds
	}

	sender.Balance -= amount
	recipient.Balance += amount
	sender.Append(ledger.New(ledger.KindTransferOut, amount, "To "+recipient.PhoneNumber))
	recipient.Append(ledger.New(ledger.KindTransferIn, amount, "From "+sender.PhoneNumber))

	s.record(fmt.Sprintf("%s transferred BDT %.2f to %s", sender.Username, amount, recipient.Username))
	res := TransferResult{
		SenderBalance:    sender.Balance,
		RecipientBalance: recipient.Balance,
		CompletedAt:      time.Now().UTC(),
	}
	return res, s.persist()
}

// PayConvocation debits the convocation fee, floor-checked like a withdrawal.
func (s *Service) PayConvocation(phone, pin string, amount float64) (*account.Account, error) {
	a, err := s.pay(phone, pin, amount, ledger.KindConvocation, "University convocation fee")
	if a != nil && (err == nil || errors.Is(err, ErrPersistence)) {
		s.record(fmt.Sprintf("%s paid convocation fee BDT %.2f", a.Username, amount))
	}
	return a, err
}

// PayBill debits a bill payment to the named biller, floor-checked like a
// withdrawal.
func (s *Service) PayBill(phone, pin, biller string, amount float64) (*account.Account, error) {
	a, err := s.pay(phone, pin, amount, ledger.KindBillPayment, "Biller: "+biller)
	if a != nil && (err == nil || errors.Is(err, ErrPersistence)) {
		s.record(fmt.Sprintf("%s paid bill (%s) BDT %.2f", a.Username, biller, amount))
	}
	return a, err
}

func (s *Service) pay(phone, pin string, amount float64, kind ledger.Kind, description string) (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.confirm(phone, pin)
	if err != nil {
		return nil, err
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if a.Balance-amount < MinBalance {
		return nil, ErrInsufficientFunds
	}

	a.Balance -= amount
	a.Append(ledger.New(kind, amount, description))
	return a, s.persist()
}

// ProfileInput carries the full set of mutable profile attributes. Values
// are applied as given: an empty string overwrites.
type ProfileInput struct {
	FullName         string
	Email            string
	DOB              string
	Gender           string
	MotherName       string
	FatherName       string
	NationalID       string
	BirthCertificate string
	PermanentAddress string
	PresentAddress   string
}

// UpdateProfile overwrites every profile attribute after PIN confirmation.
func (s *Service) UpdateProfile(phone, pin string, in ProfileInput) (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.confirm(phone, pin)
	if err != nil {
		return nil, err
	}

	a.FullName = in.FullName
	a.Email = in.Email
	a.DOB = in.DOB
	a.Gender = in.Gender
	a.MotherName = in.MotherName
	a.FatherName = in.FatherName
	a.NationalID = in.NationalID
	a.BirthCertificate = in.BirthCertificate
	a.PermanentAddress = in.PermanentAddress
	a.PresentAddress = in.PresentAddress

	s.record(a.Username + " updated profile information")
	return a, s.persist()
}

// ChangePIN replaces the PIN after verifying the old one and the
// confirmation.
func (s *Service) ChangePIN(phone, oldPIN, newPIN, confirmPIN string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.confirm(phone, oldPIN)
	if err != nil {
		return err
	}
	if len(newPIN) < MinPINLength {
		return fmt.Errorf("%w: new PIN must be at least %d characters", ErrValidation, MinPINLength)
	}
	if newPIN != confirmPIN {
		return fmt.Errorf("%w: new PIN and confirmation do not match", ErrValidation)
	}

	a.PIN = newPIN

	s.record(a.Username + " changed PIN")
	return s.persist()
}

// DeleteAccount removes the account and its history permanently. The caller
// must invalidate the session it held.
func (s *Service) DeleteAccount(phone, pin string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.confirm(phone, pin)
	if err != nil {
		return err
	}
	if err := s.store.Remove(a.PhoneNumber); err != nil {
		return err
	}

	s.record("Account deleted for user: " + a.Username)
	return s.persist()
}

// History returns a copy of the account's transaction list in append order.
func (s *Service) History(phone string) ([]ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.store.FindByPhone(phone)
	if err != nil {
		return nil, err
	}
	out := make([]ledger.Transaction, len(a.Transactions))
	copy(out, a.Transactions)
	return out, nil
}

// Details returns a value copy of the account for display.
func (s *Service) Details(phone string) (account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, err := s.store.FindByPhone(phone)
	if err != nil {
		return account.Account{}, err
	}
	cp := *a
	cp.Transactions = make([]ledger.Transaction, len(a.Transactions))
	copy(cp.Transactions, a.Transactions)
	return cp, nil
}

// confirm resolves the account and checks the PIN. Callers hold s.mu.
func (s *Service) confirm(phone, pin string) (*account.Account, error) {
	a, err := s.store.FindByPhone(phone)
	if err != nil || a.PIN != pin {
		return nil, ErrInvalidCredentials
	}
	return a, nil
}

// persist flushes the whole store. The mutation it follows has already
// committed, so a failure is logged and reported as ErrPersistence without
// touching in-memory state. Callers hold s.mu.
func (s *Service) persist() error {
	if err := s.snapshots.Save(s.store.All()); err != nil {
		if s.logger != nil {
			s.logger.Error("snapshot save failed", "error", err)
		}
		return err
	}
	return nil
}

func (s *Service) record(message string) {
	if s.trail != nil {
		s.trail.Record(message)
	}
}
