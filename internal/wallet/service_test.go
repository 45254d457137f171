package wallet

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/taka-pay/taka_pay/internal/account"
	"github.com/taka-pay/taka_pay/internal/ledger"
	"github.com/taka-pay/taka_pay/internal/snapshot"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	snapshots := snapshot.NewStore(filepath.Join(t.TempDir(), "accounts.json"))
	return NewService(account.NewStore(), snapshots, nil, nil)
}

func register(t *testing.T, svc *Service, username, phone, pin string) *account.Account {
	t.Helper()
	a, err := svc.Register(RegisterInput{Username: username, Phone: phone, PIN: pin})
	if err != nil {
		t.Fatalf("register %s: %v", phone, err)
	}
	return a
}

func TestRegisterStartsAtZeroWithEmptyHistory(t *testing.T) {
	svc := newTestService(t)

	a := register(t, svc, "rahim", "0170000001", "1234")
	if a.Balance != 0.0 {
		t.Fatalf("expected zero balance, got %.2f", a.Balance)
	}
	if len(a.Transactions) != 0 {
		t.Fatalf("expected empty history, got %d records", len(a.Transactions))
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t)

	cases := []RegisterInput{
		{Username: "", Phone: "0170000001", PIN: "1234"},
		{Username: "rahim", Phone: "", PIN: "1234"},
		{Username: "rahim", Phone: "0170000001", PIN: ""},
		{Username: "rahim", Phone: "0170000001", PIN: "123"},
	}
	for _, in := range cases {
		if _, err := svc.Register(in); !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation for %+v, got %v", in, err)
		}
	}
	if svc.Store().Len() != 0 {
		t.Fatalf("store mutated by rejected registration")
	}
}

func TestRegisterDuplicatePhoneLeavesStoreUnchanged(t *testing.T) {
	svc := newTestService(t)
	register(t, svc, "rahim", "0170000001", "1234")

	_, err := svc.Register(RegisterInput{Username: "karim", Phone: "0170000001", PIN: "5678"})
	if !errors.Is(err, ErrDuplicatePhone) {
		t.Fatalf("expected ErrDuplicatePhone, got %v", err)
	}

	a, err := svc.Store().FindByPhone("0170000001")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if a.Username != "rahim" || a.PIN != "1234" {
		t.Fatalf("existing account changed: %+v", a)
	}
	if svc.Store().Len() != 1 {
		t.Fatalf("expected 1 account, got %d", svc.Store().Len())
	}
}

func TestAuthenticate(t *testing.T) {
	svc := newTestService(t)
	register(t, svc, "rahim", "0170000001", "1234")

	if _, err := svc.Authenticate("0170000001", "1234"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if _, err := svc.Authenticate("0170000001", "9999"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials on wrong PIN, got %v", err)
	}
	if _, err := svc.Authenticate("0170000999", "1234"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials on unknown phone, got %v", err)
	}
}

func TestDepositIncreasesBalanceAndAppendsOneRecord(t *testing.T) {
	svc := newTestService(t)
	register(t, svc, "rahim", "0170000001", "1234")

	a, err := svc.Deposit("0170000001", 250.75)
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if a.Balance != 250.75 {
		t.Fatalf("expected balance 250.75, got %.2f", a.Balance)
	}
	if len(a.Transactions) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(a.Transactions))
	}
	tx := a.Transactions[0]
	if tx.Kind != ledger.KindDeposit || tx.Amount != 250.75 {
		t.Fatalf("unexpected record: %+v", tx)
	}

	for _, bad := range []float64{0, -5} {
		if _, err := svc.Deposit("0170000001", bad); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("expected ErrInvalidAmount for %.2f, got %v", bad, err)
		}
	}
}

func TestWithdrawEnforcesFloor(t *testing.T) {
	svc := newTestService(t)
	register(t, svc, "rahim", "0170000001", "1234")
	if _, err := svc.Deposit("0170000001", 500); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	// 500 - 400 = 100, exactly at the floor: allowed.
	a, err := svc.Withdraw("0170000001", "1234", 400)
	if err != nil {
		t.Fatalf("withdraw at floor: %v", err)
	}
	if a.Balance != 100 {
		t.Fatalf("expected balance 100, got %.2f", a.Balance)
	}

	// Any further debit breaches the floor and must not mutate anything.
	before := len(a.Transactions)
	if _, err := svc.Withdraw("0170000001", "1234", 0.01); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if a.Balance != 100 || len(a.Transactions) != before {
		t.Fatalf("rejected withdrawal mutated state: balance=%.2f records=%d", a.Balance, len(a.Transactions))
	}
}

func TestWithdrawRequiresPIN(t *testing.T) {
	svc := newTestService(t)
	register(t, svc, "rahim", "0170000001", "1234")
	if _, err := svc.Deposit("0170000001", 500); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	if _, err := svc.Withdraw("0170000001", "0000", 100); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestDepositWithdrawScenario(t *testing.T) {
	svc := newTestService(t)
	register(t, svc, "rahim", "0170000001", "1234")

	a, err := svc.Deposit("0170000001", 500.0)
	if err != nil || a.Balance != 500.0 {
		t.Fatalf("after deposit: balance=%.2f err=%v", a.Balance, err)
	}
	a, err = svc.Withdraw("0170000001", "1234", 300.0)
	if err != nil || a.Balance != 200.0 {
		t.Fatalf("after withdraw 300: balance=%.2f err=%v", a.Balance, err)
	}
	if _, err := svc.Withdraw("0170000001", "1234", 150.0); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds for 150, got %v", err)
	}
	details, err := svc.Details("0170000001")
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if details.Balance != 200.0 {
		t.Fatalf("expected balance to stay 200, got %.2f", details.Balance)
	}
}

func TestTransferConservesTotalAndPairsRecords(t *testing.T) {
	svc := newTestService(t)
	register(t, svc, "alice", "0170000001", "1234")
	register(t, svc, "bob", "0170000002", "5678")
	if _, err := svc.Deposit("0170000001", 1000.0); err != nil {
		t.Fatalf("deposit A: %v", err)
	}
	if _, err := svc.Deposit("0170000002", 50.0); err != nil {
		t.Fatalf("deposit B: %v", err)
	}

	res, err := svc.Transfer("0170000001", "1234", "0170000002", 400.0)
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if res.SenderBalance != 600.0 || res.RecipientBalance != 450.0 {
		t.Fatalf("unexpected balances: %+v", res)
	}
	if res.SenderBalance+res.RecipientBalance != 1050.0 {
		t.Fatalf("total not conserved: %.2f", res.SenderBalance+res.RecipientBalance)
	}

	a, _ := svc.History("0170000001")
	b, _ := svc.History("0170000002")
	if got := a[len(a)-1]; got.Kind != ledger.KindTransferOut || got.Amount != 400.0 || got.Description != "To 0170000002" {
		t.Fatalf("sender record wrong: %+v", got)
	}
	if got := b[len(b)-1]; got.Kind != ledger.KindTransferIn || got.Amount != 400.0 || got.Description != "From 0170000001" {
		t.Fatalf("recipient record wrong: %+v", got)
	}
}

func TestTransferFailureModes(t *testing.T) {
	svc := newTestService(t)
	register(t, svc, "alice", "0170000001", "1234")
	register(t, svc, "bob", "0170000002", "5678")
	if _, err := svc.Deposit("0170000001", 1000.0); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	if _, err := svc.Transfer("0170000001", "0000", "0170000002", 100); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Transfer("0170000001", "1234", "0170000002", -10); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := svc.Transfer("0170000001", "1234", "0179999999", 100); !errors.Is(err, ErrRecipientNotFound) {
		t.Fatalf("expected ErrRecipientNotFound, got %v", err)
	}
	if _, err := svc.Transfer("0170000001", "1234", "0170000001", 100); !errors.Is(err, ErrSelfTransfer) {
		t.Fatalf("expected ErrSelfTransfer, got %v", err)
	}
	if _, err := svc.Transfer("0170000001", "1234", "0170000002", 950); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	// None of the rejections may have moved money or written records.
	a, _ := svc.Details("0170000001")
	b, _ := svc.Details("0170000002")
	if a.Balance != 1000.0 || b.Balance != 0.0 {
		t.Fatalf("balances changed by rejected transfers: %.2f / %.2f", a.Balance, b.Balance)
	}
	if len(a.Transactions) != 1 || len(b.Transactions) != 0 {
		t.Fatalf("records appended by rejected transfers")
	}
}

func TestSelfTransferAlwaysRejected(t *testing.T) {
	svc := newTestService(t)
	register(t, svc, "alice", "0170000001", "1234")
	if _, err := svc.Deposit("0170000001", 10_000); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	for _, amount := range []float64{1, 100, 9_000} {
		if _, err := svc.Transfer("0170000001", "1234", "0170000001", amount); !errors.Is(err, ErrSelfTransfer) {
			t.Fatalf("expected ErrSelfTransfer for %.2f, got %v", amount, err)
		}
	}
}

func TestPayConvocationAndBill(t *testing.T) {
	svc := newTestService(t)
	register(t, svc, "rahim", "0170000001", "1234")
	if _, err := svc.Deposit("0170000001", 1000); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	a, err := svc.PayConvocation("0170000001", "1234", 300)
	if err != nil {
		t.Fatalf("pay convocation: %v", err)
	}
	if a.Balance != 700 {
		t.Fatalf("expected balance 700, got %.2f", a.Balance)
	}
	if got := a.Transactions[len(a.Transactions)-1]; got.Kind != ledger.KindConvocation || got.Description != "University convocation fee" {
		t.Fatalf("convocation record wrong: %+v", got)
	}

	a, err = svc.PayBill("0170000001", "1234", "DESCO", 200)
	if err != nil {
		t.Fatalf("pay bill: %v", err)
	}
	if a.Balance != 500 {
		t.Fatalf("expected balance 500, got %.2f", a.Balance)
	}
	if got := a.Transactions[len(a.Transactions)-1]; got.Kind != ledger.KindBillPayment || got.Description != "Biller: DESCO" {
		t.Fatalf("bill record wrong: %+v", got)
	}

	// Both share the withdrawal floor check.
	if _, err := svc.PayBill("0170000001", "1234", "DESCO", 450); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if _, err := svc.PayConvocation("0170000001", "0000", 10); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestUpdateProfileOverwritesAllFields(t *testing.T) {
	svc := newTestService(t)
	register(t, svc, "rahim", "0170000001", "1234")

	_, err := svc.UpdateProfile("0170000001", "1234", ProfileInput{
		FullName: "Rahim Uddin",
		Email:    "rahim@example.com",
		DOB:      "1999-01-01",
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}

	// A second update with empty fields overwrites with empty strings.
	a, err := svc.UpdateProfile("0170000001", "1234", ProfileInput{FullName: "Rahim U."})
	if err != nil {
		t.Fatalf("second update: %v", err)
	}
	if a.FullName != "Rahim U." || a.Email != "" || a.DOB != "" {
		t.Fatalf("empty strings did not overwrite: %+v", a)
	}

	if _, err := svc.UpdateProfile("0170000001", "0000", ProfileInput{}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestChangePIN(t *testing.T) {
	svc := newTestService(t)
	register(t, svc, "rahim", "0170000001", "1234")

	if err := svc.ChangePIN("0170000001", "0000", "5678", "5678"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := svc.ChangePIN("0170000001", "1234", "56", "56"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for short PIN, got %v", err)
	}
	if err := svc.ChangePIN("0170000001", "1234", "5678", "8765"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for mismatch, got %v", err)
	}
	if err := svc.ChangePIN("0170000001", "1234", "5678", "5678"); err != nil {
		t.Fatalf("change pin: %v", err)
	}

	if _, err := svc.Authenticate("0170000001", "1234"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old PIN still accepted")
	}
	if _, err := svc.Authenticate("0170000001", "5678"); err != nil {
		t.Fatalf("new PIN rejected: %v", err)
	}
}

func TestDeleteAccount(t *testing.T) {
	svc := newTestService(t)
	register(t, svc, "rahim", "0170000001", "1234")

	if err := svc.DeleteAccount("0170000001", "0000"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := svc.DeleteAccount("0170000001", "1234"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Authenticate("0170000001", "1234"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("deleted account still authenticates")
	}
	if svc.Store().Len() != 0 {
		t.Fatalf("store not empty after delete")
	}
}

func TestStateSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.json")
	snapshots := snapshot.NewStore(path)
	svc := NewService(account.NewStore(), snapshots, nil, nil)

	register(t, svc, "alice", "0170000001", "1234")
	register(t, svc, "bob", "0170000002", "5678")
	if _, err := svc.Deposit("0170000001", 1000); err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if _, err := svc.Transfer("0170000001", "1234", "0170000002", 400); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	// A fresh store loading the same snapshot sees identical state.
	restored := account.NewStore()
	restored.Restore(snapshot.NewStore(path).Load())
	svc2 := NewService(restored, snapshot.NewStore(path), nil, nil)

	a, err := svc2.Details("0170000001")
	if err != nil {
		t.Fatalf("details A: %v", err)
	}
	b, err := svc2.Details("0170000002")
	if err != nil {
		t.Fatalf("details B: %v", err)
	}
	if a.Balance != 600 || b.Balance != 400 {
		t.Fatalf("balances not restored: %.2f / %.2f", a.Balance, b.Balance)
	}
	if len(a.Transactions) != 2 || len(b.Transactions) != 1 {
		t.Fatalf("histories not restored: %d / %d", len(a.Transactions), len(b.Transactions))
	}
	if a.Transactions[1].Kind != ledger.KindTransferOut || b.Transactions[0].Kind != ledger.KindTransferIn {
		t.Fatalf("record order or kinds not restored")
	}

	if _, err := svc2.Authenticate("0170000002", "5678"); err != nil {
		t.Fatalf("restored account cannot authenticate: %v", err)
	}
}

func TestPersistenceFailureKeepsInMemoryState(t *testing.T) {
	// Point the snapshot store at a path whose parent is a regular file so
	// every save fails.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocked")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	snapshots := snapshot.NewStore(filepath.Join(blocker, "accounts.json"))
	svc := NewService(account.NewStore(), snapshots, nil, nil)

	a, err := svc.Register(RegisterInput{Username: "rahim", Phone: "0170000001", PIN: "1234"})
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if a == nil {
		t.Fatalf("expected the account despite the flush failure")
	}

	// The mutation stands: the account is usable in memory.
	if _, err := svc.Authenticate("0170000001", "1234"); err != nil {
		t.Fatalf("authenticate after failed flush: %v", err)
	}
}
