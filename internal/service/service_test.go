package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Dan9191/advance-service/internal/logging"
	"github.com/Dan9191/advance-service/internal/models"
	"github.com/Dan9191/advance-service/internal/repository"
)

type railCall struct {
	src, dst  int64
	amount    decimal.Decimal
	direction models.Direction
}

// fakeRail accepts every transfer and settles it as settle decides
type fakeRail struct {
	mu        sync.Mutex
	nextID    int64
	report    models.Report
	calls     []railCall
	settle    func(c railCall) models.Status
	reject    bool
	execErr   error
	reportErr error
}

func newFakeRail() *fakeRail {
	return &fakeRail{report: make(models.Report)}
}

func (r *fakeRail) Execute(_ context.Context, src, dst int64, amount decimal.Decimal, direction models.Direction) (int64, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := railCall{src: src, dst: dst, amount: amount, direction: direction}
	r.calls = append(r.calls, c)
	if r.execErr != nil {
		return 0, false, r.execErr
	}
	if r.reject {
		return 0, false, nil
	}
	r.nextID++
	status := models.StatusSuccess
	if r.settle != nil {
		status = r.settle(c)
	}
	r.report[r.nextID] = status
	return r.nextID, true, nil
}

func (r *fakeRail) Report(context.Context) (models.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.reportErr != nil {
		return nil, r.reportErr
	}
	out := make(models.Report, len(r.report))
	for id, s := range r.report {
		out[id] = s
	}
	return out, nil
}

func (r *fakeRail) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func failDebitsFrom(accountID int64) func(railCall) models.Status {
	return func(c railCall) models.Status {
		if c.direction == models.DirectionDebit && c.src == accountID {
			return models.StatusFail
		}
		return models.StatusSuccess
	}
}

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func (c *clock) advanceDays(n int) { c.now = c.now.AddDate(0, 0, n) }

var grantDay = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, store repository.Store, rail Rail) (*Service, *clock) {
	t.Helper()
	c := &clock{now: grantDay.Add(10 * time.Hour)}
	return NewService(store, rail, logging.Discard(), WithClock(c.Now)), c
}

func mustAddAccount(t *testing.T, s *Service, id int64) {
	t.Helper()
	if err := s.AddAccount(context.Background(), &models.Account{ID: id, Balance: decimal.Zero}); err != nil {
		t.Fatalf("failed to add account %d: %v", id, err)
	}
}

func mustGetAccount(t *testing.T, s *Service, id int64) *models.Account {
	t.Helper()
	account, err := s.GetAccount(context.Background(), id)
	if err != nil {
		t.Fatalf("failed to get account %d: %v", id, err)
	}
	return account
}

func mustTransactions(t *testing.T, s *Service) []models.Transaction {
	t.Helper()
	txs, err := s.ListTransactions(context.Background())
	if err != nil {
		t.Fatalf("failed to list transactions: %v", err)
	}
	return txs
}

func expectBalance(t *testing.T, account *models.Account, want int64) {
	t.Helper()
	if !account.Balance.Equal(decimal.NewFromInt(want)) {
		t.Fatalf("account %d: expected balance %d got %s", account.ID, want, account.Balance)
	}
}

func TestGrantAdvance(t *testing.T) {
	ctx := context.Background()
	rail := newFakeRail()
	s, _ := newTestService(t, repository.NewMemoryStore(), rail)
	mustAddAccount(t, s, 1001)

	railID, err := s.GrantAdvance(ctx, 1001, decimal.NewFromInt(1200))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if railID != 1 {
		t.Fatalf("expected rail id 1 got %d", railID)
	}

	account := mustGetAccount(t, s, 1001)
	expectBalance(t, account, 1200)
	if account.Loan == nil {
		t.Fatal("expected a loan on the account")
	}
	if !account.Loan.Debt.Equal(decimal.NewFromInt(1200)) || !account.Loan.GrantedOn.Equal(grantDay) {
		t.Fatalf("unexpected loan %+v", account.Loan)
	}
	if len(account.Loan.Installments) != models.NumberOfInstallments {
		t.Fatalf("expected %d installments got %d", models.NumberOfInstallments, len(account.Loan.Installments))
	}
	for _, inst := range account.Loan.Installments {
		if !inst.Amount.Equal(decimal.NewFromInt(100)) {
			t.Fatalf("expected installment of 100 got %s", inst.Amount)
		}
	}

	txs := mustTransactions(t, s)
	if len(txs) != 1 {
		t.Fatalf("expected 1 transaction got %d", len(txs))
	}
	credit := txs[0]
	if credit.Status != models.StatusSuccess || credit.Direction != models.DirectionCredit {
		t.Fatalf("unexpected credit %+v", credit)
	}
	if credit.SourceID != models.BankAccountID || credit.DestinationID != 1001 || credit.RailID != 1 {
		t.Fatalf("unexpected credit route %+v", credit)
	}
	if !credit.Date.Equal(grantDay) {
		t.Fatalf("expected credit dated %s got %s", grantDay, credit.Date)
	}
}

func TestGrantAdvanceUnknownAccount(t *testing.T) {
	rail := newFakeRail()
	s, _ := newTestService(t, repository.NewMemoryStore(), rail)

	_, err := s.GrantAdvance(context.Background(), 9999, decimal.NewFromInt(500))
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected %v got %v", ErrAccountNotFound, err)
	}
	if rail.callCount() != 0 {
		t.Fatalf("expected no rail calls got %d", rail.callCount())
	}

	txs := mustTransactions(t, s)
	if len(txs) != 1 {
		t.Fatalf("expected 1 audit transaction got %d", len(txs))
	}
	if txs[0].Status != models.StatusFail || txs[0].DestinationID != 9999 {
		t.Fatalf("unexpected audit transaction %+v", txs[0])
	}
}

func TestGrantAdvanceRejectedByRail(t *testing.T) {
	rail := newFakeRail()
	rail.reject = true
	s, _ := newTestService(t, repository.NewMemoryStore(), rail)
	mustAddAccount(t, s, 1001)

	_, err := s.GrantAdvance(context.Background(), 1001, decimal.NewFromInt(1200))
	if !errors.Is(err, ErrTransactionRejected) {
		t.Fatalf("expected %v got %v", ErrTransactionRejected, err)
	}

	account := mustGetAccount(t, s, 1001)
	expectBalance(t, account, 0)
	if account.Loan != nil {
		t.Fatal("expected no loan after a rejected advance")
	}
	txs := mustTransactions(t, s)
	if len(txs) != 1 || txs[0].Status != models.StatusFail || txs[0].RailID != 0 {
		t.Fatalf("expected one failed transaction without rail id, got %+v", txs)
	}
}

func TestGrantAdvanceSettledAsFail(t *testing.T) {
	rail := newFakeRail()
	rail.settle = func(railCall) models.Status { return models.StatusFail }
	s, _ := newTestService(t, repository.NewMemoryStore(), rail)
	mustAddAccount(t, s, 1001)

	_, err := s.GrantAdvance(context.Background(), 1001, decimal.NewFromInt(1200))
	if !errors.Is(err, ErrTransactionRejected) {
		t.Fatalf("expected %v got %v", ErrTransactionRejected, err)
	}
	if mustGetAccount(t, s, 1001).Loan != nil {
		t.Fatal("expected no loan after a failed advance")
	}
	txs := mustTransactions(t, s)
	if len(txs) != 1 || txs[0].Status != models.StatusFail || txs[0].RailID != 1 {
		t.Fatalf("expected the failed transaction to keep its rail id, got %+v", txs)
	}
}

func TestGrantAdvanceRailUnavailable(t *testing.T) {
	rail := newFakeRail()
	rail.execErr = errors.New("connection refused")
	s, _ := newTestService(t, repository.NewMemoryStore(), rail)
	mustAddAccount(t, s, 1001)

	_, err := s.GrantAdvance(context.Background(), 1001, decimal.NewFromInt(1200))
	if !errors.Is(err, rail.execErr) {
		t.Fatalf("expected the transport error got %v", err)
	}
	if mustGetAccount(t, s, 1001).Loan != nil {
		t.Fatal("expected no loan")
	}
	if txs := mustTransactions(t, s); len(txs) != 1 || txs[0].Status != models.StatusFail {
		t.Fatalf("expected one failed transaction got %+v", txs)
	}
}

func TestGrantAdvanceReportUnavailable(t *testing.T) {
	rail := newFakeRail()
	rail.reportErr = errors.New("timeout")
	s, _ := newTestService(t, repository.NewMemoryStore(), rail)
	mustAddAccount(t, s, 1001)

	if _, err := s.GrantAdvance(context.Background(), 1001, decimal.NewFromInt(1200)); err == nil {
		t.Fatal("expected an error when the report cannot be fetched")
	}
	if txs := mustTransactions(t, s); len(txs) != 1 || txs[0].Status != models.StatusFail {
		t.Fatalf("expected one failed transaction got %+v", txs)
	}
}

func TestGrantAdvanceLoanOutstanding(t *testing.T) {
	ctx := context.Background()
	rail := newFakeRail()
	s, _ := newTestService(t, repository.NewMemoryStore(), rail)
	mustAddAccount(t, s, 1001)

	if _, err := s.GrantAdvance(ctx, 1001, decimal.NewFromInt(1200)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := s.GrantAdvance(ctx, 1001, decimal.NewFromInt(300))
	if !errors.Is(err, ErrLoanOutstanding) {
		t.Fatalf("expected %v got %v", ErrLoanOutstanding, err)
	}
	if rail.callCount() != 1 {
		t.Fatalf("expected the second advance to skip the rail, got %d calls", rail.callCount())
	}

	account := mustGetAccount(t, s, 1001)
	expectBalance(t, account, 1200)
	if !account.Loan.Debt.Equal(decimal.NewFromInt(1200)) {
		t.Fatalf("expected the original loan to be kept, got debt %s", account.Loan.Debt)
	}
	txs := mustTransactions(t, s)
	if len(txs) != 2 || txs[1].Status != models.StatusFail {
		t.Fatalf("expected the refused advance to be recorded as failed, got %+v", txs)
	}
}

func TestGrantAdvanceInvalidAmount(t *testing.T) {
	rail := newFakeRail()
	s, _ := newTestService(t, repository.NewMemoryStore(), rail)
	mustAddAccount(t, s, 1001)

	for _, amount := range []string{"0", "-5", "0.11"} {
		_, err := s.GrantAdvance(context.Background(), 1001, decimal.RequireFromString(amount))
		if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("%s: expected %v got %v", amount, ErrInvalidAmount, err)
		}
	}
	if rail.callCount() != 0 || len(mustTransactions(t, s)) != 0 {
		t.Fatal("expected invalid amounts to be refused before anything is recorded")
	}
}

func TestAddAccountReservedID(t *testing.T) {
	s, _ := newTestService(t, repository.NewMemoryStore(), newFakeRail())
	if err := s.AddAccount(context.Background(), &models.Account{ID: models.BankAccountID}); err == nil {
		t.Fatal("expected the bank account id to be refused")
	}
}

func TestAddAccountDuplicate(t *testing.T) {
	s, _ := newTestService(t, repository.NewMemoryStore(), newFakeRail())
	mustAddAccount(t, s, 5)
	err := s.AddAccount(context.Background(), &models.Account{ID: 5})
	if !errors.Is(err, repository.ErrAccountExists) {
		t.Fatalf("expected %v got %v", repository.ErrAccountExists, err)
	}
}

func TestRepaymentSuccess(t *testing.T) {
	ctx := context.Background()
	rail := newFakeRail()
	s, c := newTestService(t, repository.NewMemoryStore(), rail)
	mustAddAccount(t, s, 1001)
	if _, err := s.GrantAdvance(ctx, 1001, decimal.NewFromInt(1200)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c.advanceDays(7)
	summary, err := s.RunDailyRepayments(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Attempted != 1 || summary.Succeeded != 1 || summary.Failed != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if summary.RunID == "" || !summary.Day.Equal(grantDay.AddDate(0, 0, 7)) {
		t.Fatalf("unexpected run identity %+v", summary)
	}

	account := mustGetAccount(t, s, 1001)
	expectBalance(t, account, 1100)
	first := account.Loan.Installments[0]
	if first.Status != models.StatusSuccess || first.RailID != 2 {
		t.Fatalf("expected the first installment to be settled, got %+v", first)
	}
	if !account.Loan.Installments[1].Pending() {
		t.Fatal("expected the second installment to stay pending")
	}

	txs := mustTransactions(t, s)
	if len(txs) != 2 || txs[1].Direction != models.DirectionDebit || txs[1].SourceID != 1001 {
		t.Fatalf("expected a recorded debit, got %+v", txs)
	}
}

func TestRepaymentFailureReschedules(t *testing.T) {
	ctx := context.Background()
	rail := newFakeRail()
	rail.settle = failDebitsFrom(1001)
	s, c := newTestService(t, repository.NewMemoryStore(), rail)
	mustAddAccount(t, s, 1001)
	if _, err := s.GrantAdvance(ctx, 1001, decimal.NewFromInt(1200)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c.advanceDays(7)
	summary, err := s.RunDailyRepayments(ctx)
	if !errors.Is(err, ErrTransactionRejected) {
		t.Fatalf("expected %v got %v", ErrTransactionRejected, err)
	}
	if summary.Failed != 1 || summary.Rescheduled != 1 || len(summary.FailedAccounts) != 1 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	account := mustGetAccount(t, s, 1001)
	expectBalance(t, account, 1200)
	installments := account.Loan.Installments
	if len(installments) != models.NumberOfInstallments+1 {
		t.Fatalf("expected %d entries got %d", models.NumberOfInstallments+1, len(installments))
	}
	if installments[0].Status != models.StatusFail {
		t.Fatalf("expected the failed entry to stay failed, got %q", installments[0].Status)
	}
	appended := installments[len(installments)-1]
	wantDue := grantDay.AddDate(0, 0, 7*(models.NumberOfInstallments+1))
	if !appended.Pending() || !appended.Date.Equal(wantDue) || !appended.Amount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected rescheduled entry %+v, want due %s", appended, models.FormatDay(wantDue))
	}

	txs := mustTransactions(t, s)
	if len(txs) != 2 || txs[1].Status != models.StatusFail {
		t.Fatalf("expected the failed debit to be recorded, got %+v", txs)
	}
}

func TestRepaymentNothingDue(t *testing.T) {
	ctx := context.Background()
	rail := newFakeRail()
	s, c := newTestService(t, repository.NewMemoryStore(), rail)
	mustAddAccount(t, s, 1001)
	mustAddAccount(t, s, 1002)
	if _, err := s.GrantAdvance(ctx, 1001, decimal.NewFromInt(1200)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c.advanceDays(3)
	summary, err := s.RunDailyRepayments(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Accounts != 1 || summary.Attempted != 0 {
		t.Fatalf("unexpected summary %+v", summary)
	}
	if rail.callCount() != 1 {
		t.Fatalf("expected no repayment calls, got %d rail calls", rail.callCount())
	}
}

func TestRepaymentSettlesLoan(t *testing.T) {
	ctx := context.Background()
	rail := newFakeRail()
	s, c := newTestService(t, repository.NewMemoryStore(), rail)
	mustAddAccount(t, s, 1001)
	if _, err := s.GrantAdvance(ctx, 1001, decimal.NewFromInt(1000)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	settled := 0
	for week := 1; week <= models.NumberOfInstallments; week++ {
		c.advanceDays(7)
		summary, err := s.RunDailyRepayments(ctx)
		if err != nil {
			t.Fatalf("week %d: unexpected error: %v", week, err)
		}
		settled += summary.Settled
	}
	if settled != 1 {
		t.Fatalf("expected the loan to settle once, got %d", settled)
	}

	account := mustGetAccount(t, s, 1001)
	expectBalance(t, account, 0)
	loan := account.Loan
	lastDue := grantDay.AddDate(0, 0, 7*models.NumberOfInstallments)
	if loan.SettledOn == nil || !loan.SettledOn.Equal(lastDue) {
		t.Fatalf("expected settled on %s got %v", models.FormatDay(lastDue), loan.SettledOn)
	}
	if loan.State(c.Now()) != models.LoanStateSettled {
		t.Fatalf("expected settled state got %s", loan.State(c.Now()))
	}

	if _, err := s.GrantAdvance(ctx, 1001, decimal.NewFromInt(600)); err != nil {
		t.Fatalf("expected a new advance after settlement, got %v", err)
	}
	account = mustGetAccount(t, s, 1001)
	expectBalance(t, account, 600)
	if account.Loan.Settled() || !account.Loan.Debt.Equal(decimal.NewFromInt(600)) {
		t.Fatalf("expected a fresh loan, got %+v", account.Loan)
	}
}

func TestRepaymentAccountIsolation(t *testing.T) {
	ctx := context.Background()
	rail := newFakeRail()
	rail.settle = failDebitsFrom(1)
	s, c := newTestService(t, repository.NewMemoryStore(), rail)
	for _, id := range []int64{1, 2} {
		mustAddAccount(t, s, id)
		if _, err := s.GrantAdvance(ctx, id, decimal.NewFromInt(1200)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	c.advanceDays(7)
	summary, err := s.RunDailyRepayments(ctx)
	if err == nil {
		t.Fatal("expected the failing account to be reported")
	}
	if len(summary.FailedAccounts) != 1 || summary.FailedAccounts[0] != 1 {
		t.Fatalf("expected only account 1 to fail, got %v", summary.FailedAccounts)
	}
	if summary.Succeeded != 1 {
		t.Fatalf("expected account 2 to be paid, got %+v", summary)
	}
	expectBalance(t, mustGetAccount(t, s, 1), 1200)
	expectBalance(t, mustGetAccount(t, s, 2), 1100)
}

func TestRepaymentStopsAccountAfterFailure(t *testing.T) {
	ctx := context.Background()
	rail := newFakeRail()
	store := repository.NewMemoryStore()
	s, _ := newTestService(t, store, rail)

	due := grantDay.AddDate(0, 0, 7)
	debit := models.Transaction{
		Amount:        decimal.NewFromInt(50),
		Direction:     models.DirectionDebit,
		Date:          due,
		SourceID:      7,
		DestinationID: models.BankAccountID,
	}
	account := &models.Account{ID: 7, Balance: decimal.NewFromInt(100), Loan: &models.Loan{
		Debt:         decimal.NewFromInt(100),
		GrantedOn:    grantDay,
		Installments: []models.Transaction{debit, debit},
	}}
	if err := store.CreateAccount(ctx, account); err != nil {
		t.Fatalf("failed to seed account: %v", err)
	}

	rail.settle = failDebitsFrom(7)
	summary, err := s.RunRepaymentsOn(ctx, due)
	if err == nil {
		t.Fatal("expected a failure")
	}
	if summary.Attempted != 1 || rail.callCount() != 1 {
		t.Fatalf("expected the second due installment to be left for later, got %+v", summary)
	}

	got := mustGetAccount(t, s, 7).Loan.Installments
	if len(got) != 3 || !got[1].Pending() || !got[2].Date.Equal(due.AddDate(0, 0, 7)) {
		t.Fatalf("unexpected schedule after failure %+v", got)
	}
}

func TestRunRepaymentsOnBackRun(t *testing.T) {
	ctx := context.Background()
	rail := newFakeRail()
	s, _ := newTestService(t, repository.NewMemoryStore(), rail)
	mustAddAccount(t, s, 1001)
	if _, err := s.GrantAdvance(ctx, 1001, decimal.NewFromInt(1200)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	summary, err := s.RunRepaymentsOn(ctx, grantDay.AddDate(0, 0, 7).Add(15*time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Succeeded != 1 {
		t.Fatalf("expected one installment collected, got %+v", summary)
	}
	expectBalance(t, mustGetAccount(t, s, 1001), 1100)
}

// failingStore injects persistence failures into an otherwise working store
type failingStore struct {
	repository.Store
	listErr   error
	updateErr error
}

func (f *failingStore) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.Store.ListAccounts(ctx)
}

func (f *failingStore) UpdateAccount(ctx context.Context, account *models.Account) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	return f.Store.UpdateAccount(ctx, account)
}

func TestRepaymentSurfacesStoreErrors(t *testing.T) {
	ctx := context.Background()
	store := &failingStore{Store: repository.NewMemoryStore()}
	s, c := newTestService(t, store, newFakeRail())
	mustAddAccount(t, s, 1001)
	if _, err := s.GrantAdvance(ctx, 1001, decimal.NewFromInt(1200)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.advanceDays(7)

	store.listErr = &repository.StoreError{Op: "list accounts", Err: errors.New("disk I/O error")}
	_, err := s.RunDailyRepayments(ctx)
	var storeErr *repository.StoreError
	if !errors.As(err, &storeErr) || storeErr.Op != "list accounts" {
		t.Fatalf("expected a list failure, got %v", err)
	}

	store.listErr = nil
	store.updateErr = &repository.StoreError{Op: "update account", Err: errors.New("database is locked")}
	_, err = s.RunDailyRepayments(ctx)
	if !errors.As(err, &storeErr) || storeErr.Op != "update account" {
		t.Fatalf("expected an update failure, got %v", err)
	}
}

func TestLoanStatus(t *testing.T) {
	ctx := context.Background()
	rail := newFakeRail()
	rail.settle = failDebitsFrom(1001)
	s, c := newTestService(t, repository.NewMemoryStore(), rail)
	mustAddAccount(t, s, 1001)
	if _, err := s.GrantAdvance(ctx, 1001, decimal.NewFromInt(1200)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	status, err := s.LoanStatus(ctx, 1001)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.State != models.LoanStateOpen || status.Pending != models.NumberOfInstallments {
		t.Fatalf("unexpected status for a fresh loan %+v", status)
	}

	c.advanceDays(7)
	s.RunDailyRepayments(ctx) // nolint:errcheck

	status, err = s.LoanStatus(ctx, 1001)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.State != models.LoanStateInArrears {
		t.Fatalf("expected in_arrears got %s", status.State)
	}
	if status.Failed != 1 || status.Pending != models.NumberOfInstallments {
		t.Fatalf("unexpected counts %+v", status)
	}
	if !status.Paid.IsZero() || !status.Outstanding.Equal(decimal.NewFromInt(1200)) {
		t.Fatalf("unexpected amounts paid=%s outstanding=%s", status.Paid, status.Outstanding)
	}
	nextDue := grantDay.AddDate(0, 0, 14)
	if status.NextDue == nil || !status.NextDue.Equal(nextDue) {
		t.Fatalf("expected next due %s got %v", models.FormatDay(nextDue), status.NextDue)
	}
}

func TestLoanStatusWithoutLoan(t *testing.T) {
	s, _ := newTestService(t, repository.NewMemoryStore(), newFakeRail())
	mustAddAccount(t, s, 1001)

	if _, err := s.LoanStatus(context.Background(), 1001); !errors.Is(err, ErrNoLoan) {
		t.Fatalf("expected %v got %v", ErrNoLoan, err)
	}
	if _, err := s.LoanStatus(context.Background(), 42); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected %v got %v", ErrAccountNotFound, err)
	}
}

func TestDownloadReport(t *testing.T) {
	rail := newFakeRail()
	rail.report[3] = models.StatusFail
	s, _ := newTestService(t, repository.NewMemoryStore(), rail)

	report, err := s.DownloadReport(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.StatusOf(3) != models.StatusFail || len(report) != 1 {
		t.Fatalf("unexpected report %v", report)
	}

	rail.reportErr = errors.New("unavailable")
	if _, err := s.DownloadReport(context.Background()); !errors.Is(err, rail.reportErr) {
		t.Fatalf("expected the rail error got %v", err)
	}
}
