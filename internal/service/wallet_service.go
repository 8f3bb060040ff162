// internal/service/wallet_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ledgerflow-wallet/internal/domain"
	"ledgerflow-wallet/internal/repository"
	"ledgerflow-wallet/internal/util"
	"ledgerflow-wallet/pkg/db"
)

// maxCommandAttempts bounds the reload-and-retry loop on version conflicts.
const maxCommandAttempts = 3

// Config carries the policy knobs the aggregates need. They are passed in
// explicitly so aggregate logic stays deterministic given (state, command,
// config) with no ambient reads.
type Config struct {
	Limits            domain.Limits
	SnapshotFrequency int64
	DefaultCurrency   string
}

// OperationResult is the outcome of a single-wallet money movement.
type OperationResult struct {
	WalletID     string `json:"wallet_id"`
	BalanceCents int64  `json:"balance_cents"`
	Balance      string `json:"balance"`
	Currency     string `json:"currency"`
}

// TransferResult is the outcome of a transfer, carrying both post-operation
// balances.
type TransferResult struct {
	TransferID            string `json:"transfer_id"`
	WalletID              string `json:"wallet_id"`
	BalanceCents          int64  `json:"balance_cents"`
	Balance               string `json:"balance"`
	RecipientWalletID     string `json:"recipient_wallet_id"`
	RecipientBalanceCents int64  `json:"recipient_balance_cents"`
	RecipientBalance      string `json:"recipient_balance"`
	AmountCents           int64  `json:"amount_cents"`
	Amount                string `json:"amount"`
	Currency              string `json:"currency"`
}

// WalletService defines the interface for the wallet ledger use cases.
type WalletService interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (*domain.User, error)
	CreateWallet(ctx context.Context, userID, currency string) (*domain.Wallet, error)
	Deposit(ctx context.Context, walletID string, amount domain.Money, idempotencyKey string, metadata map[string]string) (*OperationResult, error)
	Withdraw(ctx context.Context, walletID string, amount domain.Money, idempotencyKey string, metadata map[string]string) (*OperationResult, error)
	Transfer(ctx context.Context, senderWalletID, senderEmail, recipientEmail string, amount domain.Money, idempotencyKey string, metadata map[string]string) (*TransferResult, error)
	GetBalance(ctx context.Context, walletID string) (*domain.Wallet, error)
	GetTransactionHistory(ctx context.Context, walletID string, limit, offset int) ([]domain.Transaction, int64, error)
}

// walletService implements WalletService on top of the event log. Every
// command follows the same shape: reconstruct the aggregate (snapshot +
// replay), invoke the command, commit the staged events under a version
// check, then hand the committed events to the projection dispatcher.
type walletService struct {
	dbBeginner      db.DBTxBeginner
	dbExecutor      repository.DBExecutor
	eventStore      repository.EventStore
	snapshotStore   repository.SnapshotStore
	idempotencyRepo repository.IdempotencyRepository
	userRepo        repository.UserRepository
	walletRepo      repository.WalletRepository
	transactionRepo repository.TransactionRepository
	dispatcher      ProjectionDispatcher
	beginTx         db.BeginTxFunc
	commitTx        db.CommitTxFunc
	rollbackTx      db.RollbackTxFunc
	cfg             Config
	logger          *slog.Logger
	clock           func() time.Time
}

// NewWalletService creates a new instance of WalletService.
func NewWalletService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	eventStore repository.EventStore,
	snapshotStore repository.SnapshotStore,
	idempotencyRepo repository.IdempotencyRepository,
	userRepo repository.UserRepository,
	walletRepo repository.WalletRepository,
	transactionRepo repository.TransactionRepository,
	dispatcher ProjectionDispatcher,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
	cfg Config,
	logger *slog.Logger,
) WalletService {
	return &walletService{
		dbBeginner:      dbBeginner,
		dbExecutor:      dbExecutor,
		eventStore:      eventStore,
		snapshotStore:   snapshotStore,
		idempotencyRepo: idempotencyRepo,
		userRepo:        userRepo,
		walletRepo:      walletRepo,
		transactionRepo: transactionRepo,
		dispatcher:      dispatcher,
		beginTx:         beginTx,
		commitTx:        commitTx,
		rollbackTx:      rollbackTx,
		cfg:             cfg,
		logger:          logger,
		clock:           func() time.Time { return time.Now().UTC() },
	}
}

// commitStream is one aggregate's contribution to an atomic commit.
type commitStream struct {
	streamID        string
	expectedVersion int64
	events          []domain.RecordedEvent
}

// commit appends every stream's events and records the idempotency key (when
// present) inside one database transaction. Either all of it becomes durable
// or none of it does; a duplicate key surfaces as util.ErrAlreadyProcessed.
// A non-nil inTx hook runs on the same transaction after the appends, letting
// a use case make a read-model write transactional with the commit.
func (s *walletService) commit(ctx context.Context, streams []commitStream, idempotencyKey string, inTx func(q repository.DBExecutor) error) ([]domain.StoredEvent, error) {
	txController, err := s.beginTx(ctx, s.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("commit: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("commit: transaction controller does not implement DBExecutor")
	}

	var committed []domain.StoredEvent
	for _, stream := range streams {
		stored, err := s.eventStore.Append(ctx, txExecutor, stream.streamID, stream.expectedVersion, stream.events)
		if err != nil {
			return nil, err
		}
		committed = append(committed, stored...)
	}

	if idempotencyKey != "" {
		if err := s.idempotencyRepo.Record(ctx, txExecutor, idempotencyKey); err != nil {
			if errors.Is(err, util.ErrUniqueKeyViolation) {
				return nil, fmt.Errorf("idempotency key %s: %w", idempotencyKey, util.ErrAlreadyProcessed)
			}
			return nil, err
		}
	}

	if inTx != nil {
		if err := inTx(txExecutor); err != nil {
			return nil, err
		}
	}

	if err := s.commitTx(txController); err != nil {
		return nil, fmt.Errorf("commit: failed to commit transaction: %w", err)
	}
	return committed, nil
}

// loadWallet reconstructs a wallet aggregate: latest snapshot first, then
// replay of everything after it. Zero replayed events is valid and cheap.
func (s *walletService) loadWallet(ctx context.Context, walletID string) (*domain.WalletAggregate, error) {
	agg := domain.NewWalletAggregate(walletID)

	snap, err := s.snapshotStore.Get(ctx, s.dbExecutor, walletID)
	if err != nil && !errors.Is(err, util.ErrNotFound) {
		return nil, fmt.Errorf("load wallet %s: %w", walletID, err)
	}
	if snap != nil {
		if err := agg.RestoreSnapshot(snap.Version, snap.State); err != nil {
			return nil, err
		}
	}

	events, err := s.eventStore.LoadFrom(ctx, s.dbExecutor, walletID, agg.Version())
	if err != nil {
		return nil, fmt.Errorf("load wallet %s: %w", walletID, err)
	}
	for _, se := range events {
		if err := agg.ApplyStored(se); err != nil {
			return nil, fmt.Errorf("load wallet %s: %w", walletID, err)
		}
	}
	return agg, nil
}

// maybeSnapshot stores a snapshot when the aggregate version crosses the
// configured frequency. Failures only cost replay time on the next load, so
// they are logged and swallowed.
func (s *walletService) maybeSnapshot(ctx context.Context, agg *domain.WalletAggregate) {
	if s.cfg.SnapshotFrequency <= 0 || agg.Version() == 0 || agg.Version()%s.cfg.SnapshotFrequency != 0 {
		return
	}
	state, err := agg.SnapshotState()
	if err != nil {
		s.logger.Warn("Failed to serialize wallet snapshot", "wallet_id", agg.State().ID, "version", agg.Version(), "error", err)
		return
	}
	if err := s.snapshotStore.Put(ctx, s.dbExecutor, agg.State().ID, agg.Version(), state); err != nil {
		s.logger.Warn("Failed to store wallet snapshot", "wallet_id", agg.State().ID, "version", agg.Version(), "error", err)
	}
}

// retryOnConflict runs op, reloading and retrying when a concurrent writer
// won the version check. Exhausted retries surface as util.ErrUnavailable.
func retryOnConflict(op func() error) error {
	var err error
	for attempt := 0; attempt < maxCommandAttempts; attempt++ {
		err = op()
		if err == nil || !errors.Is(err, util.ErrVersionConflict) {
			return err
		}
	}
	return fmt.Errorf("retries exhausted after %d attempts: %w", maxCommandAttempts, util.ErrUnavailable)
}

// CreateUser creates a user identity and projects it into the users read
// model. The users row is written inside the commit transaction rather than
// by the post-commit projector: its email unique constraint is the race-proof
// guard against two concurrent registrations, and a check-then-act against
// the read model alone would let both commit. Registration beyond identity
// (sessions, tokens) is not handled here.
func (s *walletService) CreateUser(ctx context.Context, name, email, passwordHash string) (*domain.User, error) {
	if name == "" || email == "" || passwordHash == "" {
		return nil, util.ErrInvalidInput
	}
	if _, err := s.userRepo.GetUserByEmail(ctx, s.dbExecutor, email); err == nil {
		return nil, fmt.Errorf("user with email %s: %w", email, util.ErrDuplicateEntry)
	} else if !errors.Is(err, util.ErrNotFound) {
		return nil, fmt.Errorf("create user: failed to check existing email: %w", err)
	}

	now := s.clock()
	agg := domain.NewUserAggregate(uuid.NewString())
	if err := agg.Create(name, email, passwordHash, now); err != nil {
		return nil, err
	}
	user := &domain.User{
		ID:           agg.ID(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}

	committed, err := s.commit(ctx, []commitStream{{
		streamID:        agg.ID(),
		expectedVersion: agg.Version() - int64(len(agg.PendingEvents())),
		events:          agg.PendingEvents(),
	}}, "", func(q repository.DBExecutor) error {
		return s.userRepo.CreateUser(ctx, q, user)
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	agg.ClearPending()
	s.dispatcher.Deliver(ctx, committed)

	return user, nil
}

// CreateWallet creates the single wallet for a user.
func (s *walletService) CreateWallet(ctx context.Context, userID, currency string) (*domain.Wallet, error) {
	if currency == "" {
		currency = s.cfg.DefaultCurrency
	}
	if _, err := s.userRepo.GetUserByID(ctx, s.dbExecutor, userID); err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, util.ErrUserNotFound)
		}
		return nil, fmt.Errorf("create wallet: %w", err)
	}
	if _, err := s.walletRepo.GetWalletByUserID(ctx, s.dbExecutor, userID); err == nil {
		return nil, fmt.Errorf("user %s already has a wallet: %w", userID, util.ErrDuplicateEntry)
	} else if !errors.Is(err, util.ErrNotFound) {
		return nil, fmt.Errorf("create wallet: %w", err)
	}

	now := s.clock()
	agg := domain.NewWalletAggregate(uuid.NewString())
	if err := agg.Create(userID, currency, now); err != nil {
		return nil, err
	}

	committed, err := s.commit(ctx, []commitStream{{
		streamID:        agg.State().ID,
		expectedVersion: 0,
		events:          agg.PendingEvents(),
	}}, "", nil)
	if err != nil {
		return nil, fmt.Errorf("create wallet: %w", err)
	}
	agg.ClearPending()
	s.dispatcher.Deliver(ctx, committed)

	return &domain.Wallet{
		ID:           agg.State().ID,
		UserID:       userID,
		Currency:     currency,
		BalanceCents: 0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Deposit credits a wallet exactly once per idempotency key.
func (s *walletService) Deposit(ctx context.Context, walletID string, amount domain.Money, idempotencyKey string, metadata map[string]string) (*OperationResult, error) {
	if idempotencyKey == "" {
		return nil, util.ErrMissingIdempotencyKey
	}
	if exists, err := s.idempotencyRepo.Exists(ctx, s.dbExecutor, idempotencyKey); err != nil {
		return nil, fmt.Errorf("deposit: %w", err)
	} else if exists {
		return nil, fmt.Errorf("idempotency key %s: %w", idempotencyKey, util.ErrAlreadyProcessed)
	}

	var result *OperationResult
	err := retryOnConflict(func() error {
		agg, err := s.loadWallet(ctx, walletID)
		if err != nil {
			return err
		}
		if !agg.IsCreated() {
			return fmt.Errorf("wallet %s: %w", walletID, util.ErrWalletNotFound)
		}
		if amount.Currency != agg.Currency() {
			return util.ErrCurrencyMismatch
		}
		if err := agg.Deposit(amount.AmountCents, idempotencyKey, metadata, s.clock()); err != nil {
			return err
		}
		result, err = s.commitWalletCommand(ctx, agg, idempotencyKey)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("deposit: %w", err)
	}
	return result, nil
}

// Withdraw debits a wallet exactly once per idempotency key, subject to the
// balance and daily withdrawal cap invariants.
func (s *walletService) Withdraw(ctx context.Context, walletID string, amount domain.Money, idempotencyKey string, metadata map[string]string) (*OperationResult, error) {
	if idempotencyKey == "" {
		return nil, util.ErrMissingIdempotencyKey
	}
	if exists, err := s.idempotencyRepo.Exists(ctx, s.dbExecutor, idempotencyKey); err != nil {
		return nil, fmt.Errorf("withdraw: %w", err)
	} else if exists {
		return nil, fmt.Errorf("idempotency key %s: %w", idempotencyKey, util.ErrAlreadyProcessed)
	}

	var result *OperationResult
	err := retryOnConflict(func() error {
		agg, err := s.loadWallet(ctx, walletID)
		if err != nil {
			return err
		}
		if !agg.IsCreated() {
			return fmt.Errorf("wallet %s: %w", walletID, util.ErrWalletNotFound)
		}
		if amount.Currency != agg.Currency() {
			return util.ErrCurrencyMismatch
		}
		if err := agg.Withdraw(amount.AmountCents, idempotencyKey, metadata, s.cfg.Limits, s.clock()); err != nil {
			return err
		}
		result, err = s.commitWalletCommand(ctx, agg, idempotencyKey)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("withdraw: %w", err)
	}
	return result, nil
}

// commitWalletCommand commits one wallet's staged events plus the idempotency
// key, then snapshots and dispatches.
func (s *walletService) commitWalletCommand(ctx context.Context, agg *domain.WalletAggregate, idempotencyKey string) (*OperationResult, error) {
	pending := agg.PendingEvents()
	committed, err := s.commit(ctx, []commitStream{{
		streamID:        agg.State().ID,
		expectedVersion: agg.Version() - int64(len(pending)),
		events:          pending,
	}}, idempotencyKey, nil)
	if err != nil {
		return nil, err
	}
	agg.ClearPending()
	s.maybeSnapshot(ctx, agg)
	s.dispatcher.Deliver(ctx, committed)

	balance, _ := domain.NewMoney(agg.BalanceCents(), agg.Currency())
	return &OperationResult{
		WalletID:     agg.State().ID,
		BalanceCents: agg.BalanceCents(),
		Balance:      balance.Decimal(),
		Currency:     agg.Currency(),
	}, nil
}

// Transfer moves money between two wallets as one atomic unit: the sender's
// debit event and recipient's credit event are appended in a single database
// transaction together with the shared transfer id, so no reader ever
// observes one half without the other.
func (s *walletService) Transfer(ctx context.Context, senderWalletID, senderEmail, recipientEmail string, amount domain.Money, idempotencyKey string, metadata map[string]string) (*TransferResult, error) {
	if idempotencyKey == "" {
		return nil, util.ErrMissingIdempotencyKey
	}
	if exists, err := s.idempotencyRepo.Exists(ctx, s.dbExecutor, idempotencyKey); err != nil {
		return nil, fmt.Errorf("transfer: %w", err)
	} else if exists {
		return nil, fmt.Errorf("transfer %s: %w", idempotencyKey, util.ErrAlreadyProcessed)
	}

	recipient, err := s.userRepo.GetUserByEmail(ctx, s.dbExecutor, recipientEmail)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, fmt.Errorf("recipient %s: %w", recipientEmail, util.ErrRecipientNotFound)
		}
		return nil, fmt.Errorf("transfer: resolve recipient: %w", err)
	}
	recipientWallet, err := s.walletRepo.GetWalletByUserID(ctx, s.dbExecutor, recipient.ID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, fmt.Errorf("recipient %s has no wallet: %w", recipientEmail, util.ErrRecipientNotFound)
		}
		return nil, fmt.Errorf("transfer: resolve recipient wallet: %w", err)
	}
	if senderWalletID == recipientWallet.ID {
		return nil, util.ErrSelfTransfer
	}

	var result *TransferResult
	err = retryOnConflict(func() error {
		sender, err := s.loadWallet(ctx, senderWalletID)
		if err != nil {
			return err
		}
		if !sender.IsCreated() {
			return fmt.Errorf("wallet %s: %w", senderWalletID, util.ErrWalletNotFound)
		}
		if amount.Currency != sender.Currency() {
			return util.ErrCurrencyMismatch
		}
		receiver, err := s.loadWallet(ctx, recipientWallet.ID)
		if err != nil {
			return err
		}
		if !receiver.IsCreated() {
			return fmt.Errorf("recipient wallet %s: %w", recipientWallet.ID, util.ErrRecipientNotFound)
		}
		if receiver.Currency() != sender.Currency() {
			return fmt.Errorf("recipient wallet %s holds %s, not %s: %w",
				recipientWallet.ID, receiver.Currency(), sender.Currency(), util.ErrCurrencyMismatch)
		}

		now := s.clock()
		if err := sender.TransferOut(amount.AmountCents, recipientEmail, idempotencyKey, metadata, s.cfg.Limits, now); err != nil {
			return err
		}
		if err := receiver.TransferIn(amount.AmountCents, senderEmail, idempotencyKey, metadata, now); err != nil {
			return err
		}

		senderPending := sender.PendingEvents()
		receiverPending := receiver.PendingEvents()
		committed, err := s.commit(ctx, []commitStream{
			{
				streamID:        sender.State().ID,
				expectedVersion: sender.Version() - int64(len(senderPending)),
				events:          senderPending,
			},
			{
				streamID:        receiver.State().ID,
				expectedVersion: receiver.Version() - int64(len(receiverPending)),
				events:          receiverPending,
			},
		}, idempotencyKey, nil)
		if err != nil {
			return err
		}
		sender.ClearPending()
		receiver.ClearPending()
		s.maybeSnapshot(ctx, sender)
		s.maybeSnapshot(ctx, receiver)
		s.dispatcher.Deliver(ctx, committed)

		senderBalance, _ := domain.NewMoney(sender.BalanceCents(), sender.Currency())
		receiverBalance, _ := domain.NewMoney(receiver.BalanceCents(), receiver.Currency())
		result = &TransferResult{
			TransferID:            idempotencyKey,
			WalletID:              sender.State().ID,
			BalanceCents:          sender.BalanceCents(),
			Balance:               senderBalance.Decimal(),
			RecipientWalletID:     receiver.State().ID,
			RecipientBalanceCents: receiver.BalanceCents(),
			RecipientBalance:      receiverBalance.Decimal(),
			AmountCents:           amount.AmountCents,
			Amount:                amount.Decimal(),
			Currency:              sender.Currency(),
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("transfer: %w", err)
	}
	return result, nil
}

// GetBalance serves the projected balance from the read model.
func (s *walletService) GetBalance(ctx context.Context, walletID string) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetWalletByID(ctx, s.dbExecutor, walletID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, fmt.Errorf("wallet %s: %w", walletID, util.ErrWalletNotFound)
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return wallet, nil
}

// GetTransactionHistory retrieves a paginated list of transactions for a wallet.
func (s *walletService) GetTransactionHistory(ctx context.Context, walletID string, limit, offset int) ([]domain.Transaction, int64, error) {
	if _, err := s.walletRepo.GetWalletByID(ctx, s.dbExecutor, walletID); err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, 0, fmt.Errorf("wallet %s: %w", walletID, util.ErrWalletNotFound)
		}
		return nil, 0, fmt.Errorf("failed to check wallet existence: %w", err)
	}

	transactions, totalCount, err := s.transactionRepo.GetTransactionsByWalletID(ctx, s.dbExecutor, walletID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to retrieve transaction history: %w", err)
	}
	return transactions, totalCount, nil
}
