package commands

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/cleared-dev/saldo/internal/accounts"
	"github.com/cleared-dev/saldo/internal/balance"
	"github.com/cleared-dev/saldo/internal/config"
	"github.com/cleared-dev/saldo/internal/gitops"
	"github.com/cleared-dev/saldo/internal/journal"
	"github.com/cleared-dev/saldo/internal/logging"
	"github.com/cleared-dev/saldo/internal/model"
	"github.com/cleared-dev/saldo/internal/sqlstore"
	"github.com/cleared-dev/saldo/internal/tags"
)

// TagsFile holds the file tagging backend under the project root.
var TagsFile = filepath.Join("accounts", "tags.yaml")

// bookingStore is the part of a booking backend the CLI writes through.
type bookingStore interface {
	booking(ctx context.Context, id int64) (model.Booking, bool, error)
	append(ctx context.Context, b model.Booking) (model.Booking, error)
}

// project is an opened saldo project: its config, accounts, bookings and tags.
type project struct {
	root     string
	cfg      *config.Config
	logger   *zap.Logger
	accounts *accounts.Service
	source   balance.Source
	bookings bookingStore
	tags     tags.Source
	closers  []func() error
}

func openProject(ctx context.Context, root, logLevel string) (*project, error) {
	cfg, err := config.LoadProject(root)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	logger, err := logging.New(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}

	p := &project{root: root, cfg: cfg, logger: logger}
	if err := p.openStorage(ctx); err != nil {
		p.Close()
		return nil, err
	}
	if err := p.openTagging(ctx); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

func (p *project) openStorage(ctx context.Context) error {
	switch p.cfg.Storage.Backend {
	case config.StorageCSV:
		accts, err := accounts.Load(p.root)
		if err != nil {
			return err
		}
		if err := accts.Validate(); err != nil {
			return fmt.Errorf("invalid chart of accounts: %w", err)
		}
		j, err := journal.Load(p.root, accts)
		if err != nil {
			return err
		}
		p.accounts = accts
		p.source = j
		p.bookings = csvBookings{j}
		return nil

	case config.StorageSQLite, config.StoragePostgres:
		store, err := sqlstore.Open(ctx, p.cfg.Storage.Backend, p.dsn(), p.logger)
		if err != nil {
			return err
		}
		p.closers = append(p.closers, store.Close)
		if p.cfg.Storage.Backend == config.StorageSQLite {
			if err := store.EnsureSchema(ctx); err != nil {
				return err
			}
		}
		accts, err := store.LoadService(ctx)
		if err != nil {
			return err
		}
		p.accounts = accts
		p.source = store
		p.bookings = sqlBookings{store: store, accounts: accts}
		return nil
	}
	return fmt.Errorf("unknown storage backend %q", p.cfg.Storage.Backend)
}

func (p *project) dsn() string {
	dsn := p.cfg.Storage.DSN
	if p.cfg.Storage.Backend == config.StorageSQLite && !filepath.IsAbs(dsn) {
		return filepath.Join(p.root, dsn)
	}
	return dsn
}

// openTagging attaches a tag resolver to the accounts unless tagging is off.
func (p *project) openTagging(ctx context.Context) error {
	switch p.cfg.Tagging.Backend {
	case config.TaggingNone:
		return nil
	case config.TaggingFile:
		store, err := tags.LoadFile(filepath.Join(p.root, TagsFile))
		if err != nil {
			return err
		}
		p.tags = store
	case config.TaggingRedis:
		client, err := tags.NewRedisClient(ctx, p.cfg.Tagging.RedisAddr, p.cfg.Tagging.RedisDB)
		if err != nil {
			return err
		}
		p.closers = append(p.closers, client.Close)
		p.tags = tags.NewRedisStore(client, p.logger)
	default:
		return fmt.Errorf("unknown tagging backend %q", p.cfg.Tagging.Backend)
	}
	p.accounts.AttachTagging(tags.NewResolver(p.tags, p.accounts))
	return nil
}

// saveTags persists the file tagging backend. Other backends write through.
func (p *project) saveTags() error {
	if store, ok := p.tags.(*tags.MemoryStore); ok {
		return store.SaveFile(filepath.Join(p.root, TagsFile))
	}
	return nil
}

func (p *project) engine() *balance.Engine {
	return balance.NewEngine(p.source, p.logger)
}

// account resolves a command argument to an account: by code first, then by tag when
// tagging is attached.
func (p *project) account(ctx context.Context, arg string) (model.Account, error) {
	if a, ok := p.accounts.GetByCode(arg); ok {
		return a, nil
	}
	if tagging, ok := p.accounts.Tagging(); ok {
		a, found, err := tagging.FindByTag(ctx, arg)
		if err != nil {
			return model.Account{}, err
		}
		if found {
			return a, nil
		}
	}
	return model.Account{}, fmt.Errorf("account %s: %w", arg, accounts.ErrAccountNotFound)
}

func (p *project) booking(ctx context.Context, id int64) (model.Booking, error) {
	b, ok, err := p.bookings.booking(ctx, id)
	if err != nil {
		return model.Booking{}, err
	}
	if !ok {
		return model.Booking{}, fmt.Errorf("booking %d not found", id)
	}
	return b, nil
}

// commit records changed project files in git when auto_commit is on.
func (p *project) commit(message string) (string, error) {
	if !p.cfg.Git.AutoCommit || !gitops.IsRepo(p.root) {
		return "", nil
	}
	changed, err := gitops.HasChanges(p.root)
	if err != nil || !changed {
		return "", err
	}
	return gitops.CommitAll(p.root, message, p.cfg.Git.AuthorName, p.cfg.Git.AuthorEmail)
}

func (p *project) Close() error {
	var errs []error
	for i := len(p.closers) - 1; i >= 0; i-- {
		errs = append(errs, p.closers[i]())
	}
	_ = p.logger.Sync()
	return errors.Join(errs...)
}

type csvBookings struct {
	journal *journal.Service
}

func (c csvBookings) booking(_ context.Context, id int64) (model.Booking, bool, error) {
	b, ok := c.journal.Get(id)
	return b, ok, nil
}

func (c csvBookings) append(_ context.Context, b model.Booking) (model.Booking, error) {
	return c.journal.Append(journal.AppendParams{
		ValueDate:     b.ValueDate,
		Amount:        b.Amount,
		CreditAccount: b.CreditAccountID,
		DebitAccount:  b.DebitAccountID,
		Title:         b.Title,
	})
}

type sqlBookings struct {
	store    *sqlstore.Store
	accounts journal.AccountChecker
}

func (s sqlBookings) booking(ctx context.Context, id int64) (model.Booking, bool, error) {
	return s.store.GetBooking(ctx, id)
}

func (s sqlBookings) append(ctx context.Context, b model.Booking) (model.Booking, error) {
	b.ID = 0
	b.ValueDate = model.Day(b.ValueDate)
	if err := journal.Check(journal.ValidateBooking(b, s.accounts)); err != nil {
		return model.Booking{}, err
	}
	id, err := s.store.InsertBooking(ctx, b)
	if err != nil {
		return model.Booking{}, err
	}
	b.ID = id
	return b, nil
}
