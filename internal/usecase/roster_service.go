package usecase

import (
	"context"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/cenkalti/backoff/v5"
	"github.com/cockroachdb/errors"

	"github.com/riskibarqy/socli/internal/domain/player"
	"github.com/riskibarqy/socli/internal/domain/storage"
	"github.com/riskibarqy/socli/internal/platform/logging"
)

type RosterConfig struct {
	PageSize      int
	PageDelay     time.Duration
	MaxStuckPages int
}

func DefaultRosterConfig() RosterConfig {
	return RosterConfig{
		PageSize:      50,
		PageDelay:     2 * time.Second,
		MaxStuckPages: 10,
	}
}

// RosterService builds the full deduplicated roster, cache first.
type RosterService struct {
	source RemoteDataSource
	store  storage.Repository
	cfg    RosterConfig
	logger *logging.Logger
}

func NewRosterService(source RemoteDataSource, store storage.Repository, cfg RosterConfig, logger *logging.Logger) *RosterService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultRosterConfig().PageSize
	}
	if cfg.PageDelay < 0 {
		cfg.PageDelay = 0
	}
	if cfg.MaxStuckPages < 0 {
		cfg.MaxStuckPages = 0
	}

	return &RosterService{
		source: source,
		store:  store,
		cfg:    cfg,
		logger: logger,
	}
}

func (s *RosterService) LoadRoster(ctx context.Context) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterService.LoadRoster")
	defer span.End()

	raw, found, err := s.store.Get(ctx, storage.KeyPlayers)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "read cached roster"), ErrStore)
	}
	if found {
		var cached []player.Player
		if err := sonic.Unmarshal(raw, &cached); err == nil {
			s.logger.InfoContext(ctx, "roster loaded from cache", "players", len(cached))
			return cached, nil
		}
		s.logger.WarnContext(ctx, "cached roster is unreadable, paging remote source", "error", err)
	}

	players, err := s.pageAll(ctx)
	if err != nil {
		return nil, err
	}

	encoded, err := sonic.Marshal(players)
	if err != nil {
		return nil, errors.Wrap(err, "encode roster")
	}
	if err := s.store.Set(ctx, storage.KeyPlayers, encoded); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "persist roster"), ErrStore)
	}

	s.logger.InfoContext(ctx, "roster loaded from remote source", "players", len(players))
	return players, nil
}

// pageAll stops once the source returns no cursor or more than MaxStuckPages
// consecutive pages brought no new slug.
func (s *RosterService) pageAll(ctx context.Context) ([]player.Player, error) {
	seen := make(map[string]struct{})
	players := []player.Player{}
	cursor := ""
	stuck := 0

	for page := 0; ; page++ {
		if page > 0 {
			if err := sleepContext(ctx, s.cfg.PageDelay); err != nil {
				return nil, err
			}
		}

		items, next, err := s.source.PageRoster(ctx, cursor, s.cfg.PageSize)
		if err != nil {
			return nil, errors.Mark(errors.Wrapf(err, "page roster at cursor %q", cursor), ErrDataAccess)
		}

		added := 0
		for _, item := range items {
			if _, ok := seen[item.Slug]; ok {
				continue
			}
			seen[item.Slug] = struct{}{}
			players = append(players, item)
			added++
		}
		if added == 0 {
			stuck++
		} else {
			stuck = 0
		}
		s.logger.DebugContext(ctx, "roster page loaded", "page", page, "added", added, "total", len(seen), "stuck", stuck)

		if next == "" || stuck > s.cfg.MaxStuckPages {
			break
		}
		cursor = next
	}

	player.SortByDisplayName(players)
	return players, nil
}

func (s *RosterService) ClearCache(ctx context.Context) error {
	if err := s.store.Delete(ctx, storage.KeyPlayers); err != nil {
		return errors.Mark(errors.Wrap(err, "clear cached roster"), ErrStore)
	}
	return nil
}

type rosterSource interface {
	LoadRoster(ctx context.Context) ([]player.Player, error)
	ClearCache(ctx context.Context) error
}

// RosterLoaderConfig bounds the clear-and-retry policy. MaxAttempts 0 retries
// until the context ends.
type RosterLoaderConfig struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// RosterLoader clears the cached roster after every failed load and retries
// with exponential backoff.
type RosterLoader struct {
	roster rosterSource
	cfg    RosterLoaderConfig
	logger *logging.Logger
}

func NewRosterLoader(roster rosterSource, cfg RosterLoaderConfig, logger *logging.Logger) *RosterLoader {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.MaxAttempts < 0 {
		cfg.MaxAttempts = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 2 * time.Second
	}
	if cfg.MaxBackoff < cfg.InitialBackoff {
		cfg.MaxBackoff = cfg.InitialBackoff
	}
	return &RosterLoader{roster: roster, cfg: cfg, logger: logger}
}

func (l *RosterLoader) Load(ctx context.Context) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RosterLoader.Load")
	defer span.End()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = l.cfg.InitialBackoff
	policy.MaxInterval = l.cfg.MaxBackoff

	attempt := 0
	operation := func() ([]player.Player, error) {
		attempt++
		players, err := l.roster.LoadRoster(ctx)
		if err == nil {
			return players, nil
		}
		if ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		if clearErr := l.roster.ClearCache(ctx); clearErr != nil {
			l.logger.WarnContext(ctx, "clear roster cache failed", "attempt", attempt, "error", clearErr)
		}
		return nil, err
	}

	opts := []backoff.RetryOption{
		backoff.WithBackOff(policy),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, wait time.Duration) {
			l.logger.WarnContext(ctx, "roster load failed, retrying", "attempt", attempt, "retry_in", wait, "error", err)
		}),
	}
	if l.cfg.MaxAttempts > 0 {
		opts = append(opts, backoff.WithMaxTries(uint(l.cfg.MaxAttempts)))
	}

	players, err := backoff.Retry(ctx, operation, opts...)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "roster load gave up after %d attempts", attempt), ErrRosterUnavailable)
	}
	return players, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
