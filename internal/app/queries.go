package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"furryville_index/internal/adapters/observability"
	"furryville_index/internal/domain"
)

// Directory resolves stall and review lookups. Each call acquires one
// session from the store and releases it before returning.
type Directory struct {
	store  domain.Store
	schema domain.MallSchema
}

func NewDirectory(s domain.Store, schema domain.MallSchema) *Directory {
	return &Directory{store: s, schema: schema}
}

// withSession runs fn on a fresh session and always closes it.
func (d *Directory) withSession(ctx context.Context, op string, fn func(domain.Session) error) error {
	s, err := d.store.Acquire(ctx)
	if err != nil {
		log.Error().Err(err).Str("op", op).Msg("store unavailable")
		if !errors.Is(err, domain.ErrStoreUnavailable) {
			err = fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
		}
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil {
			log.Warn().Err(cerr).Str("op", op).Msg("session close failed")
		}
	}()
	return fn(s)
}

func (d *Directory) WarpHallStalls(ctx context.Context) ([]domain.WarpHallStall, error) {
	var out []domain.WarpHallStall
	err := d.withSession(ctx, "warp_hall_list", func(s domain.Session) error {
		var err error
		out, err = s.WarpHallStalls(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.WarpHallStall{}
	}
	return out, nil
}

func (d *Directory) WarpHallStall(ctx context.Context, n domain.StallNumber) (domain.WarpHallStall, error) {
	var out domain.WarpHallStall
	err := d.withSession(ctx, "warp_hall_get", func(s domain.Session) error {
		var err error
		out, err = s.WarpHallStall(ctx, n)
		return err
	})
	return out, err
}

// mallSchema returns the declared tier, probing the table in auto mode.
func (d *Directory) mallSchema(ctx context.Context, s domain.Session) (domain.MallSchema, error) {
	tier := d.schema
	if tier == domain.MallSchemaAuto {
		ok, err := s.MallFootprintSupported(ctx)
		if err != nil {
			return tier, err
		}
		tier = domain.MallSchemaBasic
		if ok {
			tier = domain.MallSchemaFootprint
		}
	}
	observability.ObserveMallTier(tier.String())
	return tier, nil
}

func (d *Directory) MallStalls(ctx context.Context) ([]domain.MallStall, error) {
	var out []domain.MallStall
	err := d.withSession(ctx, "mall_list", func(s domain.Session) error {
		tier, err := d.mallSchema(ctx, s)
		if err != nil {
			return err
		}
		out, err = s.MallStalls(ctx, tier)
		return err
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.MallStall{}
	}
	return out, nil
}

func (d *Directory) MallStall(ctx context.Context, key domain.MallKey) (domain.MallStall, error) {
	var out domain.MallStall
	err := d.withSession(ctx, "mall_get", func(s domain.Session) error {
		tier, err := d.mallSchema(ctx, s)
		if err != nil {
			return err
		}
		out, err = s.MallStall(ctx, tier, key)
		return err
	})
	return out, err
}

// MallStallDetail loads a stall and its reviews on one session. A review
// failure leaves the stall usable with an empty summary.
func (d *Directory) MallStallDetail(ctx context.Context, key domain.MallKey) (domain.MallStall, domain.ReviewSummary, error) {
	var (
		stall   domain.MallStall
		summary = domain.Summarize(nil)
	)
	err := d.withSession(ctx, "mall_detail", func(s domain.Session) error {
		tier, err := d.mallSchema(ctx, s)
		if err != nil {
			return err
		}
		if stall, err = s.MallStall(ctx, tier, key); err != nil {
			return err
		}
		rs, err := s.MallReviews(ctx, key)
		if err != nil {
			log.Warn().Err(err).Str("stall", key.String()).Msg("reviews unavailable for detail page")
			return nil
		}
		summary = domain.Summarize(rs)
		return nil
	})
	return stall, summary, err
}

// ParseMallIdentifier splits "street/number" at its last slash.
func ParseMallIdentifier(id string) (domain.MallKey, error) {
	i := strings.LastIndex(id, "/")
	if i <= 0 || i == len(id)-1 {
		return domain.MallKey{}, fmt.Errorf("%w: identifier %q is not street/number", domain.ErrInvalidInput, id)
	}
	return domain.ParseMallKey(id[:i], id[i+1:])
}

// Reviews lists the reviews of the stall named by identifier in location.
// Malformed identifiers and unsupported locations are rejected before any
// session is acquired.
func (d *Directory) Reviews(ctx context.Context, location domain.Location, identifier string) (domain.ReviewSummary, error) {
	if !location.HasReviews() {
		return domain.Summarize(nil), fmt.Errorf("%w: %s", domain.ErrUnsupported, location)
	}
	key, err := ParseMallIdentifier(identifier)
	if err != nil {
		return domain.ReviewSummary{}, err
	}
	var rs []domain.Review
	err = d.withSession(ctx, "mall_reviews", func(s domain.Session) error {
		var err error
		rs, err = s.MallReviews(ctx, key)
		return err
	})
	if err != nil {
		return domain.ReviewSummary{}, err
	}
	return domain.Summarize(rs), nil
}

// Status reports whether a session can be acquired; it runs no queries.
func (d *Directory) Status(ctx context.Context) domain.StoreStatus {
	s, err := d.store.Acquire(ctx)
	if err != nil {
		return domain.StoreDisconnected
	}
	if cerr := s.Close(); cerr != nil {
		log.Warn().Err(cerr).Msg("status: session close failed")
	}
	return domain.StoreConnected
}
