package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"furryville_index/internal/adapters/observability"
	"furryville_index/internal/domain"
)

// ER_BAD_FIELD_ERROR: Unknown column in field list.
const errUnknownColumn = 1054

// row types mirror the selected columns; domain types stay free of db tags.
type warpHallRow struct {
	StallNumber domain.StallNumber `db:"StallNumber"`
	StallName   string             `db:"StallName"`
	IGN         string             `db:"IGN"`
}

type mallRow struct {
	StallNumber domain.StallNumber `db:"StallNumber"`
	StreetName  string             `db:"StreetName"`
	IGN         string             `db:"IGN"`
	StallName   string             `db:"StallName"`
	ItemsSold   sql.NullString     `db:"ItemsSold"`
	Width       sql.NullInt64      `db:"stall_width"`
	Depth       sql.NullInt64      `db:"stall_depth"`
}

type reviewRow struct {
	ReviewID     int64              `db:"ReviewID"`
	StreetName   string             `db:"StreetName"`
	StallNumber  domain.StallNumber `db:"StallNumber"`
	ReviewerName sql.NullString     `db:"ReviewerName"`
	ReviewText   sql.NullString     `db:"ReviewText"`
	Rating       float64            `db:"Rating"`
	CreatedAt    time.Time          `db:"created_at"`
	UpdatedAt    sql.NullTime       `db:"updated_at"`
}

func (r warpHallRow) toDomain() domain.WarpHallStall {
	return domain.WarpHallStall{StallNumber: r.StallNumber, StallName: r.StallName, IGN: r.IGN}
}

func (r mallRow) toDomain() domain.MallStall {
	m := domain.MallStall{
		StallNumber: r.StallNumber,
		StreetName:  r.StreetName,
		IGN:         r.IGN,
		StallName:   r.StallName,
		ItemsSold:   r.ItemsSold.String,
		Width:       domain.DefaultFootprint,
		Depth:       domain.DefaultFootprint,
	}
	if r.Width.Valid {
		m.Width = int(r.Width.Int64)
	}
	if r.Depth.Valid {
		m.Depth = int(r.Depth.Int64)
	}
	return m
}

func (r reviewRow) toDomain() domain.Review {
	rv := domain.Review{
		ReviewID:     r.ReviewID,
		StreetName:   r.StreetName,
		StallNumber:  r.StallNumber,
		ReviewerName: r.ReviewerName.String,
		ReviewText:   r.ReviewText.String,
		Rating:       r.Rating,
		CreatedAt:    r.CreatedAt,
	}
	if r.UpdatedAt.Valid {
		t := r.UpdatedAt.Time
		rv.UpdatedAt = &t
	}
	return rv
}

// Store is the connection provider. The sqlx.DB pool only supplies
// connections; each Session pins exactly one for its lifetime.
type Store struct{ db *sqlx.DB }

func New(db *sqlx.DB) *Store { return &Store{db: db} }

func (s *Store) Acquire(ctx context.Context) (domain.Session, error) {
	start := time.Now()
	conn, err := s.db.Connx(ctx)
	if err != nil {
		observability.ObserveQuery("acquire", "error", time.Since(start))
		log.Error().Err(err).Msg("store: acquire connection failed")
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		observability.ObserveQuery("acquire", "error", time.Since(start))
		log.Error().Err(err).Msg("store: ping failed")
		return nil, fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	observability.ObserveQuery("acquire", "ok", time.Since(start))
	return &Session{conn: conn}, nil
}

// Session wraps one checked-out connection.
type Session struct{ conn *sqlx.Conn }

func (s *Session) Close() error { return s.conn.Close() }

// selectAll runs a multi-row query, recording its outcome under name.
func (s *Session) selectAll(ctx context.Context, name string, dst any, query string, args ...any) error {
	start := time.Now()
	err := s.conn.SelectContext(ctx, dst, query, args...)
	observability.ObserveQuery(name, outcome(err), time.Since(start))
	if err != nil {
		log.Error().Err(err).Str("query", name).Msg("store: query failed")
		return fmt.Errorf("%s: %w: %w", name, domain.ErrQueryFailed, err)
	}
	return nil
}

// getOne runs a single-row query; no row maps to domain.ErrNotFound.
func (s *Session) getOne(ctx context.Context, name string, dst any, query string, args ...any) error {
	start := time.Now()
	err := s.conn.GetContext(ctx, dst, query, args...)
	observability.ObserveQuery(name, outcome(err), time.Since(start))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return domain.ErrNotFound
	default:
		log.Error().Err(err).Str("query", name).Msg("store: query failed")
		return fmt.Errorf("%s: %w: %w", name, domain.ErrQueryFailed, err)
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, sql.ErrNoRows):
		return "not_found"
	default:
		return "error"
	}
}

func (s *Session) WarpHallStalls(ctx context.Context) ([]domain.WarpHallStall, error) {
	var rows []warpHallRow
	if err := s.selectAll(ctx, "warp_hall_list", &rows, listWarpHallSQL); err != nil {
		return nil, err
	}
	out := make([]domain.WarpHallStall, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *Session) WarpHallStall(ctx context.Context, n domain.StallNumber) (domain.WarpHallStall, error) {
	var r warpHallRow
	if err := s.getOne(ctx, "warp_hall_get", &r, getWarpHallSQL, n); err != nil {
		return domain.WarpHallStall{}, err
	}
	return r.toDomain(), nil
}

func (s *Session) MallFootprintSupported(ctx context.Context) (bool, error) {
	start := time.Now()
	rows, err := s.conn.QueryxContext(ctx, probeMallFootprintSQL)
	if err == nil {
		err = rows.Close()
	}
	switch {
	case err == nil:
		observability.ObserveQuery("mall_probe", "ok", time.Since(start))
		return true, nil
	case isUnknownColumn(err):
		observability.ObserveQuery("mall_probe", "ok", time.Since(start))
		return false, nil
	default:
		observability.ObserveQuery("mall_probe", "error", time.Since(start))
		log.Error().Err(err).Str("query", "mall_probe").Msg("store: query failed")
		return false, fmt.Errorf("mall_probe: %w: %w", domain.ErrQueryFailed, err)
	}
}

// isUnknownColumn recognizes MySQL's unknown-column error and SQLite's
// equivalent message.
func isUnknownColumn(err error) bool {
	var me *mysqldrv.MySQLError
	if errors.As(err, &me) {
		return me.Number == errUnknownColumn
	}
	return strings.Contains(err.Error(), "no such column")
}

func (s *Session) MallStalls(ctx context.Context, schema domain.MallSchema) ([]domain.MallStall, error) {
	query, name := listMallFootprintSQL, "mall_list"
	if schema == domain.MallSchemaBasic {
		query, name = listMallBasicSQL, "mall_list_basic"
	}
	var rows []mallRow
	if err := s.selectAll(ctx, name, &rows, query); err != nil {
		return nil, err
	}
	out := make([]domain.MallStall, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *Session) MallStall(ctx context.Context, schema domain.MallSchema, key domain.MallKey) (domain.MallStall, error) {
	query, name := getMallFootprintSQL, "mall_get"
	if schema == domain.MallSchemaBasic {
		query, name = getMallBasicSQL, "mall_get_basic"
	}
	var r mallRow
	if err := s.getOne(ctx, name, &r, query, key.StreetName, key.StallNumber); err != nil {
		return domain.MallStall{}, err
	}
	return r.toDomain(), nil
}

func (s *Session) MallReviews(ctx context.Context, key domain.MallKey) ([]domain.Review, error) {
	var rows []reviewRow
	if err := s.selectAll(ctx, "mall_reviews", &rows, listMallReviewsSQL, key.StreetName, key.StallNumber); err != nil {
		return nil, err
	}
	out := make([]domain.Review, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}
