package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	server "furryville_index/internal/adapters/http_server"
	"furryville_index/internal/app"
	"furryville_index/internal/domain"
)

// ---- fakes ----

type memStore struct {
	warp      []domain.WarpHallStall
	mall      []domain.MallStall
	reviews   []domain.Review
	footprint bool
	down      bool
	queryErr  error

	acquired, closed int
}

func (m *memStore) Acquire(ctx context.Context) (domain.Session, error) {
	if m.down {
		return nil, errors.Join(domain.ErrStoreUnavailable, errors.New("dial tcp 10.0.0.5:3306: connect: connection refused"))
	}
	m.acquired++
	return &memSession{m: m}, nil
}

type memSession struct{ m *memStore }

func (s *memSession) WarpHallStalls(ctx context.Context) ([]domain.WarpHallStall, error) {
	return s.m.warp, s.m.queryErr
}

func (s *memSession) WarpHallStall(ctx context.Context, n domain.StallNumber) (domain.WarpHallStall, error) {
	for _, w := range s.m.warp {
		if w.StallNumber.Equal(n) {
			return w, nil
		}
	}
	return domain.WarpHallStall{}, domain.ErrNotFound
}

func (s *memSession) MallFootprintSupported(ctx context.Context) (bool, error) {
	return s.m.footprint, nil
}

func (s *memSession) MallStalls(ctx context.Context, tier domain.MallSchema) ([]domain.MallStall, error) {
	if s.m.queryErr != nil {
		return nil, s.m.queryErr
	}
	out := make([]domain.MallStall, 0, len(s.m.mall))
	for _, st := range s.m.mall {
		if tier == domain.MallSchemaBasic {
			st.Width, st.Depth = domain.DefaultFootprint, domain.DefaultFootprint
		}
		out = append(out, st)
	}
	return out, nil
}

func (s *memSession) MallStall(ctx context.Context, tier domain.MallSchema, key domain.MallKey) (domain.MallStall, error) {
	for _, st := range s.m.mall {
		if st.StreetName == key.StreetName && st.StallNumber.Equal(key.StallNumber) {
			return st, nil
		}
	}
	return domain.MallStall{}, domain.ErrNotFound
}

func (s *memSession) MallReviews(ctx context.Context, key domain.MallKey) ([]domain.Review, error) {
	var out []domain.Review
	for _, rv := range s.m.reviews {
		if rv.StreetName == key.StreetName && rv.StallNumber.Equal(key.StallNumber) {
			out = append(out, rv)
		}
	}
	return out, nil
}

func (s *memSession) Close() error {
	s.m.closed++
	return nil
}

// ---- helpers ----

func newServer(t *testing.T, st domain.Store, warpPages bool) *server.Server {
	t.Helper()
	pages, err := server.NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	srv := server.New(5 * time.Second)
	srv.MountRoutes(&server.Handlers{
		D:                  app.NewDirectory(st, domain.MallSchemaAuto),
		Pages:              pages,
		WarpHallStallPages: warpPages,
	})
	return srv
}

func get(t *testing.T, srv *server.Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	srv.Mux().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func seeded() *memStore {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return &memStore{
		footprint: true,
		warp: []domain.WarpHallStall{
			{StallNumber: domain.NewStallNumber(1), StallName: "Potion Shop", IGN: "Fennec92"},
			{StallNumber: domain.NewStallNumber(2), StallName: "Charm Stall", IGN: "VixenLee"},
		},
		mall: []domain.MallStall{
			{StallNumber: domain.NewStallNumber(12), StreetName: "MainSt", IGN: "Otterly", StallName: "Bakery", ItemsSold: "Bread", Width: 5, Depth: 4},
			{StallNumber: domain.MustStallNumber("101"), StreetName: "Wall Street", IGN: "Lynx", StallName: "Lanterns", ItemsSold: "Lights", Width: 3, Depth: 3},
		},
		reviews: []domain.Review{
			{ReviewID: 2, StreetName: "MainSt", StallNumber: domain.NewStallNumber(12), ReviewerName: "Ash", Rating: 5, CreatedAt: now},
			{ReviewID: 1, StreetName: "MainSt", StallNumber: domain.NewStallNumber(12), ReviewerName: "Birch", Rating: 4, CreatedAt: now.Add(-24 * time.Hour)},
		},
	}
}

// ---- API ----

func TestAPIWarpHall_ListsStallsInOrder(t *testing.T) {
	st := seeded()
	rr := get(t, newServer(t, st, false), "/api/warp-hall")

	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	want := `{"shops":[{"StallNumber":1,"StallName":"Potion Shop","IGN":"Fennec92"},{"StallNumber":2,"StallName":"Charm Stall","IGN":"VixenLee"}],"count":2}`
	if got := strings.TrimSpace(rr.Body.String()); got != want {
		t.Fatalf("body\n got %s\nwant %s", got, want)
	}
	if st.acquired != 1 || st.closed != 1 {
		t.Fatalf("acquired=%d closed=%d", st.acquired, st.closed)
	}
}

func TestAPIMall_StoreUnreachable(t *testing.T) {
	rr := get(t, newServer(t, &memStore{down: true}, false), "/api/the-mall")

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status %d", rr.Code)
	}
	want := `{"error":"Database connection failed","shops":[]}`
	if got := strings.TrimSpace(rr.Body.String()); got != want {
		t.Fatalf("body\n got %s\nwant %s", got, want)
	}
}

func TestAPIWarpHall_QueryFailureHidesDriverText(t *testing.T) {
	st := seeded()
	st.queryErr = errors.Join(domain.ErrQueryFailed, errors.New("Error 1146: Table 'fv.warp_hall' doesn't exist"))
	rr := get(t, newServer(t, st, false), "/api/warp-hall")

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status %d", rr.Code)
	}
	body := rr.Body.String()
	if strings.Contains(body, "1146") || !strings.Contains(body, "Database query failed") {
		t.Fatalf("unexpected body: %s", body)
	}
	if st.closed != st.acquired {
		t.Fatalf("session leaked")
	}
}

func TestAPIMall_BasicSchemaUsesDefaultFootprint(t *testing.T) {
	st := seeded()
	st.footprint = false
	rr := get(t, newServer(t, st, false), "/api/the-mall")

	var body struct {
		Shops []struct {
			StreetName string `json:"StreetName"`
			Width      int    `json:"stall_width"`
			Depth      int    `json:"stall_depth"`
		} `json:"shops"`
		Count int `json:"count"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 2 || len(body.Shops) != 2 {
		t.Fatalf("unexpected: %+v", body)
	}
	for _, s := range body.Shops {
		if s.Width != 3 || s.Depth != 3 {
			t.Fatalf("footprint not defaulted: %+v", s)
		}
	}
}

func TestAPIReviews_CountAndAverage(t *testing.T) {
	rr := get(t, newServer(t, seeded(), false), "/api/reviews/the-mall/MainSt/12")

	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var body struct {
		Reviews []struct {
			ReviewID  int64     `json:"ReviewID"`
			CreatedAt time.Time `json:"created_at"`
		} `json:"reviews"`
		Count         int     `json:"count"`
		AverageRating float64 `json:"average_rating"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Count != 2 || body.AverageRating != 4.5 {
		t.Fatalf("unexpected: %+v", body)
	}
	if body.Reviews[0].CreatedAt.Before(body.Reviews[1].CreatedAt) {
		t.Fatalf("reviews not newest first: %+v", body.Reviews)
	}
}

func TestAPIReviews_DecimalNumberAndEncodedStreet(t *testing.T) {
	rr := get(t, newServer(t, seeded(), false), "/api/reviews/the-mall/MainSt/12.0")
	if !strings.Contains(rr.Body.String(), `"count":2`) {
		t.Fatalf("12.0 should resolve like 12: %s", rr.Body.String())
	}

	rr = get(t, newServer(t, seeded(), false), "/api/reviews/the-mall/Wall%20Street/101")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"count":0`) || !strings.Contains(rr.Body.String(), `"average_rating":0`) {
		t.Fatalf("unexpected: %d %s", rr.Code, rr.Body.String())
	}
}

func TestAPIReviews_MalformedIdentifierIs400(t *testing.T) {
	st := seeded()
	srv := newServer(t, st, false)
	for _, p := range []string{"/api/reviews/the-mall/MainSt", "/api/reviews/the-mall/MainSt/abc", "/api/reviews/the-mall/"} {
		rr := get(t, srv, p)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("%s: status %d", p, rr.Code)
		}
		if !strings.Contains(rr.Body.String(), `"error"`) {
			t.Fatalf("%s: body %s", p, rr.Body.String())
		}
	}
	if st.acquired != 0 {
		t.Fatalf("store touched %d times", st.acquired)
	}
}

func TestStallNumberBeyondColumnIsRejected(t *testing.T) {
	st := seeded()
	srv := newServer(t, st, false)
	for _, n := range []string{"18446744073709551628", "12.0000000000000000001"} {
		if rr := get(t, srv, "/api/reviews/the-mall/MainSt/"+n); rr.Code != http.StatusBadRequest {
			t.Fatalf("reviews %s: status %d %s", n, rr.Code, rr.Body.String())
		}
		rr := get(t, srv, "/stall/the-mall/MainSt/"+n)
		if rr.Code != http.StatusNotFound || strings.Contains(rr.Body.String(), "Bakery") {
			t.Fatalf("page %s: status %d", n, rr.Code)
		}
	}
	if st.acquired != 0 {
		t.Fatalf("store touched %d times", st.acquired)
	}
}

func TestMallKeyRuleSharedByPageAndAPI(t *testing.T) {
	srv := newServer(t, seeded(), false)

	rr := get(t, srv, "/api/reviews/the-mall/%20MainSt/12")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), `"count":2`) {
		t.Fatalf("api: %d %s", rr.Code, rr.Body.String())
	}
	rr = get(t, srv, "/stall/the-mall/%20MainSt/12")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Reviews (2)") {
		t.Fatalf("page: %d", rr.Code)
	}
}

func TestAPIReviews_UnsupportedLocation(t *testing.T) {
	st := seeded()
	rr := get(t, newServer(t, st, false), "/api/reviews/warp-hall/1")

	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var body struct {
		Reviews []any  `json:"reviews"`
		Count   int    `json:"count"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Reviews == nil || body.Count != 0 || body.Message == "" {
		t.Fatalf("unexpected: %+v", body)
	}
	if st.acquired != 0 {
		t.Fatalf("store touched")
	}
}

func TestAPIReviews_StoreDown(t *testing.T) {
	rr := get(t, newServer(t, &memStore{down: true}, false), "/api/reviews/the-mall/MainSt/12")
	want := `{"error":"Database connection failed","reviews":[]}`
	if rr.Code != http.StatusInternalServerError || strings.TrimSpace(rr.Body.String()) != want {
		t.Fatalf("unexpected: %d %s", rr.Code, rr.Body.String())
	}
}

func TestStaticJSONEndpoints(t *testing.T) {
	srv := newServer(t, seeded(), false)
	for path, want := range map[string]string{
		"/api/home": `{"message":"Welcome to Furryville Index API","status":"running"}`,
		"/health":   `{"service":"furryville-index","status":"healthy"}`,
	} {
		rr := get(t, srv, path)
		if rr.Code != http.StatusOK || strings.TrimSpace(rr.Body.String()) != want {
			t.Fatalf("%s: %d %s", path, rr.Code, rr.Body.String())
		}
	}
}

// ---- status & catalog ----

type statusBody struct {
	APIVersion     string   `json:"api_version"`
	Endpoints      []string `json:"endpoints"`
	DatabaseStatus string   `json:"database_status"`
}

func TestAPIStatus_Connected(t *testing.T) {
	st := seeded()
	rr := get(t, newServer(t, st, false), "/api/status")

	var body statusBody
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.DatabaseStatus != "connected" || body.APIVersion != "1.0.0" {
		t.Fatalf("unexpected: %+v", body)
	}
	if st.acquired != 1 || st.closed != 1 {
		t.Fatalf("acquired=%d closed=%d", st.acquired, st.closed)
	}
}

func TestAPIStatus_Disconnected(t *testing.T) {
	rr := get(t, newServer(t, &memStore{down: true}, false), "/api/status")

	var body statusBody
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rr.Code != http.StatusOK || body.DatabaseStatus != "disconnected" {
		t.Fatalf("unexpected: %d %+v", rr.Code, body)
	}
}

func TestAPIStatus_CatalogMatchesRouter(t *testing.T) {
	srv := newServer(t, seeded(), false)
	rr := get(t, srv, "/api/status")

	var body statusBody
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}

	var mounted []string
	err := chi.Walk(srv.Router(), func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		if method == http.MethodGet {
			mounted = append(mounted, route)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}

	advertised := append([]string(nil), body.Endpoints...)
	sort.Strings(advertised)
	sort.Strings(mounted)
	if strings.Join(advertised, ",") != strings.Join(mounted, ",") {
		t.Fatalf("catalog drift\nadvertised %v\nmounted    %v", advertised, mounted)
	}
}

// ---- pages ----

func TestWarpHallStallPage_FlagOffIs404(t *testing.T) {
	st := seeded()
	rr := get(t, newServer(t, st, false), "/stall/warp-hall/1")

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status %d", rr.Code)
	}
	if st.acquired != 0 {
		t.Fatalf("store touched while flag off")
	}
}

func TestWarpHallStallPage_FlagOn(t *testing.T) {
	srv := newServer(t, seeded(), true)

	for _, p := range []string{"/stall/warp-hall/1", "/stall/warp-hall/1.0"} {
		rr := get(t, srv, p)
		if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Potion Shop") {
			t.Fatalf("%s: %d", p, rr.Code)
		}
	}
	if rr := get(t, srv, "/stall/warp-hall/99"); rr.Code != http.StatusNotFound {
		t.Fatalf("missing stall: %d", rr.Code)
	}
	if rr := get(t, srv, "/stall/warp-hall/one"); rr.Code != http.StatusNotFound {
		t.Fatalf("non-numeric stall: %d", rr.Code)
	}
}

func TestMallStallPage(t *testing.T) {
	srv := newServer(t, seeded(), false)

	rr := get(t, srv, "/stall/the-mall/MainSt/12.00")
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{"Bakery", "Reviews (2)", "Average rating: 4.5", "Ash"} {
		if !strings.Contains(body, want) {
			t.Fatalf("page missing %q", want)
		}
	}

	if rr := get(t, srv, "/stall/the-mall/Wall%20Street/101"); rr.Code != http.StatusOK {
		t.Fatalf("encoded street: %d", rr.Code)
	}
	if rr := get(t, srv, "/stall/the-mall/MainSt/13"); rr.Code != http.StatusNotFound {
		t.Fatalf("missing stall: %d", rr.Code)
	}
}

func TestListingPages(t *testing.T) {
	srv := newServer(t, seeded(), false)
	for path, want := range map[string]string{
		"/":             "Furryville Index",
		"/warp-hall":    "Charm Stall",
		"/the-mall":     "/stall/the-mall/Wall%20Street/101",
		"/the-mall/map": "/api/the-mall",
		"/about":        "About",
	} {
		rr := get(t, srv, path)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s: status %d", path, rr.Code)
		}
		if !strings.Contains(rr.Body.String(), want) {
			t.Fatalf("%s: missing %q", path, want)
		}
		if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Fatalf("%s: content type %q", path, ct)
		}
	}
}

func TestListingPage_StoreDownIs500(t *testing.T) {
	rr := get(t, newServer(t, &memStore{down: true}, false), "/warp-hall")
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Unable to connect to the database.") {
		t.Fatalf("missing error message")
	}
}

func TestUnknownRouteServesNotFoundPage(t *testing.T) {
	rr := get(t, newServer(t, seeded(), false), "/no/such/page")
	if rr.Code != http.StatusNotFound || !strings.Contains(rr.Body.String(), "Page Not Found") {
		t.Fatalf("unexpected: %d", rr.Code)
	}
}
