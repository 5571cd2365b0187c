package gtfs

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ErrDataUnavailable is returned when either input file is missing or
// unparsable. The service cannot start without both datasets.
var ErrDataUnavailable = errors.New("dataset unavailable")

// Route is one row of the routes CSV. A route identifier may appear on
// multiple rows (one per pattern/direction in the source export).
type Route struct {
	Route    string  `json:"route"`
	FullName string  `json:"full_name"`
	Length   float64 `json:"length_km"`
}

// Dataset holds both tables in memory. Immutable after Load.
type Dataset struct {
	routes    []Route
	stopCount int
	skipped   int
}

// Load reads the routes and stops CSVs. The two files are independent so
// they are parsed concurrently. On any failure the returned dataset is nil;
// there is no partial load.
func Load(ctx context.Context, routesPath, stopsPath string) (*Dataset, error) {
	ds := &Dataset{}
	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		routes, skipped, err := loadRoutes(routesPath)
		if err != nil {
			return err
		}
		ds.routes = routes
		ds.skipped = skipped
		return nil
	})
	g.Go(func() error {
		count, err := countStops(stopsPath)
		if err != nil {
			return err
		}
		ds.stopCount = count
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ds, nil
}

func loadRoutes(path string) ([]Route, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: open routes file: %v", ErrDataUnavailable, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: read routes header: %v", ErrDataUnavailable, err)
	}
	h := headerIndex(header)
	for _, col := range []string{"route", "fullname", "length"} {
		if _, ok := h[col]; !ok {
			return nil, 0, fmt.Errorf("%w: routes file missing column %q", ErrDataUnavailable, col)
		}
	}

	var routes []Route
	skipped := 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("%w: read routes row: %v", ErrDataUnavailable, err)
		}

		get := func(k string) string {
			i, ok := h[k]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		id := get("route")
		length, perr := strconv.ParseFloat(get("length"), 64)
		if id == "" || perr != nil || length <= 0 {
			skipped++
			continue
		}
		routes = append(routes, Route{
			Route:    id,
			FullName: get("fullname"),
			Length:   length,
		})
	}
	return routes, skipped, nil
}

func countStops(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("%w: open stops file: %v", ErrDataUnavailable, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	if _, err := r.Read(); err != nil {
		return 0, fmt.Errorf("%w: read stops header: %v", ErrDataUnavailable, err)
	}
	count := 0
	for {
		_, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("%w: read stops row: %v", ErrDataUnavailable, err)
		}
		count++
	}
	return count, nil
}

func headerIndex(hdr []string) map[string]int {
	h := make(map[string]int, len(hdr))
	for i, col := range hdr {
		h[strings.ToLower(strings.TrimSpace(col))] = i
	}
	return h
}

// RouteCount reports the number of loaded route rows (after rejection of
// malformed rows).
func (d *Dataset) RouteCount() int { return len(d.routes) }

// StopCount reports the number of stop rows.
func (d *Dataset) StopCount() int { return d.stopCount }

// SkippedRows reports how many route rows were rejected at load time.
func (d *Dataset) SkippedRows() int { return d.skipped }

// Find returns the first route row matching the identifier.
func (d *Dataset) Find(route string) (Route, bool) {
	for _, r := range d.routes {
		if r.Route == route {
			return r, true
		}
	}
	return Route{}, false
}

// Options returns the distinct (Route, FullName) pairs sorted by route
// identifier, numerically where both identifiers parse as integers.
func (d *Dataset) Options() []Route {
	seen := make(map[string]bool, len(d.routes))
	var opts []Route
	for _, r := range d.routes {
		key := r.Route + "\x00" + r.FullName
		if seen[key] {
			continue
		}
		seen[key] = true
		opts = append(opts, r)
	}
	sort.Slice(opts, func(i, j int) bool {
		return lessRouteID(opts[i].Route, opts[j].Route)
	})
	return opts
}

func lessRouteID(a, b string) bool {
	ai, aerr := strconv.Atoi(a)
	bi, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		return ai < bi
	}
	return a < b
}
