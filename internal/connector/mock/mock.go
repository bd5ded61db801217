package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/crimson-sun/latewatch/internal/connector"
)

const defaultRows = 150

var (
	groups    = []string{"1 Alpha", "1 Beta", "2 Alpha", "2 Gamma", "3 Sigma", "3 Delta", "4 Omega", "4 Zeta", "5 Prime", "5 Nexus"}
	reasons   = []string{"Bangun Lewat", "Masalah Pengangkutan", "Kesesakan Lalu Lintas", "Hujan Lebat", "Sakit", "Lain-lain"}
	firstName = []string{
		"Adam", "Haziq", "Irfan", "Daniel", "Amirul", "Hakim", "Raju", "Wei Hong", "Zafri", "Luqman",
		"Sarah", "Aina", "Mei Ling", "Priya", "Nurul", "Batrisyia", "Qistina", "Sofia", "Wei Wei", "Dayang",
	}
)

func init() {
	connector.Register("mock", func() connector.Connector {
		return &Connector{}
	})
}

// Connector synthesises a sheet export (JSON array of arrays) covering the
// last 30 days: weekday arrivals between 07:30 and 09:00. Output is
// deterministic for a given seed and clock.
type Connector struct {
	// Now overrides the clock. Nil means time.Now.
	Now func() time.Time
}

func (c *Connector) Fetch(ctx context.Context, cfg connector.ConnectorConfig) (connector.Payload, error) {
	if err := ctx.Err(); err != nil {
		return connector.Payload{}, err
	}
	rows, err := intExtra(cfg, "rows", defaultRows)
	if err != nil {
		return connector.Payload{}, err
	}
	seed, err := intExtra(cfg, "seed", 1)
	if err != nil {
		return connector.Payload{}, err
	}

	now := time.Now()
	if c.Now != nil {
		now = c.Now()
	}
	body, err := json.Marshal(Generate(rand.New(rand.NewSource(int64(seed))), rows, now))
	if err != nil {
		return connector.Payload{}, fmt.Errorf("mock connector: %w", err)
	}
	return connector.Payload{
		Source:      "mock",
		Body:        body,
		ContentType: "application/json",
		FetchedAt:   now,
	}, nil
}

// Generate returns a header row followed by n data rows.
func Generate(rng *rand.Rand, n int, now time.Time) [][]string {
	out := make([][]string, 0, n+1)
	out = append(out, []string{"Timestamp", "ID", "Nama Murid", "Kelas", "Sebab"})

	start := now.AddDate(0, 0, -30)
	span := now.Sub(start)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("%s %c.", firstName[rng.Intn(len(firstName))], 'A'+rng.Intn(26))
		d := start.Add(time.Duration(rng.Int63n(int64(span))))
		switch d.Weekday() {
		case time.Saturday:
			d = d.AddDate(0, 0, -1)
		case time.Sunday:
			d = d.AddDate(0, 0, -2)
		}
		arrival := time.Date(d.Year(), d.Month(), d.Day(), 7, 30+rng.Intn(90), 0, 0, d.Location())

		out = append(out, []string{
			arrival.Format("2006-01-02 15:04"),
			"S" + strconv.Itoa(1000+i),
			name,
			groups[rng.Intn(len(groups))],
			reasons[rng.Intn(len(reasons))],
		})
	}
	return out
}

func intExtra(cfg connector.ConnectorConfig, key string, fallback int) (int, error) {
	v := cfg.Extra[key]
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("mock connector: invalid %s %q", key, v)
	}
	return n, nil
}
