// Package seed populates the symbol registry with the TSX 60 constituents.
// Seeding is a setup concern and runs outside the pipeline stages; the
// pipeline itself never writes registry identity fields.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/piquette/finance-go/equity"

	"github.com/swipefolio/stockpipe/internal/models"
)

// TSX60Symbols lists the S&P/TSX 60 constituents in Yahoo symbol format.
var TSX60Symbols = []string{
	"AEM.TO", "AQN.TO", "ATD.TO", "BMO.TO", "BNS.TO", "ABX.TO", "BCE.TO", "BAM.TO",
	"BN.TO", "BIP-UN.TO", "CAE.TO", "CCO.TO", "CAR-UN.TO", "CM.TO", "CNR.TO", "CNQ.TO",
	"CP.TO", "CTC-A.TO", "CCL-B.TO", "CVE.TO", "GIB-A.TO", "CSU.TO", "DOL.TO", "EMA.TO",
	"ENB.TO", "FM.TO", "FSV.TO", "FTS.TO", "FNV.TO", "WN.TO", "GIL.TO", "H.TO", "IMO.TO",
	"IFC.TO", "K.TO", "L.TO", "MG.TO", "MFC.TO", "MRU.TO", "NA.TO", "NTR.TO", "OTEX.TO",
	"PPL.TO", "POW.TO", "QSR.TO", "RCI-B.TO", "RY.TO", "SAP.TO", "SHOP.TO", "SLF.TO",
	"SU.TO", "TRP.TO", "TECK-B.TO", "T.TO", "TRI.TO", "TD.TO", "TOU.TO", "WCN.TO",
	"WPM.TO", "WSP.TO",
}

// CleanTicker converts a Yahoo symbol like "BIP-UN.TO" into the DB-friendly
// ticker "BIP.UN".
func CleanTicker(yahooSymbol string) string {
	t := strings.TrimSuffix(yahooSymbol, ".TO")
	if i := strings.Index(t, "-"); i >= 0 {
		return t[:i] + "." + t[i+1:]
	}
	return t
}

// Registry is the writable side of the symbol registry.
type Registry interface {
	UpsertStock(s *models.Stock) error
}

// Report summarises a seeding run.
type Report struct {
	Seeded int
	Failed int
}

// Seeder looks up each TSX 60 company on Yahoo and upserts it into the
// registry keyed on ticker.
type Seeder struct {
	store  Registry
	delay  time.Duration
	logger *slog.Logger
}

// NewSeeder creates a seeder. delay spaces the Yahoo lookups.
func NewSeeder(store Registry, delay time.Duration, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{store: store, delay: delay, logger: logger}
}

// Run seeds the whole TSX 60 list. Lookup failures are per-symbol: the run
// continues and reports counts.
func (s *Seeder) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	for i, symbol := range TSX60Symbols {
		if i > 0 && s.delay > 0 {
			select {
			case <-ctx.Done():
				return report, ctx.Err()
			case <-time.After(s.delay):
			}
		}

		ticker := CleanTicker(symbol)
		name := ticker

		q, err := equity.Get(symbol)
		switch {
		case err != nil || q == nil:
			s.logger.Warn("quote lookup failed, seeding with ticker only", "symbol", symbol, "error", err)
		case q.ShortName != "":
			name = q.ShortName
		case q.LongName != "":
			name = q.LongName
		}

		stock := &models.Stock{Ticker: ticker, Name: name}
		if err := s.store.UpsertStock(stock); err != nil {
			s.logger.Error("failed to seed stock", "ticker", ticker, "error", err)
			report.Failed++
			continue
		}

		s.logger.Info("seeded stock", "ticker", ticker, "name", name)
		report.Seeded++
	}

	if report.Seeded == 0 {
		return report, fmt.Errorf("seeding failed for all %d symbols", len(TSX60Symbols))
	}
	return report, nil
}
