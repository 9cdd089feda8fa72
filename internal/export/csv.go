// Package export renders tracker data for download. The CSV writers
// follow RFC 4180: fields containing commas, quotes or newlines are
// quoted and embedded quotes doubled.
package export

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"pallettrack/internal/models"
	"pallettrack/internal/services"
)

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Movements writes the ledger, most recent first, with location names
// resolved at export time.
func Movements(ctx context.Context, stock services.StockService, locations services.LocationService, w io.Writer) error {
	moves, err := stock.Movements(ctx, nil)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(moves))
	for _, m := range moves {
		rows = append(rows, []string{
			m.ID,
			m.Timestamp.Format(time.RFC3339),
			m.PalletType,
			formatQty(m.Quantity),
			string(m.From.Kind),
			locations.ResolveName(ctx, m.From),
			string(m.To.Kind),
			locations.ResolveName(ctx, m.To),
			m.Note,
		})
	}
	header := []string{"id", "timestamp", "pallet_type", "qty", "from_kind", "from", "to_kind", "to", "note"}
	return writeCSV(w, header, rows)
}

// Balances writes the current stock view.
func Balances(ctx context.Context, stock services.StockService, locations services.LocationService, w io.Writer) error {
	balances, err := stock.Balances(ctx)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(balances))
	for _, b := range balances {
		ref := models.LocationRef{Kind: b.Kind, ID: b.LocationID}
		rows = append(rows, []string{
			string(b.Kind),
			locations.ResolveName(ctx, ref),
			b.PalletType,
			formatQty(b.Quantity),
		})
	}
	header := []string{"kind", "location", "pallet_type", "qty"}
	return writeCSV(w, header, rows)
}

// Pallets writes the pallet catalog with last-known state.
func Pallets(ctx context.Context, pallets services.PalletService, locations services.LocationService, w io.Writer) error {
	items, err := pallets.List(ctx)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(items))
	for _, p := range items {
		lastSeen := ""
		if p.LastSeen != nil {
			lastSeen = p.LastSeen.Format(time.RFC3339)
		}
		lastLoc := ""
		if p.LastLoc != nil {
			lastLoc = locations.ResolveName(ctx, *p.LastLoc)
		}
		rows = append(rows, []string{p.Code, p.AltCode, p.Type, lastSeen, lastLoc, p.Notes})
	}
	header := []string{"code", "alt_code", "type", "last_seen", "last_location", "notes"}
	return writeCSV(w, header, rows)
}

// Catalog writes one location catalog.
func Catalog(ctx context.Context, locations services.LocationService, kind models.LocationKind, w io.Writer) error {
	items, err := locations.List(ctx, kind)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(items))
	for _, l := range items {
		rows = append(rows, []string{l.Name, l.Code, l.Phone, l.Address, l.Notes})
	}
	header := []string{"name", "code", "phone", "address", "notes"}
	return writeCSV(w, header, rows)
}

func formatQty(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}
