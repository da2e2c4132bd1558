package main

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// ExportFilename returns <prefix>_<YYYY-MM-DD>.pdf
func ExportFilename(prefix string, t time.Time) string {
	if prefix == "" {
		prefix = "Finanzieren_auf_Probe"
	}
	return prefix + "_" + t.Format("2006-01-02") + ".pdf"
}

// SaveDocument writes doc into dir (created if needed) and returns the absolute path
func SaveDocument(dir string, doc *Document) (string, error) {
	if doc == nil {
		return "", errors.New("no document to save")
	}
	return saveExport(dir, doc.Filename, doc.Bytes)
}

// saveExport writes data as dir/name, creating dir if needed, and returns the absolute path
func saveExport(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, "create export directory %s", dir)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", errors.Wrapf(err, "write %s", path)
	}

	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return path, nil
}

// exportExtensions are the file types PruneExports may remove
var exportExtensions = map[string]bool{".pdf": true, ".csv": true}

// PruneExports removes exported PDF and CSV files older than maxAge.
// A missing directory is not an error. Returns the removed file names.
func PruneExports(dir string, maxAge time.Duration, now time.Time) ([]string, error) {
	if maxAge <= 0 {
		return nil, nil
	}

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read export directory %s", dir)
	}

	var removed []string
	cutoff := now.Add(-maxAge)
	for _, entry := range entries {
		if entry.IsDir() || !exportExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return removed, errors.Wrapf(err, "remove %s", entry.Name())
		}
		removed = append(removed, entry.Name())
	}
	return removed, nil
}

// StartExportPruner removes stale exports every hour until the returned stop func is called
func StartExportPruner(dir string, maxAge time.Duration) (stop func(), err error) {
	c := cron.New()
	_, err = c.AddFunc("@hourly", func() {
		removed, err := PruneExports(dir, maxAge, time.Now())
		if err != nil {
			Log.Warn("export pruning failed", zap.String("dir", dir), zap.Error(err))
			return
		}
		if len(removed) > 0 {
			Log.Info("pruned exports", zap.String("dir", dir), zap.Strings("files", removed))
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "schedule export pruning")
	}
	c.Start()
	return func() { <-c.Stop().Done() }, nil
}

// csvHeader are the column titles of the CSV export
var csvHeader = []string{"Jahr", "Fondsguthaben (€)", "Kumulierte Sparrate (€)", "Inflationsbereinigter Kaufpreis (€)", "Eigenkapitalquote (%)"}

// WriteCSV writes the yearly points as semicolon separated values with German decimal commas
func WriteCSV(w io.Writer, points []ProjectionPoint) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(csvHeader); err != nil {
		return errors.Wrap(err, "write CSV header")
	}
	for _, p := range points {
		row := []string{
			strconv.Itoa(p.Year),
			csvNumber(p.FundBalance, 0),
			csvNumber(p.CumulativeContributions, 2),
			csvNumber(p.InflationAdjustedPrice, 2),
			csvNumber(p.EquityRatioPercent, 1),
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrapf(err, "write CSV row %d", p.Year)
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "flush CSV")
}

// csvNumber formats without grouping so spreadsheets parse the value
func csvNumber(v float64, decimals int) string {
	return strings.Replace(strconv.FormatFloat(v, 'f', decimals, 64), ".", ",", 1)
}
