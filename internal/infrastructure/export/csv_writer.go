package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"time"

	"github.com/lacollections/warehouse/internal/domain/warehouse"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const dateTimeLayout = "2006-01-02 15:04:05"

// Exporter writes each warehouse table as a flat CSV file. Column order
// follows the struct's csv tags and row order follows the slice, so the
// output is byte-identical across runs on identical inputs.
type Exporter struct {
	outputDir string
	logger    *zap.Logger
}

// NewExporter creates an exporter rooted at outputDir
func NewExporter(outputDir string, logger *zap.Logger) *Exporter {
	return &Exporter{outputDir: outputDir, logger: logger.Named("export")}
}

// ExportSnapshot writes every dimension and fact table of the snapshot
func (e *Exporter) ExportSnapshot(snap *warehouse.Snapshot) error {
	if err := os.MkdirAll(e.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	tables := []struct {
		name string
		rows any
	}{
		{warehouse.Platform{}.TableName(), snap.Platforms},
		{warehouse.TimeDay{}.TableName(), snap.TimeDays},
		{warehouse.Customer{}.TableName(), snap.Customers},
		{warehouse.Product{}.TableName(), snap.Products},
		{warehouse.ProductVariant{}.TableName(), snap.Variants},
		{warehouse.Order{}.TableName(), snap.Orders},
		{warehouse.FactOrderLine{}.TableName(), snap.FactLines},
		{warehouse.FactSalesAggregate{}.TableName(), snap.Aggregates},
	}

	for _, t := range tables {
		path := filepath.Join(e.outputDir, t.name+".csv")
		n, err := WriteTable(path, t.rows)
		if err != nil {
			return fmt.Errorf("failed to export %s: %w", t.name, err)
		}
		e.logger.Info("table exported", zap.String("table", t.name), zap.Int("rows", n))
	}
	return nil
}

// WriteTable writes a slice of row structs to path as CSV, taking column
// names from csv struct tags. Fields tagged csv:"-" are skipped. Returns
// the number of data rows written.
func WriteTable(path string, rows any) (int, error) {
	rv := reflect.ValueOf(rows)
	if rv.Kind() != reflect.Slice {
		return 0, fmt.Errorf("rows must be a slice, got %s", rv.Kind())
	}

	elemType := rv.Type().Elem()
	if elemType.Kind() != reflect.Struct {
		return 0, fmt.Errorf("row type must be a struct, got %s", elemType.Kind())
	}

	var header []string
	var fieldIdx []int
	for i := 0; i < elemType.NumField(); i++ {
		tag := elemType.Field(i).Tag.Get("csv")
		if tag == "" || tag == "-" {
			continue
		}
		header = append(header, tag)
		fieldIdx = append(fieldIdx, i)
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return 0, err
	}

	record := make([]string, len(fieldIdx))
	for i := 0; i < rv.Len(); i++ {
		row := rv.Index(i)
		for j, idx := range fieldIdx {
			record[j] = formatValue(row.Field(idx))
		}
		if err := w.Write(record); err != nil {
			return 0, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return 0, err
	}
	return rv.Len(), nil
}

func formatValue(v reflect.Value) string {
	switch val := v.Interface().(type) {
	case decimal.Decimal:
		return val.String()
	case decimal.NullDecimal:
		if !val.Valid {
			return ""
		}
		return val.Decimal.String()
	case time.Time:
		if val.IsZero() {
			return ""
		}
		return val.Format(dateTimeLayout)
	case *time.Time:
		if val == nil || val.IsZero() {
			return ""
		}
		return val.Format(dateTimeLayout)
	}

	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}
