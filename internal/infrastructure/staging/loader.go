package staging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Staging file names produced by the extraction jobs
const (
	lazadaOrdersFile    = "lazada_orders_raw.json"
	lazadaProductsFile  = "lazada_products_raw.json"
	shopeeOrdersFile    = "shopee_orders_raw.json"
	shopeeProductsFile  = "shopee_products_raw.json"
	shopeePaymentsFile  = "shopee_paymentdetail_raw.json"
	shopeePaymentsChunk = "shopee_paymentdetail_raw_part%d.json"
)

// Loader reads the raw JSON extracts from the staging directory. Everything
// is materialized in memory before any transformation starts so a failed run
// can simply be discarded and retried.
type Loader struct {
	dir    string
	logger *zap.Logger
}

// NewLoader creates a staging loader rooted at dir
func NewLoader(dir string, logger *zap.Logger) *Loader {
	return &Loader{dir: dir, logger: logger.Named("staging")}
}

// LoadAll reads every staging extract. Order and product files are required;
// the Shopee payment detail is optional and may be split into numbered
// chunks when the extraction had to keep file sizes bounded.
func (l *Loader) LoadAll() (*Extracts, error) {
	ex := &Extracts{}

	if err := l.loadJSON(lazadaOrdersFile, &ex.LazadaOrders); err != nil {
		return nil, err
	}
	if err := l.loadJSON(lazadaProductsFile, &ex.LazadaProducts); err != nil {
		return nil, err
	}
	if err := l.loadJSON(shopeeOrdersFile, &ex.ShopeeOrders); err != nil {
		return nil, err
	}
	if err := l.loadJSON(shopeeProductsFile, &ex.ShopeeProducts); err != nil {
		return nil, err
	}

	payments, err := l.loadPaymentDetails()
	if err != nil {
		return nil, err
	}
	ex.ShopeePayments = payments

	l.logger.Info("staging extracts loaded",
		zap.Int("lazada_orders", len(ex.LazadaOrders)),
		zap.Int("lazada_products", len(ex.LazadaProducts)),
		zap.Int("shopee_orders", len(ex.ShopeeOrders)),
		zap.Int("shopee_products", len(ex.ShopeeProducts)),
		zap.Int("shopee_payments", len(ex.ShopeePayments)),
	)
	return ex, nil
}

// loadPaymentDetails loads the whole payment file when present, otherwise
// concatenates consecutive _partN chunks until the first missing index.
func (l *Loader) loadPaymentDetails() ([]ShopeePaymentDetail, error) {
	var all []ShopeePaymentDetail

	whole := filepath.Join(l.dir, shopeePaymentsFile)
	if _, err := os.Stat(whole); err == nil {
		if err := l.loadJSON(shopeePaymentsFile, &all); err != nil {
			return nil, err
		}
		return all, nil
	}

	for part := 1; ; part++ {
		name := fmt.Sprintf(shopeePaymentsChunk, part)
		if _, err := os.Stat(filepath.Join(l.dir, name)); err != nil {
			break
		}
		var chunk []ShopeePaymentDetail
		if err := l.loadJSON(name, &chunk); err != nil {
			return nil, err
		}
		l.logger.Debug("payment chunk loaded", zap.String("file", name), zap.Int("records", len(chunk)))
		all = append(all, chunk...)
	}

	if len(all) == 0 {
		l.logger.Warn("no payment detail extracts found, all pricing will use the fallback path")
	}
	return all, nil
}

func (l *Loader) loadJSON(name string, target any) error {
	path := filepath.Join(l.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read staging file %s: %w", name, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to parse staging file %s: %w", name, err)
	}
	return nil
}
