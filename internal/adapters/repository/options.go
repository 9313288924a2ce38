package repository

// Option applies a configuration option to the MemoryCatalog.
type Option func(*MemoryCatalog)

// WithRecords seeds the catalog. Later records with the same id replace
// earlier ones.
func WithRecords(records ...MerchantRecord) Option {
	return func(c *MemoryCatalog) {
		for _, r := range records {
			c.put(r)
		}
	}
}
