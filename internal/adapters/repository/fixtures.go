package repository

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// demoCatalog is the catalog served when no fixture file is configured.
//
//go:embed testdata/catalog.yaml
var demoCatalog []byte

type fixture struct {
	Merchants []MerchantRecord `yaml:"lojistas"`
}

// DecodeFixtures reads merchant records from YAML.
func DecodeFixtures(r io.Reader) ([]MerchantRecord, error) {
	var f fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidFixture, err)
	}
	for i, m := range f.Merchants {
		switch {
		case strings.TrimSpace(m.ID) == "":
			return nil, fmt.Errorf("%w: merchant %d has no id", ErrInvalidFixture, i)
		case strings.TrimSpace(m.CompanyName) == "":
			return nil, fmt.Errorf("%w: merchant %s has no nomeEmpresa", ErrInvalidFixture, m.ID)
		case m.RatingCount < 0 || m.Rating < 0 || m.Rating > 5:
			return nil, fmt.Errorf("%w: merchant %s has an invalid rating", ErrInvalidFixture, m.ID)
		}
		for j, p := range m.Products {
			if strings.TrimSpace(p.ID) == "" {
				return nil, fmt.Errorf("%w: merchant %s product %d has no id", ErrInvalidFixture, m.ID, j)
			}
		}
	}
	return f.Merchants, nil
}

// LoadCatalog builds a catalog from the YAML file at path, or from the
// built-in demo catalog when path is empty.
func LoadCatalog(path string) (*MemoryCatalog, error) {
	var src io.Reader = bytes.NewReader(demoCatalog)
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open fixtures: %w", err)
		}
		defer func() { _ = f.Close() }()
		src = f
	}
	records, err := DecodeFixtures(src)
	if err != nil {
		return nil, err
	}
	return NewMemoryCatalog(WithRecords(records...)), nil
}
