// Package vectorutils builds a vector.Driver from configuration.
package vectorutils

import (
	"fmt"
	"log/slog"

	"github.com/papercomputeco/mentor/pkg/vector"
	"github.com/papercomputeco/mentor/pkg/vector/chroma"
	"github.com/papercomputeco/mentor/pkg/vector/chromem"
	"github.com/papercomputeco/mentor/pkg/vector/sqlitevec"
)

const (
	ProviderChromem = "chromem"
	ProviderSQLite  = "sqlite"
	ProviderChroma  = "chroma"
)

// NewVectorDriverOpts selects and configures a vector driver.
type NewVectorDriverOpts struct {
	// ProviderType is one of "chromem", "sqlite" or "chroma".
	ProviderType string

	// Target is a directory for chromem, a database file for sqlite and a
	// server URL for chroma.
	Target string

	CollectionName string
	Dimensions     uint
	Logger         *slog.Logger
}

// NewVectorDriver creates the configured vector driver.
func NewVectorDriver(o *NewVectorDriverOpts) (vector.Driver, error) {
	switch o.ProviderType {
	case ProviderChromem, "":
		return chromem.NewDriver(chromem.Config{
			Path:           o.Target,
			CollectionName: o.CollectionName,
			Dimensions:     o.Dimensions,
		}, o.Logger)
	case ProviderSQLite:
		return sqlitevec.NewDriver(sqlitevec.Config{
			DBPath:     o.Target,
			Dimensions: o.Dimensions,
		}, o.Logger)
	case ProviderChroma:
		return chroma.NewDriver(chroma.Config{
			URL:            o.Target,
			CollectionName: o.CollectionName,
		}, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", o.ProviderType)
	}
}
