package ports

import (
	"featrank/domain/dataset"
)

// DatasetReaderPort loads a cleaned, feature-engineered tabular dataset.
// Cleaning and feature engineering happen upstream; the reader only maps
// columns onto a Table and drops identifier columns.
type DatasetReaderPort interface {
	Read() (*dataset.Table, error)
}
