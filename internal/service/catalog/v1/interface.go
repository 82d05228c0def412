// Package catalog provides access to the purchasable service catalog.
package catalog

import "github.com/danilovkiri/dk-go-smmpanel/internal/models/modeldto"

// Catalog defines a set of methods for types implementing Catalog. The
// catalog is read-only at runtime; there is no mutation path.
type Catalog interface {
	List(activeOnly bool) []modeldto.Service
	Get(serviceID string) (*modeldto.Service, bool)
}
