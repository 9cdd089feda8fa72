package services

import (
	"fmt"

	"github.com/google/uuid"

	"pallettrack/internal/models"
)

// newID returns a prefixed identifier, e.g. "drv_3f1c...". Prefixes
// keep exported rows and logs readable without looking up the kind.
func newID(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, uuid.NewString())
}

func idPrefix(kind models.LocationKind) string {
	switch kind {
	case models.KindDriver:
		return "drv"
	case models.KindShop:
		return "shop"
	case models.KindDepot:
		return "dep"
	default:
		return "loc"
	}
}
