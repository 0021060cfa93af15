package enums

import "fmt"

// StockSource records where a resolved stock figure came from.
type StockSource string

const (
	StockSourceView   StockSource = "view"
	StockSourceLegacy StockSource = "legacy"
)

// VariantMigration tracks the one-way move from the legacy stock counter to
// per-variant stock, persisted in producto.migracion_variantes.
type VariantMigration string

const (
	VariantMigrationLegacy         VariantMigration = "legacy"
	VariantMigrationVariantCreated VariantMigration = "migrating_variant_created"
	VariantMigrationVariantMode    VariantMigration = "variant_mode"
)

var validVariantMigrations = []VariantMigration{
	VariantMigrationLegacy,
	VariantMigrationVariantCreated,
	VariantMigrationVariantMode,
}

func (m VariantMigration) IsValid() bool {
	for _, candidate := range validVariantMigrations {
		if candidate == m {
			return true
		}
	}
	return false
}

// CanAdvanceTo reports whether the state machine allows moving to next.
// Re-entering the current state is allowed so retries stay idempotent.
func (m VariantMigration) CanAdvanceTo(next VariantMigration) bool {
	if m == next {
		return true
	}
	switch m {
	case VariantMigrationLegacy:
		return next == VariantMigrationVariantCreated || next == VariantMigrationVariantMode
	case VariantMigrationVariantCreated:
		return next == VariantMigrationVariantMode
	default:
		return false
	}
}

// ParseVariantMigration converts the raw string to VariantMigration.
func ParseVariantMigration(value string) (VariantMigration, error) {
	for _, candidate := range validVariantMigrations {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid variant migration state %q", value)
}
