package model

import "time"

// Shared defaults used by both the service and TUI binaries.
const (
	DefaultListTitle        = "tabla_v_prueba"
	DefaultCategoryField    = "marca"
	DefaultLabelField       = "placa"
	DefaultDurationField    = "duracion"
	DefaultCategorySentinel = "Sin marca"
	DefaultLabelSentinel    = "Sin placa"
	DefaultRequestTimeout   = 30 * time.Second

	// MaxRows is the item cap sent as $top and enforced on the response.
	MaxRows = 1000
)

// DefaultFields is the allow-list of list columns the dashboard requests.
var DefaultFields = []string{"ID", "placa", "marca", "propietario", "hora_entrada", "hora_salida", "duracion"}

// DefaultSchema returns the list schema used when no configuration overrides it.
func DefaultSchema() ListSchema {
	return ListSchema{
		ListTitle:        DefaultListTitle,
		Fields:           append([]string(nil), DefaultFields...),
		CategoryField:    DefaultCategoryField,
		LabelField:       DefaultLabelField,
		DurationField:    DefaultDurationField,
		CategorySentinel: DefaultCategorySentinel,
		LabelSentinel:    DefaultLabelSentinel,
		MaxRows:          MaxRows,
	}
}
