package enums

import "fmt"

// ProductState is the lifecycle stored in producto.estado.
type ProductState string

const (
	ProductStateDraft     ProductState = "draft"
	ProductStatePublished ProductState = "published"
)

func (s ProductState) IsValid() bool {
	return s == ProductStateDraft || s == ProductStatePublished
}

// ParseProductState converts the raw string to ProductState.
func ParseProductState(value string) (ProductState, error) {
	state := ProductState(value)
	if !state.IsValid() {
		return "", fmt.Errorf("invalid product state %q", value)
	}
	return state, nil
}
