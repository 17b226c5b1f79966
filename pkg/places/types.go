package places

// Status is the top level status returned by the Places web service.
type Status string

const (
	StatusOK             Status = "OK"
	StatusZeroResults    Status = "ZERO_RESULTS"
	StatusNotFound       Status = "NOT_FOUND"
	StatusInvalidRequest Status = "INVALID_REQUEST"
	StatusOverQueryLimit Status = "OVER_QUERY_LIMIT"
	StatusRequestDenied  Status = "REQUEST_DENIED"
	StatusUnknownError   Status = "UNKNOWN_ERROR"
)

// Place is the selection read from the widget. FormattedAddress is empty when
// the user entered text without picking a suggestion.
type Place struct {
	PlaceID           string             `json:"place_id,omitempty"`
	Name              string             `json:"name,omitempty"`
	FormattedAddress  string             `json:"formatted_address,omitempty"`
	AddressComponents []AddressComponent `json:"address_components,omitempty"`
}

// HasAddress reports whether the place carries a formatted address.
func (p Place) HasAddress() bool {
	return p.FormattedAddress != ""
}

// Component returns the long name of the first component tagged with kind.
func (p Place) Component(kind string) (string, bool) {
	for _, c := range p.AddressComponents {
		for _, t := range c.Types {
			if t == kind {
				return c.LongName, true
			}
		}
	}
	return "", false
}

type AddressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

// Prediction is one autocomplete suggestion.
type Prediction struct {
	PlaceID     string   `json:"place_id"`
	Description string   `json:"description"`
	Types       []string `json:"types,omitempty"`
}

type autocompleteResponse struct {
	Predictions  []Prediction `json:"predictions"`
	Status       Status       `json:"status"`
	ErrorMessage string       `json:"error_message,omitempty"`
}

type detailsResponse struct {
	Result       *Place `json:"result"`
	Status       Status `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
}
