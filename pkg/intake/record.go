package intake

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-intake/pkg/store"
)

// DefaultTable is the customers table rows are inserted into.
const DefaultTable = "intake-test-customers"

// Column names of the customers table.
const (
	ColumnFirstName     = "F_Name"
	ColumnLastName      = "L_Name"
	ColumnMobile        = "Mobile"
	ColumnWork          = "Work"
	ColumnOtherPhone    = "Other Phone"
	ColumnEmail         = "Email 1"
	ColumnAddress       = "Address"
	ColumnApplianceType = "Appliance Type"
	ColumnIssue         = "Appliance Issue"
)

// Record is the row written for one service request. Phone columns are
// numeric and nil when the input had no usable number.
type Record struct {
	FirstName     string `json:"F_Name"`
	LastName      string `json:"L_Name"`
	Mobile        *int64 `json:"Mobile"`
	Work          *int64 `json:"Work"`
	OtherPhone    *int64 `json:"Other Phone"`
	Email         string `json:"Email 1"`
	Address       string `json:"Address"`
	ApplianceType string `json:"Appliance Type"`
	Issue         string `json:"Appliance Issue"`
}

// Row returns the record as a column map.
func (r Record) Row() store.Row {
	return store.Row{
		ColumnFirstName:     r.FirstName,
		ColumnLastName:      r.LastName,
		ColumnMobile:        phoneValue(r.Mobile),
		ColumnWork:          phoneValue(r.Work),
		ColumnOtherPhone:    phoneValue(r.OtherPhone),
		ColumnEmail:         r.Email,
		ColumnAddress:       r.Address,
		ColumnApplianceType: r.ApplianceType,
		ColumnIssue:         r.Issue,
	}
}

func phoneValue(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

// NewRecord maps form values onto the table columns. Text is stored as
// submitted. Home phone is stored in the Work column.
func NewRecord(v Values) Record {
	return Record{
		FirstName:     v.FirstName,
		LastName:      v.LastName,
		Mobile:        ParsePhone(v.MobilePhone),
		Work:          ParsePhone(v.HomePhone),
		OtherPhone:    ParsePhone(v.OtherPhone),
		Email:         v.Email,
		Address:       v.Address,
		ApplianceType: v.ApplianceType,
		Issue:         v.Problem,
	}
}

// ParsePhone keeps the digits of raw and parses them as an integer. Empty,
// unparsable, or zero input yields nil.
func ParsePhone(raw string) *int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' || r == '-' || r == '(' || r == ')' || r == '.' || r == ' ':
		default:
			return nil
		}
	}
	n, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil || n == 0 {
		return nil
	}
	return &n
}
