package enum

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
)

// PaymentType is how an invoice is settled.
type PaymentType string

const (
	PaymentTypeCash   PaymentType = "cash"
	PaymentTypeCredit PaymentType = "credit"
	PaymentTypeCheque PaymentType = "cheque"
	PaymentTypeCard   PaymentType = "card"
)

func (p PaymentType) String() string {
	return string(p)
}

// Label is the printed form, e.g. "Cash".
func (p PaymentType) Label() string {
	if p == "" {
		return ""
	}
	return strings.ToUpper(string(p[:1])) + string(p[1:])
}

func (p PaymentType) IsValid() bool {
	switch p {
	case PaymentTypeCash, PaymentTypeCredit, PaymentTypeCheque, PaymentTypeCard:
		return true
	}
	return false
}

func (p PaymentType) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(p))
}

func (p *PaymentType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*p = PaymentType(strings.ToLower(strings.TrimSpace(str)))
	return nil
}

func (p PaymentType) Value() (driver.Value, error) {
	return string(p), nil
}

func (p *PaymentType) Scan(value interface{}) error {
	if value == nil {
		*p = PaymentTypeCash
		return nil
	}
	switch v := value.(type) {
	case string:
		*p = PaymentType(v)
	case []byte:
		*p = PaymentType(string(v))
	}
	return nil
}
