package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// LotSource records how a lot entered the ledger.
type LotSource string

const (
	LotSourceBatch    LotSource = "batch"
	LotSourcePurchase LotSource = "purchase"
)

func (s LotSource) String() string {
	return string(s)
}

func (s LotSource) IsValid() bool {
	return s == LotSourceBatch || s == LotSourcePurchase
}

func (s LotSource) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

func (s *LotSource) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*s = LotSource(str)
	return nil
}

func (s LotSource) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *LotSource) Scan(value interface{}) error {
	if value == nil {
		*s = LotSourceBatch
		return nil
	}
	switch v := value.(type) {
	case string:
		*s = LotSource(v)
	case []byte:
		*s = LotSource(string(v))
	}
	return nil
}
