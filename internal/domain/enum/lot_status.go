package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// LotStatus tells whether a lot may still be allocated.
type LotStatus int

const (
	LotStatusActive  LotStatus = 0
	LotStatusRetired LotStatus = 1
)

func (s LotStatus) String() string {
	names := [...]string{"Active", "Retired"}
	if int(s) < 0 || int(s) >= len(names) {
		return "Active"
	}
	return names[s]
}

func (s LotStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *LotStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = LotStatus(i)
		return nil
	}
	switch str {
	case "Active", "active":
		*s = LotStatusActive
	case "Retired", "retired":
		*s = LotStatusRetired
	}
	return nil
}

func (s LotStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *LotStatus) Scan(value interface{}) error {
	if value == nil {
		*s = LotStatusActive
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = LotStatus(v)
	case int:
		*s = LotStatus(v)
	}
	return nil
}
