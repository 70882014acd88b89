package enum

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
)

// Role is the single access role a user holds.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleFinance  Role = "finance"
	RoleReporter Role = "reporter"
)

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleFinance, RoleReporter:
		return true
	}
	return false
}

func (r Role) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(r))
}

// UnmarshalJSON accepts "Admin" as well as "admin".
func (r *Role) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*r = Role(strings.ToLower(str))
	return nil
}

func (r Role) Value() (driver.Value, error) {
	return string(r), nil
}

func (r *Role) Scan(value interface{}) error {
	if value == nil {
		*r = RoleReporter
		return nil
	}
	switch v := value.(type) {
	case string:
		*r = Role(v)
	case []byte:
		*r = Role(string(v))
	}
	return nil
}
