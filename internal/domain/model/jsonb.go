package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/Douglas360/auction-intel-estate-sub000/internal/domain/entity"
)

// JSONB represents a JSONB database type
type JSONB map[string]interface{}

// Value implements driver.Valuer interface
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner interface
func (j *JSONB) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*j = nil
		return nil
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return fmt.Errorf("unsupported JSONB source %T", src)
	}
}

// Benefits is stored as a JSONB array of strings. Scan accepts the legacy
// shapes (encoded string, bare string) and normalizes them.
type Benefits []string

// Value implements driver.Valuer interface
func (b Benefits) Value() (driver.Value, error) {
	if b == nil {
		b = Benefits{}
	}
	return json.Marshal([]string(b))
}

// Scan implements sql.Scanner interface
func (b *Benefits) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*b = Benefits{}
	case []byte:
		*b = entity.NormalizeBenefits(append([]byte(nil), v...))
	case string:
		*b = entity.NormalizeBenefits(v)
	default:
		return fmt.Errorf("unsupported benefits source %T", src)
	}
	return nil
}
